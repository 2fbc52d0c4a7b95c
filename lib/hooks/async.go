package hooks

import (
	"sync"

	"github.com/ValentinKolb/tKV/lib/db/util"
)

// AsyncSink decouples a slow event consumer from the database hot path.
// Producers enqueue events on a lock-free MPSC queue, a single goroutine
// delivers them to the target hook in queue order.
type AsyncSink struct {
	queue    *util.LockFreeMPSC[Event]
	consumer sync.WaitGroup
}

// NewAsyncSink starts the consumer goroutine for the given target hook.
func NewAsyncSink(target HookFunc) *AsyncSink {
	s := &AsyncSink{
		queue: util.NewLockFreeMPSC[Event](),
	}

	s.consumer.Add(1)
	go func() {
		defer s.consumer.Done()
		for e := range s.queue.Recv() {
			target(*e)
		}
	}()

	return s
}

// Hook returns the producer-side hook to register with a manager.
// Events pushed after Close are dropped.
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (s *AsyncSink) Hook() HookFunc {
	return func(e Event) {
		s.queue.Push(&e)
	}
}

// Close stops the sink after all pending events have been delivered.
func (s *AsyncSink) Close() {
	s.queue.Close()
	s.consumer.Wait()
}
