// Package util
//
// This file implements an unbounded multi-producer single-consumer queue.
// Producers append with a lock-free CAS loop, the single consumer receives
// through a channel. The store's hook pipeline uses it to decouple event
// emission from event handling.
//
// Guarantees:
//
//   - Push() is safe for any number of concurrent goroutines
//   - items survive Close(): everything pushed before Close is still delivered
//   - per-item overhead is two pointers
//   - ordering under concurrent Push() follows CAS completion, not call order
package util

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// maxBackoffShift caps the spin count at 1<<maxBackoffShift yields per retry.
const maxBackoffShift = 10

// node is one link in the queue's list.
type node[T any] struct {
	value *T
	next  atomic.Pointer[node[T]]
}

// LockFreeMPSC is an unbounded multi-producer single-consumer queue.
// The producer side is a lock-free linked list, the consumer side is a
// dedicated goroutine that forwards items to the Recv() channel.
type LockFreeMPSC[T any] struct {
	head atomic.Pointer[node[T]]
	tail atomic.Pointer[node[T]]
	out  chan *T

	closed atomic.Bool

	// wake protocol between producers and the idle consumer.
	// waiting is only set under mu, pairs with wake().
	mu      sync.Mutex
	cond    *sync.Cond
	waiting atomic.Bool
}

// NewLockFreeMPSC creates the queue and starts its consumer goroutine.
func NewLockFreeMPSC[T any]() *LockFreeMPSC[T] {
	// sentinel node, head always points at the last consumed element
	sentinel := &node[T]{}

	q := &LockFreeMPSC[T]{
		out: make(chan *T),
	}
	q.cond = sync.NewCond(&q.mu)
	q.head.Store(sentinel)
	q.tail.Store(sentinel)

	go q.consume()

	return q
}

// Push adds an item to the queue.
// Returns true if the item was added, or false if the queue is closed
// or the item is nil.
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (q *LockFreeMPSC[T]) Push(value *T) bool {
	if value == nil {
		return false
	}
	if q.closed.Load() {
		return false
	}

	n := &node[T]{value: value}

	var spins uint8
	for {
		last := q.tail.Load()

		if next := last.next.Load(); next != nil {
			// another producer appended but has not advanced tail yet,
			// help it along and retry
			q.tail.CompareAndSwap(last, next)
		} else if last.next.CompareAndSwap(nil, n) {
			// appended. The tail CAS may lose to a helping producer,
			// which is fine, tail still ends up at the new node.
			q.tail.CompareAndSwap(last, n)
			q.wake()
			return true
		}

		// backoff under contention: spin longer after every failed
		// attempt, degrade to a single yield once the cap is reached
		if spins < maxBackoffShift {
			spins++
			for i := 0; i < 1<<spins; i++ {
				runtime.Gosched()
			}
		} else {
			runtime.Gosched()
		}
	}
}

// wake signals the consumer if it went idle. Taking mu here pairs with the
// consumer's check-then-wait under the same lock, so the signal cannot fall
// between its check and its Wait.
func (q *LockFreeMPSC[T]) wake() {
	if !q.waiting.Load() {
		return
	}
	q.mu.Lock()
	q.cond.Signal()
	q.mu.Unlock()
}

// consume forwards items from the linked list to the output channel until
// the queue is closed and drained.
func (q *LockFreeMPSC[T]) consume() {
	defer close(q.out)

	for {
		if q.drain() {
			continue
		}

		// nothing pending; closed means drained for good
		if q.closed.Load() {
			return
		}

		q.mu.Lock()
		q.waiting.Store(true)
		if q.head.Load().next.Load() == nil && !q.closed.Load() {
			q.cond.Wait()
		}
		q.waiting.Store(false)
		q.mu.Unlock()
	}
}

// drain moves every currently linked item to the output channel and
// reports whether it delivered anything.
func (q *LockFreeMPSC[T]) drain() bool {
	delivered := false

	for {
		head := q.head.Load()
		next := head.next.Load()
		if next == nil {
			return delivered
		}

		value := next.value

		// advancing head unlinks the consumed node
		q.head.Store(next)

		q.out <- value
		next.value = nil
		delivered = true
	}
}

// Recv returns a receive-only channel for consuming from the queue.
// The channel is closed once Close() was called and all items are delivered.
func (q *LockFreeMPSC[T]) Recv() <-chan *T {
	return q.out
}

// Close closes the queue, preventing further writes.
// Any items already in the queue will still be delivered to the consumer.
func (q *LockFreeMPSC[T]) Close() {
	q.closed.Store(true)
	q.wake()
}

// IsClosed returns true if the queue is closed.
func (q *LockFreeMPSC[T]) IsClosed() bool {
	return q.closed.Load()
}

// Len counts the items currently linked in the queue. This walks the list
// and is O(n), intended for tests and debugging.
func (q *LockFreeMPSC[T]) Len() int {
	count := 0
	for n := q.head.Load().next.Load(); n != nil; n = n.next.Load() {
		count++
	}
	return count
}
