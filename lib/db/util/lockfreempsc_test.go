package util

import (
	"runtime"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestPushAndReceive(t *testing.T) {
	q := NewLockFreeMPSC[int]()
	defer q.Close()

	for i := 0; i < 10; i++ {
		val := i
		if !q.Push(&val) {
			t.Fatalf("Failed to push item %d", i)
		}
	}

	for i := 0; i < 10; i++ {
		select {
		case got := <-q.Recv():
			if *got != i {
				t.Errorf("Expected %d, got %d", i, *got)
			}
		case <-time.After(time.Second):
			t.Fatalf("Timeout waiting for item %d", i)
		}
	}
}

func TestPushNil(t *testing.T) {
	q := NewLockFreeMPSC[int]()
	defer q.Close()

	if q.Push(nil) {
		t.Error("Expected push of nil to be rejected")
	}
}

func TestCloseDrainsPendingItems(t *testing.T) {
	q := NewLockFreeMPSC[int]()

	for i := 0; i < 5; i++ {
		val := i
		q.Push(&val)
	}

	q.Close()

	if !q.IsClosed() {
		t.Error("Expected queue to report closed")
	}

	rejected := 100
	if q.Push(&rejected) {
		t.Error("Expected push after close to be rejected")
	}

	// everything pushed before Close must still arrive, then the
	// channel must close
	next := 0
	for got := range q.Recv() {
		if *got != next {
			t.Errorf("Expected %d, got %d", next, *got)
		}
		next++
	}
	if next != 5 {
		t.Errorf("Expected 5 items before channel close, got %d", next)
	}
}

func TestCloseIdempotent(t *testing.T) {
	q := NewLockFreeMPSC[string]()

	q.Close()
	q.Close()

	if !q.IsClosed() {
		t.Error("Expected queue to report closed")
	}
	if _, ok := <-q.Recv(); ok {
		t.Error("Expected channel to be closed")
	}
}

func TestLenTracksPending(t *testing.T) {
	q := NewLockFreeMPSC[int]()

	if q.Len() != 0 {
		t.Errorf("Expected empty queue, got Len %d", q.Len())
	}

	const items = 100
	for i := 0; i < items; i++ {
		val := i
		q.Push(&val)
	}

	// nobody receives yet, so at most one item can have left the list
	// (the consumer blocks handing it to the channel)
	if n := q.Len(); n < items-1 || n > items {
		t.Errorf("Expected Len near %d, got %d", items, n)
	}

	q.Close()
	count := 0
	for range q.Recv() {
		count++
	}
	if count != items {
		t.Errorf("Expected %d items, got %d", items, count)
	}
	if q.Len() != 0 {
		t.Errorf("Expected empty queue after drain, got Len %d", q.Len())
	}
}

func TestConcurrentProducers(t *testing.T) {
	q := NewLockFreeMPSC[int]()

	const producers = 10
	const itemsPerProducer = 1000
	const total = producers * itemsPerProducer

	var wg sync.WaitGroup
	wg.Add(producers)

	for p := 0; p < producers; p++ {
		go func(id int) {
			defer wg.Done()

			base := id * itemsPerProducer
			for i := 0; i < itemsPerProducer; i++ {
				val := base + i
				if !q.Push(&val) {
					t.Errorf("Producer %d failed to push item %d", id, i)
				}
				if i%100 == 0 {
					runtime.Gosched()
				}
			}
		}(p)
	}

	// the queue is unbounded, producers finish without a reader
	wg.Wait()
	q.Close()

	seen := make(map[int]int, total)
	for got := range q.Recv() {
		seen[*got]++
	}

	if len(seen) != total {
		t.Errorf("Expected %d distinct items, got %d", total, len(seen))
	}
	for val, count := range seen {
		if count != 1 {
			t.Errorf("Expected item %d exactly once, got %d times", val, count)
		}
	}
}

func TestSingleProducerOrdering(t *testing.T) {
	q := NewLockFreeMPSC[int]()

	const items = 10000
	go func() {
		for i := 0; i < items; i++ {
			val := i
			q.Push(&val)
		}
		q.Close()
	}()

	// a single producer must be received strictly in push order
	expected := 0
	for got := range q.Recv() {
		if *got != expected {
			t.Fatalf("Expected %d, got %d", expected, *got)
		}
		expected++
	}
	if expected != items {
		t.Errorf("Expected %d items, got %d", items, expected)
	}
}

func TestRecvInSelect(t *testing.T) {
	q := NewLockFreeMPSC[string]()
	defer q.Close()

	select {
	case got := <-q.Recv():
		t.Errorf("Expected empty queue, got %q", *got)
	default:
	}

	val := "event"
	q.Push(&val)

	select {
	case got := <-q.Recv():
		if *got != "event" {
			t.Errorf("Expected 'event', got %q", *got)
		}
	case <-time.After(time.Second):
		t.Fatal("Timeout waiting for item")
	}
}

func TestNoMemoryGrowth(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping memory growth test in short mode")
	}

	q := NewLockFreeMPSC[int]()
	defer q.Close()

	const iterations = 200000
	const batchSize = 1000

	var consumed int64
	go func() {
		for range q.Recv() {
			atomic.AddInt64(&consumed, 1)
		}
	}()

	var before, after runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&before)

	for i := 0; i < iterations; i += batchSize {
		for j := 0; j < batchSize; j++ {
			val := j
			q.Push(&val)
		}
		for atomic.LoadInt64(&consumed) < int64(i+batchSize) {
			time.Sleep(time.Millisecond)
		}
	}

	runtime.GC()
	runtime.ReadMemStats(&after)

	// consumed nodes must be collectable, allow some slack for the runtime
	if delta := int64(after.HeapAlloc) - int64(before.HeapAlloc); delta > 1<<20 {
		t.Errorf("Possible leak: heap grew by %d bytes over %d items", delta, iterations)
	}
}

func BenchmarkPushSingleProducer(b *testing.B) {
	q := NewLockFreeMPSC[int]()
	defer q.Close()

	go func() {
		for range q.Recv() {
		}
	}()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		q.Push(&i)
	}
}

func BenchmarkPushParallelProducers(b *testing.B) {
	q := NewLockFreeMPSC[int]()
	defer q.Close()

	go func() {
		for range q.Recv() {
		}
	}()

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		i := 0
		for pb.Next() {
			q.Push(&i)
			i++
		}
	})
}
