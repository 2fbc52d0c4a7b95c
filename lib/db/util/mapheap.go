// Package util
//
// This file implements the keyed min-heap behind access recency tracking.
//
// A MapHeap is a binary heap indexed by a hash map. The heap orders items by
// priority (a unix nano timestamp of the last access), the map lets callers
// reach any item by key without scanning. The combination gives:
//
//   - O(log n) Push, Pop and priority updates
//   - O(1) lookups and existence checks by key
//   - O(log n) removal by key
//
// The coldest item (smallest timestamp) always sits at the root, which is
// exactly what a demotion or eviction policy wants to look at. Items are
// unlinked from both structures on removal so nothing keeps dead entries
// alive.
//
// A MapHeap is not safe for concurrent use, callers synchronize around it.
//
// Example usage:
//
//	recency := NewMapHeap()
//
//	// track entries by their last access time
//	recency.AddItem("user", timestamp1)
//	recency.AddItem("session", timestamp2)
//
//	// the root is the least recently touched entry
//	coldest, ok := recency.Peek()
//
//	// stop tracking an entry, e.g. after deletion
//	recency.RemoveByKey("user")
//
//	// drain in coldest-first order
//	for recency.Len() > 0 {
//	    item := heap.Pop(recency).(*item)
//	}
package util

import (
	"container/heap"
	"strconv"
)

// item is one tracked entry: a key plus the priority it is ordered by
type item struct {
	Key      string
	Priority int64 // unix nano timestamp of the last access
	index    int   // position in the heap slice, maintained by container/heap
}

func (i *item) String() string {
	return "{Key: " + i.Key + ", Priority: " + strconv.FormatInt(i.Priority, 10) + "}"
}

// MapHeap is a min-heap of items with O(1) access by key.
// The zero value is not usable, create instances with NewMapHeap.
type MapHeap struct {
	entries []*item
	byKey   map[string]*item
}

// NewMapHeap creates an empty MapHeap
func NewMapHeap() *MapHeap {
	return &MapHeap{
		entries: make([]*item, 0),
		byKey:   make(map[string]*item),
	}
}

// --------------------------------------------------------------------------
// heap.Interface
// --------------------------------------------------------------------------

func (h *MapHeap) Len() int { return len(h.entries) }

// Less orders by priority ascending, so the coldest item is the root
func (h *MapHeap) Less(i, j int) bool {
	return h.entries[i].Priority < h.entries[j].Priority
}

func (h *MapHeap) Swap(i, j int) {
	h.entries[i], h.entries[j] = h.entries[j], h.entries[i]
	h.entries[i].index = i
	h.entries[j].index = j
}

func (h *MapHeap) Push(x any) {
	it := x.(*item)
	it.index = len(h.entries)
	h.entries = append(h.entries, it)
	h.byKey[it.Key] = it
}

func (h *MapHeap) Pop() any {
	old := h.entries
	n := len(old)
	it := old[n-1]
	old[n-1] = nil // release the slot so the item can be collected
	it.index = -1
	h.entries = old[:n-1]
	delete(h.byKey, it.Key)
	return it
}

// --------------------------------------------------------------------------
// Keyed operations
// --------------------------------------------------------------------------

// AddItem tracks a key with the given priority. If the key is already
// tracked, only its priority is updated and the heap is reordered.
func (h *MapHeap) AddItem(key string, priority int64) {
	if it, exists := h.byKey[key]; exists {
		it.Priority = priority
		heap.Fix(h, it.index)
		return
	}

	heap.Push(h, &item{Key: key, Priority: priority})
}

// RemoveByKey stops tracking a key and reports the priority it held.
func (h *MapHeap) RemoveByKey(key string) (int64, bool) {
	it, exists := h.byKey[key]
	if !exists {
		return 0, false
	}

	heap.Remove(h, it.index)
	return it.Priority, true
}

// Peek returns the coldest item without removing it.
func (h *MapHeap) Peek() (*item, bool) {
	if len(h.entries) == 0 {
		return nil, false
	}
	return h.entries[0], true
}

// Contains reports whether a key is currently tracked.
func (h *MapHeap) Contains(key string) bool {
	_, exists := h.byKey[key]
	return exists
}

// GetByKey returns the tracked item for a key without removing it.
func (h *MapHeap) GetByKey(key string) (*item, bool) {
	it, exists := h.byKey[key]
	return it, exists
}
