package util

import (
	"container/heap"
	"sort"
	"testing"
)

func TestNewMapHeap(t *testing.T) {
	h := NewMapHeap()

	if h == nil {
		t.Fatal("NewMapHeap() returned nil")
	}
	if h.Len() != 0 {
		t.Errorf("Expected empty heap, got length %d", h.Len())
	}
	if len(h.byKey) != 0 {
		t.Errorf("Expected empty index, got %d entries", len(h.byKey))
	}
}

func TestAddItemAndPeek(t *testing.T) {
	h := NewMapHeap()

	h.AddItem("user", 100)
	h.AddItem("session", 200)
	h.AddItem("config", 50)

	if h.Len() != 3 {
		t.Errorf("Expected 3 tracked items, got %d", h.Len())
	}

	for _, key := range []string{"user", "session", "config"} {
		if !h.Contains(key) {
			t.Errorf("Expected heap to contain key %q", key)
		}
	}

	coldest, ok := h.Peek()
	if !ok {
		t.Fatal("Peek() on a non-empty heap returned ok=false")
	}
	if coldest.Key != "config" || coldest.Priority != 50 {
		t.Errorf("Expected coldest item (config,50), got (%s,%d)", coldest.Key, coldest.Priority)
	}
}

// AddItem on a tracked key must reorder the heap, in both directions
func TestAddItemUpdatesPriority(t *testing.T) {
	h := NewMapHeap()

	h.AddItem("user", 100)
	h.AddItem("session", 200)

	// touching "user" again makes "session" the coldest entry
	h.AddItem("user", 300)

	it, ok := h.GetByKey("user")
	if !ok {
		t.Fatal("Expected key 'user' to stay tracked after update")
	}
	if it.Priority != 300 {
		t.Errorf("Expected updated priority 300, got %d", it.Priority)
	}

	coldest, _ := h.Peek()
	if coldest.Key != "session" {
		t.Errorf("Expected coldest key 'session' after update, got %s", coldest.Key)
	}

	// and lowering a priority must bubble the item back to the root
	h.AddItem("user", 10)
	coldest, _ = h.Peek()
	if coldest.Key != "user" || coldest.Priority != 10 {
		t.Errorf("Expected coldest item (user,10), got (%s,%d)", coldest.Key, coldest.Priority)
	}
}

func TestRemoveByKey(t *testing.T) {
	h := NewMapHeap()

	h.AddItem("a", 100)
	h.AddItem("b", 200)
	h.AddItem("c", 300)

	priority, ok := h.RemoveByKey("b")
	if !ok {
		t.Fatal("Expected RemoveByKey to report an existing key")
	}
	if priority != 200 {
		t.Errorf("Expected removed priority 200, got %d", priority)
	}
	if h.Len() != 2 {
		t.Errorf("Expected 2 items after removal, got %d", h.Len())
	}
	if h.Contains("b") {
		t.Error("Expected key 'b' to be gone after removal")
	}

	if _, ok := h.RemoveByKey("missing"); ok {
		t.Error("Expected RemoveByKey to report a missing key")
	}
}

// Popping must drain the heap in ascending priority order regardless of
// insertion order
func TestPopOrder(t *testing.T) {
	h := NewMapHeap()

	entries := []struct {
		key      string
		priority int64
	}{
		{"e", 50},
		{"c", 30},
		{"a", 10},
		{"d", 40},
		{"b", 20},
	}

	for _, e := range entries {
		h.AddItem(e.key, e.priority)
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].priority < entries[j].priority
	})

	for i, expected := range entries {
		if h.Len() == 0 {
			t.Fatalf("Heap drained after %d pops, expected %d", i, len(entries))
		}

		got := heap.Pop(h).(*item)
		if got.Key != expected.key || got.Priority != expected.priority {
			t.Errorf("Pop %d: expected (%s,%d), got (%s,%d)",
				i, expected.key, expected.priority, got.Key, got.Priority)
		}
		if h.Contains(expected.key) {
			t.Errorf("Pop %d: key %q still tracked after pop", i, expected.key)
		}
	}

	if h.Len() != 0 {
		t.Errorf("Expected empty heap after draining, got %d items", h.Len())
	}
}

func TestPeekEmptyHeap(t *testing.T) {
	h := NewMapHeap()

	if _, ok := h.Peek(); ok {
		t.Error("Expected Peek on an empty heap to return ok=false")
	}
}

func TestGetByKey(t *testing.T) {
	h := NewMapHeap()

	h.AddItem("user", 100)
	h.AddItem("session", 200)

	it, ok := h.GetByKey("user")
	if !ok {
		t.Fatal("Expected GetByKey to find a tracked key")
	}
	if it.Key != "user" || it.Priority != 100 {
		t.Errorf("Expected item (user,100), got (%s,%d)", it.Key, it.Priority)
	}

	if _, ok := h.GetByKey("missing"); ok {
		t.Error("Expected GetByKey to miss an untracked key")
	}
}

// a removal in the middle of the heap must not disturb the order of the rest
func TestRemoveKeepsHeapOrder(t *testing.T) {
	h := NewMapHeap()

	for _, e := range []struct {
		key      string
		priority int64
	}{
		{"a", 10}, {"b", 20}, {"c", 30}, {"d", 40}, {"e", 50},
	} {
		h.AddItem(e.key, e.priority)
	}

	h.RemoveByKey("c")

	want := []string{"a", "b", "d", "e"}
	for i, key := range want {
		got := heap.Pop(h).(*item)
		if got.Key != key {
			t.Errorf("Pop %d: expected key %q, got %q", i, key, got.Key)
		}
	}
}
