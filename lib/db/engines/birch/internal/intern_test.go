package internal

import "testing"

// TestInternIdentity tests that equal text yields the identical handle
func TestInternIdentity(t *testing.T) {
	pool := NewInternPool(NewMemBudget(0))

	a, err := pool.Intern("user")
	if err != nil {
		t.Fatalf("Intern failed: %v", err)
	}
	b, err := pool.Intern("user")
	if err != nil {
		t.Fatalf("Intern failed: %v", err)
	}

	if a != b {
		t.Error("Expected both handles to point to the same buffer")
	}
	if a.Refs() != 2 {
		t.Errorf("Expected refcount 2, got %d", a.Refs())
	}
	if pool.Len() != 1 {
		t.Errorf("Expected 1 unique string in the pool, got %d", pool.Len())
	}
}

// TestInternRelease tests the reference count lifecycle
func TestInternRelease(t *testing.T) {
	pool := NewInternPool(NewMemBudget(0))

	a, _ := pool.Intern("session")
	b, _ := pool.Intern("session")

	// releasing one of two references must keep the buffer alive
	pool.Release(a)
	if b.Refs() != 1 {
		t.Errorf("Expected refcount 1, got %d", b.Refs())
	}
	if _, ok := pool.Lookup("session"); !ok {
		t.Error("Buffer should still be interned after releasing one of two handles")
	}

	// releasing the last reference must evict the buffer
	pool.Release(b)
	if _, ok := pool.Lookup("session"); ok {
		t.Error("Buffer should be evicted after the last release")
	}
	if pool.Len() != 0 {
		t.Errorf("Expected an empty pool, got %d entries", pool.Len())
	}
}

// TestInternLookupDoesNotMutate tests that Lookup leaves refcounts alone
func TestInternLookupDoesNotMutate(t *testing.T) {
	pool := NewInternPool(NewMemBudget(0))
	a, _ := pool.Intern("config")

	for i := 0; i < 3; i++ {
		if _, ok := pool.Lookup("config"); !ok {
			t.Fatal("Lookup should find the interned buffer")
		}
	}

	if a.Refs() != 1 {
		t.Errorf("Lookup must not change the refcount: expected 1, got %d", a.Refs())
	}

	if _, ok := pool.Lookup("missing"); ok {
		t.Error("Lookup should not find text that was never interned")
	}
}

// TestInternReleaseDeadHandlePanics tests the double-release guard
func TestInternReleaseDeadHandlePanics(t *testing.T) {
	pool := NewInternPool(NewMemBudget(0))
	a, _ := pool.Intern("x")
	pool.Release(a)

	defer func() {
		if r := recover(); r == nil {
			t.Error("Expected a panic when releasing a dead handle")
		}
	}()
	pool.Release(a)
}

// TestInternBudget tests budget accounting of the pool
func TestInternBudget(t *testing.T) {
	budget := NewMemBudget(InternOverhead + 8)
	pool := NewInternPool(budget)

	first, err := pool.Intern("user")
	if err != nil {
		t.Fatalf("First intern should fit the budget: %v", err)
	}

	if _, err := pool.Intern("sessions"); err != ErrOutOfMemory {
		t.Errorf("Expected ErrOutOfMemory, got %v", err)
	}

	// re-interning existing text must not consume budget
	if _, err := pool.Intern("user"); err != nil {
		t.Errorf("Interning existing text should never fail: %v", err)
	}

	// draining the pool must return all bytes to the budget
	pool.Release(first)
	pool.Release(first)
	if budget.Used() != 0 {
		t.Errorf("Expected no accounted bytes after draining, got %d", budget.Used())
	}
	if pool.UniqueBytes() != 0 {
		t.Errorf("Expected no unique bytes after draining, got %d", pool.UniqueBytes())
	}
}
