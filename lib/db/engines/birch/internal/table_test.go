package internal

import "testing"

// TestKeyspaceTableBasics tests put, get, remove and len
func TestKeyspaceTableBasics(t *testing.T) {
	table := NewKeyspaceTable()
	pool := NewInternPool(NewMemBudget(0))

	atom, _ := NewStoredAtom(pool, "counter")
	SetAtomValue(pool, atom, []byte("1"))
	table.Put("counter", NewAtomEntry(atom))

	if table.Len() != 1 {
		t.Errorf("Expected 1 entry, got %d", table.Len())
	}

	e, ok := table.Get("counter")
	if !ok {
		t.Fatal("Expected to find the entry")
	}
	if e.Kind != EntryKindAtom {
		t.Errorf("Expected kind Atom, got %s", e.Kind)
	}

	removed, ok := table.Remove("counter")
	if !ok || removed != e {
		t.Error("Remove should unlink and return the stored entry")
	}
	if table.Len() != 0 {
		t.Errorf("Expected an empty table, got %d entries", table.Len())
	}

	if _, ok := table.Get("counter"); ok {
		t.Error("Removed entry should not be findable")
	}
	if _, ok := table.Remove("counter"); ok {
		t.Error("Removing a missing key should report false")
	}
}

// TestKeyspaceTableRange tests iteration with early exit
func TestKeyspaceTableRange(t *testing.T) {
	table := NewKeyspaceTable()
	pool := NewInternPool(NewMemBudget(0))

	for _, key := range []string{"a", "b", "c"} {
		atom, _ := NewStoredAtom(pool, key)
		table.Put(key, NewAtomEntry(atom))
	}

	seen := 0
	table.Range(func(key string, e *Entry) bool {
		seen++
		return true
	})
	if seen != 3 {
		t.Errorf("Expected to visit 3 entries, visited %d", seen)
	}

	seen = 0
	table.Range(func(key string, e *Entry) bool {
		seen++
		return false
	})
	if seen != 1 {
		t.Errorf("Expected the iteration to stop after 1 entry, visited %d", seen)
	}
}

// TestEntryDestroy tests that destroying entries returns all bytes
func TestEntryDestroy(t *testing.T) {
	budget := NewMemBudget(0)
	pool := NewInternPool(budget)

	// flat atom entry
	atom, _ := NewStoredAtom(pool, "flat")
	SetAtomValue(pool, atom, []byte("value"))
	flat := NewAtomEntry(atom)

	// namespace trie entry
	trie, _ := NewTrie(pool)
	trie.Set([]string{"a", "b"}, []byte("nested"))
	namespaced := NewTrieEntry(trie)

	flat.Destroy(pool)
	namespaced.Destroy(pool)

	if pool.Len() != 0 {
		t.Errorf("Expected an empty pool, got %d interned strings", pool.Len())
	}
	if budget.Used() != 0 {
		t.Errorf("Expected no accounted bytes, got %d", budget.Used())
	}
}
