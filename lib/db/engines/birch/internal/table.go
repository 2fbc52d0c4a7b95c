package internal

// --------------------------------------------------------------------------
// Entry Type (one keyspace slot, either a flat atom or a namespace trie)
// --------------------------------------------------------------------------

// EntryKind discriminates what a table entry stores.
type EntryKind uint8

const (
	EntryKindAtom EntryKind = iota // flat entry holding a single atom
	EntryKindTrie                  // namespace entry holding a trie
)

func (k EntryKind) String() string {
	switch k {
	case EntryKindAtom:
		return "Atom"
	case EntryKindTrie:
		return "Trie"
	default:
		return "Unknown"
	}
}

// Entry is one slot of a keyspace table: either a flat atom or the trie of
// a namespace, discriminated by Kind. Exactly one of Atom and Trie is set.
type Entry struct {
	Kind EntryKind
	Atom *Atom
	Trie *Trie
}

// NewAtomEntry wraps a flat atom into an entry.
func NewAtomEntry(a *Atom) *Entry { return &Entry{Kind: EntryKindAtom, Atom: a} }

// NewTrieEntry wraps a namespace trie into an entry.
func NewTrieEntry(t *Trie) *Entry { return &Entry{Kind: EntryKindTrie, Trie: t} }

// Destroy releases the storage held by the entry: the flat atom or the
// whole namespace trie.
func (e *Entry) Destroy(pool *InternPool) {
	switch e.Kind {
	case EntryKindAtom:
		DestroyAtom(pool, e.Atom)
		e.Atom = nil
	case EntryKindTrie:
		e.Trie.Destroy()
		e.Trie = nil
	}
}

// --------------------------------------------------------------------------
// Keyspace Table Type (one tier of the keyspace)
// --------------------------------------------------------------------------

// KeyspaceTable maps top-level keys to their entries. One table represents
// one tier of the keyspace; moving an entry between tiers moves the slot,
// never the storage behind it.
//
// Note: This implementation is not thread-safe, callers must synchronize
// access externally.
type KeyspaceTable struct {
	entries map[string]*Entry
}

// NewKeyspaceTable creates an empty table.
func NewKeyspaceTable() *KeyspaceTable {
	return &KeyspaceTable{entries: make(map[string]*Entry)}
}

// Get returns the entry stored under key.
func (t *KeyspaceTable) Get(key string) (*Entry, bool) {
	e, ok := t.entries[key]
	return e, ok
}

// Put stores an entry under key, replacing any previous slot.
// A replaced slot is not released, the caller owns that decision.
func (t *KeyspaceTable) Put(key string, e *Entry) {
	t.entries[key] = e
}

// Remove unlinks and returns the entry stored under key.
// The entry's storage is not released.
func (t *KeyspaceTable) Remove(key string) (*Entry, bool) {
	e, ok := t.entries[key]
	if ok {
		delete(t.entries, key)
	}
	return e, ok
}

// Len returns the number of entries in the table.
func (t *KeyspaceTable) Len() int { return len(t.entries) }

// Range calls fn for every entry until fn returns false.
func (t *KeyspaceTable) Range(fn func(key string, e *Entry) bool) {
	for k, e := range t.entries {
		if !fn(k, e) {
			return
		}
	}
}
