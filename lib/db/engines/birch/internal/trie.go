package internal

// --------------------------------------------------------------------------
// Trie Type (per-namespace storage tree)
// --------------------------------------------------------------------------

// Trie is the storage tree of a single namespace. The root atom carries the
// interned empty segment and never holds a value; every stored key segment
// becomes one tree level below it.
type Trie struct {
	Root *Atom
	pool *InternPool
}

// NewTrie creates a trie rooted at the empty sentinel segment. Even an
// empty trie holds one interned handle and one atom until destroyed.
func NewTrie(pool *InternPool) (*Trie, error) {
	sentinel, err := NewStoredAtom(pool, "")
	if err != nil {
		return nil, err
	}
	return &Trie{Root: sentinel, pool: pool}, nil
}

// Resolve walks the segment path and returns the terminal atom.
// No atoms are created and no access metadata is updated.
func (t *Trie) Resolve(segments []string) (*Atom, bool) {
	current := t.Root
	for _, segment := range segments {
		child, ok := current.Child(segment)
		if !ok {
			return nil, false
		}
		current = child
	}
	return current, true
}

// Set walks the segment path from the root, creating missing atoms along
// the way, and stores value on the terminal atom. When the budget runs out
// mid-path, atoms created so far remain in place and ErrOutOfMemory is
// returned.
func (t *Trie) Set(segments []string, value []byte) error {
	current := t.Root
	for _, segment := range segments {
		child, ok := current.Child(segment)
		if !ok {
			var err error
			if child, err = NewStoredAtom(t.pool, segment); err != nil {
				return err
			}
			current.PutChild(child)
		}
		current = child
	}

	return SetAtomValue(t.pool, current, value)
}

// Get resolves the segment path and returns the value of the terminal
// atom. A missing path yields ErrNotFound; an existing atom without a
// value yields (nil, false, nil). Only value-returning lookups touch the
// atom's access metadata.
//
// The returned slice is the atom's live buffer, callers must copy it
// before handing it out.
func (t *Trie) Get(segments []string) ([]byte, bool, error) {
	a, ok := t.Resolve(segments)
	if !ok {
		return nil, false, ErrNotFound
	}
	if !a.HasValue {
		return nil, false, nil
	}

	a.Touch()
	return a.Value, true, nil
}

// Delete removes the atom at the segment path together with its whole
// subtree. The atom is detached from its parent's child index first, only
// then is the subtree released. Missing paths yield ErrNotFound.
func (t *Trie) Delete(segments []string) error {
	if len(segments) == 0 {
		return ErrNotFound
	}

	parent, ok := t.Resolve(segments[:len(segments)-1])
	if !ok {
		return ErrNotFound
	}

	target, ok := parent.DetachChild(segments[len(segments)-1])
	if !ok {
		return ErrNotFound
	}

	t.destroySubtree(target)
	return nil
}

// Destroy releases the whole trie including its root sentinel.
func (t *Trie) Destroy() {
	if t.Root == nil {
		return
	}
	t.destroySubtree(t.Root)
	t.Root = nil
}

// destroySubtree releases root and everything below it without recursion.
// Atoms are collected into an explicit work list and released in reverse
// collection order, so children are always destroyed before their parents.
func (t *Trie) destroySubtree(root *Atom) {
	work := []*Atom{root}
	for i := 0; i < len(work); i++ {
		for _, child := range work[i].Children() {
			work = append(work, child)
		}
	}

	for i := len(work) - 1; i >= 0; i-- {
		a := work[i]
		a.children = nil
		DestroyAtom(t.pool, a)
	}
}

// Walk visits every atom below the root sentinel (the sentinel itself is
// skipped) in unspecified order. Used for statistics collection.
func (t *Trie) Walk(fn func(a *Atom)) {
	if t.Root == nil {
		return
	}

	work := make([]*Atom, 0, t.Root.NumChildren())
	for _, child := range t.Root.Children() {
		work = append(work, child)
	}

	for i := 0; i < len(work); i++ {
		fn(work[i])
		for _, child := range work[i].Children() {
			work = append(work, child)
		}
	}
}

// AtomCount returns the number of atoms below the root sentinel.
func (t *Trie) AtomCount() int {
	count := 0
	t.Walk(func(*Atom) { count++ })
	return count
}

// ValueCount returns the number of atoms below the root sentinel that
// currently hold a value.
func (t *Trie) ValueCount() int {
	count := 0
	t.Walk(func(a *Atom) {
		if a.HasValue {
			count++
		}
	})
	return count
}
