package internal

import (
	"math"
	"time"
)

// --------------------------------------------------------------------------
// Atom Type (tree node with optional value and access metadata)
// --------------------------------------------------------------------------

// Atom is a single node of the storage tree. It holds an interned key
// segment, an optional owned value, per-node access metadata and a child
// index keyed by segment text.
//
// The segment handle is owned by the atom: creating the atom consumes one
// pool reference, destroying it releases that reference again.
type Atom struct {
	Segment      *InternedString
	Value        []byte
	HasValue     bool
	AccessCount  uint64 // saturates at the maximum instead of wrapping
	LastAccessed int64  // unix nano timestamp
	CreatedAt    int64  // unix nano timestamp
	children     map[string]*Atom
}

// NewAtom creates an atom wrapping an already interned segment handle.
func NewAtom(segment *InternedString) *Atom {
	now := time.Now().UnixNano()
	return &Atom{
		Segment:      segment,
		LastAccessed: now,
		CreatedAt:    now,
	}
}

// Touch records a successful value lookup on this atom.
// The access count saturates instead of wrapping around.
func (a *Atom) Touch() {
	if a.AccessCount != math.MaxUint64 {
		a.AccessCount++
	}
	a.LastAccessed = time.Now().UnixNano()
}

// Child returns the child atom stored under the given segment text.
func (a *Atom) Child(segment string) (*Atom, bool) {
	c, ok := a.children[segment]
	return c, ok
}

// PutChild attaches child below this atom. The index key is taken from the
// text of the child's own segment handle, so index and handle can never
// diverge.
func (a *Atom) PutChild(child *Atom) {
	if a.children == nil {
		a.children = make(map[string]*Atom)
	}
	a.children[child.Segment.Text()] = child
}

// DetachChild unlinks and returns the child for the given segment text.
// The child itself is not destroyed.
func (a *Atom) DetachChild(segment string) (*Atom, bool) {
	c, ok := a.children[segment]
	if ok {
		delete(a.children, segment)
	}
	return c, ok
}

// Children returns the live child index of the atom.
// Callers must not modify the returned map.
func (a *Atom) Children() map[string]*Atom { return a.children }

// NumChildren returns the number of direct children.
func (a *Atom) NumChildren() int { return len(a.children) }

// --------------------------------------------------------------------------
// Atom Allocation Helpers (budget-aware)
// --------------------------------------------------------------------------

// NewStoredAtom interns the segment text and creates an atom for it,
// accounting both the buffer and the atom overhead against the budget.
// On failure nothing stays allocated.
func NewStoredAtom(pool *InternPool, segment string) (*Atom, error) {
	handle, err := pool.Intern(segment)
	if err != nil {
		return nil, err
	}
	if err := pool.budget.Reserve(AtomOverhead); err != nil {
		pool.Release(handle)
		return nil, err
	}
	return NewAtom(handle), nil
}

// SetAtomValue replaces the value of an atom with budget-correct
// accounting. On a failed reservation the previous value stays in place.
// The caller must pass a slice it owns.
func SetAtomValue(pool *InternPool, a *Atom, value []byte) error {
	var old uint64
	if a.HasValue {
		old = uint64(len(a.Value))
	}

	if n := uint64(len(value)); n > old {
		if err := pool.budget.Reserve(n - old); err != nil {
			return err
		}
	} else {
		pool.budget.Release(old - n)
	}

	a.Value = value
	a.HasValue = true
	return nil
}

// DestroyAtom releases everything a detached atom owns: its value bytes,
// its overhead and its segment handle. Children must be destroyed
// separately before the parent.
func DestroyAtom(pool *InternPool, a *Atom) {
	if a.HasValue {
		pool.budget.Release(uint64(len(a.Value)))
		a.Value = nil
		a.HasValue = false
	}
	pool.budget.Release(AtomOverhead)
	pool.Release(a.Segment)
	a.Segment = nil
}
