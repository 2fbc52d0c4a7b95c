package internal

import "errors"

// --------------------------------------------------------------------------
// Sentinel Errors
// --------------------------------------------------------------------------

// Sentinel errors returned by the data structures in this package. The birch
// engine wraps them into typed errors carrying the affected key.
var (
	// ErrNotFound is returned when a segment path does not resolve to an atom.
	ErrNotFound = errors.New("not found")
	// ErrOutOfMemory is returned when an allocation would exceed the memory budget.
	ErrOutOfMemory = errors.New("out of memory")
)

// --------------------------------------------------------------------------
// Memory Budget
// --------------------------------------------------------------------------

// Estimated bookkeeping overhead per allocation, in bytes. The values cover
// the Go-side struct and map slot headers so the budget tracks approximate
// real consumption rather than only payload bytes.
const (
	AtomOverhead   = 112 // Atom struct + child map slot
	InternOverhead = 48  // InternedString struct + pool map slot
)

// MemBudget tracks the approximate number of bytes held by an engine
// instance and rejects reservations once a configured limit is reached.
// A limit of 0 disables the check; usage is tracked either way.
//
// Note: This implementation is not thread-safe, callers must synchronize
// access externally.
type MemBudget struct {
	limit uint64
	used  uint64
}

// NewMemBudget creates a budget with the given byte limit (0 = unlimited).
func NewMemBudget(limit uint64) *MemBudget {
	return &MemBudget{limit: limit}
}

// Reserve accounts n additional bytes. If the reservation would exceed the
// limit, nothing is accounted and ErrOutOfMemory is returned.
func (b *MemBudget) Reserve(n uint64) error {
	if b.limit != 0 && b.used+n > b.limit {
		return ErrOutOfMemory
	}
	b.used += n
	return nil
}

// Release returns n bytes to the budget. Releasing more than is currently
// used indicates an accounting bug and panics.
func (b *MemBudget) Release(n uint64) {
	if n > b.used {
		panic("membudget: released more bytes than reserved")
	}
	b.used -= n
}

// Used returns the number of currently accounted bytes.
func (b *MemBudget) Used() uint64 { return b.used }

// Limit returns the configured byte limit (0 = unlimited).
func (b *MemBudget) Limit() uint64 { return b.limit }
