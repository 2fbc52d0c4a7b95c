package internal

import "fmt"

// --------------------------------------------------------------------------
// Interned String Type
// --------------------------------------------------------------------------

// InternedString is a reference-counted handle to a deduplicated string
// buffer. Handles are compared by pointer identity: two Intern calls with
// equal text yield the exact same handle.
//
// The reference count is manipulated exclusively by the owning InternPool.
type InternedString struct {
	text string
	refs uint64
}

// Text returns the interned text.
func (s *InternedString) Text() string { return s.text }

// Refs returns the current reference count.
func (s *InternedString) Refs() uint64 { return s.refs }

func (s *InternedString) String() string {
	return fmt.Sprintf("{Text: %q, Refs: %d}", s.text, s.refs)
}

// --------------------------------------------------------------------------
// Intern Pool
// --------------------------------------------------------------------------

// InternPool deduplicates key segments. Every atom holds its segment as a
// handle into the pool; equal segment texts share a single buffer for the
// lifetime of the engine.
//
// Note: This implementation is not thread-safe, callers must synchronize
// access externally.
type InternPool struct {
	entries map[string]*InternedString
	bytes   uint64 // total bytes of unique interned text
	budget  *MemBudget
}

// NewInternPool creates an empty pool drawing from the given budget.
func NewInternPool(budget *MemBudget) *InternPool {
	return &InternPool{
		entries: make(map[string]*InternedString),
		budget:  budget,
	}
}

// Intern returns the shared handle for text, creating it if necessary.
// A fresh handle starts with a reference count of one; interning already
// present text increments the count of the existing handle.
func (p *InternPool) Intern(text string) (*InternedString, error) {
	if s, ok := p.entries[text]; ok {
		s.refs++
		return s, nil
	}

	if err := p.budget.Reserve(uint64(len(text)) + InternOverhead); err != nil {
		return nil, err
	}

	s := &InternedString{text: text, refs: 1}
	p.entries[text] = s
	p.bytes += uint64(len(text))
	return s, nil
}

// Release decrements the reference count of the handle. When the count
// reaches zero the buffer is evicted from the pool and its bytes are
// returned to the budget. Releasing a handle whose count is already zero
// is a logic error and panics.
func (p *InternPool) Release(s *InternedString) {
	if s.refs == 0 {
		panic(fmt.Sprintf("intern pool: release of dead handle %q", s.text))
	}

	s.refs--
	if s.refs > 0 {
		return
	}

	delete(p.entries, s.text)
	p.bytes -= uint64(len(s.text))
	p.budget.Release(uint64(len(s.text)) + InternOverhead)
}

// Lookup returns the handle for text without modifying any reference count.
func (p *InternPool) Lookup(text string) (*InternedString, bool) {
	s, ok := p.entries[text]
	return s, ok
}

// Len returns the number of unique strings currently interned.
func (p *InternPool) Len() int { return len(p.entries) }

// UniqueBytes returns the total size of all unique interned buffers.
func (p *InternPool) UniqueBytes() uint64 { return p.bytes }
