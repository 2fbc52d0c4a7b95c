package hooks

import "time"

// Operation identifies the database operation an event originated from.
type Operation uint8

const (
	OpSet Operation = iota
	OpSetIfUnset
	OpGet
	OpDelete
	OpHas
)

// String returns the human-readable name of the operation
func (op Operation) String() string {
	switch op {
	case OpSet:
		return "set"
	case OpSetIfUnset:
		return "setifunset"
	case OpGet:
		return "get"
	case OpDelete:
		return "delete"
	case OpHas:
		return "has"
	default:
		return "unknown"
	}
}

// Phase tells whether an event fired before or after the engine call.
type Phase uint8

const (
	PhaseBefore Phase = iota
	PhaseAfter
)

// String returns the human-readable name of the phase
func (p Phase) String() string {
	switch p {
	case PhaseBefore:
		return "before"
	case PhaseAfter:
		return "after"
	default:
		return "unknown"
	}
}

// Event describes one database operation. Every operation emits two events,
// one per phase: the PhaseBefore event carries only Phase, Op and Key, the
// PhaseAfter event additionally carries the outcome.
type Event struct {
	Phase    Phase
	Op       Operation
	Key      string
	Found    bool          // result of value-returning operations (PhaseAfter only)
	Err      error         // nil on success (PhaseAfter only)
	Duration time.Duration // wall time of the operation (PhaseAfter only)
}

// HookFunc is a callback invoked for database events. Hooks run inline on
// the operation path and must not block; decouple slow consumers with an
// AsyncSink.
type HookFunc func(e Event)

// IHookManager dispatches events to registered hooks.
type IHookManager interface {
	// Register adds a hook for a single phase of a single operation. Hooks
	// for the same phase and operation run synchronously in registration
	// order.
	Register(phase Phase, op Operation, fn HookFunc)

	// RegisterAll adds a hook for the given phase of every operation.
	RegisterAll(phase Phase, fn HookFunc)

	// Dispatch invokes all hooks registered for the event's phase and
	// operation.
	Dispatch(e Event)
}
