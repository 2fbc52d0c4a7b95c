// Package hooks provides an event layer for observing database operations
// without coupling the storage engines to any monitoring stack.
//
// The package focuses on:
//   - A decorator (NewHookedDB) that wraps any db.KVDB and emits an Event
//     before and after every data operation
//   - Ordered, synchronous dispatch of events to registered callbacks
//   - Optional decoupling of slow consumers through a lock-free async sink
//   - A ready-made Prometheus metrics consumer
//
// Key Components:
//
//   - Event: A record of one operation, carrying the phase (before or
//     after the engine call), the operation kind and the key. After events
//     additionally carry the outcome (found flag and error) and the
//     measured duration.
//
//   - IHookManager: The dispatcher. Hooks are registered per phase and
//     operation (or for all operations of a phase) and run synchronously in
//     registration order on the goroutine that performed the operation.
//
//   - NewHookedDB: The db.KVDB decorator. Data operations are bracketed by
//     a before and an after event, lifecycle and metadata methods pass
//     through unobserved. The decorator composes with any engine and any
//     store built on top of it.
//
//   - AsyncSink: Moves event consumption onto a dedicated goroutine backed
//     by the util.LockFreeMPSC queue. Use it for hooks that write to the
//     network or disk; Close drains pending events before returning.
//
//   - NewMetricsHook: Exports operation counts, error counts, and latency
//     summaries on the global VictoriaMetrics set, ready to be served by an
//     HTTP endpoint via metrics.WritePrometheus.
//
// Usage Example:
//
//	mgr := hooks.NewHookManager()
//	mgr.RegisterAll(hooks.PhaseAfter, hooks.NewMetricsHook("sessions"))
//
//	database := hooks.NewHookedDB(birch.NewBirchDB(nil), mgr)
//	store, err := lstore.NewLocalStore(func() db.KVDB { return database })
//
// Hooks observe single-node traffic only: they see the operations of the
// process they run in.
package hooks
