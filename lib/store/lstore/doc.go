// Package lstore is the local store.IStore implementation. It runs an
// injected db.KVDB engine in-process and keeps everything in memory;
// nothing survives a restart.
//
// The store does three things beyond delegating to the engine:
//
//   - Lifecycle: NewLocalStore calls Init on the engine it builds via the
//     factory, Close calls Teardown. Callers never touch the engine's
//     lifecycle themselves.
//
//   - Feature checks: before an operation runs, the store asks the engine
//     via SupportsFeature whether it can serve it, and returns a typed
//     UNSUPPORTED error instead of undefined behavior when it cannot.
//
//   - Error normalization: engine errors keep their codes, store-level
//     failures are reported with the store package's Error type.
//
// Thread safety follows the engine: the wrapper adds no shared mutable
// state of its own.
//
// Usage Example:
//
//	factory := func() db.KVDB { return birch.NewBirchDB(birch.DefaultOptions()) }
//	store, err := lstore.NewLocalStore(factory)
//
//	err = store.Set("session:123:token", sessionData)
//	value, exists, err := store.Get("session:123:token")
//
// Good for single-node deployments, tests and in-process caching; anything
// that must outlive the process needs a different backend.
package lstore
