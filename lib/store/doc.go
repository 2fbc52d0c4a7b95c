// Package store defines the storage abstraction the rest of the system is
// written against. An IStore adds lifecycle management and uniform error
// reporting on top of a raw db.KVDB engine.
//
// Key Components:
//
//   - IStore: the operation set callers use (Get, Set, SetE, Delete, Has,
//     Info). Engine errors pass through with their typed codes intact;
//     failures originating at the store layer use this package's Error type
//     so both kinds stay distinguishable.
//
//   - Error: a code-plus-message error that callers can branch on instead
//     of string matching.
//
//   - DBFactory: constructors take a factory rather than a finished engine,
//     which keeps engine selection and configuration out of the store.
//
// Implementations:
//
//	lstore ("github.com/ValentinKolb/tKV/lib/store/lstore") is the local,
//	single-node implementation. It owns its engine's Init and Teardown and
//	serves all operations in-process.
//
//	rpc/client provides the remote counterpart with the same interface, so
//	code written against IStore runs unchanged against a remote server.
//
//	To observe store traffic (callbacks, metrics), wrap the injected db.KVDB
//	with the hooks package before handing the factory to the store.
package store
