// Package testing holds the shared conformance suite and benchmarks for
// db.KVDB implementations.
//
// RunKVDBTests drives an implementation through the full interface
// contract: lifecycle handling, hierarchical keys, kind collisions, typed
// error codes and concurrent access. RunKVDBBenchmarks measures the
// throughput of the common operations so different engines can be compared
// on equal terms.
//
// Both entry points take a factory instead of an instance because the suite
// creates and tears down fresh databases as it goes:
//
//	factory := func() db.KVDB {
//		return NewMyDatabase()
//	}
//
//	testing.RunKVDBTests(t, "MyDatabase", factory)
//	testing.RunKVDBBenchmarks(b, "MyDatabase", factory)
package testing
