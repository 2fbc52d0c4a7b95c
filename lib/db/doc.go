// Package db provides a standardized interface for key-value database implementations.
// It defines a comprehensive KVDB interface that allows for consistent interaction
// with various database backends while abstracting implementation details.
//
// The package focuses on:
//   - A unified interface for key-value operations
//   - Hierarchical keys addressed through a configurable delimiter
//   - Feature discovery through capability flags
//   - Typed error kinds shared by all implementations
//   - Comprehensive metadata reporting
//
// Key Components:
//
//   - KVDB Interface: The core interface that all database implementations must satisfy.
//     It provides lifecycle methods (Init, Teardown), basic operations
//     (Set, Get, Has, Delete), specialized operations (SetIfUnset),
//     capability discovery (SupportsFeature), and metadata retrieval (GetInfo).
//
//   - Feature Flags: The Feature type defines capability flags that implementations
//     can advertise through the SupportsFeature method. This allows clients to
//     discover supported operations at runtime.
//
//   - Implementation Identifiers: The Implementation type provides string constants
//     for different database backends (currently "birch").
//
//   - Error Kinds: The Error type pairs a RetCode (InvalidKey, KeyNotFound,
//     OutOfMemory, NotInitialized) with a message. Implementations return these
//     typed errors so callers can branch on the failure kind instead of parsing
//     message strings.
//
//   - Database Information: The DatabaseInfo structure provides standardized
//     reporting on database state, including size statistics, implementation type,
//     and implementation-specific metadata. Note: For most implementations all
//     size statistics will be estimated since a precise calculation can be
//     expensive.
//
// This interface-driven approach allows applications to:
//   - Swap database implementations without code changes
//   - Detect unsupported operations up front instead of failing mid-call
//   - Maintain consistent behavior across different storage backends
//   - Collect standardized metrics for monitoring and management
//
// Note on Key Structure:
//   - Keys are plain strings. A key without the implementation's delimiter
//     (default ':') addresses a flat entry; a key containing the delimiter is
//     split into a namespace (the text before the first delimiter) and a
//     segment path stored hierarchically below it.
//   - Empty segments are dropped during tokenization. A key that tokenizes to
//     zero segments, and a key whose namespace is empty (leading delimiter),
//     are rejected with an InvalidKey error.
//   - Deleting a key removes everything stored below it as well; a namespace
//     key and a flat key of the same spelling address the same table slot and
//     the more recent write supersedes the older entry.
//
// Note on the Get Result:
//   - Get distinguishes three outcomes. A found value is returned as
//     (value, true, nil). A key that addresses an existing hierarchical path
//     element without a value yields (nil, false, nil). A key that does not
//     resolve at all yields a KeyNotFound error. Callers that only need the
//     coarse exists/missing distinction can treat the first two alike.
//
// Note on Lifecycle:
//   - Implementations start uninitialized. Init must be called exactly once
//     before data operations; Teardown releases all storage and returns the
//     database to the uninitialized state. Data operations in the
//     uninitialized state fail with a NotInitialized error rather than
//     panicking, so misuse is observable to callers and tests.
//
// Related Packages:
//
// The engines/birch package (github.com/ValentinKolb/tKV/lib/db/engines/birch) provides
// an implementation of the KVDB interface backed by per-namespace tries over a
// shared string-interning pool. It features a two-tier keyspace with automatic
// promotion of accessed entries, per-entry access statistics, and an optional
// memory budget that bounds the total bytes held by the engine.
//
// The util package (github.com/ValentinKolb/tKV/lib/db/util) provides complementary
// tools for working with db.KVDB implementations:
//   - SplitKey / SplitSegments: Key tokenization helpers shared by engines
//   - SizeHistogram: Utilities for analyzing data size distributions
//   - MapHeap: A keyed priority queue used to track entry access recency
//   - LockFreeMPSC: A lock-free multi-producer single-consumer queue for concurrent operations
//
// The testing package (github.com/ValentinKolb/tKV/lib/db/testing) provides
// standardized tests and benchmarks for database implementations that satisfy the db.KVDB interface.
//   - RunKVDBTests: Runs a standardized test suite to validate implementations
//   - RunKVDBBenchmarks: Provides performance benchmarks for comparing implementations
package db
