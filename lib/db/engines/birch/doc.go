// Package birch implements a hierarchical key-value database (KVDB) built on
// a trie of interned key segments. It provides a complete implementation of
// the db.KVDB interface with a focus on structural sharing, predictable
// memory accounting, and access-aware key placement.
//
// The package focuses on:
//   - Hierarchical keys ("user:1001:name") stored as paths in a trie, with
//     flat keys ("counter") stored directly as single atoms
//   - Deduplication of key segment text through a reference-counted intern
//     pool, so a segment like "name" is stored once no matter how many keys
//     use it
//   - A two-tier keyspace (primary and secondary) with automatic promotion
//     of entries from the secondary tier on access
//   - Byte-exact memory accounting against an optional budget, rejecting
//     writes that would exceed it
//   - Access metadata (access counts, recency) for external demotion and
//     eviction policies
//
// Key Components:
//
//   - birchImpl: The central database structure implementing db.KVDB. It
//     validates and tokenizes keys, routes each operation to the primary or
//     secondary tier, and enforces the promotion and supersede rules. All
//     operations run under a single engine-wide lock: reads that update
//     access metadata take it exclusively, pure probes share it.
//
//   - KeyspaceTable / Entry: One table per tier, mapping a top-level key to
//     an Entry that is either a single flat atom or a whole namespace trie.
//     The kind of an entry is fixed at creation, a key changes kind only by
//     being superseded.
//
//   - Trie: The per-namespace tree rooted at a sentinel atom with an empty
//     segment. The sentinel never carries a value; the segments below it
//     spell out the key paths of the namespace.
//
//   - Atom: One node of a trie (or one flat entry). An atom interns its
//     segment text, optionally owns a value buffer, and tracks access count
//     and timestamps. Access counts saturate instead of wrapping.
//
//   - InternPool: The reference-counted string store behind all segment
//     text. Interning an existing string bumps its count and returns the
//     same handle; releasing the last reference evicts the buffer and
//     returns its bytes to the budget.
//
//   - MemBudget: The byte ledger shared by the pool and the atoms. Every
//     value buffer, segment buffer, and per-object overhead is reserved
//     before it is kept and released when its owner goes away.
//
// Internal Mechanisms:
//
//   - Key Classification: The first delimiter occurrence splits a key into
//     namespace and path; keys without a delimiter are flat. The path is
//     tokenized at each delimiter and empty segments are dropped, so
//     "user:1001:name", "user:1001::name" and "user:1001:name:" all address
//     the same trie path. A key that tokenizes to an empty namespace or to
//     zero segments is rejected as invalid.
//
//   - Tier Routing and Promotion: Lookups consult the primary table first
//     and fall back to the secondary table. Any operation that resolves an
//     entry of the matching kind through the secondary tier moves that
//     entry to the primary tier, on reads exactly like on writes. Nothing
//     in the engine moves entries back down; demotion is the job of
//     external policies built on the exposed access metadata.
//
//   - Supersede, Not Merge: A flat write to a key that currently names a
//     namespace (or the reverse) releases the old entry entirely and
//     creates a fresh one of the new kind. The two kinds never coexist
//     under one spelling and are never merged.
//
//   - Deletion Order: Deleting a namespaced key detaches the terminal atom
//     from its parent first and only then releases the detached subtree,
//     children before parents. Concurrent readers can therefore never
//     observe a partially deleted subtree through the trie.
//
//   - Memory Accounting: Writes reserve bytes before storing anything.
//     When the budget is exhausted mid-operation, the write fails with an
//     out-of-memory error but is not rolled back: path atoms created before
//     the failure remain in place as valueless nodes. The intern pool
//     guarantees that failed reservations leave its reference counts
//     unchanged.
//
// The database intentionally has no background goroutines: all bookkeeping
// happens inline under the engine lock, which keeps the memory ledger exact
// at every point in time. GetInfo walks both tiers and reports entry and
// atom counts, value size estimates, intern pool statistics, the
// per-namespace size distribution, and the coldest tracked key.
//
// This implementation offers several advantages:
//   - Shared prefixes of hierarchical keys are stored once
//   - Subtree deletion frees an entire key range in one operation
//   - Memory usage is accounted exactly, not sampled
//   - Hot keys gravitate to the primary tier without manual placement
//
// The birch package is designed to serve as a backend for applications with
// naturally hierarchical key spaces, such as per-user session data,
// configuration trees, and routing tables.
package birch
