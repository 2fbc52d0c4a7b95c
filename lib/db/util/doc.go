// Package util collects small building blocks used by the database engines.
//
// It currently contains:
//   - key tokenization helpers shared by the delimiter-aware engines
//   - statistics types, including a bucketed SizeHistogram for tracking
//     value size distributions cheaply
//   - MapHeap, a keyed priority queue used for recency tracking
//   - LockFreeMPSC, a lock-free multi-producer single-consumer queue that
//     feeds asynchronous pipelines without blocking writers
//
// Nothing here depends on a concrete engine, so the pieces can be reused by
// any db.KVDB implementation.
package util
