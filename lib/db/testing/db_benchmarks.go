package testing

import (
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/ValentinKolb/tKV/lib/db"
)

// RunKVDBBenchmarks measures the throughput of the core operations of a KVDB
// implementation. Every sub-benchmark runs on a fresh database built by the
// factory and drives it from all benchmark goroutines at once.
func RunKVDBBenchmarks(b *testing.B, name string, factory DBFactory) {
	benchmarks := []struct {
		name string
		fn   func(*testing.B, db.KVDB)
	}{
		{"Set", benchmarkSet},
		{"SetExisting", benchmarkSetExisting},
		{"SetNamespaced", benchmarkSetNamespaced},
		{"SetLargeValue", benchmarkSetLargeValue},
		{"Get", benchmarkGet},
		{"GetNamespaced", benchmarkGetNamespaced},
		{"Delete", benchmarkDelete},
		{"Has", benchmarkHas},
		{"Has(not)", benchmarkHasNot},
		{"SetIfUnset", benchmarkSetIfUnset},
		{"MixedUsage", benchmarkMixedUsage},
	}

	b.Run(name, func(b *testing.B) {
		for _, bm := range benchmarks {
			b.Run(bm.name, func(b *testing.B) {
				database := mustInit(b, factory)
				b.Cleanup(database.Teardown)
				bm.fn(b, database)
			})
		}
	})
}

// --------------------------------------------------------------------------
// Helper functions
// --------------------------------------------------------------------------

// seedKeys writes n keys following the printf pattern (one %d verb) and
// returns them in order. A failed write aborts the benchmark.
func seedKeys(b *testing.B, database db.KVDB, pattern string, n int) []string {
	b.Helper()

	keys := make([]string, n)
	for i := 0; i < n; i++ {
		keys[i] = fmt.Sprintf(pattern, i)
		if err := database.Set(keys[i], benchValue(i)); err != nil {
			b.Fatalf("Failed to seed key %s: %v", keys[i], err)
		}
	}
	return keys
}

func benchValue(i int) []byte {
	return []byte(fmt.Sprintf("bench-value-%d", i))
}

// --------------------------------------------------------------------------
// Benchmark functions
// --------------------------------------------------------------------------

// benchmarkSet writes flat keys, each goroutine counts for itself so some
// keys are written more than once
func benchmarkSet(b *testing.B, database db.KVDB) {
	requireFeature(b, database, db.FeatureSet)

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		i := 0
		for pb.Next() {
			database.Set(fmt.Sprintf("bench-key-%d", i), benchValue(i))
			i++
		}
	})
}

// benchmarkSetExisting overwrites keys that already hold a value
func benchmarkSetExisting(b *testing.B, database db.KVDB) {
	requireFeature(b, database, db.FeatureSet)

	keys := seedKeys(b, database, "bench-key-%d", 10000)

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		i := 0
		for pb.Next() {
			database.Set(keys[i%len(keys)], benchValue(i))
			i++
		}
	})
}

// benchmarkSetNamespaced writes hierarchical keys sharing one namespace
func benchmarkSetNamespaced(b *testing.B, database db.KVDB) {
	requireFeature(b, database, db.FeatureSet)
	requireFeature(b, database, db.FeatureNamespaces)

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		i := 0
		for pb.Next() {
			database.Set(fmt.Sprintf("bench:%d:value", i), benchValue(i))
			i++
		}
	})
}

func benchmarkSetLargeValue(b *testing.B, database db.KVDB) {
	requireFeature(b, database, db.FeatureSet)

	// one shared 1 MB buffer, the benchmark measures Set, not allocation
	value := make([]byte, 1<<20)

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		i := 0
		for pb.Next() {
			database.Set(fmt.Sprintf("bench-key-%d", i), value)
			i++
		}
	})
}

func benchmarkGet(b *testing.B, database db.KVDB) {
	requireFeature(b, database, db.FeatureSet)
	requireFeature(b, database, db.FeatureGet)

	keys := seedKeys(b, database, "bench-key-%d", 10000)

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		i := 0
		for pb.Next() {
			database.Get(keys[i%len(keys)])
			i++
		}
	})
}

func benchmarkGetNamespaced(b *testing.B, database db.KVDB) {
	requireFeature(b, database, db.FeatureSet)
	requireFeature(b, database, db.FeatureGet)
	requireFeature(b, database, db.FeatureNamespaces)

	keys := seedKeys(b, database, "bench:%d:value", 10000)

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		i := 0
		for pb.Next() {
			database.Get(keys[i%len(keys)])
			i++
		}
	})
}

// benchmarkDelete hands out indices through a shared counter so every seeded
// key is deleted roughly once before the range wraps around
func benchmarkDelete(b *testing.B, database db.KVDB) {
	requireFeature(b, database, db.FeatureSet)
	requireFeature(b, database, db.FeatureDelete)

	numKeys := 100000
	if b.N < numKeys {
		numKeys = b.N
	}
	keys := seedKeys(b, database, "bench-key-%d", numKeys)

	var next int64

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			idx := int(atomic.AddInt64(&next, 1)-1) % numKeys
			database.Delete(keys[idx])
		}
	})
}

func benchmarkHas(b *testing.B, database db.KVDB) {
	requireFeature(b, database, db.FeatureSet)
	requireFeature(b, database, db.FeatureHas)

	keys := seedKeys(b, database, "bench-key-%d", 10000)

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		i := 0
		for pb.Next() {
			database.Has(keys[i%len(keys)])
			i++
		}
	})
}

// benchmarkHasNot measures the miss path, the key is never written
func benchmarkHasNot(b *testing.B, database db.KVDB) {
	requireFeature(b, database, db.FeatureHas)

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			database.Has("bench-missing-key")
		}
	})
}

// benchmarkSetIfUnset runs against a keyspace where every second key exists,
// so hits and misses are measured together
func benchmarkSetIfUnset(b *testing.B, database db.KVDB) {
	requireFeature(b, database, db.FeatureSet)
	requireFeature(b, database, db.FeatureSetIfUnset)

	const numKeys = 10000
	for i := 0; i < numKeys; i += 2 {
		if err := database.Set(fmt.Sprintf("bench-key-%d", i), benchValue(i)); err != nil {
			b.Fatalf("Failed to seed key %d: %v", i, err)
		}
	}

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		i := 0
		for pb.Next() {
			database.SetIfUnset(fmt.Sprintf("bench-key-%d", i%numKeys), benchValue(i))
			i++
		}
	})
}

// benchmarkMixedUsage interleaves reads, writes, deletes and lookups over a
// pre-populated mix of flat and hierarchical keys
func benchmarkMixedUsage(b *testing.B, database db.KVDB) {
	requireFeature(b, database, db.FeatureSet)
	requireFeature(b, database, db.FeatureGet)
	requireFeature(b, database, db.FeatureDelete)
	requireFeature(b, database, db.FeatureHas)
	requireFeature(b, database, db.FeatureNamespaces)

	numKeys := 100000
	if b.N < numKeys {
		numKeys = b.N
	}

	keys := make([]string, numKeys)
	for i := 0; i < numKeys; i++ {
		if i%2 == 0 {
			keys[i] = fmt.Sprintf("bench-key-%d", i)
		} else {
			keys[i] = fmt.Sprintf("bench:%d:value", i)
		}
		if err := database.Set(keys[i], benchValue(i)); err != nil {
			b.Fatalf("Failed to seed key %s: %v", keys[i], err)
		}
	}

	var next int64

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		local := 0
		for pb.Next() {
			idx := int(atomic.AddInt64(&next, 1)-1) % numKeys

			// every tenth operation touches a key outside the seeded set
			key := keys[idx]
			if local%10 == 0 {
				key = fmt.Sprintf("bench-new-%d", local)
			}

			switch local % 5 {
			case 0, 4:
				database.Get(key)
			case 1:
				database.Set(key, benchValue(local))
			case 2:
				database.Delete(key)
			case 3:
				database.Has(key)
			}
			local++
		}
	})
}
