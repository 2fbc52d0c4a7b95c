package birch

import (
	"fmt"
	"sync"
	"time"

	"github.com/ValentinKolb/tKV/lib/db"
	"github.com/ValentinKolb/tKV/lib/db/engines/birch/internal"
	"github.com/ValentinKolb/tKV/lib/db/util"
)

// --------------------------------------------------------------------------
// Constants
// --------------------------------------------------------------------------

// Constants for database behavior and structure
const (
	defaultDelimiter = ':' // Default key segment delimiter
)

// --------------------------------------------------------------------------
// Core Birch database structure
// --------------------------------------------------------------------------

// birchImpl implements a trie-backed database with a two-tier keyspace
type birchImpl struct {
	opts DBOptions

	// mu guards everything below it. The engine uses one exclusive lock
	// for all mutating operations; probes that touch no metadata share it.
	mu          sync.RWMutex
	initialized bool
	budget      *internal.MemBudget
	pool        *internal.InternPool
	primary     *internal.KeyspaceTable
	secondary   *internal.KeyspaceTable
	recency     *util.MapHeap // access recency of primary tier entries
}

// DBOptions configures the birchImpl behavior during initialization
type DBOptions struct {
	Delimiter      byte   // Key segment delimiter (0 = use default: ':')
	MaxMemoryBytes uint64 // Memory budget in bytes (0 = unlimited)
}

// DefaultOptions returns the default birchImpl options
func DefaultOptions() *DBOptions {
	return &DBOptions{
		Delimiter:      defaultDelimiter,
		MaxMemoryBytes: 0, // unlimited
	}
}

// --------------------------------------------------------------------------
// Initialization and Setup
// --------------------------------------------------------------------------

// NewBirchDB creates a new BirchDB instance with the specified options
// (optional). The returned database is not yet initialized: Init must be
// called before any data operation.
//
// Thread-safety: This function is not thread-safe and should only be called
// once during initialization.
func NewBirchDB(opts *DBOptions) db.KVDB {

	// Generate default options if not provided
	if opts == nil {
		opts = DefaultOptions()
	}
	if opts.Delimiter == 0 {
		opts.Delimiter = defaultDelimiter
	}

	return &birchImpl{opts: *opts}
}

// Init allocates the intern pool, the two keyspace tables and the recency
// queue. Calling Init on an already initialized database is a no-op.
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (birch *birchImpl) Init() error {
	birch.mu.Lock()
	defer birch.mu.Unlock()

	if birch.initialized {
		return nil
	}

	birch.budget = internal.NewMemBudget(birch.opts.MaxMemoryBytes)
	birch.pool = internal.NewInternPool(birch.budget)
	birch.primary = internal.NewKeyspaceTable()
	birch.secondary = internal.NewKeyspaceTable()
	birch.recency = util.NewMapHeap()
	birch.initialized = true
	return nil
}

// Teardown releases every entry of both tiers (each subtree in
// children-before-parent order) and finally drops the intern pool. The
// database returns to the uninitialized state.
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (birch *birchImpl) Teardown() {
	birch.mu.Lock()
	defer birch.mu.Unlock()

	if !birch.initialized {
		return
	}

	release := func(_ string, e *internal.Entry) bool {
		e.Destroy(birch.pool)
		return true
	}
	birch.primary.Range(release)
	birch.secondary.Range(release)

	birch.primary = nil
	birch.secondary = nil
	birch.pool = nil
	birch.budget = nil
	birch.recency = nil
	birch.initialized = false
}

// --------------------------------------------------------------------------
// Key Routing Helper Functions
// --------------------------------------------------------------------------

// route describes where a validated key points to.
type route struct {
	key        string   // the raw key, for error messages
	namespaced bool     // true if the key addresses a path below a namespace
	topKey     string   // table key: the namespace, or the raw key for flat keys
	segments   []string // segment path below the namespace (nil for flat keys)
}

// classify validates and tokenizes a raw key. The first delimiter splits
// namespace from path; the path is tokenized into non-empty segments.
func (birch *birchImpl) classify(key string) (route, error) {
	if key == "" {
		return route{}, db.NewError(db.RetCInvalidKey, "invalid key: empty key")
	}

	namespace, path, namespaced := util.SplitKey(key, birch.opts.Delimiter)
	if !namespaced {
		return route{key: key, topKey: key}, nil
	}

	if namespace == "" {
		return route{}, db.NewError(db.RetCInvalidKey, fmt.Sprintf("invalid key %q: empty namespace", key))
	}

	segments := util.SplitSegments(path, birch.opts.Delimiter)
	if len(segments) == 0 {
		return route{}, db.NewError(db.RetCInvalidKey, fmt.Sprintf("invalid key %q: no segments after namespace", key))
	}

	return route{key: key, namespaced: true, topKey: namespace, segments: segments}, nil
}

// findEntry returns the entry for topKey from either tier without changing
// anything. fromSecondary reports that the hit came from the secondary tier.
func (birch *birchImpl) findEntry(topKey string) (entry *internal.Entry, fromSecondary, ok bool) {
	if e, found := birch.primary.Get(topKey); found {
		return e, false, true
	}
	if e, found := birch.secondary.Get(topKey); found {
		return e, true, true
	}
	return nil, false, false
}

// promote moves a secondary slot into the primary table and starts recency
// tracking for it. The storage behind the entry does not move. Nothing in
// the engine moves entries the other way, demotion is left to future
// external policies.
func (birch *birchImpl) promote(topKey string) {
	if e, ok := birch.secondary.Remove(topKey); ok {
		birch.primary.Put(topKey, e)
		birch.recency.AddItem(topKey, time.Now().UnixNano())
	}
}

// dropEntry removes the slot for topKey from whichever tier holds it and
// releases the storage behind it.
func (birch *birchImpl) dropEntry(topKey string) bool {
	e, ok := birch.primary.Remove(topKey)
	if !ok {
		e, ok = birch.secondary.Remove(topKey)
	}
	if !ok {
		return false
	}

	e.Destroy(birch.pool)
	birch.recency.RemoveByKey(topKey)
	return true
}

// touchRecency records an access to a primary tier entry.
func (birch *birchImpl) touchRecency(topKey string) {
	birch.recency.AddItem(topKey, time.Now().UnixNano())
}

// --------------------------------------------------------------------------
// Core KVDB Interface Methods - Write Operations
// --------------------------------------------------------------------------

// Set inserts or updates an entry with the given key and value.
// If the key already exists, the old value is overwritten. An existing
// entry of the other kind (flat atom vs. namespace trie) under the same
// spelling is superseded, not merged: its storage is released and a fresh
// entry is written to the primary tier.
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (birch *birchImpl) Set(key string, value []byte) error {
	return birch.setInternal(key, value, false)
}

// SetIfUnset inserts an entry with the given key and value.
// If the key already holds a value, the old value is not updated and no
// error is returned. Unlike Set, this method never supersedes an existing
// entry of the other kind.
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (birch *birchImpl) SetIfUnset(key string, value []byte) error {
	return birch.setInternal(key, value, true)
}

// setInternal is the shared implementation of Set and SetIfUnset.
func (birch *birchImpl) setInternal(key string, value []byte, onlyIfUnset bool) error {
	birch.mu.Lock()
	defer birch.mu.Unlock()

	if !birch.initialized {
		return errNotInitialized()
	}

	r, err := birch.classify(key)
	if err != nil {
		return err
	}

	// Copy value to prevent memory corruption
	valueCopy := make([]byte, len(value))
	copy(valueCopy, value)

	if r.namespaced {
		return birch.setNamespaced(r, valueCopy, onlyIfUnset)
	}
	return birch.setFlat(r, valueCopy, onlyIfUnset)
}

// setFlat upserts an atom entry directly under the raw key in the primary
// table.
func (birch *birchImpl) setFlat(r route, value []byte, onlyIfUnset bool) error {
	entry, fromSecondary, ok := birch.findEntry(r.topKey)

	if ok && onlyIfUnset {
		// the slot is occupied, a conditional set writes nothing.
		// resolving a matching entry still counts as an access.
		if entry.Kind == internal.EntryKindAtom {
			if fromSecondary {
				birch.promote(r.topKey)
			}
			birch.touchRecency(r.topKey)
		}
		return nil
	}

	// an existing flat atom in the primary tier is updated in place
	if ok && !fromSecondary && entry.Kind == internal.EntryKindAtom {
		if err := internal.SetAtomValue(birch.pool, entry.Atom, value); err != nil {
			return birch.wrapStorageErr(err, r.key)
		}
		birch.touchRecency(r.topKey)
		return nil
	}

	// everything else (secondary hit or an entry of the other kind) is
	// superseded: the old storage is released, a fresh atom goes to the
	// primary tier
	if ok {
		birch.dropEntry(r.topKey)
	}

	atom, err := internal.NewStoredAtom(birch.pool, r.topKey)
	if err != nil {
		return birch.wrapStorageErr(err, r.key)
	}
	if err := internal.SetAtomValue(birch.pool, atom, value); err != nil {
		internal.DestroyAtom(birch.pool, atom)
		return birch.wrapStorageErr(err, r.key)
	}

	birch.primary.Put(r.topKey, internal.NewAtomEntry(atom))
	birch.touchRecency(r.topKey)
	return nil
}

// setNamespaced writes a value into the trie below r's namespace, creating
// the namespace entry in the primary tier if it does not exist yet.
func (birch *birchImpl) setNamespaced(r route, value []byte, onlyIfUnset bool) error {
	entry, fromSecondary, ok := birch.findEntry(r.topKey)

	if ok && entry.Kind == internal.EntryKindTrie {
		if fromSecondary {
			birch.promote(r.topKey)
		}
		if onlyIfUnset {
			if atom, resolved := entry.Trie.Resolve(r.segments); resolved && atom.HasValue {
				birch.touchRecency(r.topKey)
				return nil
			}
		}
		if err := entry.Trie.Set(r.segments, value); err != nil {
			return birch.wrapStorageErr(err, r.key)
		}
		birch.touchRecency(r.topKey)
		return nil
	}

	if ok {
		// a flat atom occupies the namespace spelling
		if onlyIfUnset {
			return nil
		}
		birch.dropEntry(r.topKey)
	}

	trie, err := internal.NewTrie(birch.pool)
	if err != nil {
		return birch.wrapStorageErr(err, r.key)
	}
	entry = internal.NewTrieEntry(trie)
	birch.primary.Put(r.topKey, entry)

	// a failed write below leaves the fresh entry (and any path atoms
	// created so far) in place, writes are not transactional
	if err := entry.Trie.Set(r.segments, value); err != nil {
		return birch.wrapStorageErr(err, r.key)
	}
	birch.touchRecency(r.topKey)
	return nil
}

// Delete removes the entry with the specified key together with any
// hierarchical children stored below it. For flat keys the slot is removed
// from whichever tier holds it, regardless of entry kind. For namespaced
// keys the terminal atom is detached from its parent first, then its
// subtree is released; the namespace entry itself stays even if its trie
// becomes empty.
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (birch *birchImpl) Delete(key string) error {
	birch.mu.Lock()
	defer birch.mu.Unlock()

	if !birch.initialized {
		return errNotInitialized()
	}

	r, err := birch.classify(key)
	if err != nil {
		return err
	}

	if !r.namespaced {
		if !birch.dropEntry(r.topKey) {
			return errKeyNotFound(r.key)
		}
		return nil
	}

	entry, fromSecondary, ok := birch.findEntry(r.topKey)
	if !ok || entry.Kind != internal.EntryKindTrie {
		return errKeyNotFound(r.key)
	}
	if fromSecondary {
		birch.promote(r.topKey)
	}

	if err := entry.Trie.Delete(r.segments); err != nil {
		return birch.wrapStorageErr(err, r.key)
	}

	birch.touchRecency(r.topKey)
	return nil
}

// --------------------------------------------------------------------------
// Core KVDB Interface Methods - Query Operations
// --------------------------------------------------------------------------

// Get retrieves the value for an exact key. Resolving an entry through the
// secondary tier promotes it to the primary tier, on the read path exactly
// like on the write path. A flat lookup never resolves a namespace entry
// and vice versa. Only value-returning lookups update access metadata.
//
// The returned slice is a copy and safe to modify.
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (birch *birchImpl) Get(key string) ([]byte, bool, error) {
	birch.mu.Lock()
	defer birch.mu.Unlock()

	if !birch.initialized {
		return nil, false, errNotInitialized()
	}

	r, err := birch.classify(key)
	if err != nil {
		return nil, false, err
	}

	if !r.namespaced {
		entry, fromSecondary, ok := birch.findEntry(r.topKey)
		if !ok || entry.Kind != internal.EntryKindAtom {
			return nil, false, errKeyNotFound(r.key)
		}
		if fromSecondary {
			birch.promote(r.topKey)
		}
		birch.touchRecency(r.topKey)

		if !entry.Atom.HasValue {
			return nil, false, nil
		}
		entry.Atom.Touch()
		return copyValue(entry.Atom.Value), true, nil
	}

	entry, fromSecondary, ok := birch.findEntry(r.topKey)
	if !ok || entry.Kind != internal.EntryKindTrie {
		return nil, false, errKeyNotFound(r.key)
	}
	if fromSecondary {
		birch.promote(r.topKey)
	}
	birch.touchRecency(r.topKey)

	value, found, err := entry.Trie.Get(r.segments)
	if err != nil {
		return nil, false, birch.wrapStorageErr(err, r.key)
	}
	if !found {
		return nil, false, nil
	}
	return copyValue(value), true, nil
}

// Has checks whether a key currently holds a value. This is a pure probe:
// no promotion, no access metadata updates, and it only takes the shared
// lock.
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (birch *birchImpl) Has(key string) (bool, error) {
	birch.mu.RLock()
	defer birch.mu.RUnlock()

	if !birch.initialized {
		return false, errNotInitialized()
	}

	r, err := birch.classify(key)
	if err != nil {
		return false, err
	}

	entry, _, ok := birch.findEntry(r.topKey)
	if !ok {
		return false, nil
	}

	if !r.namespaced {
		return entry.Kind == internal.EntryKindAtom && entry.Atom.HasValue, nil
	}

	if entry.Kind != internal.EntryKindTrie {
		return false, nil
	}
	atom, resolved := entry.Trie.Resolve(r.segments)
	return resolved && atom.HasValue, nil
}

// --------------------------------------------------------------------------
// KVDB Interface Implementation - Features and Metadata
// --------------------------------------------------------------------------

// GetInfo returns statistics about the database. It walks all entries of
// both tiers and should not be called on hot paths.
func (birch *birchImpl) GetInfo() db.DatabaseInfo {
	birch.mu.RLock()
	defer birch.mu.RUnlock()

	supportedFeatures := []db.Feature{
		db.FeatureSet, db.FeatureSetIfUnset,
		db.FeatureGet, db.FeatureDelete, db.FeatureHas,
		db.FeatureNamespaces, db.FeatureTiering,
	}

	if !birch.initialized {
		return db.DatabaseInfo{
			DbType:            db.ImplBirch,
			SupportedFeatures: supportedFeatures,
			Metadata: &struct {
				Info string `json:"info"`
			}{Info: "database not initialized"},
		}
	}

	// collect value sizes and per-namespace atom counts
	histogram := util.NewSizeHistogram()
	var (
		atomCount      int
		valueCount     int
		namespaceSizes []float64
	)

	collect := func(_ string, e *internal.Entry) bool {
		switch e.Kind {
		case internal.EntryKindAtom:
			atomCount++
			valueCount++
			histogram.AddSample(len(e.Atom.Value))
		case internal.EntryKindTrie:
			n := 0
			e.Trie.Walk(func(a *internal.Atom) {
				n++
				if a.HasValue {
					valueCount++
					histogram.AddSample(len(a.Value))
				}
			})
			atomCount += n
			namespaceSizes = append(namespaceSizes, float64(n))
		}
		return true
	}
	birch.primary.Range(collect)
	birch.secondary.Range(collect)

	// coldest tracked entry (a demotion policy would move this one first)
	var (
		coldestKey      string
		coldestIdleSecs float64
	)
	if coldest, ok := birch.recency.Peek(); ok {
		coldestKey = coldest.Key
		coldestIdleSecs = time.Since(time.Unix(0, coldest.Priority)).Seconds()
	}

	// Metadata for this specific database implementation
	meta := &struct {
		PrimaryEntries        int                    `json:"primary_entries"`
		SecondaryEntries      int                    `json:"secondary_entries"`
		AtomCount             int                    `json:"atom_count"`
		ValueCount            int                    `json:"value_count"`
		InternedStrings       int                    `json:"interned_strings"`
		InternedBytes         uint64                 `json:"interned_bytes"`
		MemoryLimitBytes      uint64                 `json:"memory_limit_bytes"`
		NamespaceDistribution util.DistributionStats `json:"namespace_distribution"`
		AvgValueSize          int                    `json:"avg_value_size"`
		MedianValueSize       int                    `json:"median_value_size"`
		ColdestKey            string                 `json:"coldest_key"`
		ColdestIdleSeconds    float64                `json:"coldest_idle_seconds"`
		Info                  string                 `json:"info"`
	}{
		PrimaryEntries:        birch.primary.Len(),
		SecondaryEntries:      birch.secondary.Len(),
		AtomCount:             atomCount,
		ValueCount:            valueCount,
		InternedStrings:       birch.pool.Len(),
		InternedBytes:         birch.pool.UniqueBytes(),
		MemoryLimitBytes:      birch.budget.Limit(),
		NamespaceDistribution: util.NewDistributionStats(namespaceSizes),
		AvgValueSize:          histogram.AverageSize(),
		MedianValueSize:       histogram.MedianEstimate(),
		ColdestKey:            coldestKey,
		ColdestIdleSeconds:    coldestIdleSecs,
		Info:                  "SizeBytes tracks accounted bytes (values, interned segments and bookkeeping overhead), not process memory.",
	}

	return db.DatabaseInfo{
		SizeBytes:         int(birch.budget.Used()),
		DbType:            db.ImplBirch,
		SupportedFeatures: supportedFeatures,
		Metadata:          meta,
	}
}

// SupportsFeature checks if this implementation supports a specific KVDB feature
func (birch *birchImpl) SupportsFeature(feature db.Feature) bool {
	supportedFeatures := db.FeatureSet |
		db.FeatureSetIfUnset |
		db.FeatureGet |
		db.FeatureDelete |
		db.FeatureHas |
		db.FeatureNamespaces |
		db.FeatureTiering
	return supportedFeatures&feature == feature
}

// --------------------------------------------------------------------------
// Error Helper Functions
// --------------------------------------------------------------------------

func errNotInitialized() *db.Error {
	return db.NewError(db.RetCNotInitialized, "database is not initialized")
}

func errKeyNotFound(key string) *db.Error {
	return db.NewError(db.RetCKeyNotFound, fmt.Sprintf("key %q not found", key))
}

// wrapStorageErr converts sentinel errors from the internal data structures
// into typed errors carrying the affected key.
func (birch *birchImpl) wrapStorageErr(err error, key string) *db.Error {
	switch err {
	case internal.ErrNotFound:
		return errKeyNotFound(key)
	case internal.ErrOutOfMemory:
		return db.NewError(db.RetCOutOfMemory,
			fmt.Sprintf("memory budget exhausted (limit %d bytes) while writing key %q", birch.budget.Limit(), key))
	default:
		// the internal package only emits the sentinels above
		panic(fmt.Sprintf("birch: unexpected storage error: %v", err))
	}
}

// copyValue detaches a returned value from an atom's live buffer, callers
// must never see memory the engine may still mutate.
func copyValue(value []byte) []byte {
	out := make([]byte, len(value))
	copy(out, value)
	return out
}
