package birch

import (
	"bytes"
	"testing"

	"github.com/ValentinKolb/tKV/lib/db"
	"github.com/ValentinKolb/tKV/lib/db/engines/birch/internal"
)

// newTestDB creates and initializes an engine and returns the concrete
// implementation for white-box assertions.
func newTestDB(t *testing.T, opts *DBOptions) *birchImpl {
	database := NewBirchDB(opts)
	if err := database.Init(); err != nil {
		t.Fatalf("Unexpected error during Init: %v", err)
	}
	return database.(*birchImpl)
}

// seedSecondaryAtom plants a flat atom entry directly into the secondary
// tier, bypassing the public API.
func seedSecondaryAtom(t *testing.T, e *birchImpl, key string, value []byte) {
	atom, err := internal.NewStoredAtom(e.pool, key)
	if err != nil {
		t.Fatalf("Unexpected error creating atom: %v", err)
	}
	if err := internal.SetAtomValue(e.pool, atom, value); err != nil {
		t.Fatalf("Unexpected error storing value: %v", err)
	}
	e.secondary.Put(key, internal.NewAtomEntry(atom))
}

// seedSecondaryTrie plants a namespace entry holding one value directly
// into the secondary tier, bypassing the public API.
func seedSecondaryTrie(t *testing.T, e *birchImpl, namespace string, segments []string, value []byte) {
	trie, err := internal.NewTrie(e.pool)
	if err != nil {
		t.Fatalf("Unexpected error creating trie: %v", err)
	}
	if err := trie.Set(segments, value); err != nil {
		t.Fatalf("Unexpected error storing value: %v", err)
	}
	e.secondary.Put(namespace, internal.NewTrieEntry(trie))
}

func TestPromotionOnRead(t *testing.T) {
	e := newTestDB(t, nil)
	defer e.Teardown()

	seedSecondaryAtom(t, e, "cold-key", []byte("cold-value"))

	result, found, err := e.Get("cold-key")
	if err != nil || !found {
		t.Fatalf("Expected secondary hit to resolve (found=%v, err=%v)", found, err)
	}
	if string(result) != "cold-value" {
		t.Errorf("Expected value cold-value, got %s", result)
	}

	if e.secondary.Len() != 0 {
		t.Errorf("Expected secondary tier to be empty after promotion, got %d entries", e.secondary.Len())
	}
	if _, ok := e.primary.Get("cold-key"); !ok {
		t.Errorf("Expected entry to live in the primary tier after promotion")
	}
	if !e.recency.Contains("cold-key") {
		t.Errorf("Expected promoted entry to be recency-tracked")
	}
}

func TestPromotionOnWrite(t *testing.T) {
	e := newTestDB(t, nil)
	defer e.Teardown()

	seedSecondaryTrie(t, e, "user", []string{"1001", "name"}, []byte("Alice"))

	// a write through the namespace promotes the whole entry
	if err := e.Set("user:1001:mail", []byte("alice@example.com")); err != nil {
		t.Fatalf("Unexpected error during Set: %v", err)
	}

	if e.secondary.Len() != 0 {
		t.Errorf("Expected secondary tier to be empty after promotion, got %d entries", e.secondary.Len())
	}
	if _, ok := e.primary.Get("user"); !ok {
		t.Errorf("Expected namespace to live in the primary tier after promotion")
	}

	// the pre-existing value moved together with the entry
	result, found, err := e.Get("user:1001:name")
	if err != nil || !found || string(result) != "Alice" {
		t.Errorf("Expected pre-existing value to survive promotion, got found=%v value=%s err=%v", found, result, err)
	}
}

func TestNoPromotionOnKindMismatch(t *testing.T) {
	e := newTestDB(t, nil)
	defer e.Teardown()

	seedSecondaryTrie(t, e, "user", []string{"1001", "name"}, []byte("Alice"))

	// a flat read never resolves a namespace entry
	_, _, err := e.Get("user")
	if code, ok := db.CodeOf(err); !ok || code != db.RetCKeyNotFound {
		t.Errorf("Expected KeyNotFound for flat Get of a namespace, got %v", err)
	}

	if _, ok := e.secondary.Get("user"); !ok {
		t.Errorf("Expected mismatching entry to stay in the secondary tier")
	}
	if e.primary.Len() != 0 {
		t.Errorf("Expected primary tier to stay empty, got %d entries", e.primary.Len())
	}
}

func TestHasDoesNotPromote(t *testing.T) {
	e := newTestDB(t, nil)
	defer e.Teardown()

	seedSecondaryAtom(t, e, "cold-key", []byte("cold-value"))

	found, err := e.Has("cold-key")
	if err != nil || !found {
		t.Fatalf("Expected Has to find the secondary entry (found=%v, err=%v)", found, err)
	}

	// Has is a pure probe
	if _, ok := e.secondary.Get("cold-key"); !ok {
		t.Errorf("Expected entry to stay in the secondary tier after Has")
	}
	if e.recency.Contains("cold-key") {
		t.Errorf("Expected Has to leave recency tracking untouched")
	}
}

func TestFlatSetSupersedesSecondary(t *testing.T) {
	e := newTestDB(t, nil)
	defer e.Teardown()

	seedSecondaryAtom(t, e, "k", []byte("old"))

	if err := e.Set("k", []byte("new")); err != nil {
		t.Fatalf("Unexpected error during Set: %v", err)
	}

	if e.secondary.Len() != 0 {
		t.Errorf("Expected secondary entry to be superseded, got %d entries", e.secondary.Len())
	}

	result, found, _ := e.Get("k")
	if !found || string(result) != "new" {
		t.Errorf("Expected value new, got found=%v value=%s", found, result)
	}

	// the old atom was released, only the fresh one references "k"
	if handle, ok := e.pool.Lookup("k"); !ok || handle.Refs() != 1 {
		t.Errorf("Expected exactly one live reference to segment k")
	}
}

func TestAccessCountTracking(t *testing.T) {
	e := newTestDB(t, nil)
	defer e.Teardown()

	if err := e.Set("user:1001:name", []byte("Alice")); err != nil {
		t.Fatalf("Unexpected error during Set: %v", err)
	}

	for i := 0; i < 3; i++ {
		if _, _, err := e.Get("user:1001:name"); err != nil {
			t.Fatalf("Unexpected error during Get: %v", err)
		}
	}

	entry, ok := e.primary.Get("user")
	if !ok || entry.Kind != internal.EntryKindTrie {
		t.Fatalf("Expected namespace entry in the primary tier")
	}

	leaf, ok := entry.Trie.Resolve([]string{"1001", "name"})
	if !ok {
		t.Fatalf("Expected leaf atom to exist")
	}
	if leaf.AccessCount != 3 {
		t.Errorf("Expected access count 3, got %d", leaf.AccessCount)
	}

	// the valueless path element in between is not access-counted
	middle, ok := entry.Trie.Resolve([]string{"1001"})
	if !ok {
		t.Fatalf("Expected path atom to exist")
	}
	if middle.AccessCount != 0 {
		t.Errorf("Expected access count 0 for path atom, got %d", middle.AccessCount)
	}
}

func TestOutOfMemory(t *testing.T) {
	// enough for the namespace trie and its path atoms, not for the value
	e := newTestDB(t, &DBOptions{MaxMemoryBytes: 512})
	defer e.Teardown()

	large := make([]byte, 4096)

	err := e.Set("a:b", large)
	if code, ok := db.CodeOf(err); !ok || code != db.RetCOutOfMemory {
		t.Fatalf("Expected OutOfMemory error, got %v", err)
	}

	// the write is not rolled back: the path exists, valueless
	result, found, err := e.Get("a:b")
	if err != nil {
		t.Errorf("Expected valueless path after failed write, got error %v", err)
	}
	if found {
		t.Errorf("Expected found=false after failed write, got value %s", result)
	}

	// a smaller value fits into the remaining budget
	if err := e.Set("a:b", []byte("x")); err != nil {
		t.Errorf("Expected small value to fit after failed write, got %v", err)
	}

	result, found, _ = e.Get("a:b")
	if !found || string(result) != "x" {
		t.Errorf("Expected value x, got found=%v value=%s", found, result)
	}
}

func TestOutOfMemoryFlat(t *testing.T) {
	e := newTestDB(t, &DBOptions{MaxMemoryBytes: 1024})
	defer e.Teardown()

	if err := e.Set("small", []byte("fits")); err != nil {
		t.Fatalf("Unexpected error during Set: %v", err)
	}

	err := e.Set("big", make([]byte, 4096))
	if code, ok := db.CodeOf(err); !ok || code != db.RetCOutOfMemory {
		t.Fatalf("Expected OutOfMemory error, got %v", err)
	}

	// the failed flat write leaves no trace behind
	_, _, err = e.Get("big")
	if code, ok := db.CodeOf(err); !ok || code != db.RetCKeyNotFound {
		t.Errorf("Expected KeyNotFound after failed flat write, got %v", err)
	}

	// deleting frees budget for new writes
	if err := e.Delete("small"); err != nil {
		t.Fatalf("Unexpected error during Delete: %v", err)
	}
	if err := e.Set("big", make([]byte, 512)); err != nil {
		t.Errorf("Expected write to succeed after Delete freed budget, got %v", err)
	}
}

func TestTeardownReleasesEverything(t *testing.T) {
	e := newTestDB(t, nil)

	e.Set("counter", []byte("42"))
	e.Set("user:1001:name", []byte("Alice"))
	e.Set("user:1001:mail", []byte("alice@example.com"))
	e.Set("session:abc:token", []byte("xyz"))

	pool := e.pool
	budget := e.budget

	e.Teardown()

	if pool.Len() != 0 {
		t.Errorf("Expected intern pool to be drained after Teardown, got %d entries", pool.Len())
	}
	if budget.Used() != 0 {
		t.Errorf("Expected all budget bytes to be released after Teardown, got %d", budget.Used())
	}
}

func TestCustomDelimiter(t *testing.T) {
	e := newTestDB(t, &DBOptions{Delimiter: '/'})
	defer e.Teardown()

	if err := e.Set("user/1001/name", []byte("Alice")); err != nil {
		t.Fatalf("Unexpected error during Set: %v", err)
	}

	result, found, err := e.Get("user/1001/name")
	if err != nil || !found || string(result) != "Alice" {
		t.Errorf("Expected namespaced key with custom delimiter to resolve, got found=%v value=%s err=%v", found, result, err)
	}

	// the default delimiter is just an ordinary character now
	if err := e.Set("user:1001:name", []byte("flat")); err != nil {
		t.Fatalf("Unexpected error during Set: %v", err)
	}

	entry, ok := e.primary.Get("user:1001:name")
	if !ok || entry.Kind != internal.EntryKindAtom {
		t.Errorf("Expected colon-separated key to be stored as a flat atom")
	}
}

func TestGetInfoMetadata(t *testing.T) {
	e := newTestDB(t, &DBOptions{MaxMemoryBytes: 1 << 20})
	defer e.Teardown()

	e.Set("counter", []byte("42"))
	e.Set("user:1001:name", []byte("Alice"))
	e.Set("user:1002:name", []byte("Bob"))

	info := e.GetInfo()

	if info.DbType != db.ImplBirch {
		t.Errorf("Expected DbType %s, got %s", db.ImplBirch, info.DbType)
	}
	if info.SizeBytes != int(e.budget.Used()) {
		t.Errorf("Expected SizeBytes to match the budget ledger: %d != %d", info.SizeBytes, e.budget.Used())
	}
	if info.Metadata == nil {
		t.Errorf("Expected implementation metadata to be set")
	}

	for _, feature := range []db.Feature{
		db.FeatureSet, db.FeatureSetIfUnset, db.FeatureGet,
		db.FeatureDelete, db.FeatureHas, db.FeatureNamespaces, db.FeatureTiering,
	} {
		if !e.SupportsFeature(feature) {
			t.Errorf("Expected feature %v to be supported", feature)
		}
	}
}

func TestValueCopyOnWrite(t *testing.T) {
	e := newTestDB(t, nil)
	defer e.Teardown()

	value := []byte("original")
	e.Set("k", value)

	// mutating the caller's buffer must not reach the stored value
	value[0] = 'X'

	result, _, _ := e.Get("k")
	if !bytes.Equal(result, []byte("original")) {
		t.Errorf("Expected stored value to be isolated from the caller's buffer, got %s", result)
	}
}
