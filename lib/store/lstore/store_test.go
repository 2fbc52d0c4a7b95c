package lstore

import (
	"bytes"
	"errors"
	"testing"

	"github.com/ValentinKolb/tKV/lib/db"
	"github.com/ValentinKolb/tKV/lib/db/engines/birch"
	"github.com/ValentinKolb/tKV/lib/store"
)

func newTestStore(t *testing.T) store.IStore {
	s, err := NewLocalStore(func() db.KVDB {
		return birch.NewBirchDB(nil)
	})
	if err != nil {
		t.Fatalf("Unexpected error creating store: %v", err)
	}
	return s
}

func TestLocalStoreRoundTrip(t *testing.T) {
	s := newTestStore(t)
	defer s.Close()

	if err := s.Set("user:1001:name", []byte("Alice")); err != nil {
		t.Fatalf("Unexpected error during Set: %v", err)
	}

	value, loaded, err := s.Get("user:1001:name")
	if err != nil || !loaded {
		t.Errorf("Expected key to exist (loaded=%v, err=%v)", loaded, err)
	}
	if !bytes.Equal(value, []byte("Alice")) {
		t.Errorf("Expected value Alice, got %s", value)
	}

	// conditional set keeps the existing value
	if err := s.SetIfUnset("user:1001:name", []byte("Bob")); err != nil {
		t.Errorf("Unexpected error during SetIfUnset: %v", err)
	}
	value, _, _ = s.Get("user:1001:name")
	if !bytes.Equal(value, []byte("Alice")) {
		t.Errorf("Expected value Alice after SetIfUnset, got %s", value)
	}

	loaded, err = s.Has("user:1001:name")
	if err != nil || !loaded {
		t.Errorf("Expected Has to return true (loaded=%v, err=%v)", loaded, err)
	}

	if err := s.Delete("user:1001:name"); err != nil {
		t.Errorf("Unexpected error during Delete: %v", err)
	}

	// database errors pass through with their typed codes
	_, _, err = s.Get("user:1001:name")
	if code, ok := db.CodeOf(err); !ok || code != db.RetCKeyNotFound {
		t.Errorf("Expected KeyNotFound through the store, got %v", err)
	}

	info, err := s.GetDBInfo()
	if err != nil {
		t.Errorf("Unexpected error during GetDBInfo: %v", err)
	}
	if info.DbType != db.ImplBirch {
		t.Errorf("Expected DbType %s, got %s", db.ImplBirch, info.DbType)
	}
}

// featurelessDB pretends to support nothing.
type featurelessDB struct {
	db.KVDB
}

func (f *featurelessDB) Init() error                       { return nil }
func (f *featurelessDB) SupportsFeature(_ db.Feature) bool { return false }

func TestLocalStoreUnsupportedOperations(t *testing.T) {
	s, err := NewLocalStore(func() db.KVDB {
		return &featurelessDB{}
	})
	if err != nil {
		t.Fatalf("Unexpected error creating store: %v", err)
	}

	if err := s.Set("k", []byte("v")); err == nil {
		t.Errorf("Expected error for unsupported Set")
	} else {
		var storeErr *store.Error
		if !errors.As(err, &storeErr) || storeErr.Code != store.RetCUnsupportedOperation {
			t.Errorf("Expected UnsupportedOperation error, got %v", err)
		}
	}

	if _, _, err := s.Get("k"); err == nil {
		t.Errorf("Expected error for unsupported Get")
	}
	if _, err := s.Has("k"); err == nil {
		t.Errorf("Expected error for unsupported Has")
	}
	if err := s.Delete("k"); err == nil {
		t.Errorf("Expected error for unsupported Delete")
	}
	if err := s.SetIfUnset("k", []byte("v")); err == nil {
		t.Errorf("Expected error for unsupported SetIfUnset")
	}
}
