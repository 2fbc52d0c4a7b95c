package lstore

import (
	"fmt"

	"github.com/ValentinKolb/tKV/lib/db"
	"github.com/ValentinKolb/tKV/lib/store"
)

type storeImpl struct {
	db db.KVDB
}

// NewLocalStore creates a new local store instance.
// This store implementation is not distributed and only works on a single node.
// The injected database is initialized here and torn down again by Close.
func NewLocalStore(factory store.DBFactory) (store.IStore, error) {
	database := factory()
	if err := database.Init(); err != nil {
		return nil, store.NewError(store.RetCInternalError, fmt.Sprintf("failed to initialize database: %v", err))
	}
	return &storeImpl{db: database}, nil
}

// require returns a typed error when the engine cannot serve the operation
func (s *storeImpl) require(feature db.Feature, op string) error {
	if !s.db.SupportsFeature(feature) {
		return store.NewError(store.RetCUnsupportedOperation, op+" operation is not supported")
	}
	return nil
}

// --------------------------------------------------------------------------
// Interface Methods (docu see store/interface.go)
// --------------------------------------------------------------------------

func (s *storeImpl) Set(key string, value []byte) error {
	if err := s.require(db.FeatureSet, "Set"); err != nil {
		return err
	}
	return s.db.Set(key, value)
}

func (s *storeImpl) SetIfUnset(key string, value []byte) error {
	if err := s.require(db.FeatureSetIfUnset, "SetIfUnset"); err != nil {
		return err
	}
	return s.db.SetIfUnset(key, value)
}

func (s *storeImpl) Delete(key string) error {
	if err := s.require(db.FeatureDelete, "Delete"); err != nil {
		return err
	}
	return s.db.Delete(key)
}

func (s *storeImpl) Get(key string) ([]byte, bool, error) {
	if err := s.require(db.FeatureGet, "Get"); err != nil {
		return nil, false, err
	}
	return s.db.Get(key)
}

func (s *storeImpl) Has(key string) (bool, error) {
	if err := s.require(db.FeatureHas, "Has"); err != nil {
		return false, err
	}
	return s.db.Has(key)
}

func (s *storeImpl) GetDBInfo() (db.DatabaseInfo, error) {
	return s.db.GetInfo(), nil
}

func (s *storeImpl) Close() error {
	s.db.Teardown()
	return nil
}
