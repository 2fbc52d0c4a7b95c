package hooks

import (
	"sync"
	"time"

	"github.com/ValentinKolb/tKV/lib/db"
)

var allOperations = []Operation{OpSet, OpSetIfUnset, OpGet, OpDelete, OpHas}

// hookKey addresses one callback list: one phase of one operation.
type hookKey struct {
	phase Phase
	op    Operation
}

type hookMgrImpl struct {
	mu    sync.RWMutex
	hooks map[hookKey][]HookFunc
}

// NewHookManager creates an empty hook manager.
func NewHookManager() IHookManager {
	return &hookMgrImpl{
		hooks: make(map[hookKey][]HookFunc),
	}
}

func (m *hookMgrImpl) Register(phase Phase, op Operation, fn HookFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := hookKey{phase: phase, op: op}
	m.hooks[k] = append(m.hooks[k], fn)
}

func (m *hookMgrImpl) RegisterAll(phase Phase, fn HookFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, op := range allOperations {
		k := hookKey{phase: phase, op: op}
		m.hooks[k] = append(m.hooks[k], fn)
	}
}

func (m *hookMgrImpl) Dispatch(e Event) {
	m.mu.RLock()
	fns := m.hooks[hookKey{phase: e.Phase, op: e.Op}]
	m.mu.RUnlock()

	for _, fn := range fns {
		fn(e)
	}
}

// --------------------------------------------------------------------------
// Hooked Database Decorator
// --------------------------------------------------------------------------

type hookedDB struct {
	inner db.KVDB
	mgr   IHookManager
}

// NewHookedDB wraps a database so that every data operation emits a
// PhaseBefore Event to the given manager, runs, and then emits a PhaseAfter
// Event carrying the outcome. Lifecycle and metadata methods (Init,
// Teardown, GetInfo, SupportsFeature) are passed through unobserved.
func NewHookedDB(database db.KVDB, mgr IHookManager) db.KVDB {
	return &hookedDB{inner: database, mgr: mgr}
}

func (h *hookedDB) Init() error {
	return h.inner.Init()
}

func (h *hookedDB) Teardown() {
	h.inner.Teardown()
}

func (h *hookedDB) Set(key string, value []byte) error {
	h.mgr.Dispatch(Event{Phase: PhaseBefore, Op: OpSet, Key: key})
	start := time.Now()
	err := h.inner.Set(key, value)
	h.mgr.Dispatch(Event{Phase: PhaseAfter, Op: OpSet, Key: key, Err: err, Duration: time.Since(start)})
	return err
}

func (h *hookedDB) SetIfUnset(key string, value []byte) error {
	h.mgr.Dispatch(Event{Phase: PhaseBefore, Op: OpSetIfUnset, Key: key})
	start := time.Now()
	err := h.inner.SetIfUnset(key, value)
	h.mgr.Dispatch(Event{Phase: PhaseAfter, Op: OpSetIfUnset, Key: key, Err: err, Duration: time.Since(start)})
	return err
}

func (h *hookedDB) Get(key string) ([]byte, bool, error) {
	h.mgr.Dispatch(Event{Phase: PhaseBefore, Op: OpGet, Key: key})
	start := time.Now()
	value, found, err := h.inner.Get(key)
	h.mgr.Dispatch(Event{Phase: PhaseAfter, Op: OpGet, Key: key, Found: found, Err: err, Duration: time.Since(start)})
	return value, found, err
}

func (h *hookedDB) Delete(key string) error {
	h.mgr.Dispatch(Event{Phase: PhaseBefore, Op: OpDelete, Key: key})
	start := time.Now()
	err := h.inner.Delete(key)
	h.mgr.Dispatch(Event{Phase: PhaseAfter, Op: OpDelete, Key: key, Err: err, Duration: time.Since(start)})
	return err
}

func (h *hookedDB) Has(key string) (bool, error) {
	h.mgr.Dispatch(Event{Phase: PhaseBefore, Op: OpHas, Key: key})
	start := time.Now()
	found, err := h.inner.Has(key)
	h.mgr.Dispatch(Event{Phase: PhaseAfter, Op: OpHas, Key: key, Found: found, Err: err, Duration: time.Since(start)})
	return found, err
}

func (h *hookedDB) GetInfo() db.DatabaseInfo {
	return h.inner.GetInfo()
}

func (h *hookedDB) SupportsFeature(feature db.Feature) bool {
	return h.inner.SupportsFeature(feature)
}
