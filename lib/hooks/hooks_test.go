package hooks

import (
	"bytes"
	"sync"
	"testing"

	"github.com/VictoriaMetrics/metrics"

	"github.com/ValentinKolb/tKV/lib/db"
	"github.com/ValentinKolb/tKV/lib/db/engines/birch"
)

func TestDispatchOrder(t *testing.T) {
	mgr := NewHookManager()

	var order []int
	mgr.Register(PhaseAfter, OpSet, func(e Event) { order = append(order, 1) })
	mgr.Register(PhaseAfter, OpSet, func(e Event) { order = append(order, 2) })
	mgr.Register(PhaseAfter, OpSet, func(e Event) { order = append(order, 3) })

	// hooks for another operation or phase must not fire
	mgr.Register(PhaseAfter, OpGet, func(e Event) { order = append(order, 99) })
	mgr.Register(PhaseBefore, OpSet, func(e Event) { order = append(order, 99) })

	mgr.Dispatch(Event{Phase: PhaseAfter, Op: OpSet, Key: "k"})

	if len(order) != 3 {
		t.Fatalf("Expected 3 hooks to fire, got %d", len(order))
	}
	for i, v := range order {
		if v != i+1 {
			t.Errorf("Expected hooks to run in registration order, got %v", order)
			break
		}
	}
}

func TestRegisterAll(t *testing.T) {
	mgr := NewHookManager()

	seen := make(map[Operation]int)
	mgr.RegisterAll(PhaseAfter, func(e Event) { seen[e.Op]++ })

	for _, op := range allOperations {
		mgr.Dispatch(Event{Phase: PhaseAfter, Op: op, Key: "k"})
		mgr.Dispatch(Event{Phase: PhaseBefore, Op: op, Key: "k"})
	}

	for _, op := range allOperations {
		if seen[op] != 1 {
			t.Errorf("Expected exactly one event for op %s, got %d", op, seen[op])
		}
	}
}

func TestHookedDBEmitsEvents(t *testing.T) {
	mgr := NewHookManager()

	var events []Event
	mgr.RegisterAll(PhaseAfter, func(e Event) { events = append(events, e) })

	database := NewHookedDB(birch.NewBirchDB(nil), mgr)
	if err := database.Init(); err != nil {
		t.Fatalf("Unexpected error during Init: %v", err)
	}
	defer database.Teardown()

	database.Set("user:1001:name", []byte("Alice"))
	database.Get("user:1001:name")
	database.Has("user:1001:name")
	database.Delete("user:1001:name")
	database.Get("user:1001:name")

	expected := []struct {
		op    Operation
		found bool
		isErr bool
	}{
		{OpSet, false, false},
		{OpGet, true, false},
		{OpHas, true, false},
		{OpDelete, false, false},
		{OpGet, false, true}, // key is gone, Get reports the error
	}

	if len(events) != len(expected) {
		t.Fatalf("Expected %d events, got %d", len(expected), len(events))
	}

	for i, want := range expected {
		e := events[i]
		if e.Op != want.op {
			t.Errorf("Event %d: expected op %s, got %s", i, want.op, e.Op)
		}
		if e.Found != want.found {
			t.Errorf("Event %d (%s): expected found=%v, got %v", i, want.op, want.found, e.Found)
		}
		if (e.Err != nil) != want.isErr {
			t.Errorf("Event %d (%s): expected error=%v, got %v", i, want.op, want.isErr, e.Err)
		}
		if e.Key != "user:1001:name" {
			t.Errorf("Event %d (%s): expected key user:1001:name, got %s", i, want.op, e.Key)
		}
	}
}

func TestHookedDBFiresBothPhases(t *testing.T) {
	mgr := NewHookManager()

	var events []Event
	mgr.RegisterAll(PhaseBefore, func(e Event) { events = append(events, e) })
	mgr.RegisterAll(PhaseAfter, func(e Event) { events = append(events, e) })

	database := NewHookedDB(birch.NewBirchDB(nil), mgr)
	if err := database.Init(); err != nil {
		t.Fatalf("Unexpected error during Init: %v", err)
	}
	defer database.Teardown()

	database.Set("k", []byte("v"))
	database.Get("k")

	if len(events) != 4 {
		t.Fatalf("Expected 4 events (before and after per operation), got %d", len(events))
	}

	for i, want := range []struct {
		phase Phase
		op    Operation
	}{
		{PhaseBefore, OpSet},
		{PhaseAfter, OpSet},
		{PhaseBefore, OpGet},
		{PhaseAfter, OpGet},
	} {
		e := events[i]
		if e.Phase != want.phase || e.Op != want.op {
			t.Errorf("Event %d: expected %s/%s, got %s/%s", i, want.phase, want.op, e.Phase, e.Op)
		}
	}

	// the before event must not carry an outcome
	if events[2].Found || events[2].Err != nil || events[2].Duration != 0 {
		t.Errorf("Expected empty outcome on before event, got %+v", events[2])
	}
	if !events[3].Found {
		t.Errorf("Expected found=true on the after event of Get")
	}
}

func TestHookedDBPassesValuesThrough(t *testing.T) {
	database := NewHookedDB(birch.NewBirchDB(nil), NewHookManager())
	if err := database.Init(); err != nil {
		t.Fatalf("Unexpected error during Init: %v", err)
	}
	defer database.Teardown()

	if err := database.Set("k", []byte("v")); err != nil {
		t.Fatalf("Unexpected error during Set: %v", err)
	}

	value, found, err := database.Get("k")
	if err != nil || !found || !bytes.Equal(value, []byte("v")) {
		t.Errorf("Expected value v, got found=%v value=%s err=%v", found, value, err)
	}

	// errors keep their typed codes through the decorator
	_, _, err = database.Get("missing")
	if code, ok := db.CodeOf(err); !ok || code != db.RetCKeyNotFound {
		t.Errorf("Expected KeyNotFound through decorator, got %v", err)
	}

	if !database.SupportsFeature(db.FeatureNamespaces) {
		t.Errorf("Expected feature support to pass through")
	}
}

func TestAsyncSinkDrainsOnClose(t *testing.T) {
	var (
		mu    sync.Mutex
		count int
	)

	sink := NewAsyncSink(func(e Event) {
		mu.Lock()
		count++
		mu.Unlock()
	})

	hook := sink.Hook()

	numEvents := 1000
	var wg sync.WaitGroup
	wg.Add(4)
	for w := 0; w < 4; w++ {
		go func(worker int) {
			defer wg.Done()
			for i := 0; i < numEvents/4; i++ {
				hook(Event{Phase: PhaseAfter, Op: OpSet, Key: "k"})
			}
		}(w)
	}
	wg.Wait()

	// Close must deliver everything that was pushed before it
	sink.Close()

	mu.Lock()
	defer mu.Unlock()
	if count != numEvents {
		t.Errorf("Expected %d events after drain, got %d", numEvents, count)
	}
}

func TestMetricsHook(t *testing.T) {
	hook := NewMetricsHook("test-metrics-store")

	hook(Event{Phase: PhaseAfter, Op: OpSet, Key: "k"})
	hook(Event{Phase: PhaseAfter, Op: OpGet, Key: "k", Found: true})
	hook(Event{Phase: PhaseAfter, Op: OpGet, Key: "missing", Err: db.NewError(db.RetCKeyNotFound, "key not found")})

	// before events must not count as operations
	hook(Event{Phase: PhaseBefore, Op: OpSet, Key: "k"})

	var buf bytes.Buffer
	metrics.WritePrometheus(&buf, false)
	out := buf.String()

	for _, want := range []string{
		`tkv_store_ops_total{store="test-metrics-store",op="set"} 1`,
		`tkv_store_ops_total{store="test-metrics-store",op="get"} 2`,
		`tkv_store_op_errors_total{store="test-metrics-store",op="get"} 1`,
	} {
		if !bytes.Contains(buf.Bytes(), []byte(want)) {
			t.Errorf("Expected metrics output to contain %q, got:\n%s", want, out)
		}
	}
}
