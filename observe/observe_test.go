package observe

import (
	"sync"
	"testing"

	"github.com/dshills/prefstore/storable"
	"github.com/dshills/prefstore/store"
)

func TestNew_DeliversInitialSynchronously(t *testing.T) {
	st := store.NewMemory()
	st.Set("name", storable.String("x"))

	var events []Event
	obs := New(st, "name", func(ev Event) {
		events = append(events, ev)
	})
	defer obs.Invalidate()

	if len(events) != 1 {
		t.Fatalf("got %d events before any mutation, want 1", len(events))
	}
	if events[0].Kind != Initial {
		t.Errorf("Kind = %v, want Initial", events[0].Kind)
	}
	if got, _ := storable.ToString(events[0].Value); got != "x" || !events[0].Present {
		t.Errorf("initial = %+v", events[0])
	}
}

func TestNew_InitialForUnsetKeyIsAbsent(t *testing.T) {
	st := store.NewMemory()

	var events []Event
	obs := New(st, "never", func(ev Event) {
		events = append(events, ev)
	})
	defer obs.Invalidate()

	if len(events) != 1 || events[0].Kind != Initial || events[0].Present {
		t.Fatalf("initial for unset key = %+v", events)
	}
}

func TestObservation_Stream(t *testing.T) {
	st := store.NewMemory()

	var events []Event
	obs := New(st, "counter", func(ev Event) {
		events = append(events, ev)
	})
	defer obs.Invalidate()

	st.Set("counter", storable.Int(1))
	st.Set("counter", storable.Int(2))
	st.Remove("counter")

	want := []struct {
		kind    Kind
		present bool
	}{
		{Initial, false},
		{Update, true},
		{Update, true},
		{Update, false},
	}
	if len(events) != len(want) {
		t.Fatalf("got %d events, want %d", len(events), len(want))
	}
	for i, w := range want {
		if events[i].Kind != w.kind || events[i].Present != w.present {
			t.Errorf("event %d = {%v %v}, want {%v %v}",
				i, events[i].Kind, events[i].Present, w.kind, w.present)
		}
	}
}

func TestObservation_InvalidateStopsDeliveries(t *testing.T) {
	st := store.NewMemory()

	var count int
	obs := New(st, "key", func(Event) { count++ })

	st.Set("key", storable.Int(1))
	obs.Invalidate()
	st.Set("key", storable.Int(2))
	st.Remove("key")

	if count != 2 {
		t.Errorf("count = %d, want 2 (initial + one update)", count)
	}
}

func TestObservation_InvalidateIsIdempotent(t *testing.T) {
	st := store.NewMemory()
	obs := New(st, "key", func(Event) {})

	obs.Invalidate()
	obs.Invalidate() // second call is a no-op, not an error
}

func TestObservation_ConcurrentInvalidate(t *testing.T) {
	st := store.NewMemory()
	obs := New(st, "key", func(Event) {})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			obs.Invalidate()
		}()
	}
	wg.Wait()
}

func TestNew_RejectsDottedKey(t *testing.T) {
	st := store.NewMemory()

	defer func() {
		if recover() == nil {
			t.Error("observing a dotted key did not panic")
		}
	}()
	New(st, "editor.tabSize", func(Event) {})
}

func TestKind_String(t *testing.T) {
	tests := []struct {
		kind Kind
		want string
	}{
		{Initial, "initial"},
		{Update, "update"},
		{Kind(9), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("Kind(%d).String() = %q, want %q", tt.kind, got, tt.want)
		}
	}
}
