package store

import (
	"testing"

	"github.com/dshills/prefstore/storable"
)

func TestMemory_GetSetRemove(t *testing.T) {
	s := NewMemory()

	if _, ok := s.Get("missing"); ok {
		t.Error("Get on empty store succeeded")
	}

	s.Set("name", storable.String("x"))
	v, ok := s.Get("name")
	if !ok {
		t.Fatal("Get after Set failed")
	}
	if got, _ := storable.ToString(v); got != "x" {
		t.Errorf("Get = %q, want %q", got, "x")
	}

	s.Remove("name")
	if _, ok := s.Get("name"); ok {
		t.Error("Get after Remove succeeded")
	}
}

func TestMemory_DefaultsFallback(t *testing.T) {
	s := NewMemory()
	s.RegisterDefaults(map[string]storable.Value{
		"theme": storable.String("dark"),
	})

	v, ok := s.Get("theme")
	if !ok {
		t.Fatal("default not visible")
	}
	if got, _ := storable.ToString(v); got != "dark" {
		t.Errorf("Get = %q, want default", got)
	}

	s.Set("theme", storable.String("light"))
	v, _ = s.Get("theme")
	if got, _ := storable.ToString(v); got != "light" {
		t.Errorf("Get = %q, want explicit value", got)
	}

	// Removing the explicit value falls back to the default.
	s.Remove("theme")
	v, ok = s.Get("theme")
	if !ok {
		t.Fatal("default gone after Remove")
	}
	if got, _ := storable.ToString(v); got != "dark" {
		t.Errorf("Get = %q, want default after Remove", got)
	}
}

// TestMemory_ObservationSequence walks the canonical mutation sequence
// and checks the exact event stream for the watched key.
func TestMemory_ObservationSequence(t *testing.T) {
	s := NewMemory()

	var events []Event
	token := s.Observe("UserID", func(ev Event) {
		events = append(events, ev)
	})

	s.Set("UserID", storable.String("Test"))
	s.Remove("UserID")
	s.RegisterDefaults(map[string]storable.Value{"UserID": storable.String("Default")})
	s.Set("UserID", storable.Int(1))
	s.Set("OtherKey", storable.Int(2))

	if len(events) != 5 {
		t.Fatalf("got %d events, want 5", len(events))
	}

	// Initial: no old marker, no current value.
	if events[0].HasOld || events[0].NewPresent {
		t.Errorf("initial event = %+v", events[0])
	}

	// update("Test")
	if !events[1].HasOld || !events[1].NewPresent {
		t.Errorf("event 1 markers = %+v", events[1])
	}
	if got, _ := storable.ToString(events[1].New); got != "Test" {
		t.Errorf("event 1 value = %q", got)
	}
	if events[1].OldPresent {
		t.Error("event 1 should have no old value")
	}

	// update(nil) from the remove
	if !events[2].HasOld || events[2].NewPresent {
		t.Errorf("event 2 = %+v", events[2])
	}
	if got, _ := storable.ToString(events[2].Old); got != "Test" {
		t.Errorf("event 2 old = %q", got)
	}

	// update("Default") from defaults registration
	if got, _ := storable.ToString(events[3].New); got != "Default" || !events[3].NewPresent {
		t.Errorf("event 3 = %+v", events[3])
	}

	// update(1)
	if got, _ := storable.ToInt64(events[4].New); got != 1 {
		t.Errorf("event 4 value = %d", got)
	}
	if got, _ := storable.ToString(events[4].Old); got != "Default" {
		t.Errorf("event 4 old = %q", got)
	}

	// Unobserve stops delivery even though mutations continue.
	s.Unobserve(token)
	s.Set("UserID", storable.Int(99))
	if len(events) != 5 {
		t.Errorf("event delivered after Unobserve: %d events", len(events))
	}
}

func TestMemory_DefaultUnderExplicitValueIsSilent(t *testing.T) {
	s := NewMemory()
	s.Set("key", storable.String("explicit"))

	var count int
	s.Observe("key", func(Event) { count++ })

	// count is 1 from the initial delivery.
	s.RegisterDefaults(map[string]storable.Value{"key": storable.String("default")})
	if count != 1 {
		t.Errorf("defaults registration under explicit value produced an event (count=%d)", count)
	}
}

func TestMemory_RemoveAbsentIsSilent(t *testing.T) {
	s := NewMemory()

	var count int
	s.Observe("key", func(Event) { count++ })

	s.Remove("key")
	if count != 1 {
		t.Errorf("remove of absent key produced an event (count=%d)", count)
	}
}

func TestMemory_ObserverCanMutate(t *testing.T) {
	s := NewMemory()

	first := true
	s.Observe("a", func(ev Event) {
		if ev.HasOld && first {
			first = false
			// Reentrant write from within a delivery must not deadlock.
			s.Set("b", storable.Int(1))
		}
	})

	s.Set("a", storable.Int(1))
	if _, ok := s.Get("b"); !ok {
		t.Error("reentrant Set was lost")
	}
}

func TestMemory_Snapshot(t *testing.T) {
	s := NewMemory()
	s.RegisterDefaults(map[string]storable.Value{"d": storable.Int(1)})
	s.Set("a", storable.Int(2))

	snap := s.Snapshot()
	if len(snap) != 1 {
		t.Fatalf("Snapshot len = %d, want 1 (defaults excluded)", len(snap))
	}
	if v, ok := snap["a"]; !ok || !v.Equal(storable.Int(2)) {
		t.Errorf("Snapshot[a] = %v", v)
	}
}
