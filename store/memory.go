package store

import (
	"sync"

	"github.com/google/uuid"

	"github.com/dshills/prefstore/storable"
)

// MemoryStore is an in-process Store. It layers explicit values over
// registered defaults and delivers change events synchronously on the
// goroutine that performed the mutation.
//
// Observers are invoked outside the store lock, so handlers may call
// back into the store.
type MemoryStore struct {
	mu sync.RWMutex

	// Explicitly set values
	values map[string]storable.Value

	// Registered fallback values
	defaults map[string]storable.Value

	// Per-key observers
	observers map[string]map[Token]ObserveFunc
}

// NewMemory creates an empty MemoryStore.
func NewMemory() *MemoryStore {
	return &MemoryStore{
		values:    make(map[string]storable.Value),
		defaults:  make(map[string]storable.Value),
		observers: make(map[string]map[Token]ObserveFunc),
	}
}

// Get returns the effective value for key.
func (s *MemoryStore) Get(key string) (storable.Value, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.effectiveLocked(key)
}

// Set stores an explicit value and notifies the key's observers. Every
// set is a mutation and produces an event, even when the new value
// equals the old one.
func (s *MemoryStore) Set(key string, value storable.Value) {
	s.mu.Lock()
	old, oldOK := s.effectiveLocked(key)
	s.values[key] = value
	fns := s.observersLocked(key)
	s.mu.Unlock()

	deliver(fns, Event{
		Key:        key,
		HasOld:     true,
		Old:        old,
		OldPresent: oldOK,
		New:        value,
		NewPresent: true,
	})
}

// Remove deletes the explicit value for key. Observers are notified only
// when an explicit value was actually removed; the new effective value
// may be a registered default.
func (s *MemoryStore) Remove(key string) {
	s.mu.Lock()
	if _, exists := s.values[key]; !exists {
		s.mu.Unlock()
		return
	}
	old, _ := s.effectiveLocked(key)
	delete(s.values, key)
	newVal, newOK := s.effectiveLocked(key)
	fns := s.observersLocked(key)
	s.mu.Unlock()

	deliver(fns, Event{
		Key:        key,
		HasOld:     true,
		Old:        old,
		OldPresent: true,
		New:        newVal,
		NewPresent: newOK,
	})
}

// RegisterDefaults installs fallback values. Observers are notified only
// for keys whose effective value actually changes: a default registered
// under an explicitly set key is invisible.
func (s *MemoryStore) RegisterDefaults(defaults map[string]storable.Value) {
	type pending struct {
		fns []ObserveFunc
		ev  Event
	}
	var notifications []pending

	s.mu.Lock()
	for key, value := range defaults {
		old, oldOK := s.effectiveLocked(key)
		s.defaults[key] = value

		if _, explicit := s.values[key]; explicit {
			continue
		}
		if oldOK && old.Equal(value) {
			continue
		}
		notifications = append(notifications, pending{
			fns: s.observersLocked(key),
			ev: Event{
				Key:        key,
				HasOld:     true,
				Old:        old,
				OldPresent: oldOK,
				New:        value,
				NewPresent: true,
			},
		})
	}
	s.mu.Unlock()

	for _, n := range notifications {
		deliver(n.fns, n.ev)
	}
}

// Observe subscribes fn to changes of key. fn is invoked synchronously
// with the current value before Observe returns.
func (s *MemoryStore) Observe(key string, fn ObserveFunc) Token {
	s.mu.Lock()
	token := Token(uuid.New())
	if s.observers[key] == nil {
		s.observers[key] = make(map[Token]ObserveFunc)
	}
	s.observers[key][token] = fn
	cur, ok := s.effectiveLocked(key)
	s.mu.Unlock()

	fn(Event{
		Key:        key,
		New:        cur,
		NewPresent: ok,
	})
	return token
}

// Unobserve removes a subscription.
func (s *MemoryStore) Unobserve(token Token) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key, fns := range s.observers {
		if _, ok := fns[token]; ok {
			delete(fns, token)
			if len(fns) == 0 {
				delete(s.observers, key)
			}
			return
		}
	}
}

// Snapshot returns a copy of the explicitly set values. Registered
// defaults are not included.
func (s *MemoryStore) Snapshot() map[string]storable.Value {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]storable.Value, len(s.values))
	for k, v := range s.values {
		out[k] = v
	}
	return out
}

// effectiveLocked resolves explicit value, then default. Callers hold
// the lock.
func (s *MemoryStore) effectiveLocked(key string) (storable.Value, bool) {
	if v, ok := s.values[key]; ok {
		return v, true
	}
	v, ok := s.defaults[key]
	return v, ok
}

// observersLocked copies the key's observer list so delivery can happen
// outside the lock. Callers hold the lock.
func (s *MemoryStore) observersLocked(key string) []ObserveFunc {
	fns := s.observers[key]
	if len(fns) == 0 {
		return nil
	}
	out := make([]ObserveFunc, 0, len(fns))
	for _, fn := range fns {
		out = append(out, fn)
	}
	return out
}

func deliver(fns []ObserveFunc, ev Event) {
	for _, fn := range fns {
		fn(ev)
	}
}
