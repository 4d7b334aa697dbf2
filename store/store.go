// Package store defines the raw key-value store underneath the typed
// defaults layer, along with an in-process reference implementation and
// a plist-file-backed implementation.
//
// The store deals only in raw storable values keyed by plain strings.
// Typed conversion, observation lifecycle, and logging all live above
// this seam.
package store

import (
	"github.com/google/uuid"

	"github.com/dshills/prefstore/storable"
)

// Event is one raw change delivery. The first delivery after a
// subscription registers carries no old-value marker; every delivery
// caused by a subsequent mutation does. Observers classify deliveries by
// marker presence, not by counting.
type Event struct {
	// Key is the key the event concerns.
	Key string

	// HasOld reports whether the delivery carries a prior value marker.
	// It is false only for the immediate registration callback.
	HasOld bool

	// Old is the effective value before the mutation. Meaningful only
	// when HasOld and OldPresent are both true.
	Old storable.Value

	// OldPresent is false when no value (explicit or default) existed
	// before the mutation.
	OldPresent bool

	// New is the effective value after the mutation.
	New storable.Value

	// NewPresent is false when the key has no value after the mutation.
	NewPresent bool
}

// ObserveFunc receives raw change events. It is invoked synchronously on
// the goroutine that performed the mutation.
type ObserveFunc func(Event)

// Token identifies one observation registration.
type Token uuid.UUID

// Store is the raw persistence primitive the typed layer builds on.
//
// Implementations serialize their own reads and writes and deliver
// change events synchronously on the mutating goroutine. Observe invokes
// fn once, synchronously, with the current value (no old-value marker)
// before it returns, then once per subsequent mutation of the key.
type Store interface {
	// Get returns the effective value for key: the explicitly set value
	// if present, otherwise the registered default.
	Get(key string) (storable.Value, bool)

	// Set stores an explicit value for key.
	Set(key string, value storable.Value)

	// Remove deletes the explicit value for key. Registered defaults are
	// unaffected.
	Remove(key string)

	// RegisterDefaults installs fallback values used when no explicit
	// value is set. Defaults are not persisted.
	RegisterDefaults(defaults map[string]storable.Value)

	// Observe subscribes fn to changes of key and returns a token for
	// Unobserve.
	Observe(key string, fn ObserveFunc) Token

	// Unobserve removes a subscription. Unknown tokens are ignored.
	Unobserve(token Token)
}
