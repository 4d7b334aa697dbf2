// Package observe turns the store's raw change callbacks into a typed,
// cancelable event stream for a single key.
//
// An Observation delivers exactly one Initial event, synchronously,
// when it is created, then one Update event per mutation of the key, in
// mutation order, on the goroutine that performed the mutation.
// Handlers must not block and must tolerate being invoked from any
// goroutine that mutates the store.
package observe

import (
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/dshills/prefstore/storable"
	"github.com/dshills/prefstore/store"
)

// Kind distinguishes the one-time snapshot event from mutation events.
type Kind int

const (
	// Initial is the synchronous snapshot delivered once when the
	// observation registers, carrying the current value even if the key
	// was never set.
	Initial Kind = iota

	// Update is delivered once per subsequent mutation, including a
	// mutation that removes the value.
	Update
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case Initial:
		return "initial"
	case Update:
		return "update"
	default:
		return "unknown"
	}
}

// Event is one delivery to an observation handler.
type Event struct {
	// Kind classifies the delivery.
	Kind Kind

	// Value is the raw value after the change. Meaningful only when
	// Present is true.
	Value storable.Value

	// Present is false when the key has no value.
	Present bool
}

// Handler receives observation events.
type Handler func(Event)

// Observation is a live subscription to one key. It exclusively owns its
// registration with the underlying store; invalidating it is the only
// way that registration is released.
//
// Pair construction with a deferred Invalidate for scoped observations:
//
//	obs := observe.New(st, "theme", handler)
//	defer obs.Invalidate()
type Observation struct {
	st          store.Store
	token       store.Token
	invalidated atomic.Bool
}

// New registers an observation for key and synchronously delivers the
// initial event before returning.
//
// Keys containing a path delimiter ('.') are rejected with a panic: the
// underlying notification primitive interprets dotted keys as property
// paths, so observing one is a programmer error, not a data error.
func New(st store.Store, key string, handler Handler) *Observation {
	if strings.ContainsRune(key, '.') {
		panic(fmt.Sprintf("observe: key %q contains a path delimiter", key))
	}

	o := &Observation{st: st}
	o.token = st.Observe(key, func(ev store.Event) {
		// A delivery racing Invalidate must not reach the handler once
		// Invalidate has returned.
		if o.invalidated.Load() {
			return
		}

		kind := Update
		if !ev.HasOld {
			kind = Initial
		}
		handler(Event{
			Kind:    kind,
			Value:   ev.New,
			Present: ev.NewPresent,
		})
	})
	return o
}

// Invalidate unregisters the observation. It is idempotent and safe to
// call from any goroutine, including concurrently with an in-flight
// delivery: after Invalidate returns, the handler is not invoked again.
func (o *Observation) Invalidate() {
	if o.invalidated.CompareAndSwap(false, true) {
		o.st.Unobserve(o.token)
	}
}
