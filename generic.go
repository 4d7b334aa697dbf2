package prefstore

import (
	"fmt"
	"reflect"

	"github.com/dshills/prefstore/coding"
	"github.com/dshills/prefstore/observe"
	"github.com/dshills/prefstore/storable"
)

// Get reads the value under key and converts it with conv. A missing
// value and a value of the wrong shape both read as absent; the latter
// is logged.
func Get[T any](d *Defaults, key Key, conv func(storable.Value) (T, bool)) (T, bool) {
	var zero T
	raw, ok := d.store.Get(string(key))
	if !ok {
		return zero, false
	}
	v, ok := conv(raw)
	if !ok {
		d.logMismatch(key, fmt.Sprintf("%T", zero), raw.Kind())
		return zero, false
	}
	return v, true
}

// Change is one typed observation event.
type Change[T any] struct {
	// Kind is Initial for the registration snapshot, Update afterwards.
	Kind observe.Kind

	// Value is the decoded value. Meaningful only when Present is true.
	Value T

	// Present is false when the key has no value or the stored value
	// does not decode to T.
	Present bool
}

// Observe subscribes to changes of key, decoding each raw value with
// conv. The initial snapshot is delivered synchronously before Observe
// returns; updates follow in mutation order on the mutating goroutine.
// Stored values that do not decode are delivered as absent and logged.
func Observe[T any](d *Defaults, key Key, conv func(storable.Value) (T, bool), handler func(Change[T])) *observe.Observation {
	return observe.New(d.store, string(key), func(ev observe.Event) {
		var value T
		present := false
		if ev.Present {
			v, ok := conv(ev.Value)
			if ok {
				value, present = v, true
			} else {
				d.logMismatch(key, fmt.Sprintf("%T", value), ev.Value.Kind())
			}
		}
		handler(Change[T]{Kind: ev.Kind, Value: value, Present: present})
	})
}

// Primitive constrains enum-like types to those with a storable
// underlying type.
type Primitive interface {
	~bool | ~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 |
		~float32 | ~float64 | ~string
}

// SetEnum stores an enum-like value as its backing primitive, directly
// under the key with no blob encoding.
func SetEnum[T Primitive](d *Defaults, key Key, v T) {
	raw, _ := storable.FromAny(v)
	d.store.Set(string(key), raw)
}

// Enum reads an enum-like value back from its backing primitive. A
// stored value of the wrong shape, or one outside the range of T's
// underlying type, reads as absent.
func Enum[T Primitive](d *Defaults, key Key) (T, bool) {
	var zero T
	raw, ok := d.store.Get(string(key))
	if !ok {
		return zero, false
	}

	rv := reflect.New(reflect.TypeOf((*T)(nil)).Elem()).Elem()
	switch rv.Kind() {
	case reflect.Bool:
		b, ok := storable.ToBool(raw)
		if !ok {
			d.logMismatch(key, fmt.Sprintf("%T", zero), raw.Kind())
			return zero, false
		}
		rv.SetBool(b)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		i, ok := storable.ToInt64(raw)
		if !ok || rv.OverflowInt(i) {
			d.logMismatch(key, fmt.Sprintf("%T", zero), raw.Kind())
			return zero, false
		}
		rv.SetInt(i)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		u, ok := storable.ToUint64(raw)
		if !ok || rv.OverflowUint(u) {
			d.logMismatch(key, fmt.Sprintf("%T", zero), raw.Kind())
			return zero, false
		}
		rv.SetUint(u)
	case reflect.Float32, reflect.Float64:
		f, ok := storable.ToFloat64(raw)
		if !ok {
			d.logMismatch(key, fmt.Sprintf("%T", zero), raw.Kind())
			return zero, false
		}
		rv.SetFloat(f)
	case reflect.String:
		s, ok := storable.ToString(raw)
		if !ok {
			d.logMismatch(key, fmt.Sprintf("%T", zero), raw.Kind())
			return zero, false
		}
		rv.SetString(s)
	}
	return rv.Interface().(T), true
}

// SetObject encodes v with the chosen strategy and stores the resulting
// blob under key. If encoding fails the write is aborted AND any value
// previously stored under the key is removed: a stale value lingering
// under a key that just failed to take a new one is worse than no value.
// The encode error is returned and logged.
func SetObject[T any](d *Defaults, key Key, v T, strategy coding.Strategy) error {
	data, err := coding.Encode(strategy, v)
	if err != nil {
		d.logger.Error("encoding object for storage failed; removing previous value",
			"key", string(key),
			"strategy", strategy.String(),
			"error", err,
		)
		d.store.Remove(string(key))
		return err
	}
	d.store.Set(string(key), storable.Data(data))
	return nil
}

// Object reads the blob under key and decodes it with the chosen
// strategy. The strategy must match the one used to encode; a mismatch
// or malformed blob reads as absent and is logged at Error.
func Object[T any](d *Defaults, key Key, strategy coding.Strategy) (T, bool) {
	var zero T
	raw, ok := d.store.Get(string(key))
	if !ok {
		return zero, false
	}
	data, ok := storable.ToData(raw)
	if !ok {
		d.logMismatch(key, "data", raw.Kind())
		return zero, false
	}

	var out T
	if err := coding.Decode(strategy, data, &out); err != nil {
		d.logger.Error("decoding stored object failed",
			"key", string(key),
			"strategy", strategy.String(),
			"error", err,
		)
		return zero, false
	}
	return out, true
}
