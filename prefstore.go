package prefstore

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/dshills/prefstore/loader"
	"github.com/dshills/prefstore/observe"
	"github.com/dshills/prefstore/storable"
	"github.com/dshills/prefstore/store"
)

// Key addresses one entry in the store. Keys are compared by their
// underlying string, case-sensitively, with no normalization.
type Key string

// String returns the raw key string.
func (k Key) String() string {
	return string(k)
}

// Defaults provides typed access to a raw store.
//
// All operations are synchronous and delegate directly to the store;
// Defaults itself holds no state beyond its configuration and needs no
// teardown. Reads never fail for data reasons: a value stored under a
// different shape than requested reads as absent and is logged at Info.
type Defaults struct {
	store  store.Store
	logger *slog.Logger
}

// Option configures a Defaults instance.
type Option func(*Defaults)

// WithLogger sets the logger used for data-shape failures.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Defaults) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// New creates a typed layer over the given store.
func New(st store.Store, opts ...Option) *Defaults {
	d := &Defaults{
		store:  st,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Open is a convenience constructor over a plist-file-backed store.
func Open(path string, opts ...Option) (*Defaults, *store.FileStore, error) {
	fs, err := store.OpenFile(path)
	if err != nil {
		return nil, nil, err
	}
	return New(fs, opts...), fs, nil
}

// Value returns the raw stored value for key.
func (d *Defaults) Value(key Key) (storable.Value, bool) {
	return d.store.Get(string(key))
}

// SetValue stores a raw value under key.
func (d *Defaults) SetValue(key Key, value storable.Value) {
	d.store.Set(string(key), value)
}

// Remove deletes the explicit value under key.
func (d *Defaults) Remove(key Key) {
	d.store.Remove(string(key))
}

// RegisterDefaults installs fallback values used when a key has no
// explicit value.
func (d *Defaults) RegisterDefaults(defaults map[Key]storable.Value) {
	raw := make(map[string]storable.Value, len(defaults))
	for k, v := range defaults {
		raw[string(k)] = v
	}
	d.store.RegisterDefaults(raw)
}

// RegisterDefaultsFile loads a defaults file and registers its values.
// The format is chosen by extension: .toml, .yaml, or .yml. A missing
// file registers nothing.
func (d *Defaults) RegisterDefaultsFile(path string) error {
	var (
		values map[string]storable.Value
		err    error
	)
	switch filepath.Ext(path) {
	case ".toml":
		values, err = loader.NewTOMLLoader(path).Load()
	case ".yaml", ".yml":
		values, err = loader.NewYAMLLoader(path).Load()
	default:
		return fmt.Errorf("prefstore: unsupported defaults file %q", path)
	}
	if err != nil {
		return err
	}
	if len(values) > 0 {
		d.store.RegisterDefaults(values)
	}
	return nil
}

// Bool returns the boolean stored under key.
func (d *Defaults) Bool(key Key) (bool, bool) {
	return Get(d, key, storable.ToBool)
}

// SetBool stores a boolean under key.
func (d *Defaults) SetBool(key Key, v bool) {
	d.store.Set(string(key), storable.Bool(v))
}

// Int returns the integer stored under key.
func (d *Defaults) Int(key Key) (int64, bool) {
	return Get(d, key, storable.ToInt64)
}

// SetInt stores an integer under key.
func (d *Defaults) SetInt(key Key, v int64) {
	d.store.Set(string(key), storable.Int(v))
}

// Uint returns the unsigned integer stored under key.
func (d *Defaults) Uint(key Key) (uint64, bool) {
	return Get(d, key, storable.ToUint64)
}

// SetUint stores an unsigned integer under key.
func (d *Defaults) SetUint(key Key, v uint64) {
	d.store.Set(string(key), storable.Uint(v))
}

// Float returns the float stored under key.
func (d *Defaults) Float(key Key) (float64, bool) {
	return Get(d, key, storable.ToFloat64)
}

// SetFloat stores a float under key.
func (d *Defaults) SetFloat(key Key, v float64) {
	d.store.Set(string(key), storable.Float(v))
}

// String returns the string stored under key.
func (d *Defaults) String(key Key) (string, bool) {
	return Get(d, key, storable.ToString)
}

// SetString stores a string under key.
func (d *Defaults) SetString(key Key, v string) {
	d.store.Set(string(key), storable.String(v))
}

// Data returns the binary blob stored under key.
func (d *Defaults) Data(key Key) ([]byte, bool) {
	return Get(d, key, storable.ToData)
}

// SetData stores a binary blob under key.
func (d *Defaults) SetData(key Key, v []byte) {
	d.store.Set(string(key), storable.Data(v))
}

// Date returns the date stored under key.
func (d *Defaults) Date(key Key) (time.Time, bool) {
	return Get(d, key, storable.ToDate)
}

// SetDate stores a date under key.
func (d *Defaults) SetDate(key Key, v time.Time) {
	d.store.Set(string(key), storable.Date(v))
}

// ObserveValue subscribes to raw value changes of key. The handler
// receives the initial snapshot synchronously before ObserveValue
// returns. Invalidate the returned observation to stop deliveries;
// pairing it with defer gives scoped observation.
func (d *Defaults) ObserveValue(key Key, handler observe.Handler) *observe.Observation {
	return observe.New(d.store, string(key), handler)
}

// logMismatch records a read that found a value of the wrong shape. The
// read itself degrades to absent; the mismatch is deliberately not
// surfaced to the caller as a distinct condition.
func (d *Defaults) logMismatch(key Key, requested string, actual storable.Kind) {
	d.logger.Info("stored value has a different type than requested",
		"key", string(key),
		"requested", requested,
		"stored", actual.String(),
	)
}
