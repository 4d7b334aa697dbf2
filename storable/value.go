// Package storable defines the primitive value lattice used by the
// defaults store and the conversions between it and native Go types.
//
// A Value is a closed tagged union over exactly eight shapes: boolean,
// integer, floating point, string, binary data, date, ordered array, and
// string-keyed dictionary. Everything the store persists is one of these
// shapes. Conversions to native types are total and fallible: they never
// coerce across tags and never panic, they report failure through a
// second boolean return.
package storable

import (
	"bytes"
	"math"
	"time"
)

// Kind identifies the shape of a Value.
type Kind uint8

const (
	// KindBool is a boolean value.
	KindBool Kind = iota

	// KindInt is an integer value. Signed and unsigned widths share this
	// kind; the full int64 and uint64 ranges are representable.
	KindInt

	// KindFloat is a 64-bit floating point value.
	KindFloat

	// KindString is a text string.
	KindString

	// KindData is an opaque binary blob.
	KindData

	// KindDate is an absolute point in time.
	KindDate

	// KindArray is an ordered sequence of values.
	KindArray

	// KindDict is a string-keyed mapping of values. Insertion order is
	// retained for deterministic encoding but is not significant for
	// equality.
	KindDict
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindData:
		return "data"
	case KindDate:
		return "date"
	case KindArray:
		return "array"
	case KindDict:
		return "dict"
	default:
		return "unknown"
	}
}

// Value is one storable value. The zero Value is a false boolean.
type Value struct {
	kind Kind

	b bool

	// Integers are stored as magnitude plus sign so that both
	// math.MinInt64 and math.MaxUint64 survive a round trip.
	mag uint64
	neg bool

	f float64
	s string
	d []byte
	t time.Time

	a []Value

	// Dictionary storage: keys preserves insertion order, m provides
	// lookup.
	keys []string
	m    map[string]Value
}

// Entry is one key/value pair of a dictionary Value.
type Entry struct {
	Key   string
	Value Value
}

// Bool returns a boolean Value.
func Bool(v bool) Value {
	return Value{kind: KindBool, b: v}
}

// Int returns an integer Value.
func Int(v int64) Value {
	if v < 0 {
		return Value{kind: KindInt, neg: true, mag: uint64(-(v + 1)) + 1}
	}
	return Value{kind: KindInt, mag: uint64(v)}
}

// Uint returns an integer Value from an unsigned native value.
func Uint(v uint64) Value {
	return Value{kind: KindInt, mag: v}
}

// Float returns a floating point Value.
func Float(v float64) Value {
	return Value{kind: KindFloat, f: v}
}

// String returns a string Value.
func String(v string) Value {
	return Value{kind: KindString, s: v}
}

// Data returns a binary blob Value. The byte slice is not copied.
func Data(v []byte) Value {
	return Value{kind: KindData, d: v}
}

// Date returns a date Value.
func Date(v time.Time) Value {
	return Value{kind: KindDate, t: v}
}

// Array returns an ordered array Value.
func Array(elems ...Value) Value {
	return Value{kind: KindArray, a: elems}
}

// Dict returns a dictionary Value. Entries are stored in the order given;
// a repeated key keeps its first position and takes the last value.
func Dict(entries ...Entry) Value {
	v := Value{kind: KindDict, m: make(map[string]Value, len(entries))}
	for _, e := range entries {
		if _, ok := v.m[e.Key]; !ok {
			v.keys = append(v.keys, e.Key)
		}
		v.m[e.Key] = e.Value
	}
	return v
}

// Kind returns the shape of the value.
func (v Value) Kind() Kind {
	return v.kind
}

// Len returns the element count for arrays and dictionaries, and 0 for
// every other kind.
func (v Value) Len() int {
	switch v.kind {
	case KindArray:
		return len(v.a)
	case KindDict:
		return len(v.keys)
	default:
		return 0
	}
}

// Index returns the i-th element of an array value. It panics if the
// value is not an array or the index is out of range, mirroring slice
// indexing.
func (v Value) Index(i int) Value {
	if v.kind != KindArray {
		panic("storable: Index on non-array value")
	}
	return v.a[i]
}

// Keys returns the dictionary keys in insertion order. It returns nil
// for non-dictionary values.
func (v Value) Keys() []string {
	if v.kind != KindDict {
		return nil
	}
	keys := make([]string, len(v.keys))
	copy(keys, v.keys)
	return keys
}

// Get returns the dictionary value stored under key.
func (v Value) Get(key string) (Value, bool) {
	if v.kind != KindDict {
		return Value{}, false
	}
	val, ok := v.m[key]
	return val, ok
}

// Equal reports whether two values are equal. Arrays compare
// element-wise in order; dictionaries compare by key set and values,
// ignoring insertion order. Dates compare with time.Time.Equal, floats
// compare bitwise so NaN equals NaN.
func (v Value) Equal(other Value) bool {
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case KindBool:
		return v.b == other.b
	case KindInt:
		return v.mag == other.mag && v.neg == other.neg
	case KindFloat:
		return math.Float64bits(v.f) == math.Float64bits(other.f)
	case KindString:
		return v.s == other.s
	case KindData:
		return bytes.Equal(v.d, other.d)
	case KindDate:
		return v.t.Equal(other.t)
	case KindArray:
		if len(v.a) != len(other.a) {
			return false
		}
		for i := range v.a {
			if !v.a[i].Equal(other.a[i]) {
				return false
			}
		}
		return true
	case KindDict:
		if len(v.m) != len(other.m) {
			return false
		}
		for key, val := range v.m {
			ov, ok := other.m[key]
			if !ok || !val.Equal(ov) {
				return false
			}
		}
		return true
	default:
		return false
	}
}
