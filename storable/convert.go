package storable

import (
	"math"
	"reflect"
	"sort"
	"time"
)

// ToBool converts a value stored as a boolean. A value stored under any
// other tag, including an integer, does not convert.
func ToBool(v Value) (bool, bool) {
	if v.kind != KindBool {
		return false, false
	}
	return v.b, true
}

// ToInt64 converts a value stored as an integer when it fits in an
// int64.
func ToInt64(v Value) (int64, bool) {
	if v.kind != KindInt {
		return 0, false
	}
	if v.neg {
		if v.mag > uint64(math.MaxInt64)+1 {
			return 0, false
		}
		return -int64(v.mag-1) - 1, true
	}
	if v.mag > uint64(math.MaxInt64) {
		return 0, false
	}
	return int64(v.mag), true
}

// ToInt converts a value stored as an integer when it fits in an int.
func ToInt(v Value) (int, bool) {
	i, ok := ToInt64(v)
	if !ok || i < math.MinInt || i > math.MaxInt {
		return 0, false
	}
	return int(i), true
}

// ToInt8 converts a value stored as an integer when it fits in an int8.
func ToInt8(v Value) (int8, bool) {
	i, ok := ToInt64(v)
	if !ok || i < math.MinInt8 || i > math.MaxInt8 {
		return 0, false
	}
	return int8(i), true
}

// ToInt16 converts a value stored as an integer when it fits in an int16.
func ToInt16(v Value) (int16, bool) {
	i, ok := ToInt64(v)
	if !ok || i < math.MinInt16 || i > math.MaxInt16 {
		return 0, false
	}
	return int16(i), true
}

// ToInt32 converts a value stored as an integer when it fits in an int32.
func ToInt32(v Value) (int32, bool) {
	i, ok := ToInt64(v)
	if !ok || i < math.MinInt32 || i > math.MaxInt32 {
		return 0, false
	}
	return int32(i), true
}

// ToUint64 converts a value stored as a non-negative integer.
func ToUint64(v Value) (uint64, bool) {
	if v.kind != KindInt || v.neg {
		return 0, false
	}
	return v.mag, true
}

// ToUint converts a value stored as an integer when it fits in a uint.
func ToUint(v Value) (uint, bool) {
	u, ok := ToUint64(v)
	if !ok || u > math.MaxUint {
		return 0, false
	}
	return uint(u), true
}

// ToUint8 converts a value stored as an integer when it fits in a uint8.
func ToUint8(v Value) (uint8, bool) {
	u, ok := ToUint64(v)
	if !ok || u > math.MaxUint8 {
		return 0, false
	}
	return uint8(u), true
}

// ToUint16 converts a value stored as an integer when it fits in a uint16.
func ToUint16(v Value) (uint16, bool) {
	u, ok := ToUint64(v)
	if !ok || u > math.MaxUint16 {
		return 0, false
	}
	return uint16(u), true
}

// ToUint32 converts a value stored as an integer when it fits in a uint32.
func ToUint32(v Value) (uint32, bool) {
	u, ok := ToUint64(v)
	if !ok || u > math.MaxUint32 {
		return 0, false
	}
	return uint32(u), true
}

// ToFloat64 converts a value stored as a float. Integers do not convert;
// the tags are distinct.
func ToFloat64(v Value) (float64, bool) {
	if v.kind != KindFloat {
		return 0, false
	}
	return v.f, true
}

// ToFloat32 converts a value stored as a float, narrowing to 32 bits.
func ToFloat32(v Value) (float32, bool) {
	f, ok := ToFloat64(v)
	if !ok {
		return 0, false
	}
	return float32(f), true
}

// ToString converts a value stored as a string.
func ToString(v Value) (string, bool) {
	if v.kind != KindString {
		return "", false
	}
	return v.s, true
}

// ToData converts a value stored as a binary blob.
func ToData(v Value) ([]byte, bool) {
	if v.kind != KindData {
		return nil, false
	}
	return v.d, true
}

// ToDate converts a value stored as a date.
func ToDate(v Value) (time.Time, bool) {
	if v.kind != KindDate {
		return time.Time{}, false
	}
	return v.t, true
}

// ToSlice converts an array value element by element. The conversion
// fails as a whole if the value is not an array or any single element
// does not convert; no partial slice is returned.
func ToSlice[T any](v Value, conv func(Value) (T, bool)) ([]T, bool) {
	if v.kind != KindArray {
		return nil, false
	}
	out := make([]T, len(v.a))
	for i, elem := range v.a {
		e, ok := conv(elem)
		if !ok {
			return nil, false
		}
		out[i] = e
	}
	return out, true
}

// ToStringMap converts a dictionary value entry by entry. The conversion
// fails as a whole if the value is not a dictionary or any single entry
// does not convert; no partial map is returned.
func ToStringMap[T any](v Value, conv func(Value) (T, bool)) (map[string]T, bool) {
	if v.kind != KindDict {
		return nil, false
	}
	out := make(map[string]T, len(v.m))
	for key, val := range v.m {
		e, ok := conv(val)
		if !ok {
			return nil, false
		}
		out[key] = e
	}
	return out, true
}

// FromSlice builds an array value from a native slice.
func FromSlice[T any](vs []T, conv func(T) Value) Value {
	elems := make([]Value, len(vs))
	for i, v := range vs {
		elems[i] = conv(v)
	}
	return Array(elems...)
}

// FromStringMap builds a dictionary value from a native map. Go maps
// carry no insertion order, so keys are sorted for determinism.
func FromStringMap[T any](m map[string]T, conv func(T) Value) Value {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	entries := make([]Entry, len(keys))
	for i, k := range keys {
		entries[i] = Entry{Key: k, Value: conv(m[k])}
	}
	return Dict(entries...)
}

// FromAny converts an arbitrary native value to a Value. It handles the
// primitive Go types directly and falls back to reflection so that
// derived types (enums with a primitive underlying type), arbitrary
// slices, and string-keyed maps convert too. It reports false for
// anything outside the primitive lattice.
func FromAny(v any) (Value, bool) {
	switch t := v.(type) {
	case Value:
		return t, true
	case bool:
		return Bool(t), true
	case int:
		return Int(int64(t)), true
	case int8:
		return Int(int64(t)), true
	case int16:
		return Int(int64(t)), true
	case int32:
		return Int(int64(t)), true
	case int64:
		return Int(t), true
	case uint:
		return Uint(uint64(t)), true
	case uint8:
		return Uint(uint64(t)), true
	case uint16:
		return Uint(uint64(t)), true
	case uint32:
		return Uint(uint64(t)), true
	case uint64:
		return Uint(t), true
	case float32:
		return Float(float64(t)), true
	case float64:
		return Float(t), true
	case string:
		return String(t), true
	case []byte:
		return Data(t), true
	case time.Time:
		return Date(t), true
	case []any:
		elems := make([]Value, len(t))
		for i, e := range t {
			ev, ok := FromAny(e)
			if !ok {
				return Value{}, false
			}
			elems[i] = ev
		}
		return Array(elems...), true
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		entries := make([]Entry, 0, len(keys))
		for _, k := range keys {
			ev, ok := FromAny(t[k])
			if !ok {
				return Value{}, false
			}
			entries = append(entries, Entry{Key: k, Value: ev})
		}
		return Dict(entries...), true
	}
	return fromReflect(reflect.ValueOf(v))
}

// fromReflect handles derived types and generic containers.
func fromReflect(rv reflect.Value) (Value, bool) {
	if !rv.IsValid() {
		return Value{}, false
	}
	switch rv.Kind() {
	case reflect.Bool:
		return Bool(rv.Bool()), true
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return Int(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return Uint(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return Float(rv.Float()), true
	case reflect.String:
		return String(rv.String()), true
	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.Type().Elem().Kind() == reflect.Uint8 {
			return Data(rv.Bytes()), true
		}
		elems := make([]Value, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			ev, ok := FromAny(rv.Index(i).Interface())
			if !ok {
				return Value{}, false
			}
			elems[i] = ev
		}
		return Array(elems...), true
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return Value{}, false
		}
		keys := make([]string, 0, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			keys = append(keys, iter.Key().String())
		}
		sort.Strings(keys)
		entries := make([]Entry, 0, len(keys))
		for _, k := range keys {
			mv := rv.MapIndex(reflect.ValueOf(k).Convert(rv.Type().Key()))
			ev, ok := FromAny(mv.Interface())
			if !ok {
				return Value{}, false
			}
			entries = append(entries, Entry{Key: k, Value: ev})
		}
		return Dict(entries...), true
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return Value{}, false
		}
		return FromAny(rv.Elem().Interface())
	default:
		return Value{}, false
	}
}

// Interface returns the value as a plain Go value: bool, int64 (or
// uint64 when the magnitude exceeds the int64 range), float64, string,
// []byte, time.Time, []any, or map[string]any.
func (v Value) Interface() any {
	switch v.kind {
	case KindBool:
		return v.b
	case KindInt:
		if i, ok := ToInt64(v); ok {
			return i
		}
		return v.mag
	case KindFloat:
		return v.f
	case KindString:
		return v.s
	case KindData:
		return v.d
	case KindDate:
		return v.t
	case KindArray:
		out := make([]any, len(v.a))
		for i, e := range v.a {
			out[i] = e.Interface()
		}
		return out
	case KindDict:
		out := make(map[string]any, len(v.m))
		for key, val := range v.m {
			out[key] = val.Interface()
		}
		return out
	default:
		return nil
	}
}
