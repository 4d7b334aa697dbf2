// Package prefstore is a typed access layer over a flat, persistent
// key-value defaults store.
//
// The raw store (package store) persists only eight primitive shapes:
// booleans, integers, floats, strings, binary blobs, dates, ordered
// arrays, and string-keyed dictionaries. This package layers typed,
// fallible access on top: reads that find a value of the wrong shape
// degrade to "absent" and are logged, never returned as errors and
// never coerced. Richer structured types are pushed through one of two
// named blob encodings (package coding), and enum-like types with a
// primitive underlying type are stored as that primitive directly.
//
// Changes to a key can be observed (package observe); observations
// deliver an initial snapshot followed by ordered updates, synchronously
// on the mutating goroutine, until invalidated.
package prefstore
