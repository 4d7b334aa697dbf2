// Package loader reads defaults-registration files. A loaded file is a
// flat mapping from key to storable value, ready to hand to a store's
// RegisterDefaults; nested tables become dictionary values.
package loader

import (
	"fmt"
	"sort"

	"github.com/dshills/prefstore/storable"
)

// ParseError describes a file that could not be parsed or holds values
// outside the primitive lattice.
type ParseError struct {
	// Path is the file the error came from.
	Path string

	// Message is a human-readable description.
	Message string

	// Err is the underlying error, if any.
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parsing %s: %s", e.Path, e.Message)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// convert turns a parsed document into storable values. Keys convert in
// sorted order so the first failure reported is deterministic.
func convert(source string, raw map[string]any) (map[string]storable.Value, error) {
	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	values := make(map[string]storable.Value, len(raw))
	for _, key := range keys {
		v, ok := storable.FromAny(raw[key])
		if !ok {
			return nil, &ParseError{
				Path:    source,
				Message: fmt.Sprintf("key %q holds a value outside the storable types", key),
			}
		}
		values[key] = v
	}
	return values, nil
}
