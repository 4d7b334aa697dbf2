// Package coding provides the two blob encodings used to push
// structured native types into the primitive value lattice.
//
// The strategy is chosen per call and is not stored alongside the
// encoded bytes: encoding and decoding must name the same strategy, and
// decoding bytes produced by the other strategy fails with an error
// rather than crashing.
package coding

import (
	"bytes"
	"encoding/json"
	"fmt"

	"howett.net/plist"
)

// Strategy selects one of the two structured-value encodings.
type Strategy uint8

const (
	// JSON is the generic record encoding: field names mapped to
	// primitive values, recursively.
	JSON Strategy = iota

	// PropertyList is the platform-native nested property-list encoding
	// in its binary form.
	PropertyList
)

// String returns the strategy name.
func (s Strategy) String() string {
	switch s {
	case JSON:
		return "json"
	case PropertyList:
		return "plist"
	default:
		return "unknown"
	}
}

// ErrUnknownStrategy is returned for a strategy value outside the two
// defined encodings.
var ErrUnknownStrategy = fmt.Errorf("coding: unknown strategy")

// Encode serializes v with the chosen strategy.
func Encode(strategy Strategy, v any) (out []byte, err error) {
	switch strategy {
	case JSON:
		data, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("coding: json encode: %w", err)
		}
		return data, nil
	case PropertyList:
		// The plist codec reports some unsupported values by panicking;
		// translate that to an error so encode failures stay recoverable.
		defer func() {
			if r := recover(); r != nil {
				out, err = nil, fmt.Errorf("coding: plist encode: %v", r)
			}
		}()
		data, err := plist.Marshal(v, plist.BinaryFormat)
		if err != nil {
			return nil, fmt.Errorf("coding: plist encode: %w", err)
		}
		return data, nil
	default:
		return nil, ErrUnknownStrategy
	}
}

// Decode deserializes data into v with the chosen strategy. v must be a
// pointer. Bytes produced by the other strategy fail to decode.
func Decode(strategy Strategy, data []byte, v any) (err error) {
	switch strategy {
	case JSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		if err := dec.Decode(v); err != nil {
			return fmt.Errorf("coding: json decode: %w", err)
		}
		return nil
	case PropertyList:
		// The plist parser panics on some malformed inputs; keep the
		// graceful-failure contract by converting that to an error.
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("coding: plist decode: %v", r)
			}
		}()
		if _, err := plist.Unmarshal(data, v); err != nil {
			return fmt.Errorf("coding: plist decode: %w", err)
		}
		return nil
	default:
		return ErrUnknownStrategy
	}
}
