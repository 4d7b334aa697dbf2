// Package launchargs accumulates typed key/value pairs and renders them
// as a flat process launch-argument list.
//
// Each stored key renders as exactly two tokens: the key prefixed with
// "-", followed by the value's XML property-list fragment. Consumers on
// the other side of the process boundary split on that pairing, so both
// the token shape and the fragment bytes are a fixed contract.
package launchargs

import (
	"fmt"

	"github.com/dshills/prefstore"
	"github.com/dshills/prefstore/coding"
	"github.com/dshills/prefstore/fragment"
	"github.com/dshills/prefstore/storable"
)

type entry struct {
	key   prefstore.Key
	value storable.Value
}

// Container is a mutable, ordered accumulator of key/value pairs.
// Writes are last-write-wins: re-setting a key replaces its value and
// moves the key to the most-recently-written position. A Container
// holds no external resources and needs no teardown. It is not safe for
// concurrent use; callers that share one must synchronize.
type Container struct {
	entries []entry
	index   map[prefstore.Key]int
}

// New creates an empty container.
func New() *Container {
	return &Container{
		index: make(map[prefstore.Key]int),
	}
}

// Set upserts a raw value. The key moves to the most-recently-written
// position.
func (c *Container) Set(key prefstore.Key, value storable.Value) {
	if i, ok := c.index[key]; ok {
		c.entries = append(c.entries[:i], c.entries[i+1:]...)
		for k, idx := range c.index {
			if idx > i {
				c.index[k] = idx - 1
			}
		}
		delete(c.index, key)
	}
	c.index[key] = len(c.entries)
	c.entries = append(c.entries, entry{key: key, value: value})
}

// SetAny upserts a native value, converting it through the storable
// lattice. Enum-like values store as their backing primitive. Values
// outside the lattice are rejected.
func (c *Container) SetAny(key prefstore.Key, v any) error {
	value, ok := storable.FromAny(v)
	if !ok {
		return fmt.Errorf("launchargs: value of type %T is not storable", v)
	}
	c.Set(key, value)
	return nil
}

// SetObject upserts a structured value encoded with the chosen
// strategy. Unlike the silent read-side absence signal, an encode
// failure here surfaces to the caller: the container is left unchanged.
func (c *Container) SetObject(key prefstore.Key, v any, strategy coding.Strategy) error {
	data, err := coding.Encode(strategy, v)
	if err != nil {
		return err
	}
	c.Set(key, storable.Data(data))
	return nil
}

// Len returns the number of stored keys.
func (c *Container) Len() int {
	return len(c.entries)
}

// LaunchArguments renders the container as a flat argument list: two
// tokens per key, in the order keys were last written.
func (c *Container) LaunchArguments() []string {
	args := make([]string, 0, len(c.entries)*2)
	for _, e := range c.entries {
		args = append(args, "-"+string(e.key), fragment.Encode(e.value))
	}
	return args
}
