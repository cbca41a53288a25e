package nbt

import (
	"slices"

	"github.com/wippyai/nbt-editor/errors"
)

// DuplicatePolicy decides what happens when a compound key would collide
// with an existing one.
type DuplicatePolicy int

const (
	// RejectDuplicates fails the operation with a duplicate key error.
	RejectDuplicates DuplicatePolicy = iota
	// OverwriteDuplicates removes the existing entry and lets the incoming
	// one take the name. The incoming entry keeps its own position.
	OverwriteDuplicates
)

func (p DuplicatePolicy) String() string {
	if p == OverwriteDuplicates {
		return "overwrite"
	}
	return "reject"
}

// ParseDuplicatePolicy parses "reject" or "overwrite".
func ParseDuplicatePolicy(s string) (DuplicatePolicy, error) {
	switch s {
	case "", "reject":
		return RejectDuplicates, nil
	case "overwrite":
		return OverwriteDuplicates, nil
	}
	return RejectDuplicates, errors.InvalidInput(errors.PhaseConfig, "unknown duplicate policy "+s)
}

// Compound is an ordered map from unique names to tags. Iteration and
// encoding follow insertion order.
type Compound struct {
	vals map[string]Tag
	keys []string
}

// NewCompound returns an empty compound.
func NewCompound() *Compound {
	return &Compound{vals: make(map[string]Tag)}
}

// Len returns the number of entries.
func (c *Compound) Len() int {
	return len(c.keys)
}

// Keys returns the entry names in order. The slice is a copy.
func (c *Compound) Keys() []string {
	return slices.Clone(c.keys)
}

// Get returns the tag stored under name.
func (c *Compound) Get(name string) (Tag, bool) {
	t, ok := c.vals[name]
	return t, ok
}

// Has reports whether name is present.
func (c *Compound) Has(name string) bool {
	_, ok := c.vals[name]
	return ok
}

// Set stores t under name. An existing entry is replaced in place; a new
// name is appended. It returns c for chaining.
func (c *Compound) Set(name string, t Tag) *Compound {
	if c.vals == nil {
		c.vals = make(map[string]Tag)
	}
	if _, ok := c.vals[name]; !ok {
		c.keys = append(c.keys, name)
	}
	c.vals[name] = t
	return c
}

// Insert appends a new entry, failing if name already exists.
func (c *Compound) Insert(name string, t Tag) error {
	if c.Has(name) {
		return errors.DuplicateKey(errors.PhaseMutate, "", name)
	}
	c.Set(name, t)
	return nil
}

// Delete removes name and reports whether it was present.
func (c *Compound) Delete(name string) bool {
	if _, ok := c.vals[name]; !ok {
		return false
	}
	delete(c.vals, name)
	c.keys = slices.DeleteFunc(c.keys, func(k string) bool { return k == name })
	return true
}

// Rename moves the entry under oldName to newName, keeping its position.
// A collision with another entry is resolved by policy.
func (c *Compound) Rename(oldName, newName string, policy DuplicatePolicy) error {
	t, ok := c.vals[oldName]
	if !ok {
		return errors.PathNotFound(errors.PhaseMutate, "", oldName)
	}
	if oldName == newName {
		return nil
	}
	if c.Has(newName) {
		if policy == RejectDuplicates {
			return errors.DuplicateKey(errors.PhaseMutate, "", newName)
		}
		c.Delete(newName)
	}
	idx := slices.Index(c.keys, oldName)
	c.keys[idx] = newName
	delete(c.vals, oldName)
	c.vals[newName] = t
	return nil
}

// Index returns the position of name, or -1.
func (c *Compound) Index(name string) int {
	if !c.Has(name) {
		return -1
	}
	return slices.Index(c.keys, name)
}

// Each calls fn for every entry in order until fn returns false.
func (c *Compound) Each(fn func(name string, t Tag) bool) {
	for _, k := range c.keys {
		if !fn(k, c.vals[k]) {
			return
		}
	}
}
