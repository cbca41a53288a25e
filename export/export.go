// Package export writes NBT trees as JSON, YAML or CBOR for use by
// tools that do not speak NBT.
//
// Plain output maps compounds to objects, lists and arrays to sequences
// and scalars to numbers and strings; the NBT types are lost. Typed output
// wraps every tag as {"type": ..., "value": ...} (lists also carry
// "elem") so the exact tree can be reconstructed.
//
// JSON and YAML keep compound key order. CBOR uses the core deterministic
// encoding, which sorts map keys.
package export

import (
	"io"
	"math"
	"strconv"

	"github.com/wippyai/nbt-editor/errors"
	"github.com/wippyai/nbt-editor/nbt"
)

// Format selects the output encoding.
type Format int

const (
	FormatJSON Format = iota
	FormatYAML
	FormatCBOR
)

func (f Format) String() string {
	switch f {
	case FormatJSON:
		return "json"
	case FormatYAML:
		return "yaml"
	case FormatCBOR:
		return "cbor"
	}
	return "unknown"
}

// ParseFormat parses "json", "yaml" (or "yml") and "cbor".
func ParseFormat(name string) (Format, error) {
	switch name {
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "cbor":
		return FormatCBOR, nil
	}
	return FormatJSON, errors.InvalidInput(errors.PhaseExport, "unknown export format "+name)
}

// Options configures an export.
type Options struct {
	// Indent is used by JSON; empty means compact output.
	Indent string
	Typed  bool
}

// Write exports root in format f.
func Write(w io.Writer, root *nbt.Root, f Format, opts Options) error {
	if root == nil || root.Compound == nil {
		return errors.InvalidInput(errors.PhaseExport, "nil root compound")
	}
	v := Value(root.Compound, opts.Typed)
	if opts.Typed {
		m := v.(*OrderedMap)
		m.Prepend("name", root.Name)
	}
	switch f {
	case FormatJSON:
		return writeJSON(w, v, opts.Indent)
	case FormatYAML:
		return writeYAML(w, v)
	case FormatCBOR:
		return writeCBOR(w, v)
	}
	return errors.Unsupported(errors.PhaseExport, "format "+f.String())
}

// OrderedMap is an object whose keys keep insertion order.
type OrderedMap struct {
	Values map[string]any
	Keys   []string
}

func newOrderedMap(n int) *OrderedMap {
	return &OrderedMap{Keys: make([]string, 0, n), Values: make(map[string]any, n)}
}

// Set adds or replaces key.
func (m *OrderedMap) Set(key string, v any) {
	if _, ok := m.Values[key]; !ok {
		m.Keys = append(m.Keys, key)
	}
	m.Values[key] = v
}

// Prepend adds key in front of the existing keys.
func (m *OrderedMap) Prepend(key string, v any) {
	if _, ok := m.Values[key]; !ok {
		m.Keys = append([]string{key}, m.Keys...)
	}
	m.Values[key] = v
}

// Value converts t to plain data: *OrderedMap for compounds, []any for
// lists and arrays, int64, float64 and string for scalars.
func Value(t nbt.Tag, typed bool) any {
	var inner any
	switch v := t.(type) {
	case nbt.Byte:
		inner = int64(v)
	case nbt.Short:
		inner = int64(v)
	case nbt.Int:
		inner = int64(v)
	case nbt.Long:
		inner = int64(v)
	case nbt.Float:
		inner = floatValue(v)
	case nbt.Double:
		inner = float64(v)
	case nbt.String:
		inner = v.Text()
	case nbt.ByteArray:
		inner = ints(len(v), func(i int) int64 { return int64(v[i]) })
	case nbt.IntArray:
		inner = ints(len(v), func(i int) int64 { return int64(v[i]) })
	case nbt.LongArray:
		inner = ints(len(v), func(i int) int64 { return v[i] })
	case *nbt.List:
		out := make([]any, 0, v.Len())
		for _, e := range v.Elems() {
			out = append(out, Value(e, typed))
		}
		inner = out
	case *nbt.Compound:
		m := newOrderedMap(v.Len())
		v.Each(func(k string, e nbt.Tag) bool {
			m.Set(k, Value(e, typed))
			return true
		})
		inner = m
	}
	if !typed {
		return inner
	}
	m := newOrderedMap(3)
	m.Set("type", t.Type().String())
	if l, ok := t.(*nbt.List); ok {
		m.Set("elem", l.ElemType().String())
	}
	m.Set("value", inner)
	return m
}

func ints(n int, at func(int) int64) []any {
	out := make([]any, n)
	for i := range out {
		out[i] = at(i)
	}
	return out
}

// floatValue widens a Float to the float64 with the same shortest decimal
// form, so 0.1 stays 0.1 instead of 0.10000000149011612.
func floatValue(f nbt.Float) float64 {
	d := float64(f)
	if math.IsInf(d, 0) || math.IsNaN(d) {
		return d
	}
	short, err := strconv.ParseFloat(strconv.FormatFloat(d, 'g', -1, 32), 64)
	if err != nil {
		return d
	}
	return short
}
