package export

import (
	"bytes"
	"encoding/json"
	"io"
	"math"

	"github.com/wippyai/nbt-editor/errors"
)

// MarshalJSON writes the object with keys in order.
func (m *OrderedMap) MarshalJSON() ([]byte, error) {
	var b bytes.Buffer
	b.WriteByte('{')
	for i, k := range m.Keys {
		if i > 0 {
			b.WriteByte(',')
		}
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		b.Write(key)
		b.WriteByte(':')
		val, err := json.Marshal(m.Values[k])
		if err != nil {
			return nil, err
		}
		b.Write(val)
	}
	b.WriteByte('}')
	return b.Bytes(), nil
}

// jsonSafe replaces the floats JSON cannot represent with strings.
func jsonSafe(v any) any {
	switch x := v.(type) {
	case float64:
		switch {
		case math.IsNaN(x):
			return "NaN"
		case math.IsInf(x, 1):
			return "Infinity"
		case math.IsInf(x, -1):
			return "-Infinity"
		}
		return x
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = jsonSafe(e)
		}
		return out
	case *OrderedMap:
		out := newOrderedMap(len(x.Keys))
		for _, k := range x.Keys {
			out.Set(k, jsonSafe(x.Values[k]))
		}
		return out
	}
	return v
}

func writeJSON(w io.Writer, v any, indent string) error {
	v = jsonSafe(v)
	var (
		data []byte
		err  error
	)
	if indent == "" {
		data, err = json.Marshal(v)
	} else {
		data, err = json.MarshalIndent(v, "", indent)
	}
	if err != nil {
		return errors.Wrap(errors.PhaseExport, errors.KindInvalidData, err, "encode json")
	}
	data = append(data, '\n')
	if _, err := w.Write(data); err != nil {
		return errors.Wrap(errors.PhaseExport, errors.KindIO, err, "write json")
	}
	return nil
}
