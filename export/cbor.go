package export

import (
	"io"

	"github.com/fxamacker/cbor/v2"

	"github.com/wippyai/nbt-editor/errors"
)

var encMode cbor.EncMode

func init() {
	var err error
	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("export: CBOR encoder initialization failed: " + err.Error())
	}
}

// cborValue turns ordered maps into plain maps; key order is decided by
// the deterministic encoding.
func cborValue(v any) any {
	switch x := v.(type) {
	case *OrderedMap:
		out := make(map[string]any, len(x.Keys))
		for _, k := range x.Keys {
			out[k] = cborValue(x.Values[k])
		}
		return out
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = cborValue(e)
		}
		return out
	}
	return v
}

// MarshalCBOR encodes plain data from Value.
func MarshalCBOR(v any) ([]byte, error) {
	return encMode.Marshal(cborValue(v))
}

func writeCBOR(w io.Writer, v any) error {
	if err := encMode.NewEncoder(w).Encode(cborValue(v)); err != nil {
		return errors.Wrap(errors.PhaseExport, errors.KindIO, err, "encode cbor")
	}
	return nil
}
