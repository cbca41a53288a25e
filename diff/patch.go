package diff

import (
	"bytes"

	jsonpatch "github.com/evanphx/json-patch"

	"github.com/wippyai/nbt-editor/errors"
	"github.com/wippyai/nbt-editor/export"
	"github.com/wippyai/nbt-editor/nbt"
)

// MergePatch returns the JSON merge patch (RFC 7386) that turns the plain
// JSON export of a into that of b. Tag types are not represented.
func MergePatch(a, b *nbt.Root) ([]byte, error) {
	from, err := plainJSON(a)
	if err != nil {
		return nil, err
	}
	to, err := plainJSON(b)
	if err != nil {
		return nil, err
	}
	patch, err := jsonpatch.CreateMergePatch(from, to)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseExport, errors.KindInvalidData, err, "create merge patch")
	}
	return patch, nil
}

func plainJSON(r *nbt.Root) ([]byte, error) {
	var buf bytes.Buffer
	if err := export.Write(&buf, r, export.FormatJSON, export.Options{}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
