package edit

import (
	stderrors "errors"
	"strconv"
	"strings"

	"github.com/wippyai/nbt-editor/errors"
	"github.com/wippyai/nbt-editor/nbt"
)

// ParseValue builds a tag of type t from its textual form. Containers are
// created empty and accept only blank text.
//
// For scalars, text that is not a number at all is a type mismatch and a
// number outside the type's range is a parse error. For arrays every bad
// element is a parse error.
func ParseValue(t nbt.TagType, text string) (nbt.Tag, error) {
	switch t {
	case nbt.TagByte:
		v, err := parseScalarInt(text, 8, t)
		return nbt.Byte(v), err
	case nbt.TagShort:
		v, err := parseScalarInt(text, 16, t)
		return nbt.Short(v), err
	case nbt.TagInt:
		v, err := parseScalarInt(text, 32, t)
		return nbt.Int(v), err
	case nbt.TagLong:
		v, err := parseScalarInt(text, 64, t)
		return nbt.Long(v), err
	case nbt.TagFloat:
		v, err := parseScalarFloat(text, 32, t)
		return nbt.Float(v), err
	case nbt.TagDouble:
		v, err := parseScalarFloat(text, 64, t)
		return nbt.Double(v), err
	case nbt.TagString:
		s := nbt.NewString(text)
		if len(s) > 65535 {
			return nil, errors.Overflow(errors.PhaseParse, "", len(s), "u16 string length")
		}
		return s, nil
	case nbt.TagByteArray:
		vals, err := parseIntList(text, 8, t)
		if err != nil {
			return nil, err
		}
		out := make(nbt.ByteArray, len(vals))
		for i, v := range vals {
			out[i] = int8(v)
		}
		return out, nil
	case nbt.TagIntArray:
		vals, err := parseIntList(text, 32, t)
		if err != nil {
			return nil, err
		}
		out := make(nbt.IntArray, len(vals))
		for i, v := range vals {
			out[i] = int32(v)
		}
		return out, nil
	case nbt.TagLongArray:
		vals, err := parseIntList(text, 64, t)
		if err != nil {
			return nil, err
		}
		return nbt.LongArray(vals), nil
	case nbt.TagList, nbt.TagCompound:
		if strings.TrimSpace(text) != "" {
			return nil, errors.New(errors.PhaseParse, errors.KindParse).
				Value(text).
				Detail("%s values are created empty", t).
				Build()
		}
		return nbt.Zero(t), nil
	}
	return nil, errors.InvalidInput(errors.PhaseParse, "cannot create a value of type "+t.String())
}

// parseInt accepts an optional sign and a 0x, 0o or 0b prefix. A decimal
// number may not start with 0 unless every digit is 0.
func parseInt(text string, bits int) (int64, error) {
	s := strings.TrimSpace(text)
	if strings.Contains(s, "_") {
		return 0, &strconv.NumError{Func: "ParseInt", Num: s, Err: strconv.ErrSyntax}
	}
	body := strings.TrimLeft(s, "+-")
	base := 0
	if len(body) > 1 && body[0] == '0' && body[1] >= '0' && body[1] <= '9' {
		if strings.Trim(body, "0") != "" {
			return 0, &strconv.NumError{Func: "ParseInt", Num: s, Err: strconv.ErrSyntax}
		}
		base = 10
	}
	return strconv.ParseInt(s, base, bits)
}

func parseScalarInt(text string, bits int, t nbt.TagType) (int64, error) {
	v, err := parseInt(text, bits)
	if err != nil {
		return 0, numberError(text, t, err)
	}
	return v, nil
}

func parseScalarFloat(text string, bits int, t nbt.TagType) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(text), bits)
	if err != nil {
		return 0, numberError(text, t, err)
	}
	return v, nil
}

func numberError(text string, t nbt.TagType, err error) error {
	if stderrors.Is(err, strconv.ErrRange) {
		return errors.ParseFailed(t.String(), text, err)
	}
	return errors.New(errors.PhaseParse, errors.KindTypeMismatch).
		Value(text).
		Detail("%q is not a %s value", text, t).
		Cause(err).
		Build()
}

func parseIntList(text string, bits int, t nbt.TagType) ([]int64, error) {
	s := strings.TrimSpace(text)
	s = strings.TrimPrefix(s, "[")
	s = strings.TrimSuffix(s, "]")

	var out []int64
	for i, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		v, err := parseInt(part, bits)
		if err != nil {
			return nil, errors.New(errors.PhaseParse, errors.KindParse).
				Value(text).
				Detail("%s element %d: %q", t, i, part).
				Cause(err).
				Build()
		}
		out = append(out, v)
	}
	if out == nil {
		out = []int64{}
	}
	return out, nil
}
