package nbt

import (
	"io"

	"github.com/wippyai/nbt-editor/errors"
	nbtbin "github.com/wippyai/nbt-editor/nbt/internal/binary"
)

// Encode writes root to w. The framing defaults to none; use
// WithCompression to select gzip, zlib or LZ4.
func Encode(w io.Writer, root *Root, opts ...Option) error {
	data, err := EncodeBytes(root, opts...)
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return errors.Wrap(errors.PhaseEncode, errors.KindIO, err, "write output")
	}
	return nil
}

// EncodeBytes encodes root into a new byte slice.
func EncodeBytes(root *Root, opts ...Option) ([]byte, error) {
	o := buildOptions(opts)
	if err := o.compression.Valid(); err != nil {
		return nil, err
	}
	if root == nil || root.Compound == nil {
		return nil, errors.InvalidInput(errors.PhaseEncode, "nil root compound")
	}
	e := &encoder{w: nbtbin.NewWriter(), maxDepth: o.maxDepth}
	e.w.WriteU8(byte(TagCompound))
	if err := e.w.WriteString(root.Name); err != nil {
		return nil, err
	}
	if err := e.compound(root.Compound, 0); err != nil {
		return nil, err
	}
	return o.compression.Compress(e.w.Bytes())
}

// EncodeTag encodes a single unnamed payload without a type id. It is the
// wire form a tag takes as a list element.
func EncodeTag(t Tag) ([]byte, error) {
	e := &encoder{w: nbtbin.NewWriter(), maxDepth: DefaultMaxDepth}
	if err := e.payload(t, 0); err != nil {
		return nil, err
	}
	return e.w.Bytes(), nil
}

type encoder struct {
	w        *nbtbin.Writer
	stack    Path
	maxDepth int
}

func (e *encoder) fail(err error) error {
	return errors.WithPath(err, e.stack.String())
}

func (e *encoder) payload(t Tag, depth int) error {
	switch v := t.(type) {
	case Byte:
		e.w.WriteI8(int8(v))
	case Short:
		e.w.WriteI16(int16(v))
	case Int:
		e.w.WriteI32(int32(v))
	case Long:
		e.w.WriteI64(int64(v))
	case Float:
		e.w.WriteF32(float32(v))
	case Double:
		e.w.WriteF64(float64(v))
	case String:
		if err := e.w.WriteString(string(v)); err != nil {
			return e.fail(err)
		}
	case ByteArray:
		e.w.WriteI32(int32(len(v)))
		for _, b := range v {
			e.w.WriteI8(b)
		}
	case IntArray:
		e.w.WriteI32(int32(len(v)))
		for _, n := range v {
			e.w.WriteI32(n)
		}
	case LongArray:
		e.w.WriteI32(int32(len(v)))
		for _, n := range v {
			e.w.WriteI64(n)
		}
	case *List:
		if v == nil {
			return e.badTag()
		}
		return e.list(v, depth+1)
	case *Compound:
		if v == nil {
			return e.badTag()
		}
		return e.compound(v, depth+1)
	default:
		return e.badTag()
	}
	return nil
}

func (e *encoder) badTag() error {
	return e.fail(errors.InvalidData(errors.PhaseEncode, "", "nil or unknown tag"))
}

func (e *encoder) enter(depth int) error {
	if depth > e.maxDepth {
		return e.fail(errors.InvalidData(errors.PhaseEncode, "", "nesting deeper than the configured maximum"))
	}
	return nil
}

func (e *encoder) list(l *List, depth int) error {
	if err := e.enter(depth); err != nil {
		return err
	}
	e.w.WriteU8(byte(l.elemType))
	e.w.WriteI32(int32(len(l.elems)))
	for i, el := range l.elems {
		e.stack = append(e.stack, Index(i))
		if el == nil || el.Type() != l.elemType {
			return e.fail(errors.ListTypeMismatch(errors.PhaseEncode, "", l.elemType.String(), typeName(el)))
		}
		if err := e.payload(el, depth); err != nil {
			return err
		}
		e.stack = e.stack[:len(e.stack)-1]
	}
	return nil
}

func (e *encoder) compound(c *Compound, depth int) error {
	if err := e.enter(depth); err != nil {
		return err
	}
	for _, k := range c.keys {
		v := c.vals[k]
		e.stack = append(e.stack, Key(k))
		if v == nil {
			return e.fail(errors.InvalidData(errors.PhaseEncode, "", "nil tag"))
		}
		e.w.WriteU8(byte(v.Type()))
		if err := e.w.WriteString(k); err != nil {
			return e.fail(err)
		}
		if err := e.payload(v, depth); err != nil {
			return err
		}
		e.stack = e.stack[:len(e.stack)-1]
	}
	e.w.WriteU8(byte(TagEnd))
	return nil
}

func typeName(t Tag) string {
	if t == nil {
		return "nil"
	}
	return t.Type().String()
}
