package nbt

import (
	"bytes"
	"encoding/binary"
	"io"

	"github.com/wippyai/nbt-editor/errors"
	nbtbin "github.com/wippyai/nbt-editor/nbt/internal/binary"
)

// DefaultMaxDepth bounds container nesting on decode and encode.
const DefaultMaxDepth = 512

// Option configures Decode and Encode.
type Option func(*options)

type options struct {
	compression Compression
	forced      bool
	maxDepth    int
}

func buildOptions(opts []Option) options {
	o := options{maxDepth: DefaultMaxDepth}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return o
}

// WithCompression forces the framing. On decode it disables sniffing; on
// encode it selects the output framing (the default is none).
func WithCompression(c Compression) Option {
	return func(o *options) {
		o.compression = c
		o.forced = true
	}
}

// WithMaxDepth overrides DefaultMaxDepth.
func WithMaxDepth(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.maxDepth = n
		}
	}
}

// Decode reads a whole NBT document from r. It returns the root and the
// framing that was detected (or forced).
func Decode(r io.Reader, opts ...Option) (*Root, Compression, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, CompressionNone, errors.Wrap(errors.PhaseDecode, errors.KindIO, err, "read input")
	}
	return DecodeBytes(data, opts...)
}

// DecodeBytes decodes a complete NBT document held in memory. Bytes after
// the root compound are ignored.
func DecodeBytes(data []byte, opts ...Option) (*Root, Compression, error) {
	o := buildOptions(opts)
	c := o.compression
	if !o.forced {
		c = SniffCompression(data)
	}
	raw, err := c.Decompress(data)
	if err != nil {
		return nil, c, err
	}
	d := &decoder{
		r:        nbtbin.NewReader(bytes.NewReader(raw)),
		maxDepth: o.maxDepth,
	}
	root, err := d.root()
	if err != nil {
		return nil, c, err
	}
	return root, c, nil
}

type decoder struct {
	r        *nbtbin.Reader
	stack    Path
	maxDepth int
}

func (d *decoder) fail(err error) error {
	return errors.WithPath(err, d.stack.String())
}

func (d *decoder) root() (*Root, error) {
	off := d.r.Position()
	id, err := d.r.ReadU8("root tag type")
	if err != nil {
		return nil, err
	}
	if TagType(id) != TagCompound {
		return nil, errors.New(errors.PhaseDecode, errors.KindUnknownTagType).
			Offset(off).
			Value(id).
			Detail("root tag must be Compound, got %s", TagType(id)).
			Build()
	}
	name, err := d.r.ReadString("root name")
	if err != nil {
		return nil, err
	}
	c, err := d.compound(0)
	if err != nil {
		return nil, err
	}
	return &Root{Name: name, Compound: c}, nil
}

func (d *decoder) payload(t TagType, depth int) (Tag, error) {
	switch t {
	case TagByte:
		v, err := d.r.ReadI8("Byte payload")
		return Byte(v), err
	case TagShort:
		v, err := d.r.ReadI16("Short payload")
		return Short(v), err
	case TagInt:
		v, err := d.r.ReadI32("Int payload")
		return Int(v), err
	case TagLong:
		v, err := d.r.ReadI64("Long payload")
		return Long(v), err
	case TagFloat:
		v, err := d.r.ReadF32("Float payload")
		return Float(v), err
	case TagDouble:
		v, err := d.r.ReadF64("Double payload")
		return Double(v), err
	case TagString:
		v, err := d.r.ReadString("String payload")
		return String(v), err
	case TagByteArray:
		raw, err := d.array(1, "ByteArray")
		if err != nil {
			return nil, err
		}
		out := make(ByteArray, len(raw))
		for i, b := range raw {
			out[i] = int8(b)
		}
		return out, nil
	case TagIntArray:
		raw, err := d.array(4, "IntArray")
		if err != nil {
			return nil, err
		}
		out := make(IntArray, len(raw)/4)
		for i := range out {
			out[i] = int32(binary.BigEndian.Uint32(raw[i*4:]))
		}
		return out, nil
	case TagLongArray:
		raw, err := d.array(8, "LongArray")
		if err != nil {
			return nil, err
		}
		out := make(LongArray, len(raw)/8)
		for i := range out {
			out[i] = int64(binary.BigEndian.Uint64(raw[i*8:]))
		}
		return out, nil
	case TagList:
		return d.list(depth + 1)
	case TagCompound:
		return d.compound(depth + 1)
	}
	return nil, errors.UnknownTagType(d.r.Position(), byte(t))
}

func (d *decoder) array(width int, what string) ([]byte, error) {
	off := d.r.Position()
	n, err := d.r.ReadI32(what + " length")
	if err != nil {
		return nil, err
	}
	if n < 0 {
		return nil, d.fail(errors.MalformedList(off, "", what+" has negative length"))
	}
	return d.r.ReadBytes(int(n)*width, what+" elements")
}

func (d *decoder) enter(depth int) error {
	if depth > d.maxDepth {
		return d.fail(errors.InvalidData(errors.PhaseDecode, "", "nesting deeper than the configured maximum"))
	}
	return nil
}

// minWireSize is the smallest payload each element type can occupy. It
// lets the decoder reject list counts that cannot fit in the input.
func minWireSize(t TagType) int {
	switch t {
	case TagByte:
		return 1
	case TagShort, TagString:
		return 2
	case TagInt, TagFloat, TagByteArray, TagIntArray, TagLongArray:
		return 4
	case TagLong, TagDouble:
		return 8
	case TagList:
		return 5
	case TagCompound:
		return 1
	}
	return 0
}

func (d *decoder) list(depth int) (*List, error) {
	if err := d.enter(depth); err != nil {
		return nil, err
	}
	off := d.r.Position()
	id, err := d.r.ReadU8("List element type")
	if err != nil {
		return nil, err
	}
	elemType := TagType(id)
	if !elemType.Valid() {
		return nil, d.fail(errors.UnknownTagType(off, id))
	}
	n, err := d.r.ReadI32("List length")
	if err != nil {
		return nil, err
	}
	l := NewList(elemType)
	if elemType == TagEnd {
		if n > 0 {
			return nil, d.fail(errors.MalformedList(off, "", "End-typed list declares elements"))
		}
		return l, nil
	}
	if n < 0 {
		return nil, d.fail(errors.New(errors.PhaseDecode, errors.KindMalformedList).
			Offset(off).
			Value(n).
			Detail("negative length %d for list of %s", n, elemType).
			Build())
	}
	if err := d.r.Require(int(n), minWireSize(elemType), "List elements"); err != nil {
		return nil, d.fail(err)
	}
	l.elems = make([]Tag, 0, n)
	for i := 0; i < int(n); i++ {
		d.stack = append(d.stack, Index(i))
		e, err := d.payload(elemType, depth)
		if err != nil {
			return nil, d.fail(err)
		}
		d.stack = d.stack[:len(d.stack)-1]
		l.appendUnchecked(e)
	}
	return l, nil
}

func (d *decoder) compound(depth int) (*Compound, error) {
	if err := d.enter(depth); err != nil {
		return nil, err
	}
	c := NewCompound()
	for {
		off := d.r.Position()
		id, err := d.r.ReadU8("tag type")
		if err != nil {
			return nil, d.fail(err)
		}
		t := TagType(id)
		if t == TagEnd {
			return c, nil
		}
		if !t.Valid() {
			return nil, d.fail(errors.UnknownTagType(off, id))
		}
		name, err := d.r.ReadString("tag name")
		if err != nil {
			return nil, d.fail(err)
		}
		d.stack = append(d.stack, Key(name))
		v, err := d.payload(t, depth)
		if err != nil {
			return nil, d.fail(err)
		}
		d.stack = d.stack[:len(d.stack)-1]
		c.Set(name, v)
	}
}
