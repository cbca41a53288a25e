package nbt

import (
	"fmt"
	"math"
)

// TagType is the one-byte type id that prefixes every tag on the wire.
type TagType byte

// Tag type ids, in wire order.
const (
	TagEnd TagType = iota
	TagByte
	TagShort
	TagInt
	TagLong
	TagFloat
	TagDouble
	TagByteArray
	TagString
	TagList
	TagCompound
	TagIntArray
	TagLongArray
)

var tagTypeNames = [...]string{
	TagEnd:       "End",
	TagByte:      "Byte",
	TagShort:     "Short",
	TagInt:       "Int",
	TagLong:      "Long",
	TagFloat:     "Float",
	TagDouble:    "Double",
	TagByteArray: "ByteArray",
	TagString:    "String",
	TagList:      "List",
	TagCompound:  "Compound",
	TagIntArray:  "IntArray",
	TagLongArray: "LongArray",
}

// String returns the tag type's name, e.g. "Compound".
func (t TagType) String() string {
	if t.Valid() {
		return tagTypeNames[t]
	}
	return fmt.Sprintf("TagType(%d)", byte(t))
}

// Valid reports whether t is a known tag type id.
func (t TagType) Valid() bool {
	return t <= TagLongArray
}

// IsScalar reports whether t carries a single number or string.
func (t TagType) IsScalar() bool {
	switch t {
	case TagByte, TagShort, TagInt, TagLong, TagFloat, TagDouble, TagString:
		return true
	}
	return false
}

// IsArray reports whether t is one of the fixed-width numeric arrays.
func (t TagType) IsArray() bool {
	return t == TagByteArray || t == TagIntArray || t == TagLongArray
}

// IsContainer reports whether t holds child tags.
func (t TagType) IsContainer() bool {
	return t == TagList || t == TagCompound
}

// ParseTagType parses a tag type name as returned by TagType.String.
func ParseTagType(name string) (TagType, error) {
	for i, n := range tagTypeNames {
		if n == name {
			return TagType(i), nil
		}
	}
	return TagEnd, fmt.Errorf("unknown tag type %q", name)
}

// Tag is one node of an NBT tree. The set of implementations is closed:
// Byte, Short, Int, Long, Float, Double, ByteArray, String, *List,
// *Compound, IntArray and LongArray.
type Tag interface {
	Type() TagType
	isTag()
}

// Byte is a signed 8-bit integer tag.
type Byte int8

// Short is a signed 16-bit integer tag.
type Short int16

// Int is a signed 32-bit integer tag.
type Int int32

// Long is a signed 64-bit integer tag.
type Long int64

// Float is an IEEE-754 single precision tag.
type Float float32

// Double is an IEEE-754 double precision tag.
type Double float64

// ByteArray is a length-prefixed array of signed bytes.
type ByteArray []int8

// IntArray is a length-prefixed array of signed 32-bit integers.
type IntArray []int32

// LongArray is a length-prefixed array of signed 64-bit integers.
type LongArray []int64

func (Byte) Type() TagType      { return TagByte }
func (Short) Type() TagType     { return TagShort }
func (Int) Type() TagType       { return TagInt }
func (Long) Type() TagType      { return TagLong }
func (Float) Type() TagType     { return TagFloat }
func (Double) Type() TagType    { return TagDouble }
func (ByteArray) Type() TagType { return TagByteArray }
func (String) Type() TagType    { return TagString }
func (*List) Type() TagType     { return TagList }
func (*Compound) Type() TagType { return TagCompound }
func (IntArray) Type() TagType  { return TagIntArray }
func (LongArray) Type() TagType { return TagLongArray }

func (Byte) isTag()      {}
func (Short) isTag()     {}
func (Int) isTag()       {}
func (Long) isTag()      {}
func (Float) isTag()     {}
func (Double) isTag()    {}
func (ByteArray) isTag() {}
func (String) isTag()    {}
func (*List) isTag()     {}
func (*Compound) isTag() {}
func (IntArray) isTag()  {}
func (LongArray) isTag() {}

// Zero returns an empty tag of type t: zero for scalars, empty arrays,
// an untyped empty List and an empty Compound. It returns nil for End and
// unknown ids.
func Zero(t TagType) Tag {
	switch t {
	case TagByte:
		return Byte(0)
	case TagShort:
		return Short(0)
	case TagInt:
		return Int(0)
	case TagLong:
		return Long(0)
	case TagFloat:
		return Float(0)
	case TagDouble:
		return Double(0)
	case TagByteArray:
		return ByteArray{}
	case TagString:
		return String("")
	case TagList:
		return NewList(TagEnd)
	case TagCompound:
		return NewCompound()
	case TagIntArray:
		return IntArray{}
	case TagLongArray:
		return LongArray{}
	}
	return nil
}

// Clone returns a deep copy of t. Containers and arrays never share
// backing storage with the original.
func Clone(t Tag) Tag {
	switch v := t.(type) {
	case ByteArray:
		return append(ByteArray{}, v...)
	case IntArray:
		return append(IntArray{}, v...)
	case LongArray:
		return append(LongArray{}, v...)
	case *List:
		if v == nil {
			return v
		}
		out := &List{elemType: v.elemType, elems: make([]Tag, len(v.elems))}
		for i, e := range v.elems {
			out.elems[i] = Clone(e)
		}
		return out
	case *Compound:
		if v == nil {
			return v
		}
		out := &Compound{
			keys: append([]string(nil), v.keys...),
			vals: make(map[string]Tag, len(v.vals)),
		}
		for k, e := range v.vals {
			out.vals[k] = Clone(e)
		}
		return out
	}
	return t
}

// Equal reports whether a and b are structurally identical: same types,
// same values, same compound key order and same list element order.
// Floats compare by bit pattern so NaN payloads and signed zeros count.
func Equal(a, b Tag) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a.Type() != b.Type() {
		return false
	}
	switch av := a.(type) {
	case Float:
		return math.Float32bits(float32(av)) == math.Float32bits(float32(b.(Float)))
	case Double:
		return math.Float64bits(float64(av)) == math.Float64bits(float64(b.(Double)))
	case ByteArray:
		return sliceEqual(av, b.(ByteArray))
	case IntArray:
		return sliceEqual(av, b.(IntArray))
	case LongArray:
		return sliceEqual(av, b.(LongArray))
	case *List:
		bv := b.(*List)
		if av.elemType != bv.elemType || len(av.elems) != len(bv.elems) {
			return false
		}
		for i := range av.elems {
			if !Equal(av.elems[i], bv.elems[i]) {
				return false
			}
		}
		return true
	case *Compound:
		bv := b.(*Compound)
		if len(av.keys) != len(bv.keys) {
			return false
		}
		for i, k := range av.keys {
			if bv.keys[i] != k || !Equal(av.vals[k], bv.vals[k]) {
				return false
			}
		}
		return true
	}
	return a == b
}

func sliceEqual[T comparable](a, b []T) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Root is the top level of an NBT document: one Compound, optionally named.
type Root struct {
	Name     string
	Compound *Compound
}

// NewRoot returns a root with an empty compound.
func NewRoot(name string) *Root {
	return &Root{Name: name, Compound: NewCompound()}
}

// Clone returns a deep copy of the root.
func (r *Root) Clone() *Root {
	if r == nil {
		return nil
	}
	return &Root{Name: r.Name, Compound: Clone(r.Compound).(*Compound)}
}

// Equal reports whether two roots have the same name and tree.
func (r *Root) Equal(o *Root) bool {
	if r == nil || o == nil {
		return r == o
	}
	return r.Name == o.Name && Equal(r.Compound, o.Compound)
}
