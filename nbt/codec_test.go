package nbt_test

import (
	"bytes"
	"errors"
	"math"
	"math/rand/v2"
	"strings"
	"testing"

	nbterrors "github.com/wippyai/nbt-editor/errors"
	"github.com/wippyai/nbt-editor/nbt"
)

// helloWorld is the classic minimal NBT document: a compound named
// "hello world" holding one string.
var helloWorld = []byte{
	0x0a, 0x00, 0x0b, 'h', 'e', 'l', 'l', 'o', ' ', 'w', 'o', 'r', 'l', 'd',
	0x08, 0x00, 0x04, 'n', 'a', 'm', 'e',
	0x00, 0x09, 'B', 'a', 'n', 'a', 'n', 'r', 'a', 'm', 'a',
	0x00,
}

func TestDecodeHelloWorld(t *testing.T) {
	root, comp, err := nbt.DecodeBytes(helloWorld)
	if err != nil {
		t.Fatalf("DecodeBytes: %v", err)
	}
	if comp != nbt.CompressionNone {
		t.Errorf("compression = %v, want none", comp)
	}
	if root.Name != "hello world" {
		t.Errorf("root name = %q", root.Name)
	}
	v, err := root.Get(nbt.PathOf("name"))
	if err != nil {
		t.Fatal(err)
	}
	if v != nbt.String("Bananrama") {
		t.Errorf("name = %v", v)
	}

	out, err := nbt.EncodeBytes(root)
	if err != nil {
		t.Fatalf("EncodeBytes: %v", err)
	}
	if !bytes.Equal(out, helloWorld) {
		t.Errorf("re-encoded bytes differ:\n got %x\nwant %x", out, helloWorld)
	}
}

func TestEncodeWireShape(t *testing.T) {
	l, _ := nbt.ListOf(nbt.Short(1), nbt.Short(-1))
	root := &nbt.Root{Compound: nbt.NewCompound().
		Set("b", nbt.Byte(-1)).
		Set("l", l).
		Set("e", nbt.NewList(nbt.TagEnd)).
		Set("a", nbt.IntArray{258})}

	got, err := nbt.EncodeBytes(root)
	if err != nil {
		t.Fatal(err)
	}
	want := []byte{
		0x0a, 0x00, 0x00,
		0x01, 0x00, 0x01, 'b', 0xff,
		0x09, 0x00, 0x01, 'l', 0x02, 0x00, 0x00, 0x00, 0x02, 0x00, 0x01, 0xff, 0xff,
		0x09, 0x00, 0x01, 'e', 0x00, 0x00, 0x00, 0x00, 0x00,
		0x0b, 0x00, 0x01, 'a', 0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x01, 0x02,
		0x00,
	}
	if !bytes.Equal(got, want) {
		t.Errorf("wire bytes:\n got %x\nwant %x", got, want)
	}
}

func sampleTree() *nbt.Root {
	nested, _ := nbt.ListOf(nbt.LongArray{1, -1}, nbt.LongArray{})
	lists, _ := nbt.ListOf(nested, nbt.NewList(nbt.TagEnd))
	item := nbt.NewCompound().
		Set("Slot", nbt.Byte(3)).
		Set("id", nbt.NewString("minecraft:diamond_sword")).
		Set("Count", nbt.Byte(1)).
		Set("tag", nbt.NewCompound().Set("Damage", nbt.Int(12)))
	items, _ := nbt.ListOf(item)

	c := nbt.NewCompound().
		Set("byte", nbt.Byte(math.MinInt8)).
		Set("short", nbt.Short(math.MaxInt16)).
		Set("int", nbt.Int(math.MinInt32)).
		Set("long", nbt.Long(math.MaxInt64)).
		Set("float", nbt.Float(3.25)).
		Set("double", nbt.Double(-1e300)).
		Set("nan", nbt.Double(math.NaN())).
		Set("bytes", nbt.ByteArray{-128, 0, 127}).
		Set("ints", nbt.IntArray{}).
		Set("longs", nbt.LongArray{math.MinInt64}).
		Set("text", nbt.NewString("héllo \x00 😀")).
		Set("raw", nbt.String("\xff\xfe")).
		Set("", nbt.Byte(0)).
		Set("lists", lists).
		Set("typedEmpty", nbt.NewList(nbt.TagCompound)).
		Set("Inventory", items)
	return &nbt.Root{Name: "Data", Compound: c}
}

func TestRoundTrip(t *testing.T) {
	root := sampleTree()
	data, err := nbt.EncodeBytes(root)
	if err != nil {
		t.Fatalf("EncodeBytes: %v", err)
	}
	back, _, err := nbt.DecodeBytes(data)
	if err != nil {
		t.Fatalf("DecodeBytes: %v", err)
	}
	if !root.Equal(back) {
		t.Errorf("round trip mismatch:\n got %s\nwant %s",
			nbt.FormatSNBT(back.Compound, ""), nbt.FormatSNBT(root.Compound, ""))
	}
	again, err := nbt.EncodeBytes(back)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(data, again) {
		t.Error("second encoding differs from the first")
	}
}

func TestCompressionTransparency(t *testing.T) {
	root := sampleTree()
	raw, err := nbt.EncodeBytes(root)
	if err != nil {
		t.Fatal(err)
	}
	for _, c := range []nbt.Compression{nbt.CompressionNone, nbt.CompressionGzip, nbt.CompressionZlib, nbt.CompressionLZ4} {
		t.Run(c.String(), func(t *testing.T) {
			data, err := nbt.EncodeBytes(root, nbt.WithCompression(c))
			if err != nil {
				t.Fatalf("EncodeBytes: %v", err)
			}
			if c != nbt.CompressionNone && bytes.Equal(data, raw) {
				t.Fatal("output was not compressed")
			}
			back, detected, err := nbt.DecodeBytes(data)
			if err != nil {
				t.Fatalf("DecodeBytes: %v", err)
			}
			if detected != c {
				t.Errorf("detected %v, want %v", detected, c)
			}
			if !root.Equal(back) {
				t.Error("decoded tree differs")
			}
		})
	}
}

func TestDecodeStream(t *testing.T) {
	root := sampleTree()
	var buf bytes.Buffer
	if err := nbt.Encode(&buf, root, nbt.WithCompression(nbt.CompressionGzip)); err != nil {
		t.Fatal(err)
	}
	back, comp, err := nbt.Decode(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if comp != nbt.CompressionGzip || !root.Equal(back) {
		t.Errorf("stream round trip failed (comp %v)", comp)
	}
}

func TestTruncationAtEveryPrefix(t *testing.T) {
	data, err := nbt.EncodeBytes(sampleTree())
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < len(data); i++ {
		_, _, err := nbt.DecodeBytes(data[:i], nbt.WithCompression(nbt.CompressionNone))
		if !errors.Is(err, nbterrors.ErrTruncatedInput) {
			t.Fatalf("prefix %d/%d: err = %v, want truncated input", i, len(data), err)
		}
	}
}

func TestTrailingBytesIgnored(t *testing.T) {
	data := append(append([]byte{}, helloWorld...), 0xde, 0xad)
	root, _, err := nbt.DecodeBytes(data)
	if err != nil {
		t.Fatal(err)
	}
	if root.Name != "hello world" {
		t.Errorf("root name = %q", root.Name)
	}
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want error
		path string
	}{
		{
			name: "root not compound",
			data: []byte{0x08, 0x00, 0x00, 0x00, 0x00},
			want: nbterrors.ErrUnknownTagType,
		},
		{
			name: "unknown child type",
			data: []byte{0x0a, 0x00, 0x00, 0x0d, 0x00, 0x01, 'x'},
			want: nbterrors.ErrUnknownTagType,
		},
		{
			name: "unknown list element type",
			data: []byte{0x0a, 0x00, 0x00, 0x09, 0x00, 0x01, 'l', 0x20, 0x00, 0x00, 0x00, 0x00, 0x00},
			want: nbterrors.ErrUnknownTagType,
			path: "l",
		},
		{
			name: "negative typed list count",
			data: []byte{0x0a, 0x00, 0x00, 0x09, 0x00, 0x01, 'l', 0x03, 0xff, 0xff, 0xff, 0xff, 0x00},
			want: nbterrors.ErrMalformedList,
			path: "l",
		},
		{
			name: "end list with elements",
			data: []byte{0x0a, 0x00, 0x00, 0x09, 0x00, 0x01, 'l', 0x00, 0x00, 0x00, 0x00, 0x02, 0x00},
			want: nbterrors.ErrMalformedList,
		},
		{
			name: "negative array length",
			data: []byte{0x0a, 0x00, 0x00, 0x07, 0x00, 0x01, 'a', 0x80, 0x00, 0x00, 0x00, 0x00},
			want: nbterrors.ErrMalformedList,
			path: "a",
		},
		{
			name: "huge list count",
			data: []byte{0x0a, 0x00, 0x00, 0x09, 0x00, 0x01, 'l', 0x04, 0x7f, 0xff, 0xff, 0xff, 0x00},
			want: nbterrors.ErrTruncatedInput,
		},
		{
			name: "nested truncation reports path",
			data: []byte{0x0a, 0x00, 0x00, 0x0a, 0x00, 0x01, 'c', 0x03, 0x00, 0x01, 'i', 0x00, 0x00},
			want: nbterrors.ErrTruncatedInput,
			path: "c.i",
		},
		{
			name: "bad gzip",
			data: []byte{0x1f, 0x8b, 0x00, 0x01, 0x02},
			want: nbterrors.ErrDecompression,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := nbt.DecodeBytes(tt.data)
			if !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
			if tt.path != "" {
				var e *nbterrors.Error
				if !errors.As(err, &e) || e.Path != tt.path {
					t.Errorf("path = %q, want %q (%v)", e.Path, tt.path, err)
				}
			}
		})
	}
}

func TestForcedCompressionMismatch(t *testing.T) {
	_, _, err := nbt.DecodeBytes(helloWorld, nbt.WithCompression(nbt.CompressionGzip))
	if !errors.Is(err, nbterrors.ErrDecompression) {
		t.Errorf("err = %v, want decompression", err)
	}
}

func TestEmptyListCanonicalisation(t *testing.T) {
	// An untyped empty list written with a negative count.
	data := []byte{0x0a, 0x00, 0x00, 0x09, 0x00, 0x01, 'l', 0x00, 0xff, 0xff, 0xff, 0xff, 0x00}
	root, _, err := nbt.DecodeBytes(data)
	if err != nil {
		t.Fatal(err)
	}
	l, _ := root.Get(nbt.PathOf("l"))
	if l.(*nbt.List).Len() != 0 || l.(*nbt.List).ElemType() != nbt.TagEnd {
		t.Fatalf("decoded %v", nbt.FormatSNBT(l, ""))
	}
	out, _ := nbt.EncodeBytes(root)
	want := []byte{0x0a, 0x00, 0x00, 0x09, 0x00, 0x01, 'l', 0x00, 0x00, 0x00, 0x00, 0x00, 0x00}
	if !bytes.Equal(out, want) {
		t.Errorf("canonical form %x, want %x", out, want)
	}
}

func TestMaxDepth(t *testing.T) {
	const levels = 20
	data := []byte{0x0a, 0x00, 0x00, 0x09, 0x00, 0x01, 'l'}
	for i := 0; i < levels; i++ {
		data = append(data, 0x09, 0x00, 0x00, 0x00, 0x01)
	}
	data = append(data, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00)

	if _, _, err := nbt.DecodeBytes(data); err != nil {
		t.Fatalf("default depth: %v", err)
	}
	_, _, err := nbt.DecodeBytes(data, nbt.WithMaxDepth(5))
	if !errors.Is(err, &nbterrors.Error{Kind: nbterrors.KindInvalidData}) {
		t.Errorf("err = %v, want invalid data", err)
	}
}

func TestEncodeRejectsCycles(t *testing.T) {
	c := nbt.NewCompound()
	c.Set("self", c)
	_, err := nbt.EncodeBytes(&nbt.Root{Compound: c})
	if !errors.Is(err, &nbterrors.Error{Kind: nbterrors.KindInvalidData}) {
		t.Errorf("err = %v, want invalid data", err)
	}
}

func TestEncodeErrors(t *testing.T) {
	if _, err := nbt.EncodeBytes(nil); !errors.Is(err, nbterrors.ErrInvalidInput) {
		t.Errorf("nil root: %v", err)
	}
	long := nbt.NewCompound().Set("s", nbt.String(strings.Repeat("x", 70000)))
	_, err := nbt.EncodeBytes(&nbt.Root{Compound: long})
	if !errors.Is(err, nbterrors.ErrOverflow) {
		t.Errorf("long string: %v", err)
	}
	var e *nbterrors.Error
	if errors.As(err, &e) && e.Path != "s" {
		t.Errorf("overflow path = %q, want s", e.Path)
	}
	if _, err := nbt.EncodeBytes(nbt.NewRoot(""), nbt.WithCompression(nbt.Compression(9))); !errors.Is(err, &nbterrors.Error{Kind: nbterrors.KindUnsupported}) {
		t.Errorf("bad compression: %v", err)
	}
}

func TestInventoryEndToEnd(t *testing.T) {
	item := nbt.NewCompound().
		Set("slot", nbt.Byte(0)).
		Set("id", nbt.NewString("minecraft:stone")).
		Set("Count", nbt.Byte(1))
	inv, err := nbt.ListOf(item)
	if err != nil {
		t.Fatal(err)
	}
	root := &nbt.Root{Compound: nbt.NewCompound().Set("Inventory", inv)}

	data, err := nbt.EncodeBytes(root, nbt.WithCompression(nbt.CompressionGzip))
	if err != nil {
		t.Fatal(err)
	}
	back, _, err := nbt.DecodeBytes(data)
	if err != nil {
		t.Fatal(err)
	}

	list, err := back.Get(nbt.PathOf("Inventory"))
	if err != nil {
		t.Fatal(err)
	}
	if list.(*nbt.List).Len() != 1 {
		t.Fatalf("Inventory has %d elements, want 1", list.(*nbt.List).Len())
	}
	checks := []struct {
		path string
		want nbt.Tag
	}{
		{"Inventory[0].slot", nbt.Byte(0)},
		{"Inventory[0].id", nbt.String("minecraft:stone")},
		{"Inventory[0].Count", nbt.Byte(1)},
	}
	for _, c := range checks {
		p, _ := nbt.ParsePath(c.path)
		got, err := back.Get(p)
		if err != nil {
			t.Errorf("%s: %v", c.path, err)
			continue
		}
		if got.Type() != c.want.Type() || !nbt.Equal(got, c.want) {
			t.Errorf("%s = %#v, want %#v", c.path, got, c.want)
		}
	}
}

// randomTag builds a random tree for property-style round-trip checks.
func randomTag(r *rand.Rand, depth int) nbt.Tag {
	kind := nbt.TagType(1 + r.IntN(12))
	if depth > 4 && kind.IsContainer() {
		kind = nbt.TagLong
	}
	switch kind {
	case nbt.TagByte:
		return nbt.Byte(r.Int32())
	case nbt.TagShort:
		return nbt.Short(r.Int32())
	case nbt.TagInt:
		return nbt.Int(r.Int32())
	case nbt.TagLong:
		return nbt.Long(r.Int64())
	case nbt.TagFloat:
		return nbt.Float(float32(r.NormFloat64()))
	case nbt.TagDouble:
		return nbt.Double(r.NormFloat64() * 1e10)
	case nbt.TagByteArray:
		a := make(nbt.ByteArray, r.IntN(8))
		for i := range a {
			a[i] = int8(r.Int32())
		}
		return a
	case nbt.TagString:
		b := make([]byte, r.IntN(12))
		for i := range b {
			b[i] = byte(r.Uint32())
		}
		return nbt.String(b)
	case nbt.TagList:
		l := nbt.NewList(nbt.TagEnd)
		n := r.IntN(4)
		if n == 0 {
			return l
		}
		first := randomTag(r, depth+1)
		l.Append(first)
		for i := 1; i < n; i++ {
			for {
				e := randomTag(r, depth+1)
				if e.Type() == first.Type() {
					l.Append(e)
					break
				}
			}
		}
		return l
	case nbt.TagCompound:
		c := nbt.NewCompound()
		for i := r.IntN(5); i > 0; i-- {
			c.Set(string(rune('a'+r.IntN(26))), randomTag(r, depth+1))
		}
		return c
	case nbt.TagIntArray:
		a := make(nbt.IntArray, r.IntN(8))
		for i := range a {
			a[i] = r.Int32()
		}
		return a
	default:
		a := make(nbt.LongArray, r.IntN(8))
		for i := range a {
			a[i] = r.Int64()
		}
		return a
	}
}

func TestRandomRoundTrip(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 2))
	for i := 0; i < 200; i++ {
		c := nbt.NewCompound()
		for j := r.IntN(6); j >= 0; j-- {
			c.Set(string(rune('A'+j)), randomTag(r, 0))
		}
		root := &nbt.Root{Name: "r", Compound: c}
		data, err := nbt.EncodeBytes(root)
		if err != nil {
			t.Fatalf("iteration %d: encode: %v", i, err)
		}
		back, _, err := nbt.DecodeBytes(data, nbt.WithCompression(nbt.CompressionNone))
		if err != nil {
			t.Fatalf("iteration %d: decode: %v", i, err)
		}
		if !root.Equal(back) {
			t.Fatalf("iteration %d: mismatch\n got %s\nwant %s", i,
				nbt.FormatSNBT(back.Compound, ""), nbt.FormatSNBT(root.Compound, ""))
		}
	}
}

func FuzzDecode(f *testing.F) {
	f.Add(helloWorld)
	seed, _ := nbt.EncodeBytes(sampleTree())
	f.Add(seed)
	f.Fuzz(func(t *testing.T, data []byte) {
		root, _, err := nbt.DecodeBytes(data, nbt.WithCompression(nbt.CompressionNone))
		if err != nil {
			return
		}
		out, err := nbt.EncodeBytes(root)
		if err != nil {
			t.Fatalf("re-encode: %v", err)
		}
		back, _, err := nbt.DecodeBytes(out, nbt.WithCompression(nbt.CompressionNone))
		if err != nil {
			t.Fatalf("decode of re-encoding: %v", err)
		}
		if !root.Equal(back) {
			t.Fatal("re-encoding changed the tree")
		}
	})
}
