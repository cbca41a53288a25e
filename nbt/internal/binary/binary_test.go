package binary

import (
	"bytes"
	"errors"
	"io"
	"math"
	"strings"
	"testing"

	nbterrors "github.com/wippyai/nbt-editor/errors"
)

func TestReaderReadU8(t *testing.T) {
	data := []byte{0x01, 0xff, 0x03}
	r := NewReader(bytes.NewReader(data))

	for i, want := range data {
		if r.Position() != int64(i) {
			t.Errorf("position before read %d: got %d, want %d", i, r.Position(), i)
		}
		b, err := r.ReadU8("byte")
		if err != nil {
			t.Fatalf("ReadU8 %d: %v", i, err)
		}
		if b != want {
			t.Errorf("ReadU8 %d: got 0x%02x, want 0x%02x", i, b, want)
		}
	}

	_, err := r.ReadU8("byte")
	if !errors.Is(err, nbterrors.ErrTruncatedInput) {
		t.Errorf("expected truncated input, got %v", err)
	}
}

func TestReaderSignedWidths(t *testing.T) {
	data := []byte{
		0xff,       // int8 -1
		0x80, 0x00, // int16 -32768
		0x7f, 0xff, 0xff, 0xff, // int32 max
		0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xfe, // int64 -2
	}
	r := NewReader(bytes.NewReader(data))

	i8, err := r.ReadI8("b")
	if err != nil || i8 != -1 {
		t.Errorf("ReadI8: got %d, %v", i8, err)
	}
	i16, err := r.ReadI16("s")
	if err != nil || i16 != math.MinInt16 {
		t.Errorf("ReadI16: got %d, %v", i16, err)
	}
	i32, err := r.ReadI32("i")
	if err != nil || i32 != math.MaxInt32 {
		t.Errorf("ReadI32: got %d, %v", i32, err)
	}
	i64, err := r.ReadI64("l")
	if err != nil || i64 != -2 {
		t.Errorf("ReadI64: got %d, %v", i64, err)
	}
	if r.Position() != int64(len(data)) {
		t.Errorf("final position: got %d, want %d", r.Position(), len(data))
	}
}

func TestReaderFloats(t *testing.T) {
	w := NewWriter()
	w.WriteF32(1.5)
	w.WriteF64(-0.25)
	w.WriteF32(float32(math.Inf(1)))

	r := NewReader(bytes.NewReader(w.Bytes()))
	f32, err := r.ReadF32("f")
	if err != nil || f32 != 1.5 {
		t.Errorf("ReadF32: got %v, %v", f32, err)
	}
	f64, err := r.ReadF64("d")
	if err != nil || f64 != -0.25 {
		t.Errorf("ReadF64: got %v, %v", f64, err)
	}
	inf, err := r.ReadF32("f")
	if err != nil || !math.IsInf(float64(inf), 1) {
		t.Errorf("ReadF32 inf: got %v, %v", inf, err)
	}
}

func TestReaderTruncatedOffset(t *testing.T) {
	r := NewReader(bytes.NewReader([]byte{0x00, 0x01, 0x02}))
	r.ReadU8("b")
	_, err := r.ReadI32("int payload")

	var e *nbterrors.Error
	if !errors.As(err, &e) {
		t.Fatalf("expected *errors.Error, got %T", err)
	}
	if e.Kind != nbterrors.KindTruncatedInput {
		t.Errorf("Kind = %v", e.Kind)
	}
	if e.Offset != 1 {
		t.Errorf("Offset = %d, want 1", e.Offset)
	}
	if !strings.Contains(e.Error(), "int payload") {
		t.Errorf("message %q should name the field", e.Error())
	}
}

func TestReaderReadBytesRejectsHugeLength(t *testing.T) {
	r := NewReader(bytes.NewReader([]byte{0x01, 0x02}))
	_, err := r.ReadBytes(1<<30, "array")
	if !errors.Is(err, nbterrors.ErrTruncatedInput) {
		t.Errorf("expected truncated input, got %v", err)
	}
	if r.Position() != 0 {
		t.Errorf("position moved to %d on rejected read", r.Position())
	}
}

func TestReaderUnknownRemaining(t *testing.T) {
	r := NewReader(io.MultiReader(bytes.NewReader([]byte{0x01})))
	if r.Remaining() != -1 {
		t.Errorf("Remaining = %d, want -1", r.Remaining())
	}
	if err := r.Require(100, 8, "x"); err != nil {
		t.Errorf("Require with unknown length should pass, got %v", err)
	}
	_, err := r.ReadBytes(4, "x")
	if !errors.Is(err, nbterrors.ErrTruncatedInput) {
		t.Errorf("expected truncated input, got %v", err)
	}
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("device gone") }

func TestReaderIOError(t *testing.T) {
	r := NewReader(failingReader{})
	_, err := r.ReadU8("b")
	if !errors.Is(err, nbterrors.ErrIO) {
		t.Errorf("expected io kind, got %v", err)
	}
}

func TestReaderReadString(t *testing.T) {
	data := []byte{0x00, 0x05, 'h', 'e', 'l', 'l', 'o', 0x00, 0x00}
	r := NewReader(bytes.NewReader(data))

	got, err := r.ReadString("name")
	if err != nil {
		t.Fatalf("ReadString: %v", err)
	}
	if got != "hello" {
		t.Errorf("ReadString: got %q, want hello", got)
	}
	empty, err := r.ReadString("name")
	if err != nil || empty != "" {
		t.Errorf("empty ReadString: got %q, %v", empty, err)
	}
}

func TestReaderReadStringPassesRawBytes(t *testing.T) {
	data := []byte{0x00, 0x02, 0xc0, 0x80}
	r := NewReader(bytes.NewReader(data))
	got, err := r.ReadString("s")
	if err != nil {
		t.Fatalf("ReadString: %v", err)
	}
	if got != "\xc0\x80" {
		t.Errorf("ReadString: got %x", got)
	}
}

func TestReaderReadStringTruncated(t *testing.T) {
	r := NewReader(bytes.NewReader([]byte{0x00, 0x09, 'a', 'b'}))
	_, err := r.ReadString("name")
	if !errors.Is(err, nbterrors.ErrTruncatedInput) {
		t.Errorf("expected truncated input, got %v", err)
	}
}

func TestWriterBasic(t *testing.T) {
	w := NewWriter()
	if w.Len() != 0 {
		t.Errorf("initial Len: got %d, want 0", w.Len())
	}

	w.WriteU8(0x0a)
	w.WriteI16(-2)
	w.WriteI32(0x01020304)
	w.WriteI64(1)

	want := []byte{
		0x0a,
		0xff, 0xfe,
		0x01, 0x02, 0x03, 0x04,
		0, 0, 0, 0, 0, 0, 0, 1,
	}
	if !bytes.Equal(w.Bytes(), want) {
		t.Errorf("Bytes: got %x, want %x", w.Bytes(), want)
	}
}

func TestWriterWriteString(t *testing.T) {
	w := NewWriter()
	if err := w.WriteString("test"); err != nil {
		t.Fatal(err)
	}
	want := []byte{0x00, 0x04, 't', 'e', 's', 't'}
	if !bytes.Equal(w.Bytes(), want) {
		t.Errorf("WriteString: got %v, want %v", w.Bytes(), want)
	}
}

func TestWriterWriteStringOverflow(t *testing.T) {
	w := NewWriter()
	err := w.WriteString(strings.Repeat("x", MaxStringLen+1))
	if !errors.Is(err, nbterrors.ErrOverflow) {
		t.Errorf("expected overflow, got %v", err)
	}
	if w.Len() != 0 {
		t.Errorf("writer should be untouched, Len = %d", w.Len())
	}
	if err := w.WriteString(strings.Repeat("x", MaxStringLen)); err != nil {
		t.Errorf("max length string: %v", err)
	}
}

func TestRoundTrip(t *testing.T) {
	w := NewWriter()
	w.WriteI8(-7)
	w.WriteI16(12345)
	w.WriteI32(-9876)
	w.WriteI64(math.MinInt64)
	w.WriteF64(math.Pi)
	w.WriteString("roundtrip")

	r := NewReader(bytes.NewReader(w.Bytes()))
	i8, _ := r.ReadI8("")
	i16, _ := r.ReadI16("")
	i32, _ := r.ReadI32("")
	i64, _ := r.ReadI64("")
	f64, _ := r.ReadF64("")
	s, err := r.ReadString("")
	if err != nil {
		t.Fatal(err)
	}
	if i8 != -7 || i16 != 12345 || i32 != -9876 || i64 != math.MinInt64 || f64 != math.Pi || s != "roundtrip" {
		t.Errorf("round trip mismatch: %d %d %d %d %v %q", i8, i16, i32, i64, f64, s)
	}
}
