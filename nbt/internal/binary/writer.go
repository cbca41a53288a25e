package binary

import (
	"bytes"
	"encoding/binary"
	"math"

	"github.com/wippyai/nbt-editor/errors"
)

// MaxStringLen is the largest byte length a u16 length prefix can carry.
const MaxStringLen = math.MaxUint16

// Writer provides buffered big-endian writing for NBT encoding.
type Writer struct {
	buf     *bytes.Buffer
	scratch [8]byte
}

// NewWriter creates a new Writer.
func NewWriter() *Writer {
	return &Writer{buf: &bytes.Buffer{}}
}

// Bytes returns the written bytes.
func (w *Writer) Bytes() []byte {
	return w.buf.Bytes()
}

// Len returns the number of bytes written.
func (w *Writer) Len() int {
	return w.buf.Len()
}

// WriteU8 writes a single byte.
func (w *Writer) WriteU8(b uint8) {
	w.buf.WriteByte(b)
}

// WriteI8 writes a signed byte.
func (w *Writer) WriteI8(v int8) {
	w.buf.WriteByte(byte(v))
}

// WriteU16 writes a big-endian uint16.
func (w *Writer) WriteU16(v uint16) {
	binary.BigEndian.PutUint16(w.scratch[:2], v)
	w.buf.Write(w.scratch[:2])
}

// WriteI16 writes a big-endian int16.
func (w *Writer) WriteI16(v int16) {
	w.WriteU16(uint16(v))
}

// WriteI32 writes a big-endian int32.
func (w *Writer) WriteI32(v int32) {
	binary.BigEndian.PutUint32(w.scratch[:4], uint32(v))
	w.buf.Write(w.scratch[:4])
}

// WriteI64 writes a big-endian int64.
func (w *Writer) WriteI64(v int64) {
	binary.BigEndian.PutUint64(w.scratch[:8], uint64(v))
	w.buf.Write(w.scratch[:8])
}

// WriteF32 writes a big-endian IEEE-754 float32.
func (w *Writer) WriteF32(v float32) {
	binary.BigEndian.PutUint32(w.scratch[:4], math.Float32bits(v))
	w.buf.Write(w.scratch[:4])
}

// WriteF64 writes a big-endian IEEE-754 float64.
func (w *Writer) WriteF64(v float64) {
	binary.BigEndian.PutUint64(w.scratch[:8], math.Float64bits(v))
	w.buf.Write(w.scratch[:8])
}

// WriteBytes writes a byte slice.
func (w *Writer) WriteBytes(data []byte) {
	w.buf.Write(data)
}

// WriteString writes a u16 length prefix followed by the raw bytes of s.
func (w *Writer) WriteString(s string) error {
	if len(s) > MaxStringLen {
		return errors.Overflow(errors.PhaseEncode, "", len(s), "u16 string length")
	}
	w.WriteU16(uint16(len(s)))
	w.buf.WriteString(s)
	return nil
}
