package binary

import (
	"bytes"
	"encoding/binary"
	"io"
	"math"

	"github.com/wippyai/nbt-editor/errors"
)

// Reader wraps an io.Reader with position tracking and big-endian NBT
// primitive reads. Every short read is reported as a truncated input
// error carrying the byte offset where the read started.
type Reader struct {
	r         io.Reader
	remaining func() int
	pos       int64
	scratch   [8]byte
}

// NewReader creates a new Reader. When r is a *bytes.Reader the number of
// unread bytes is known, which lets ReadBytes reject impossible lengths
// before allocating.
func NewReader(r io.Reader) *Reader {
	rd := &Reader{r: r}
	switch br := r.(type) {
	case *bytes.Reader:
		rd.remaining = br.Len
	case *bytes.Buffer:
		rd.remaining = br.Len
	}
	return rd
}

// Position returns the current byte position.
func (r *Reader) Position() int64 {
	return r.pos
}

// Remaining returns the number of unread bytes, or -1 when unknown.
func (r *Reader) Remaining() int {
	if r.remaining == nil {
		return -1
	}
	return r.remaining()
}

func (r *Reader) fill(buf []byte, what string) error {
	n, err := io.ReadFull(r.r, buf)
	if err != nil {
		start := r.pos
		r.pos += int64(n)
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return errors.Truncated(start, len(buf)-n, what)
		}
		return errors.New(errors.PhaseDecode, errors.KindIO).
			Offset(start).
			Detail("read %s", what).
			Cause(err).
			Build()
	}
	r.pos += int64(n)
	return nil
}

// ReadU8 reads one unsigned byte.
func (r *Reader) ReadU8(what string) (uint8, error) {
	if err := r.fill(r.scratch[:1], what); err != nil {
		return 0, err
	}
	return r.scratch[0], nil
}

// ReadI8 reads one signed byte.
func (r *Reader) ReadI8(what string) (int8, error) {
	b, err := r.ReadU8(what)
	return int8(b), err
}

// ReadU16 reads a big-endian uint16.
func (r *Reader) ReadU16(what string) (uint16, error) {
	if err := r.fill(r.scratch[:2], what); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(r.scratch[:2]), nil
}

// ReadI16 reads a big-endian int16.
func (r *Reader) ReadI16(what string) (int16, error) {
	v, err := r.ReadU16(what)
	return int16(v), err
}

// ReadI32 reads a big-endian int32.
func (r *Reader) ReadI32(what string) (int32, error) {
	if err := r.fill(r.scratch[:4], what); err != nil {
		return 0, err
	}
	return int32(binary.BigEndian.Uint32(r.scratch[:4])), nil
}

// ReadI64 reads a big-endian int64.
func (r *Reader) ReadI64(what string) (int64, error) {
	if err := r.fill(r.scratch[:8], what); err != nil {
		return 0, err
	}
	return int64(binary.BigEndian.Uint64(r.scratch[:8])), nil
}

// ReadF32 reads a big-endian IEEE-754 float32.
func (r *Reader) ReadF32(what string) (float32, error) {
	if err := r.fill(r.scratch[:4], what); err != nil {
		return 0, err
	}
	return math.Float32frombits(binary.BigEndian.Uint32(r.scratch[:4])), nil
}

// ReadF64 reads a big-endian IEEE-754 float64.
func (r *Reader) ReadF64(what string) (float64, error) {
	if err := r.fill(r.scratch[:8], what); err != nil {
		return 0, err
	}
	return math.Float64frombits(binary.BigEndian.Uint64(r.scratch[:8])), nil
}

// ReadBytes reads exactly n bytes.
func (r *Reader) ReadBytes(n int, what string) ([]byte, error) {
	if err := r.Require(n, 1, what); err != nil {
		return nil, err
	}
	buf := make([]byte, n)
	if err := r.fill(buf, what); err != nil {
		return nil, err
	}
	return buf, nil
}

// Require fails with a truncated input error when fewer than count*width
// bytes remain. It is a no-op when the remaining length is unknown.
func (r *Reader) Require(count, width int, what string) error {
	rem := r.Remaining()
	if rem < 0 {
		return nil
	}
	need := int64(count) * int64(width)
	if need > int64(rem) {
		return errors.Truncated(r.pos, int(need-int64(rem)), what)
	}
	return nil
}

// ReadString reads a u16 length-prefixed byte string. The bytes are
// returned verbatim; modified UTF-8 decoding is left to the caller.
func (r *Reader) ReadString(what string) (string, error) {
	n, err := r.ReadU16(what + " length")
	if err != nil {
		return "", err
	}
	if n == 0 {
		return "", nil
	}
	data, err := r.ReadBytes(int(n), what)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
