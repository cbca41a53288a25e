package nbt

import (
	"bytes"
	"io"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zlib"
	"github.com/pierrec/lz4/v4"

	"github.com/wippyai/nbt-editor/errors"
)

// Compression is the framing wrapped around an encoded NBT stream.
type Compression byte

// Player .dat and level.dat files are gzip; region chunks use zlib or,
// in newer versions, LZ4. Raw streams appear in network captures and
// some tooling.
const (
	CompressionNone Compression = iota
	CompressionGzip
	CompressionZlib
	CompressionLZ4
)

func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionGzip:
		return "gzip"
	case CompressionZlib:
		return "zlib"
	case CompressionLZ4:
		return "lz4"
	}
	return "unknown"
}

// ParseCompression parses a name returned by Compression.String.
func ParseCompression(name string) (Compression, error) {
	switch name {
	case "none", "raw":
		return CompressionNone, nil
	case "gzip":
		return CompressionGzip, nil
	case "zlib":
		return CompressionZlib, nil
	case "lz4":
		return CompressionLZ4, nil
	}
	return CompressionNone, errors.InvalidInput(errors.PhaseConfig, "unknown compression "+name)
}

// Valid returns a nil err iff this Compression is known.
func (c Compression) Valid() error {
	switch c {
	case CompressionNone, CompressionGzip, CompressionZlib, CompressionLZ4:
		return nil
	}
	return errors.Unsupported(errors.PhaseEncode, "compression "+c.String())
}

var lz4FrameMagic = []byte{0x04, 0x22, 0x4d, 0x18}

// SniffCompression inspects the first bytes of a stream and guesses its
// framing. Anything unrecognised is treated as raw NBT.
func SniffCompression(prefix []byte) Compression {
	switch {
	case len(prefix) >= 2 && prefix[0] == 0x1f && prefix[1] == 0x8b:
		return CompressionGzip
	case len(prefix) >= 4 && bytes.Equal(prefix[:4], lz4FrameMagic):
		return CompressionLZ4
	case len(prefix) >= 2 && prefix[0] == 0x78 && (uint16(prefix[0])<<8|uint16(prefix[1]))%31 == 0:
		return CompressionZlib
	}
	return CompressionNone
}

// Writer returns a new compressing writer. Close must be called to flush
// the trailer; it does not close w.
func (c Compression) Writer(w io.Writer) (io.WriteCloser, error) {
	switch c {
	case CompressionNone:
		return nopWriteCloser{w}, nil
	case CompressionGzip:
		return gzip.NewWriter(w), nil
	case CompressionZlib:
		return zlib.NewWriter(w), nil
	case CompressionLZ4:
		return lz4.NewWriter(w), nil
	}
	return nil, c.Valid()
}

// Reader returns a new decompressing reader. Header errors are reported
// as decompression errors.
func (c Compression) Reader(r io.Reader) (io.ReadCloser, error) {
	switch c {
	case CompressionNone:
		return io.NopCloser(r), nil
	case CompressionGzip:
		zr, err := gzip.NewReader(r)
		if err != nil {
			return nil, errors.Decompression(c.String(), err)
		}
		return zr, nil
	case CompressionZlib:
		zr, err := zlib.NewReader(r)
		if err != nil {
			return nil, errors.Decompression(c.String(), err)
		}
		return zr, nil
	case CompressionLZ4:
		return io.NopCloser(lz4.NewReader(r)), nil
	}
	return nil, c.Valid()
}

// Decompress unwraps a complete in-memory stream.
func (c Compression) Decompress(data []byte) ([]byte, error) {
	if c == CompressionNone {
		return data, nil
	}
	rc, err := c.Reader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	out, err := io.ReadAll(rc)
	if err != nil {
		return nil, errors.Decompression(c.String(), err)
	}
	return out, nil
}

// Compress wraps a complete in-memory stream.
func (c Compression) Compress(data []byte) ([]byte, error) {
	if c == CompressionNone {
		return data, nil
	}
	var buf bytes.Buffer
	wc, err := c.Writer(&buf)
	if err != nil {
		return nil, err
	}
	if _, err := wc.Write(data); err != nil {
		wc.Close()
		return nil, errors.Wrap(errors.PhaseEncode, errors.KindIO, err, c.String()+" write")
	}
	if err := wc.Close(); err != nil {
		return nil, errors.Wrap(errors.PhaseEncode, errors.KindIO, err, c.String()+" close")
	}
	return buf.Bytes(), nil
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }
