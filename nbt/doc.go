// Package nbt provides Named Binary Tag parsing and encoding.
//
// NBT is the recursive, self-describing binary format Minecraft uses for
// level data, player files and chunk storage. This package implements the
// complete tag set (End through LongArray), the big-endian wire format,
// and the gzip, zlib and LZ4 framings files arrive in.
//
// # Tag Model
//
// Tag is a closed union. Scalars and numeric arrays are plain Go values;
// containers are pointers:
//
//	Byte, Short, Int, Long        signed integers (8/16/32/64 bit)
//	Float, Double                 IEEE-754 (32/64 bit)
//	String                        raw modified UTF-8 bytes
//	ByteArray, IntArray, LongArray
//	*List                         homogeneous, unnamed elements
//	*Compound                     ordered, uniquely named entries
//
// A List created with TagEnd is untyped; its first Append fixes the
// element type and later appends of another type fail.
//
// # Decoding
//
// Decode a file, sniffing its compression:
//
//	data, _ := os.ReadFile("player.dat")
//	root, comp, err := nbt.DecodeBytes(data)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Force a framing instead of sniffing:
//
//	root, _, err := nbt.DecodeBytes(data, nbt.WithCompression(nbt.CompressionNone))
//
// # Encoding
//
// Encode back, preserving the original framing:
//
//	out, err := nbt.EncodeBytes(root, nbt.WithCompression(comp))
//
// Round-tripping preserves every value, compound key order and list
// order. The single normalisation is that an untyped empty list always
// encodes with element type End and length 0.
//
// # Paths
//
// Tags are addressed structurally from the root compound:
//
//	p, _ := nbt.ParsePath("Inventory[0].id")
//	tag, err := root.Get(p)
//
// # Errors
//
// Decode failures are *errors.Error values of kind truncated_input,
// unknown_tag_type, malformed_list, decompression or io, carrying the byte
// offset and the tag path where decoding stopped.
package nbt
