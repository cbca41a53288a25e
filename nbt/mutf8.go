package nbt

import (
	"strings"
	"unicode/utf16"
	"unicode/utf8"
)

// String is a string tag. It holds the raw modified UTF-8 bytes exactly as
// they appear on the wire, so malformed input round-trips unchanged. Use
// NewString and Text to cross to and from ordinary Go strings.
type String string

// NewString converts UTF-8 text to a modified UTF-8 string tag: U+0000
// becomes C0 80 and supplementary characters become CESU-8 surrogate pairs.
func NewString(text string) String {
	if isPlainASCII(text) {
		return String(text)
	}
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		switch {
		case r == 0:
			b.WriteByte(0xc0)
			b.WriteByte(0x80)
		case r >= 0x10000:
			hi, lo := utf16.EncodeRune(r)
			writeMUTF8Unit(&b, hi)
			writeMUTF8Unit(&b, lo)
		default:
			b.WriteRune(r)
		}
	}
	return String(b.String())
}

func writeMUTF8Unit(b *strings.Builder, r rune) {
	b.WriteByte(byte(0xe0 | (r>>12)&0x0f))
	b.WriteByte(byte(0x80 | (r>>6)&0x3f))
	b.WriteByte(byte(0x80 | r&0x3f))
}

// Text decodes the modified UTF-8 bytes into a Go string. Malformed
// sequences decode as U+FFFD; the tag itself is not modified.
func (s String) Text() string {
	raw := string(s)
	if isPlainASCII(raw) {
		return raw
	}
	var b strings.Builder
	b.Grow(len(raw))
	for i := 0; i < len(raw); {
		c := raw[i]
		switch {
		case c < 0x80 && c != 0:
			b.WriteByte(c)
			i++
		case c&0xe0 == 0xc0 && i+1 < len(raw) && raw[i+1]&0xc0 == 0x80:
			b.WriteRune(rune(c&0x1f)<<6 | rune(raw[i+1]&0x3f))
			i += 2
		case c&0xf0 == 0xe0 && i+2 < len(raw) && raw[i+1]&0xc0 == 0x80 && raw[i+2]&0xc0 == 0x80:
			r := rune(c&0x0f)<<12 | rune(raw[i+1]&0x3f)<<6 | rune(raw[i+2]&0x3f)
			i += 3
			if utf16.IsSurrogate(r) && r < 0xdc00 && i+2 < len(raw) && raw[i] == 0xed &&
				raw[i+1]&0xc0 == 0x80 && raw[i+2]&0xc0 == 0x80 {
				lo := rune(raw[i]&0x0f)<<12 | rune(raw[i+1]&0x3f)<<6 | rune(raw[i+2]&0x3f)
				if pair := utf16.DecodeRune(r, lo); pair != utf8.RuneError {
					b.WriteRune(pair)
					i += 3
					continue
				}
			}
			if utf16.IsSurrogate(r) {
				r = utf8.RuneError
			}
			b.WriteRune(r)
		default:
			b.WriteRune(utf8.RuneError)
			i++
		}
	}
	return b.String()
}

// ValidMUTF8 reports whether s is well-formed modified UTF-8.
func (s String) ValidMUTF8() bool {
	return NewString(s.Text()) == s
}

func isPlainASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] == 0 || s[i] >= 0x80 {
			return false
		}
	}
	return true
}
