package nbt

import (
	"strconv"
	"strings"
)

// FormatSNBT renders t as stringified NBT, the textual form Minecraft
// commands accept. An empty indent yields a single line; otherwise
// non-empty containers are broken across lines using indent per level.
// Numeric arrays always stay on one line.
func FormatSNBT(t Tag, indent string) string {
	var b strings.Builder
	writeSNBT(&b, t, indent, 0)
	return b.String()
}

func writeSNBT(b *strings.Builder, t Tag, indent string, level int) {
	switch v := t.(type) {
	case Byte:
		b.WriteString(strconv.FormatInt(int64(v), 10))
		b.WriteByte('b')
	case Short:
		b.WriteString(strconv.FormatInt(int64(v), 10))
		b.WriteByte('s')
	case Int:
		b.WriteString(strconv.FormatInt(int64(v), 10))
	case Long:
		b.WriteString(strconv.FormatInt(int64(v), 10))
		b.WriteByte('L')
	case Float:
		b.WriteString(strconv.FormatFloat(float64(v), 'g', -1, 32))
		b.WriteByte('f')
	case Double:
		b.WriteString(strconv.FormatFloat(float64(v), 'g', -1, 64))
		b.WriteByte('d')
	case String:
		b.WriteString(quoteSNBT(v.Text()))
	case ByteArray:
		writeArray(b, "B", len(v), func(i int) string { return strconv.Itoa(int(v[i])) + "b" })
	case IntArray:
		writeArray(b, "I", len(v), func(i int) string { return strconv.Itoa(int(v[i])) })
	case LongArray:
		writeArray(b, "L", len(v), func(i int) string { return strconv.FormatInt(v[i], 10) + "L" })
	case *List:
		b.WriteByte('[')
		for i, e := range v.elems {
			sep(b, i, indent, level+1)
			writeSNBT(b, e, indent, level+1)
		}
		closeContainer(b, len(v.elems), indent, level)
		b.WriteByte(']')
	case *Compound:
		b.WriteByte('{')
		for i, k := range v.keys {
			sep(b, i, indent, level+1)
			b.WriteString(snbtKey(String(k).Text()))
			b.WriteString(": ")
			writeSNBT(b, v.vals[k], indent, level+1)
		}
		closeContainer(b, len(v.keys), indent, level)
		b.WriteByte('}')
	}
}

func writeArray(b *strings.Builder, prefix string, n int, elem func(int) string) {
	b.WriteByte('[')
	b.WriteString(prefix)
	b.WriteByte(';')
	for i := 0; i < n; i++ {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteByte(' ')
		b.WriteString(elem(i))
	}
	b.WriteByte(']')
}

func sep(b *strings.Builder, i int, indent string, level int) {
	if i > 0 {
		b.WriteByte(',')
		if indent == "" {
			b.WriteByte(' ')
		}
	}
	if indent != "" {
		b.WriteByte('\n')
		b.WriteString(strings.Repeat(indent, level))
	}
}

func closeContainer(b *strings.Builder, n int, indent string, level int) {
	if n > 0 && indent != "" {
		b.WriteByte('\n')
		b.WriteString(strings.Repeat(indent, level))
	}
}

func snbtKey(k string) string {
	if k == "" {
		return `""`
	}
	for _, r := range k {
		if !isBareRune(r) {
			return quoteSNBT(k)
		}
	}
	return k
}

func isBareRune(r rune) bool {
	return r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' ||
		r == '_' || r == '-' || r == '.' || r == '+'
}

func quoteSNBT(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"', '\\':
			b.WriteByte('\\')
			b.WriteRune(r)
		case '\n':
			b.WriteString(`\n`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}

// Summary is the one-line description a tree view shows next to a tag:
// entry counts for containers, value counts for arrays, the value itself
// for scalars. Long strings are cut at 40 characters.
func Summary(t Tag) string {
	switch v := t.(type) {
	case *Compound:
		return strconv.Itoa(v.Len()) + " entries"
	case *List:
		s := strconv.Itoa(v.Len()) + " items"
		if v.elemType != TagEnd {
			s += " of " + v.elemType.String()
		}
		return s
	case ByteArray:
		return strconv.Itoa(len(v)) + " values"
	case IntArray:
		return strconv.Itoa(len(v)) + " values"
	case LongArray:
		return strconv.Itoa(len(v)) + " values"
	case String:
		text := []rune(v.Text())
		if len(text) > 40 {
			return string(text[:37]) + "…"
		}
		return string(text)
	}
	return EditText(t)
}

// EditText renders a scalar or array in the textual form SetText accepts
// back: plain numbers, the decoded string, or comma-separated integers.
// Containers render as an empty string.
func EditText(t Tag) string {
	switch v := t.(type) {
	case Byte:
		return strconv.FormatInt(int64(v), 10)
	case Short:
		return strconv.FormatInt(int64(v), 10)
	case Int:
		return strconv.FormatInt(int64(v), 10)
	case Long:
		return strconv.FormatInt(int64(v), 10)
	case Float:
		return strconv.FormatFloat(float64(v), 'g', -1, 32)
	case Double:
		return strconv.FormatFloat(float64(v), 'g', -1, 64)
	case String:
		return v.Text()
	case ByteArray:
		return joinInts(len(v), func(i int) int64 { return int64(v[i]) })
	case IntArray:
		return joinInts(len(v), func(i int) int64 { return int64(v[i]) })
	case LongArray:
		return joinInts(len(v), func(i int) int64 { return v[i] })
	}
	return ""
}

func joinInts(n int, at func(int) int64) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = strconv.FormatInt(at(i), 10)
	}
	return strings.Join(parts, ", ")
}
