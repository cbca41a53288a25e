package nbt

import (
	"strconv"
	"strings"

	"github.com/wippyai/nbt-editor/errors"
)

// Segment is one step of a Path: a compound key or a list index.
type Segment struct {
	Key     string
	Index   int
	IsIndex bool
}

// Key returns a compound key segment.
func Key(name string) Segment {
	return Segment{Key: name}
}

// Index returns a list index segment.
func Index(i int) Segment {
	return Segment{Index: i, IsIndex: true}
}

func (s Segment) String() string {
	if s.IsIndex {
		return "[" + strconv.Itoa(s.Index) + "]"
	}
	if needsQuote(s.Key) {
		return strconv.Quote(s.Key)
	}
	return s.Key
}

// Path addresses a tag by the sequence of keys and indices leading to it
// from the root compound. The empty path is the root itself.
type Path []Segment

// PathOf builds a path from strings and ints.
func PathOf(parts ...any) Path {
	p := make(Path, 0, len(parts))
	for _, part := range parts {
		switch v := part.(type) {
		case string:
			p = append(p, Key(v))
		case int:
			p = append(p, Index(v))
		case Segment:
			p = append(p, v)
		}
	}
	return p
}

// String renders the path as `a.b[0].c`. Keys containing separators,
// quotes or spaces, and empty keys, are quoted.
func (p Path) String() string {
	var b strings.Builder
	for i, s := range p {
		if !s.IsIndex && i > 0 {
			b.WriteByte('.')
		}
		b.WriteString(s.String())
	}
	return b.String()
}

// Append returns a new path with segs added. p is not modified.
func (p Path) Append(segs ...Segment) Path {
	out := make(Path, 0, len(p)+len(segs))
	out = append(out, p...)
	return append(out, segs...)
}

// Parent splits off the last segment. ok is false for the empty path.
func (p Path) Parent() (parent Path, last Segment, ok bool) {
	if len(p) == 0 {
		return nil, Segment{}, false
	}
	return p[:len(p)-1], p[len(p)-1], true
}

func needsQuote(k string) bool {
	return k == "" || strings.ContainsAny(k, `.[]" `)
}

// ParsePath parses the syntax produced by Path.String. The empty string
// is the root path.
func ParsePath(s string) (Path, error) {
	var p Path
	for i := 0; i < len(s); {
		switch c := s[i]; {
		case c == '.':
			if i == 0 || i == len(s)-1 || s[i+1] == '.' {
				return nil, pathSyntax(s, i, "empty key")
			}
			i++
		case c == '[':
			end := strings.IndexByte(s[i:], ']')
			if end < 0 {
				return nil, pathSyntax(s, i, "unterminated index")
			}
			n, err := strconv.Atoi(s[i+1 : i+end])
			if err != nil || n < 0 {
				return nil, pathSyntax(s, i, "bad index "+s[i+1:i+end])
			}
			p = append(p, Index(n))
			i += end + 1
		case c == '"':
			q, err := strconv.QuotedPrefix(s[i:])
			if err != nil {
				return nil, pathSyntax(s, i, "unterminated quote")
			}
			k, _ := strconv.Unquote(q)
			p = append(p, Key(k))
			i += len(q)
		default:
			end := strings.IndexAny(s[i:], ".[")
			if end < 0 {
				end = len(s) - i
			}
			p = append(p, Key(s[i:i+end]))
			i += end
		}
	}
	return p, nil
}

func pathSyntax(s string, at int, detail string) error {
	return errors.New(errors.PhaseParse, errors.KindParse).
		Value(s).
		Detail("path %q at %d: %s", s, at, detail).
		Build()
}

// Resolve walks p starting at t.
func Resolve(t Tag, p Path) (Tag, error) {
	cur := t
	for i, seg := range p {
		next, ok := step(cur, seg)
		if !ok {
			return nil, errors.PathNotFound(errors.PhaseQuery, p[:i+1].String(), seg.String())
		}
		cur = next
	}
	return cur, nil
}

func step(t Tag, seg Segment) (Tag, bool) {
	switch v := t.(type) {
	case *Compound:
		if seg.IsIndex {
			return nil, false
		}
		return v.Get(seg.Key)
	case *List:
		if !seg.IsIndex {
			return nil, false
		}
		return v.At(seg.Index)
	}
	return nil, false
}

// Get resolves p against the root compound.
func (r *Root) Get(p Path) (Tag, error) {
	return Resolve(r.Compound, p)
}

// Walk visits every tag under t depth-first in encoding order, passing
// the path relative to t. Returning false from fn skips the children of
// the current tag.
func Walk(t Tag, fn func(p Path, t Tag) bool) {
	walk(nil, t, fn)
}

func walk(p Path, t Tag, fn func(Path, Tag) bool) {
	if !fn(p, t) {
		return
	}
	switch v := t.(type) {
	case *Compound:
		for _, k := range v.keys {
			walk(p.Append(Key(k)), v.vals[k], fn)
		}
	case *List:
		for i, e := range v.elems {
			walk(p.Append(Index(i)), e, fn)
		}
	}
}
