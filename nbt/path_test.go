package nbt_test

import (
	"errors"
	"reflect"
	"testing"

	nbterrors "github.com/wippyai/nbt-editor/errors"
	"github.com/wippyai/nbt-editor/nbt"
)

func TestParsePath(t *testing.T) {
	tests := []struct {
		in   string
		want nbt.Path
	}{
		{"", nil},
		{"a", nbt.PathOf("a")},
		{"a.b", nbt.PathOf("a", "b")},
		{"Inventory[0].id", nbt.PathOf("Inventory", 0, "id")},
		{"a[1][2]", nbt.PathOf("a", 1, 2)},
		{`"dotted.key".x`, nbt.PathOf("dotted.key", "x")},
		{`a.""`, nbt.PathOf("a", "")},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := nbt.ParsePath(tt.in)
			if err != nil {
				t.Fatalf("ParsePath: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParsePath(%q) = %#v, want %#v", tt.in, got, tt.want)
			}
			if got.String() != tt.in {
				t.Errorf("String() = %q, want %q", got.String(), tt.in)
			}
		})
	}
}

func TestParsePathErrors(t *testing.T) {
	for _, in := range []string{".a", "a.", "a..b", "a[", "a[x]", "a[-1]", `"open`} {
		t.Run(in, func(t *testing.T) {
			_, err := nbt.ParsePath(in)
			if !errors.Is(err, nbterrors.ErrParse) {
				t.Errorf("ParsePath(%q) err = %v, want parse error", in, err)
			}
		})
	}
}

func TestPathParent(t *testing.T) {
	p := nbt.PathOf("a", 3)
	parent, last, ok := p.Parent()
	if !ok || !reflect.DeepEqual(parent, nbt.PathOf("a")) || last != nbt.Index(3) {
		t.Errorf("Parent = %v %v %v", parent, last, ok)
	}
	if _, _, ok := nbt.Path(nil).Parent(); ok {
		t.Error("root has no parent")
	}
	appended := parent.Append(nbt.Key("x"))
	if appended.String() != "a.x" || p.String() != "a[3]" {
		t.Errorf("Append aliased: %s / %s", appended, p)
	}
}

func TestResolve(t *testing.T) {
	inner := nbt.NewCompound().Set("b", nbt.Int(5))
	root := &nbt.Root{Compound: nbt.NewCompound().Set("a", inner)}

	got, err := root.Get(nbt.PathOf("a", "b"))
	if err != nil {
		t.Fatalf("Get(a.b): %v", err)
	}
	if got != nbt.Int(5) {
		t.Errorf("Get(a.b) = %v, want Int(5)", got)
	}

	_, err = root.Get(nbt.PathOf("a", "c"))
	if !errors.Is(err, nbterrors.ErrPathNotFound) {
		t.Errorf("Get(a.c) err = %v, want path not found", err)
	}

	whole, err := root.Get(nil)
	if err != nil || whole != nbt.Tag(root.Compound) {
		t.Errorf("Get(root) = %v, %v", whole, err)
	}
}

func TestResolveWrongSegmentKind(t *testing.T) {
	l, _ := nbt.ListOf(nbt.Byte(1))
	root := &nbt.Root{Compound: nbt.NewCompound().Set("l", l).Set("n", nbt.Int(1))}

	for _, p := range []nbt.Path{
		nbt.PathOf("l", "x"),
		nbt.PathOf(0),
		nbt.PathOf("l", 1),
		nbt.PathOf("n", "deeper"),
	} {
		if _, err := root.Get(p); !errors.Is(err, nbterrors.ErrPathNotFound) {
			t.Errorf("Get(%s) err = %v", p, err)
		}
	}
}

func TestWalkOrder(t *testing.T) {
	l, _ := nbt.ListOf(nbt.Int(1), nbt.Int(2))
	c := nbt.NewCompound().Set("x", nbt.Byte(0)).Set("l", l)

	var seen []string
	nbt.Walk(c, func(p nbt.Path, _ nbt.Tag) bool {
		seen = append(seen, p.String())
		return true
	})
	want := []string{"", "x", "l", "l[0]", "l[1]"}
	if !reflect.DeepEqual(seen, want) {
		t.Errorf("Walk order = %v, want %v", seen, want)
	}

	seen = nil
	nbt.Walk(c, func(p nbt.Path, t nbt.Tag) bool {
		seen = append(seen, p.String())
		return t.Type() != nbt.TagList
	})
	if len(seen) != 3 {
		t.Errorf("skipping children: %v", seen)
	}
}
