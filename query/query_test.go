package query_test

import (
	"errors"
	"reflect"
	"testing"

	nbterrors "github.com/wippyai/nbt-editor/errors"
	"github.com/wippyai/nbt-editor/nbt"
	"github.com/wippyai/nbt-editor/query"
)

func tree() *nbt.Root {
	items, _ := nbt.ListOf(
		nbt.NewCompound().
			Set("Slot", nbt.Byte(0)).
			Set("id", nbt.NewString("minecraft:diamond_sword")).
			Set("Count", nbt.Byte(1)),
		nbt.NewCompound().
			Set("Slot", nbt.Byte(1)).
			Set("id", nbt.NewString("minecraft:stone")).
			Set("Count", nbt.Byte(64)),
	)
	return &nbt.Root{Compound: nbt.NewCompound().
		Set("Health", nbt.Float(20)).
		Set("Inventory", items).
		Set("Seeds", nbt.LongArray{7, 8, 9})}
}

func paths(ms []query.Match) []string {
	var out []string
	for _, m := range ms {
		out = append(out, m.Path.String())
	}
	return out
}

func TestFind(t *testing.T) {
	tests := []struct {
		name string
		expr string
		want []string
	}{
		{"by name", `name == "id"`, []string{"Inventory[0].id", "Inventory[1].id"}},
		{"string prefix", `kind == "String" && value startsWith "minecraft:diamond"`, []string{"Inventory[0].id"}},
		{"numeric", `name == "Count" && value >= 64`, []string{"Inventory[1].Count"}},
		{"float", `kind == "Float" && value > 19.5`, []string{"Health"}},
		{"list elements", `index >= 0 && depth == 2`, []string{"Inventory[0]", "Inventory[1]"}},
		{"array contains", `kind == "LongArray" && 8 in value`, []string{"Seeds"}},
		{"containers by len", `kind == "List" && size == 2`, []string{"Inventory"}},
		{"root", `depth == 0`, []string{""}},
		{"none", `name == "Nope"`, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := query.Find(tree(), tt.expr)
			if err != nil {
				t.Fatalf("Find(%q): %v", tt.expr, err)
			}
			if !reflect.DeepEqual(paths(got), tt.want) {
				t.Errorf("Find(%q) = %v, want %v", tt.expr, paths(got), tt.want)
			}
		})
	}
}

func TestFindSkipsIncomparable(t *testing.T) {
	// Strings and containers cannot be compared with a number; they simply
	// do not match.
	got, err := query.Find(tree(), `value > 10`)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"Health", "Inventory[1].Count"}
	if !reflect.DeepEqual(paths(got), want) {
		t.Errorf("paths = %v, want %v", paths(got), want)
	}
}

func TestQueryErrors(t *testing.T) {
	if _, err := query.Compile(""); !errors.Is(err, nbterrors.ErrInvalidInput) {
		t.Errorf("empty: %v", err)
	}
	if _, err := query.Compile(`name ==`); !errors.Is(err, nbterrors.ErrParse) {
		t.Errorf("syntax: %v", err)
	}
	if _, err := query.Compile(`name`); !errors.Is(err, nbterrors.ErrParse) {
		t.Errorf("non-bool result: %v", err)
	}
	if _, err := query.Compile(`colour == "red"`); !errors.Is(err, nbterrors.ErrParse) {
		t.Errorf("unknown variable: %v", err)
	}
}

func TestEnvironment(t *testing.T) {
	env := query.Environment(nbt.PathOf("Inventory", 1, "id"), nbt.NewString("minecraft:stone"))
	if env.Name != "id" || env.Index != -1 || env.Size != 15 || env.Depth != 3 || env.Kind != "String" {
		t.Errorf("env = %+v", env)
	}
	env = query.Environment(nbt.PathOf("l", 2), nbt.IntArray{1})
	if env.Index != 2 || env.Name != "" || !reflect.DeepEqual(env.Value, []any{1}) {
		t.Errorf("env = %+v", env)
	}
}
