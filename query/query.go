// Package query finds tags in a tree by evaluating an expr-lang predicate
// against each of them.
//
// Every tag is presented to the predicate as an Env. For example
//
//	kind == "String" && value startsWith "minecraft:diamond"
//	name == "Count" && value >= 64
package query

import (
	"unicode/utf8"

	exprlang "github.com/expr-lang/expr"
	exprvm "github.com/expr-lang/expr/vm"

	"github.com/wippyai/nbt-editor/errors"
	"github.com/wippyai/nbt-editor/nbt"
)

// Env holds the variables a predicate sees for one tag.
type Env struct {
	// Value is an int, float64, string or []any of int; nil for containers.
	Value any    `expr:"value"`
	Path  string `expr:"path"`
	// Name is the compound key, "" for list elements and the root.
	Name string `expr:"name"`
	// Kind is the tag type name, e.g. "Byte".
	Kind string `expr:"kind"`
	// Index is the list index, -1 otherwise.
	Index int `expr:"index"`
	// Size counts entries, elements, array values or string runes.
	Size  int `expr:"size"`
	Depth int `expr:"depth"`
}

// Match is one tag accepted by a query.
type Match struct {
	Tag  nbt.Tag
	Path nbt.Path
}

// Query is a compiled predicate.
type Query struct {
	program    *exprvm.Program
	expression string
}

// Compile parses expression once for reuse across trees.
func Compile(expression string) (*Query, error) {
	if expression == "" {
		return nil, errors.InvalidInput(errors.PhaseQuery, "expression must not be empty")
	}
	program, err := exprlang.Compile(expression,
		exprlang.Env(Env{}),
		exprlang.AsBool(),
	)
	if err != nil {
		return nil, errors.New(errors.PhaseQuery, errors.KindParse).
			Value(expression).
			Detail("compile %q", expression).
			Cause(err).
			Build()
	}
	return &Query{program: program, expression: expression}, nil
}

// String returns the source expression.
func (q *Query) String() string {
	return q.expression
}

// Match evaluates the predicate for one tag.
func (q *Query) Match(p nbt.Path, t nbt.Tag) (bool, error) {
	result, err := exprlang.Run(q.program, Environment(p, t))
	if err != nil {
		return false, errors.New(errors.PhaseQuery, errors.KindInvalidData).
			Path(p.String()).
			Detail("evaluate %q", q.expression).
			Cause(err).
			Build()
	}
	ok, isBool := result.(bool)
	if !isBool {
		return false, errors.New(errors.PhaseQuery, errors.KindInvalidInput).
			Value(result).
			Detail("%q returned %T, want bool", q.expression, result).
			Build()
	}
	return ok, nil
}

// Find walks t depth-first and returns every tag the predicate accepts.
// Tags the predicate cannot be evaluated against (for example comparing a
// string value with a number) do not match; if no tag could be evaluated
// at all the first such error is returned.
func (q *Query) Find(t nbt.Tag) ([]Match, error) {
	var (
		matches   []Match
		firstErr  error
		evaluated int
	)
	nbt.Walk(t, func(p nbt.Path, tag nbt.Tag) bool {
		ok, err := q.Match(p, tag)
		if err != nil {
			if errors.KindOf(err) == errors.KindInvalidInput {
				firstErr = err
				return false
			}
			if firstErr == nil {
				firstErr = err
			}
			return true
		}
		evaluated++
		if ok {
			matches = append(matches, Match{Path: p, Tag: tag})
		}
		return true
	})
	if firstErr != nil && (evaluated == 0 || errors.KindOf(firstErr) == errors.KindInvalidInput) {
		return nil, firstErr
	}
	return matches, nil
}

// Find compiles expression and runs it over the root compound.
func Find(root *nbt.Root, expression string) ([]Match, error) {
	q, err := Compile(expression)
	if err != nil {
		return nil, err
	}
	return q.Find(root.Compound)
}

// Environment builds the variables a predicate sees for t at p.
func Environment(p nbt.Path, t nbt.Tag) Env {
	env := Env{
		Path:  p.String(),
		Kind:  t.Type().String(),
		Index: -1,
		Depth: len(p),
	}
	if len(p) > 0 {
		last := p[len(p)-1]
		if last.IsIndex {
			env.Index = last.Index
		} else {
			env.Name = last.Key
		}
	}
	switch v := t.(type) {
	case nbt.Byte:
		env.Value = int(v)
	case nbt.Short:
		env.Value = int(v)
	case nbt.Int:
		env.Value = int(v)
	case nbt.Long:
		env.Value = int(v)
	case nbt.Float:
		env.Value = float64(v)
	case nbt.Double:
		env.Value = float64(v)
	case nbt.String:
		text := v.Text()
		env.Value = text
		env.Size = utf8.RuneCountInString(text)
	case nbt.ByteArray:
		env.Value = ints(len(v), func(i int) int { return int(v[i]) })
		env.Size = len(v)
	case nbt.IntArray:
		env.Value = ints(len(v), func(i int) int { return int(v[i]) })
		env.Size = len(v)
	case nbt.LongArray:
		env.Value = ints(len(v), func(i int) int { return int(v[i]) })
		env.Size = len(v)
	case *nbt.List:
		env.Size = v.Len()
	case *nbt.Compound:
		env.Size = v.Len()
	}
	return env
}

func ints(n int, at func(int) int) []any {
	out := make([]any, n)
	for i := range out {
		out[i] = at(i)
	}
	return out
}
