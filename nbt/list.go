package nbt

import (
	"slices"

	"github.com/wippyai/nbt-editor/errors"
)

// List is an ordered sequence of unnamed tags that all share one type.
// A list whose element type is TagEnd is untyped; the first Append locks
// the element type.
type List struct {
	elems    []Tag
	elemType TagType
}

// NewList returns an empty list. Pass TagEnd for an untyped list.
func NewList(elemType TagType) *List {
	return &List{elemType: elemType}
}

// ListOf builds a list from elems. All elements must share one type; an
// empty call yields an untyped list.
func ListOf(elems ...Tag) (*List, error) {
	l := NewList(TagEnd)
	for _, e := range elems {
		if err := l.Append(e); err != nil {
			return nil, err
		}
	}
	return l, nil
}

// ElemType returns the element type, TagEnd while untyped.
func (l *List) ElemType() TagType {
	return l.elemType
}

// Len returns the number of elements.
func (l *List) Len() int {
	return len(l.elems)
}

// At returns element i.
func (l *List) At(i int) (Tag, bool) {
	if i < 0 || i >= len(l.elems) {
		return nil, false
	}
	return l.elems[i], true
}

// Elems returns the elements. The slice is a copy; the tags are shared.
func (l *List) Elems() []Tag {
	return slices.Clone(l.elems)
}

func (l *List) accepts(t Tag) error {
	if t == nil || t.Type() == TagEnd {
		return errors.InvalidInput(errors.PhaseMutate, "list elements cannot be End")
	}
	if l.elemType != TagEnd && t.Type() != l.elemType {
		return errors.ListTypeMismatch(errors.PhaseMutate, "", l.elemType.String(), t.Type().String())
	}
	return nil
}

// Append adds t at the end. An untyped list adopts t's type; a typed list
// rejects any other type.
func (l *List) Append(t Tag) error {
	if err := l.accepts(t); err != nil {
		return err
	}
	if l.elemType == TagEnd {
		l.elemType = t.Type()
	}
	l.elems = append(l.elems, t)
	return nil
}

// Set replaces element i with t of the same type.
func (l *List) Set(i int, t Tag) error {
	if i < 0 || i >= len(l.elems) {
		return errors.New(errors.PhaseMutate, errors.KindPathNotFound).
			Detail("index %d out of range (length %d)", i, len(l.elems)).
			Value(i).
			Build()
	}
	if err := l.accepts(t); err != nil {
		return err
	}
	l.elems[i] = t
	return nil
}

// Delete removes element i and shifts later elements down. The element
// type is kept even when the list becomes empty.
func (l *List) Delete(i int) bool {
	if i < 0 || i >= len(l.elems) {
		return false
	}
	l.elems = slices.Delete(l.elems, i, i+1)
	return true
}

// SortStable reorders elements by less, keeping equal elements in order.
func (l *List) SortStable(less func(a, b Tag) int) {
	slices.SortStableFunc(l.elems, less)
}

// appendUnchecked is used by the decoder, which has already validated the
// element type.
func (l *List) appendUnchecked(t Tag) {
	l.elems = append(l.elems, t)
}
