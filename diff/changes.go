package diff

import (
	"github.com/wippyai/nbt-editor/nbt"
)

// ChangeKind classifies a structural change.
type ChangeKind int

const (
	Added ChangeKind = iota
	Removed
	Modified
)

func (k ChangeKind) String() string {
	switch k {
	case Added:
		return "added"
	case Removed:
		return "removed"
	}
	return "modified"
}

// Change is one path whose tag differs between two trees. From is nil
// for additions and To is nil for removals.
type Change struct {
	From nbt.Tag
	To   nbt.Tag
	Path nbt.Path
	Kind ChangeKind
}

// Changes lists the differences between a and b. Compounds are compared
// by key and lists by index; a tag whose type changed is reported as
// modified without descending into it.
func Changes(a, b nbt.Tag) []Change {
	var out []Change
	changes(nil, a, b, &out)
	return out
}

func changes(p nbt.Path, a, b nbt.Tag, out *[]Change) {
	if a.Type() != b.Type() {
		*out = append(*out, Change{Path: p, Kind: Modified, From: a, To: b})
		return
	}
	switch av := a.(type) {
	case *nbt.Compound:
		bv := b.(*nbt.Compound)
		av.Each(func(k string, at nbt.Tag) bool {
			if bt, ok := bv.Get(k); ok {
				changes(p.Append(nbt.Key(k)), at, bt, out)
			} else {
				*out = append(*out, Change{Path: p.Append(nbt.Key(k)), Kind: Removed, From: at})
			}
			return true
		})
		bv.Each(func(k string, bt nbt.Tag) bool {
			if !av.Has(k) {
				*out = append(*out, Change{Path: p.Append(nbt.Key(k)), Kind: Added, To: bt})
			}
			return true
		})
	case *nbt.List:
		bv := b.(*nbt.List)
		if av.Len() > 0 && bv.Len() > 0 && av.ElemType() != bv.ElemType() {
			*out = append(*out, Change{Path: p, Kind: Modified, From: a, To: b})
			return
		}
		for i := 0; i < max(av.Len(), bv.Len()); i++ {
			at, aok := av.At(i)
			bt, bok := bv.At(i)
			switch {
			case aok && bok:
				changes(p.Append(nbt.Index(i)), at, bt, out)
			case aok:
				*out = append(*out, Change{Path: p.Append(nbt.Index(i)), Kind: Removed, From: at})
			default:
				*out = append(*out, Change{Path: p.Append(nbt.Index(i)), Kind: Added, To: bt})
			}
		}
	default:
		if !nbt.Equal(a, b) {
			*out = append(*out, Change{Path: p, Kind: Modified, From: a, To: b})
		}
	}
}
