package edit

import (
	"go.uber.org/zap"

	"github.com/wippyai/nbt-editor/errors"
	"github.com/wippyai/nbt-editor/nbt"
)

// Options configures editor behavior.
type Options struct {
	// Duplicates decides whether renaming or inserting onto an existing
	// compound key fails or replaces the existing entry.
	Duplicates nbt.DuplicatePolicy
}

// DefaultOptions returns default editor configuration.
func DefaultOptions() Options {
	return Options{Duplicates: nbt.RejectDuplicates}
}

// Editor applies validated mutations to one tree. Not safe for concurrent
// use.
type Editor struct {
	root    *nbt.Root
	options Options
	changes int
}

// New creates an Editor over root.
func New(root *nbt.Root, opts Options) *Editor {
	return &Editor{root: root, options: opts}
}

// Root returns the edited tree.
func (e *Editor) Root() *nbt.Root {
	return e.root
}

// Options returns the configuration.
func (e *Editor) Options() Options {
	return e.options
}

// Changes returns the number of successful mutations so far.
func (e *Editor) Changes() int {
	return e.changes
}

func (e *Editor) changed(op string, p nbt.Path, fields ...zap.Field) {
	e.changes++
	Logger().Debug(op, append([]zap.Field{zap.Stringer("path", p)}, fields...)...)
}

// Get resolves p.
func (e *Editor) Get(p nbt.Path) (nbt.Tag, error) {
	t, err := e.root.Get(p)
	if err != nil {
		return nil, err
	}
	return t, nil
}

// parent resolves everything but the last segment of p and returns the
// containing tag together with that segment.
func (e *Editor) parent(p nbt.Path) (nbt.Tag, nbt.Segment, error) {
	parentPath, last, ok := p.Parent()
	if !ok {
		return nil, nbt.Segment{}, errors.InvalidInput(errors.PhaseMutate, "the root compound has no parent")
	}
	container, err := e.root.Get(parentPath)
	if err != nil {
		return nil, nbt.Segment{}, mutateErr(err)
	}
	if _, err := nbt.Resolve(container, nbt.Path{last}); err != nil {
		return nil, nbt.Segment{}, errors.PathNotFound(errors.PhaseMutate, p.String(), last.String())
	}
	return container, last, nil
}

// Rename changes the name of the compound entry at p.
func (e *Editor) Rename(p nbt.Path, newName string) error {
	if newName == "" {
		return errors.New(errors.PhaseParse, errors.KindParse).
			Path(p.String()).
			Detail("compound entry names cannot be empty").
			Build()
	}
	container, last, err := e.parent(p)
	if err != nil {
		return err
	}
	c, ok := container.(*nbt.Compound)
	if !ok || last.IsIndex {
		return errors.InvalidInput(errors.PhaseMutate, "only compound entries have names: "+p.String())
	}
	if err := c.Rename(last.Key, newName, e.options.Duplicates); err != nil {
		return errors.WithPath(err, p.String())
	}
	e.changed("rename", p, zap.String("name", newName))
	return nil
}

// SetValue replaces the scalar or array at p with v, which must have the
// same type. The tree stores a copy of v; later changes to v do not reach
// the tree.
func (e *Editor) SetValue(p nbt.Path, v nbt.Tag) error {
	if v == nil {
		return errors.InvalidInput(errors.PhaseMutate, "nil value")
	}
	current, err := e.editable(p)
	if err != nil {
		return err
	}
	if v.Type() != current.Type() {
		return errors.TypeMismatch(errors.PhaseMutate, p.String(), current.Type().String(), v.Type().String())
	}
	if err := e.replace(p, nbt.Clone(v)); err != nil {
		return err
	}
	e.changed("set", p, zap.Stringer("type", v.Type()))
	return nil
}

// SetText parses text for the type of the tag at p and stores the result.
func (e *Editor) SetText(p nbt.Path, text string) error {
	current, err := e.editable(p)
	if err != nil {
		return err
	}
	v, err := ParseValue(current.Type(), text)
	if err != nil {
		return errors.WithPath(err, p.String())
	}
	return e.SetValue(p, v)
}

func (e *Editor) editable(p nbt.Path) (nbt.Tag, error) {
	current, err := e.root.Get(p)
	if err != nil {
		return nil, mutateErr(err)
	}
	if current.Type().IsContainer() {
		return nil, errors.TypeMismatch(errors.PhaseMutate, p.String(), "scalar or array", current.Type().String())
	}
	return current, nil
}

func (e *Editor) replace(p nbt.Path, v nbt.Tag) error {
	container, last, err := e.parent(p)
	if err != nil {
		return err
	}
	switch c := container.(type) {
	case *nbt.Compound:
		c.Set(last.Key, v)
	case *nbt.List:
		if err := c.Set(last.Index, v); err != nil {
			return errors.WithPath(err, p.String())
		}
	}
	return nil
}

// InsertChild creates a tag of type t from text and inserts it into the
// container at p. For a compound, name is required; for a list it is
// ignored and the tag is appended.
func (e *Editor) InsertChild(p nbt.Path, name string, t nbt.TagType, text string) error {
	v, err := ParseValue(t, text)
	if err != nil {
		return errors.WithPath(err, p.String())
	}
	return e.InsertTag(p, name, v)
}

// InsertTag inserts a deep copy of v into the container at p. v may come
// from the tree itself, including an ancestor of p.
func (e *Editor) InsertTag(p nbt.Path, name string, v nbt.Tag) error {
	if v == nil {
		return errors.InvalidInput(errors.PhaseMutate, "nil value")
	}
	target, err := e.root.Get(p)
	if err != nil {
		return mutateErr(err)
	}
	switch c := target.(type) {
	case *nbt.Compound:
		if name == "" {
			return errors.New(errors.PhaseParse, errors.KindParse).
				Path(p.String()).
				Detail("compound entry names cannot be empty").
				Build()
		}
		if c.Has(name) && e.options.Duplicates == nbt.RejectDuplicates {
			return errors.DuplicateKey(errors.PhaseMutate, p.String(), name)
		}
		c.Set(name, nbt.Clone(v))
		e.changed("insert", p.Append(nbt.Key(name)), zap.Stringer("type", v.Type()))
		return nil
	case *nbt.List:
		if err := c.Append(nbt.Clone(v)); err != nil {
			return errors.WithPath(err, p.String())
		}
		e.changed("append", p.Append(nbt.Index(c.Len()-1)), zap.Stringer("type", v.Type()))
		return nil
	}
	return errors.TypeMismatch(errors.PhaseMutate, p.String(), "Compound or List", target.Type().String())
}

// DeleteChild removes the tag at p from its parent. Later list elements
// shift down by one.
func (e *Editor) DeleteChild(p nbt.Path) error {
	container, last, err := e.parent(p)
	if err != nil {
		return err
	}
	switch c := container.(type) {
	case *nbt.Compound:
		c.Delete(last.Key)
	case *nbt.List:
		c.Delete(last.Index)
	}
	e.changed("delete", p)
	return nil
}

// Update applies fn to a deep copy of the tag at p and, when fn
// succeeds, swaps the copy into the tree. fn may mutate containers in
// ways the other operations cannot express, such as reordering a list.
func (e *Editor) Update(p nbt.Path, fn func(t nbt.Tag) error) error {
	current, err := e.root.Get(p)
	if err != nil {
		return mutateErr(err)
	}
	work := nbt.Clone(current)
	if err := fn(work); err != nil {
		return errors.WithPath(err, p.String())
	}
	if len(p) == 0 {
		e.root.Compound = work.(*nbt.Compound)
	} else if err := e.replace(p, work); err != nil {
		return err
	}
	e.changed("update", p, zap.Stringer("type", work.Type()))
	return nil
}

// mutateErr converts lookup failures from the query phase into mutation
// failures.
func mutateErr(err error) error {
	var e *errors.Error
	if errors.As(err, &e) && e.Phase == errors.PhaseQuery {
		cp := *e
		cp.Phase = errors.PhaseMutate
		return &cp
	}
	return err
}
