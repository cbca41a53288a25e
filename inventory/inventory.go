// Package inventory projects the item lists of a player file onto slot
// grids and edits them through an edit.Editor.
package inventory

import (
	"encoding/binary"
	"fmt"
	"slices"

	"github.com/google/uuid"

	"github.com/wippyai/nbt-editor/edit"
	"github.com/wippyai/nbt-editor/errors"
	"github.com/wippyai/nbt-editor/nbt"
)

// Names of the item lists in a player file.
const (
	ListInventory  = "Inventory"
	ListEnderItems = "EnderItems"
)

// MaxCount is the largest stack size accepted by Put.
const MaxCount = 64

// InventoryGrid lays out the main inventory as displayed in game: three
// storage rows followed by the hotbar.
var InventoryGrid = [][]int{
	{9, 10, 11, 12, 13, 14, 15, 16, 17},
	{18, 19, 20, 21, 22, 23, 24, 25, 26},
	{27, 28, 29, 30, 31, 32, 33, 34, 35},
	{0, 1, 2, 3, 4, 5, 6, 7, 8},
}

// EnderGrid lays out the ender chest.
var EnderGrid = [][]int{
	{0, 1, 2, 3, 4, 5, 6, 7, 8},
	{9, 10, 11, 12, 13, 14, 15, 16, 17},
	{18, 19, 20, 21, 22, 23, 24, 25, 26},
}

// SpecialSlots are the armor and offhand slots of the main inventory.
var SpecialSlots = []int{103, 102, 101, 100, 150}

var slotNames = map[int]string{
	100: "Boots",
	101: "Leggings",
	102: "Chestplate",
	103: "Helmet",
	150: "Offhand",
}

// SlotName returns "Helmet" style names for special slots and "Slot N"
// for the rest.
func SlotName(slot int) string {
	if name, ok := slotNames[slot]; ok {
		return name
	}
	return fmt.Sprintf("Slot %d", slot)
}

// GridFor returns the layout used for a list name.
func GridFor(listName string) [][]int {
	if listName == ListEnderItems {
		return EnderGrid
	}
	return InventoryGrid
}

// Item is one stack. Slot is stored on disk as a Byte; values above 127
// (the offhand is 150) wrap to negative bytes.
type Item struct {
	Extra *nbt.Compound
	ID    string
	Slot  int
	Count int
}

// View is the slot-indexed projection of one item list.
type View struct {
	Items map[int]Item
	List  string
}

// Item returns the stack in slot.
func (v *View) Item(slot int) (Item, bool) {
	it, ok := v.Items[slot]
	return it, ok
}

// Slots returns the occupied slots in ascending order.
func (v *View) Slots() []int {
	out := make([]int, 0, len(v.Items))
	for s := range v.Items {
		out = append(out, s)
	}
	slices.Sort(out)
	return out
}

// SideSlots returns the slots shown outside the grid: the special slots
// of the main inventory plus any occupied slot the grid does not cover.
func (v *View) SideSlots() []int {
	inGrid := make(map[int]bool)
	for _, row := range GridFor(v.List) {
		for _, s := range row {
			inGrid[s] = true
		}
	}
	var out []int
	if v.List == ListInventory {
		out = append(out, SpecialSlots...)
	}
	for s := range v.Items {
		if !inGrid[s] && !slices.Contains(out, s) {
			out = append(out, s)
		}
	}
	slices.Sort(out)
	return out
}

func itemList(root *nbt.Root, listName string) (*nbt.List, error) {
	t, ok := root.Compound.Get(listName)
	if !ok {
		return nil, errors.PathNotFound(errors.PhaseQuery, listName, listName)
	}
	l, ok := t.(*nbt.List)
	if !ok {
		return nil, errors.TypeMismatch(errors.PhaseQuery, listName, "List", t.Type().String())
	}
	if l.ElemType() != nbt.TagCompound && l.ElemType() != nbt.TagEnd {
		return nil, errors.TypeMismatch(errors.PhaseQuery, listName, "List of Compound", "List of "+l.ElemType().String())
	}
	return l, nil
}

// Project reads the list called listName from root.
func Project(root *nbt.Root, listName string) (*View, error) {
	l, err := itemList(root, listName)
	if err != nil {
		return nil, err
	}
	v := &View{List: listName, Items: make(map[int]Item, l.Len())}
	for _, e := range l.Elems() {
		it := fromCompound(e.(*nbt.Compound))
		v.Items[it.Slot] = it
	}
	return v, nil
}

func fromCompound(c *nbt.Compound) Item {
	it := Item{Count: 1}
	if t, ok := c.Get("Slot"); ok {
		if n, ok := intValue(t); ok {
			it.Slot = int(uint8(n))
		}
	}
	if t, ok := c.Get("id"); ok {
		if s, ok := t.(nbt.String); ok {
			it.ID = s.Text()
		}
	}
	if t, ok := c.Get("Count"); ok {
		if n, ok := intValue(t); ok {
			it.Count = int(n)
		}
	}
	if t, ok := c.Get("tag"); ok {
		if extra, ok := t.(*nbt.Compound); ok {
			it.Extra = extra
		}
	}
	return it
}

func intValue(t nbt.Tag) (int64, bool) {
	switch v := t.(type) {
	case nbt.Byte:
		return int64(v), true
	case nbt.Short:
		return int64(v), true
	case nbt.Int:
		return int64(v), true
	case nbt.Long:
		return int64(v), true
	}
	return 0, false
}

func slotOf(t nbt.Tag) int {
	c, ok := t.(*nbt.Compound)
	if !ok {
		return 0
	}
	return fromCompound(c).Slot
}

func validate(it Item) error {
	switch {
	case it.Slot < 0 || it.Slot > 255:
		return errors.New(errors.PhaseMutate, errors.KindInvalidInput).
			Value(it.Slot).
			Detail("slot %d is outside 0..255", it.Slot).
			Build()
	case it.ID == "":
		return errors.InvalidInput(errors.PhaseMutate, "item id is required, e.g. minecraft:stone")
	case it.Count < 0 || it.Count > MaxCount:
		return errors.New(errors.PhaseMutate, errors.KindInvalidInput).
			Value(it.Count).
			Detail("count must be between 0 and %d, got %d", MaxCount, it.Count).
			Build()
	}
	return nil
}

// Put stores it in the list. When oldSlot holds an item that entry is
// updated in place (and moved to it.Slot), otherwise a new entry is
// appended. Other fields of an existing entry are kept. Moving onto a
// slot occupied by a different item fails. The list is left sorted by
// slot. A missing list is created.
func Put(ed *edit.Editor, listName string, oldSlot int, it Item) error {
	if err := validate(it); err != nil {
		return err
	}
	root := ed.Root()
	if !root.Compound.Has(listName) {
		if err := ed.InsertTag(nil, listName, nbt.NewList(nbt.TagCompound)); err != nil {
			return err
		}
	} else if _, err := itemList(root, listName); err != nil {
		return err
	}

	return ed.Update(nbt.PathOf(listName), func(t nbt.Tag) error {
		l := t.(*nbt.List)
		existing := -1
		for i, e := range l.Elems() {
			if slotOf(e) == oldSlot {
				existing = i
				break
			}
		}
		for i, e := range l.Elems() {
			if i != existing && slotOf(e) == it.Slot {
				return errors.New(errors.PhaseMutate, errors.KindDuplicateKey).
					Value(it.Slot).
					Detail("slot %d already contains an item", it.Slot).
					Build()
			}
		}

		entry := nbt.NewCompound()
		if existing >= 0 {
			e, _ := l.At(existing)
			entry = e.(*nbt.Compound)
		}
		entry.Set("Slot", nbt.Byte(int8(uint8(it.Slot))))
		entry.Set("id", nbt.NewString(it.ID))
		entry.Set("Count", nbt.Byte(int8(it.Count)))
		if it.Extra != nil {
			entry.Set("tag", nbt.Clone(it.Extra))
		}
		if existing < 0 {
			if err := l.Append(entry); err != nil {
				return err
			}
		}
		l.SortStable(func(a, b nbt.Tag) int {
			return slotOf(a) - slotOf(b)
		})
		return nil
	})
}

// Remove deletes the item in slot.
func Remove(ed *edit.Editor, listName string, slot int) error {
	if _, err := itemList(ed.Root(), listName); err != nil {
		return err
	}
	return ed.Update(nbt.PathOf(listName), func(t nbt.Tag) error {
		l := t.(*nbt.List)
		for i, e := range l.Elems() {
			if slotOf(e) == slot {
				l.Delete(i)
				return nil
			}
		}
		return errors.New(errors.PhaseMutate, errors.KindPathNotFound).
			Value(slot).
			Detail("slot %d is empty", slot).
			Build()
	})
}

// Label renders the two-line caption shown for a slot.
func Label(slot int, it *Item) string {
	name := SlotName(slot)
	if it == nil {
		return name + "\nEmpty"
	}
	id := it.ID
	if id == "" {
		id = "Unknown"
	}
	return fmt.Sprintf("%s\n%s ×%d", name, id, it.Count)
}

// PlayerUUID reads the player's UUID, stored either as a four element
// IntArray named UUID or as the older UUIDMost/UUIDLeast pair of longs.
func PlayerUUID(root *nbt.Root) (uuid.UUID, error) {
	var u uuid.UUID
	if t, ok := root.Compound.Get("UUID"); ok {
		arr, ok := t.(nbt.IntArray)
		if !ok || len(arr) != 4 {
			return uuid.Nil, errors.InvalidData(errors.PhaseQuery, "UUID", "expected an IntArray of 4 values")
		}
		for i, v := range arr {
			binary.BigEndian.PutUint32(u[i*4:], uint32(v))
		}
		return u, nil
	}
	most, okMost := root.Compound.Get("UUIDMost")
	least, okLeast := root.Compound.Get("UUIDLeast")
	if !okMost || !okLeast {
		return uuid.Nil, errors.PathNotFound(errors.PhaseQuery, "UUID", "UUID")
	}
	hi, okHi := most.(nbt.Long)
	lo, okLo := least.(nbt.Long)
	if !okHi || !okLo {
		return uuid.Nil, errors.InvalidData(errors.PhaseQuery, "UUIDMost", "expected two Long values")
	}
	binary.BigEndian.PutUint64(u[:8], uint64(hi))
	binary.BigEndian.PutUint64(u[8:], uint64(lo))
	return u, nil
}
