// Package edit implements structural edits over a decoded NBT tree.
//
// Every operation addresses its target by an nbt.Path from the root
// compound and validates everything it needs before touching the tree, so
// a failed edit leaves the tree exactly as it was:
//
//	ed := edit.New(root, edit.DefaultOptions())
//	p, _ := nbt.ParsePath("Inventory[0].Count")
//	if err := ed.SetText(p, "32"); err != nil {
//	    // tree unchanged
//	}
//
// Lists lock their element type on first insert. Renaming or inserting a
// compound key that already exists is resolved by Options.Duplicates.
//
// Textual input for numbers follows the usual literal prefixes: decimal,
// 0x hex, 0o octal and 0b binary, with an optional sign. Arrays are comma
// separated integers, optionally wrapped in brackets.
package edit
