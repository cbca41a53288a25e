// Package nbteditor is a toolkit for reading, editing and writing
// Minecraft NBT (Named Binary Tag) files.
//
// # Architecture Overview
//
// The module is organized into packages with distinct responsibilities:
//
//	nbteditor/
//	├── nbt/             Tag model, binary codec, compression framing, paths, SNBT
//	├── edit/            Validated mutations: set, rename, insert, delete
//	├── session/         Load/save of one file with atomic replace and dirty tracking
//	├── inventory/       Slot-grid projection of player item lists
//	├── query/           expr-lang predicates over every tag of a tree
//	├── diff/            Line and structural differences between trees
//	├── export/          JSON, YAML and CBOR renderings
//	├── config/          YAML configuration for the CLI
//	├── errors/          Structured error types
//	└── cmd/nbtedit/     Command-line interface and terminal browser
//
// # Quick Start
//
// Load a player file, change a value and save it with its original
// compression:
//
//	s, err := session.Load("playerdata/069a79f4.dat")
//	if err != nil {
//	    return err
//	}
//	p, _ := nbt.ParsePath("XpLevel")
//	if err := s.Editor().SetText(p, "30"); err != nil {
//	    return err
//	}
//	return s.Save()
//
// Edits that fail leave the tree unchanged, and a failed save leaves the
// file on disk untouched.
package nbteditor
