package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/alecthomas/chroma/v2/quick"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/wippyai/nbt-editor/diff"
	"github.com/wippyai/nbt-editor/export"
	"github.com/wippyai/nbt-editor/inventory"
	"github.com/wippyai/nbt-editor/nbt"
	"github.com/wippyai/nbt-editor/query"
	"github.com/wippyai/nbt-editor/session"
)

func (a *app) commands() *command {
	return &command{
		Name:    "nbtedit",
		Summary: "Inspect and edit Minecraft NBT files.",
		Subcommands: []*command{
			a.dumpCommand(),
			a.getCommand(),
			a.setCommand(),
			a.renameCommand(),
			a.insertCommand(),
			a.deleteCommand(),
			a.inventoryCommand(),
			a.findCommand(),
			a.diffCommand(),
			a.exportCommand(),
			a.convertCommand(),
			a.tuiCommand(),
		},
	}
}

func outputFlag(flagSet *pflag.FlagSet, output *string) {
	flagSet.StringVarP(output, "output", "o", "", "write to this file instead of overwriting the input")
}

func (a *app) dumpCommand() *command {
	var (
		path    string
		indent  string
		compact bool
	)
	return &command{
		Name:    "dump",
		Summary: "Print a file, or part of it, as SNBT",
		Usage:   "<file> [flags]",
		Args:    1,
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("dump", pflag.ContinueOnError)
			flagSet.StringVarP(&path, "path", "p", "", "tag path to print (default the whole tree)")
			flagSet.StringVar(&indent, "indent", "  ", "indentation unit")
			flagSet.BoolVar(&compact, "compact", false, "print on a single line")
			return flagSet
		},
		Run: func(args []string) error {
			s, err := a.open(args[0])
			if err != nil {
				return err
			}
			p, err := nbt.ParsePath(path)
			if err != nil {
				return err
			}
			t, err := s.Get(p)
			if err != nil {
				return err
			}
			if compact {
				indent = ""
			}
			fmt.Fprintln(a.out, nbt.FormatSNBT(t, indent))
			return nil
		},
	}
}

func (a *app) getCommand() *command {
	var showType bool
	return &command{
		Name:    "get",
		Summary: "Print the value at a path",
		Usage:   "<file> <path> [flags]",
		Args:    2,
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("get", pflag.ContinueOnError)
			flagSet.BoolVarP(&showType, "type", "t", false, "prefix the value with its tag type")
			return flagSet
		},
		Run: func(args []string) error {
			s, err := a.open(args[0])
			if err != nil {
				return err
			}
			p, err := nbt.ParsePath(args[1])
			if err != nil {
				return err
			}
			t, err := s.Get(p)
			if err != nil {
				return err
			}
			if showType {
				fmt.Fprintf(a.out, "%s\t", a.colors.kind.Sprint(t.Type()))
			}
			if t.Type().IsContainer() {
				fmt.Fprintln(a.out, nbt.FormatSNBT(t, "  "))
			} else {
				fmt.Fprintln(a.out, nbt.EditText(t))
			}
			return nil
		},
	}
}

func (a *app) setCommand() *command {
	var output string
	return &command{
		Name:    "set",
		Summary: "Replace the value at a path, parsed for its current type",
		Usage:   "<file> <path> <value> [flags]",
		Args:    3,
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("set", pflag.ContinueOnError)
			outputFlag(flagSet, &output)
			return flagSet
		},
		Run: func(args []string) error {
			s, err := a.open(args[0])
			if err != nil {
				return err
			}
			p, err := nbt.ParsePath(args[1])
			if err != nil {
				return err
			}
			if err := s.Editor().SetText(p, args[2]); err != nil {
				return err
			}
			return a.save(s, output)
		},
	}
}

func (a *app) renameCommand() *command {
	var (
		output    string
		overwrite bool
	)
	return &command{
		Name:    "rename",
		Summary: "Rename a compound entry",
		Usage:   "<file> <path> <new-name> [flags]",
		Args:    3,
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("rename", pflag.ContinueOnError)
			flagSet.BoolVar(&overwrite, "overwrite", false, "replace an existing entry with the new name")
			outputFlag(flagSet, &output)
			return flagSet
		},
		Run: func(args []string) error {
			s, err := a.open(args[0], a.duplicates(overwrite))
			if err != nil {
				return err
			}
			p, err := nbt.ParsePath(args[1])
			if err != nil {
				return err
			}
			if err := s.Editor().Rename(p, args[2]); err != nil {
				return err
			}
			return a.save(s, output)
		},
	}
}

func (a *app) insertCommand() *command {
	var (
		output    string
		name      string
		overwrite bool
	)
	return &command{
		Name:    "insert",
		Summary: "Add a child to a compound or list",
		Usage:   "<file> <parent-path> <type> [value] [flags]",
		Args:    -1,
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("insert", pflag.ContinueOnError)
			flagSet.StringVarP(&name, "name", "n", "", "entry name (required for compounds)")
			flagSet.BoolVar(&overwrite, "overwrite", false, "replace an existing entry with the same name")
			outputFlag(flagSet, &output)
			return flagSet
		},
		Run: func(args []string) error {
			if len(args) != 3 && len(args) != 4 {
				return usagef("insert takes 3 or 4 arguments, got %d", len(args))
			}
			tagType, err := nbt.ParseTagType(args[2])
			if err != nil {
				return err
			}
			var text string
			if len(args) == 4 {
				text = args[3]
			}
			s, err := a.open(args[0], a.duplicates(overwrite))
			if err != nil {
				return err
			}
			p, err := nbt.ParsePath(args[1])
			if err != nil {
				return err
			}
			if err := s.Editor().InsertChild(p, name, tagType, text); err != nil {
				return err
			}
			return a.save(s, output)
		},
	}
}

func (a *app) deleteCommand() *command {
	var output string
	return &command{
		Name:    "delete",
		Summary: "Remove the tag at a path",
		Usage:   "<file> <path> [flags]",
		Args:    2,
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("delete", pflag.ContinueOnError)
			outputFlag(flagSet, &output)
			return flagSet
		},
		Run: func(args []string) error {
			s, err := a.open(args[0])
			if err != nil {
				return err
			}
			p, err := nbt.ParsePath(args[1])
			if err != nil {
				return err
			}
			if err := s.Editor().DeleteChild(p); err != nil {
				return err
			}
			return a.save(s, output)
		},
	}
}

func (a *app) inventoryCommand() *command {
	var (
		output string
		list   string
		id     string
		put    int
		from   int
		count  int
		remove int
	)
	return &command{
		Name:    "inventory",
		Summary: "Show or edit a player's inventory or ender chest",
		Usage:   "<file> [flags]",
		Args:    1,
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("inventory", pflag.ContinueOnError)
			flagSet.StringVarP(&list, "list", "l", inventory.ListInventory, "item list: Inventory or EnderItems")
			flagSet.IntVar(&put, "put", -1, "store an item in this slot")
			flagSet.StringVar(&id, "id", "", "item id for --put, e.g. minecraft:stone")
			flagSet.IntVar(&count, "count", 1, "stack size for --put")
			flagSet.IntVar(&from, "from", -1, "move the item in this slot to --put")
			flagSet.IntVar(&remove, "remove", -1, "remove the item in this slot")
			outputFlag(flagSet, &output)
			return flagSet
		},
		Run: func(args []string) error {
			s, err := a.open(args[0])
			if err != nil {
				return err
			}
			switch {
			case put >= 0 && remove >= 0:
				return usagef("--put and --remove are exclusive")
			case put >= 0:
				oldSlot := put
				if from >= 0 {
					oldSlot = from
				}
				it := inventory.Item{Slot: put, ID: id, Count: count}
				if err := inventory.Put(s.Editor(), list, oldSlot, it); err != nil {
					return err
				}
				return a.save(s, output)
			case remove >= 0:
				if err := inventory.Remove(s.Editor(), list, remove); err != nil {
					return err
				}
				return a.save(s, output)
			}
			return a.printInventory(s, list)
		},
	}
}

func (a *app) printInventory(s *session.Session, list string) error {
	view, err := inventory.Project(s.Root(), list)
	if err != nil {
		return err
	}
	header := list
	if u, err := inventory.PlayerUUID(s.Root()); err == nil {
		header += " of " + u.String()
	}
	fmt.Fprintln(a.out, a.colors.path.Sprint(header))

	for _, row := range inventory.GridFor(list) {
		cells := make([]string, len(row))
		for i, slot := range row {
			if it, ok := view.Item(slot); ok {
				cells[i] = fmt.Sprintf("%3d", it.Count)
			} else {
				cells[i] = "  ·"
			}
		}
		fmt.Fprintln(a.out, strings.Join(cells, " "))
	}

	if side := view.SideSlots(); len(side) > 0 {
		fmt.Fprintln(a.out)
		for _, slot := range side {
			label := "Empty"
			if it, ok := view.Item(slot); ok {
				label = fmt.Sprintf("%s ×%d", it.ID, it.Count)
			}
			fmt.Fprintf(a.out, "%-10s %s\n", inventory.SlotName(slot), label)
		}
	}

	fmt.Fprintln(a.out)
	for _, slot := range view.Slots() {
		it, _ := view.Item(slot)
		fmt.Fprintf(a.out, "%4d  %s ×%d\n", slot, it.ID, it.Count)
	}
	return nil
}

func (a *app) findCommand() *command {
	return &command{
		Name:    "find",
		Summary: "List the tags matching an expression",
		Usage:   "<file> <expression>",
		Args:    2,
		Run: func(args []string) error {
			s, err := a.open(args[0])
			if err != nil {
				return err
			}
			matches, err := query.Find(s.Root(), args[1])
			if err != nil {
				return err
			}
			for _, m := range matches {
				fmt.Fprintf(a.out, "%s\t%s\t%s\n",
					a.colors.path.Sprint(displayPath(m.Path)),
					a.colors.kind.Sprint(m.Tag.Type()),
					nbt.Summary(m.Tag))
			}
			a.log.Debug("find", zap.String("expression", args[1]), zap.Int("matches", len(matches)))
			return nil
		},
	}
}

func (a *app) diffCommand() *command {
	var (
		context    int
		paths      bool
		mergePatch bool
	)
	return &command{
		Name:    "diff",
		Summary: "Compare two files",
		Usage:   "<from> <to> [flags]",
		Args:    2,
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("diff", pflag.ContinueOnError)
			flagSet.IntVarP(&context, "context", "U", 3, "lines of context")
			flagSet.BoolVar(&paths, "paths", false, "list changed paths instead of a text diff")
			flagSet.BoolVar(&mergePatch, "merge-patch", false, "print a JSON merge patch (RFC 7386) between the JSON exports")
			return flagSet
		},
		Run: func(args []string) error {
			from, err := a.open(args[0])
			if err != nil {
				return err
			}
			to, err := a.open(args[1])
			if err != nil {
				return err
			}
			if mergePatch {
				patch, err := diff.MergePatch(from.Root(), to.Root())
				if err != nil {
					return err
				}
				fmt.Fprintln(a.out, string(patch))
				return nil
			}
			if paths {
				a.printChanges(diff.Changes(from.Root().Compound, to.Root().Compound))
				return nil
			}
			a.printUnified(diff.Unified(diff.Trees(from.Root(), to.Root()), args[0], args[1], context))
			return nil
		},
	}
}

func (a *app) printChanges(changes []diff.Change) {
	for _, c := range changes {
		p := displayPath(c.Path)
		switch c.Kind {
		case diff.Added:
			a.colors.added.Fprintf(a.out, "+ %s = %s\n", p, nbt.FormatSNBT(c.To, ""))
		case diff.Removed:
			a.colors.removed.Fprintf(a.out, "- %s = %s\n", p, nbt.FormatSNBT(c.From, ""))
		default:
			fmt.Fprintf(a.out, "~ %s: %s -> %s\n", p, nbt.FormatSNBT(c.From, ""), nbt.FormatSNBT(c.To, ""))
		}
	}
}

func (a *app) printUnified(text string) {
	for _, line := range strings.SplitAfter(text, "\n") {
		switch {
		case line == "":
		case strings.HasPrefix(line, "---"), strings.HasPrefix(line, "+++"):
			fmt.Fprint(a.out, line)
		case strings.HasPrefix(line, "@@"):
			a.colors.hunk.Fprint(a.out, line)
		case strings.HasPrefix(line, "+"):
			a.colors.added.Fprint(a.out, line)
		case strings.HasPrefix(line, "-"):
			a.colors.removed.Fprint(a.out, line)
		default:
			fmt.Fprint(a.out, line)
		}
	}
}

func (a *app) exportCommand() *command {
	var (
		output string
		format string
		indent string
		typed  bool
	)
	return &command{
		Name:    "export",
		Summary: "Write a file as JSON, YAML or CBOR",
		Usage:   "<file> [flags]",
		Args:    1,
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("export", pflag.ContinueOnError)
			flagSet.StringVarP(&format, "format", "f", "json", "json, yaml or cbor")
			flagSet.StringVar(&indent, "indent", "  ", "JSON indentation; empty for compact output")
			flagSet.BoolVar(&typed, "typed", false, "keep tag types in the output")
			flagSet.StringVarP(&output, "output", "o", "", "output file (default stdout)")
			return flagSet
		},
		Run: func(args []string) error {
			f, err := export.ParseFormat(format)
			if err != nil {
				return err
			}
			s, err := a.open(args[0])
			if err != nil {
				return err
			}
			opts := export.Options{Indent: indent, Typed: typed}
			if output == "" && a.colorOut && f != export.FormatCBOR {
				var buf bytes.Buffer
				if err := export.Write(&buf, s.Root(), f, opts); err != nil {
					return err
				}
				return highlight(a.out, buf.String(), f.String())
			}
			if output == "" {
				return export.Write(a.out, s.Root(), f, opts)
			}
			return writeExport(output, func(w io.Writer) error {
				return export.Write(w, s.Root(), f, opts)
			})
		},
	}
}

// highlight writes source with terminal syntax colors, falling back to
// plain text when the lexer fails.
func highlight(w io.Writer, source, lexer string) error {
	if err := quick.Highlight(w, source, lexer, "terminal256", "monokai"); err != nil {
		_, err = io.WriteString(w, source)
		return err
	}
	return nil
}

func writeExport(path string, write func(io.Writer) error) (err error) {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := file.Close(); err == nil {
			err = cerr
		}
	}()
	return write(file)
}

func (a *app) convertCommand() *command {
	var (
		output      string
		compression string
	)
	return &command{
		Name:    "convert",
		Summary: "Re-save a file with another compression",
		Usage:   "<file> --compression <none|gzip|zlib|lz4> [flags]",
		Args:    1,
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("convert", pflag.ContinueOnError)
			flagSet.StringVarP(&compression, "compression", "z", "", "target compression: none, gzip, zlib or lz4")
			outputFlag(flagSet, &output)
			return flagSet
		},
		Run: func(args []string) error {
			if compression == "" {
				return usagef("--compression is required")
			}
			comp, err := nbt.ParseCompression(compression)
			if err != nil {
				return err
			}
			s, err := a.open(args[0])
			if err != nil {
				return err
			}
			before := s.Compression()
			if err := s.SetCompression(comp); err != nil {
				return err
			}
			if err := a.save(s, output); err != nil {
				return err
			}
			a.log.Info("converted",
				zap.String("file", s.Path()),
				zap.Stringer("from", before),
				zap.Stringer("to", comp))
			return nil
		},
	}
}

func (a *app) tuiCommand() *command {
	return &command{
		Name:    "tui",
		Summary: "Browse and edit a file interactively",
		Usage:   "<file>",
		Args:    1,
		Run: func(args []string) error {
			if !term.IsTerminal(int(os.Stdin.Fd())) || !isTerminal(a.out) {
				return usagef("tui needs an interactive terminal")
			}
			s, err := a.open(args[0])
			if err != nil {
				return err
			}
			return runInteractive(s)
		},
	}
}
