// Package diff compares two NBT trees, either as a line diff of their
// SNBT renderings or as a list of changed paths.
package diff

import (
	"fmt"
	"strings"

	diffpatch "github.com/sergi/go-diff/diffmatchpatch"

	"github.com/wippyai/nbt-editor/nbt"
)

// Op is the kind of a diff line.
type Op int

const (
	Equal Op = iota
	Delete
	Insert
)

// Line is one line of a text diff.
type Line struct {
	Text string
	Op   Op
}

// Indent is the SNBT indentation used for line diffs.
const Indent = "  "

// Lines diffs the indented SNBT renderings of a and b line by line.
func Lines(a, b nbt.Tag) []Line {
	from := nbt.FormatSNBT(a, Indent) + "\n"
	to := nbt.FormatSNBT(b, Indent) + "\n"

	dmp := diffpatch.New()
	chars1, chars2, lineArray := dmp.DiffLinesToChars(from, to)
	diffs := dmp.DiffMain(chars1, chars2, false)
	diffs = dmp.DiffCharsToLines(diffs, lineArray)

	var out []Line
	for _, d := range diffs {
		op := Equal
		switch d.Type {
		case diffpatch.DiffDelete:
			op = Delete
		case diffpatch.DiffInsert:
			op = Insert
		}
		for _, text := range strings.SplitAfter(d.Text, "\n") {
			if text == "" {
				continue
			}
			out = append(out, Line{Op: op, Text: strings.TrimSuffix(text, "\n")})
		}
	}
	return out
}

// Trees diffs two documents, root names included.
func Trees(a, b *nbt.Root) []Line {
	lines := Lines(a.Compound, b.Compound)
	if a.Name != b.Name {
		lines = append([]Line{
			{Op: Delete, Text: "// root " + fmt.Sprintf("%q", a.Name)},
			{Op: Insert, Text: "// root " + fmt.Sprintf("%q", b.Name)},
		}, lines...)
	}
	return lines
}

// HasChanges reports whether any line was inserted or deleted.
func HasChanges(lines []Line) bool {
	for _, l := range lines {
		if l.Op != Equal {
			return true
		}
	}
	return false
}

// Unified renders lines in unified diff format with context lines of
// surrounding text per hunk. It returns "" when nothing changed.
func Unified(lines []Line, fromName, toName string, context int) string {
	if !HasChanges(lines) {
		return ""
	}
	if context < 0 {
		context = 0
	}

	// oldNo[i] and newNo[i] are the 1-based line numbers at lines[i].
	oldNo := make([]int, len(lines)+1)
	newNo := make([]int, len(lines)+1)
	o, n := 1, 1
	for i, l := range lines {
		oldNo[i], newNo[i] = o, n
		switch l.Op {
		case Equal:
			o++
			n++
		case Delete:
			o++
		case Insert:
			n++
		}
	}
	oldNo[len(lines)], newNo[len(lines)] = o, n

	var b strings.Builder
	fmt.Fprintf(&b, "--- %s\n+++ %s\n", fromName, toName)
	for i := 0; i < len(lines); {
		if lines[i].Op == Equal {
			i++
			continue
		}
		start := max(0, i-context)
		end := i
		for end < len(lines) {
			if lines[end].Op != Equal {
				end++
				continue
			}
			j := end
			for j < len(lines) && lines[j].Op == Equal {
				j++
			}
			if j == len(lines) || j-end > 2*context {
				end = min(end+context, len(lines))
				break
			}
			end = j
		}

		fmt.Fprintf(&b, "@@ -%d,%d +%d,%d @@\n",
			oldNo[start], oldNo[end]-oldNo[start],
			newNo[start], newNo[end]-newNo[start])
		for _, l := range lines[start:end] {
			switch l.Op {
			case Equal:
				b.WriteByte(' ')
			case Delete:
				b.WriteByte('-')
			case Insert:
				b.WriteByte('+')
			}
			b.WriteString(l.Text)
			b.WriteByte('\n')
		}
		i = end
	}
	return b.String()
}
