package main

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"go.uber.org/zap"

	"github.com/wippyai/nbt-editor/config"
	"github.com/wippyai/nbt-editor/edit"
	"github.com/wippyai/nbt-editor/nbt"
	"github.com/wippyai/nbt-editor/session"
)

type palette struct {
	path    *color.Color
	kind    *color.Color
	added   *color.Color
	removed *color.Color
	hunk    *color.Color
	err     *color.Color
}

func newPalette(enabled bool) palette {
	p := palette{
		path:    color.New(color.FgCyan),
		kind:    color.New(color.FgYellow),
		added:   color.New(color.FgGreen),
		removed: color.New(color.FgRed),
		hunk:    color.New(color.FgMagenta),
		err:     color.New(color.FgRed, color.Bold),
	}
	for _, c := range []*color.Color{p.path, p.kind, p.added, p.removed, p.hunk, p.err} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

func colorEnabled(mode string, w io.Writer) bool {
	switch mode {
	case config.ColorAlways:
		return true
	case config.ColorNever:
		return false
	}
	f, ok := w.(*os.File)
	return ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()))
}

// app carries what every command needs.
type app struct {
	cfg    *config.Config
	log    *zap.Logger
	out    io.Writer
	errOut io.Writer
	colors palette
	errs   palette

	// colorOut reports whether stdout gets colored output.
	colorOut bool
}

func newApp(cfg *config.Config, log *zap.Logger, stdout, stderr io.Writer) *app {
	colorOut := colorEnabled(cfg.Color, stdout)
	return &app{
		cfg:      cfg,
		log:      log,
		out:      stdout,
		errOut:   stderr,
		colors:   newPalette(colorOut),
		errs:     newPalette(colorEnabled(cfg.Color, stderr)),
		colorOut: colorOut,
	}
}

func (a *app) open(path string, extra ...session.Option) (*session.Session, error) {
	opts := append(a.cfg.SessionOptions(), extra...)
	return session.Load(path, opts...)
}

// duplicates returns the session option for --overwrite.
func (a *app) duplicates(overwrite bool) session.Option {
	policy := a.cfg.DuplicatePolicy()
	if overwrite {
		policy = nbt.OverwriteDuplicates
	}
	return session.WithEditOptions(edit.Options{Duplicates: policy})
}

// save writes s back to its own path, or to output when set.
func (a *app) save(s *session.Session, output string) error {
	if output != "" {
		return s.SaveAs(output)
	}
	return s.Save()
}

func (a *app) printError(err error) {
	fmt.Fprintf(a.errOut, "%s %v\n", a.errs.err.Sprint("Error:"), err)
}

func displayPath(p nbt.Path) string {
	if len(p) == 0 {
		return "(root)"
	}
	return p.String()
}
