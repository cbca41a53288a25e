// Command nbtedit inspects and edits Minecraft NBT files.
//
// Usage:
//
//	nbtedit [--config file] <command> [flags] [args]
//
// Run 'nbtedit --help' for the command list.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/pflag"

	"github.com/wippyai/nbt-editor/config"
	"github.com/wippyai/nbt-editor/edit"
	"github.com/wippyai/nbt-editor/session"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

type globalOptions struct {
	configPath string
	color      string
	logLevel   string
}

func (g *globalOptions) flags() *pflag.FlagSet {
	flagSet := pflag.NewFlagSet("nbtedit", pflag.ContinueOnError)
	flagSet.SetInterspersed(false)
	flagSet.StringVarP(&g.configPath, "config", "c", "", "configuration file (default $"+config.EnvVar+")")
	flagSet.StringVar(&g.color, "color", "", "color output: auto, always or never")
	flagSet.StringVar(&g.logLevel, "log-level", "", "log level: debug, info, warn or error")
	return flagSet
}

// run executes the CLI and returns the process exit code: 0 on success,
// 1 on failure and 2 on bad usage.
func run(args []string, stdout, stderr io.Writer) int {
	var global globalOptions
	flagSet := global.flags()
	flagSet.SetOutput(io.Discard)
	rest := args
	switch err := flagSet.Parse(args); {
	case err == pflag.ErrHelp:
		rest = []string{"--help"}
	case err != nil:
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	default:
		rest = flagSet.Args()
	}

	cfg, err := config.Load(global.configPath)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	if global.color != "" {
		cfg.Color = global.color
	}
	if global.logLevel != "" {
		cfg.LogLevel = global.logLevel
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}

	logger := newLogger(cfg, stderr)
	defer func() { _ = logger.Sync() }()
	session.SetLogger(logger)
	edit.SetLogger(logger)

	a := newApp(cfg, logger, stdout, stderr)
	root := a.commands()
	root.Flags = global.flags
	if err := root.Execute(rest, stderr); err != nil {
		a.printError(err)
		var ue *usageError
		if errors.As(err, &ue) {
			return 2
		}
		return 1
	}
	return 0
}
