package config

import (
	"bytes"
	"io"
	"os"
	"strings"

	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/wippyai/nbt-editor/edit"
	"github.com/wippyai/nbt-editor/errors"
	"github.com/wippyai/nbt-editor/nbt"
	"github.com/wippyai/nbt-editor/session"
)

// EnvVar names the environment variable holding the config file path.
const EnvVar = "NBTEDIT_CONFIG"

// Log formats.
const (
	FormatAuto    = "auto"
	FormatConsole = "console"
	FormatJSON    = "json"
)

// Color modes.
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// CompressionAuto keeps the compression a file was loaded with.
const CompressionAuto = "auto"

// Config is the nbtedit configuration.
type Config struct {
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`

	// LogFormat is auto, console or json. Auto picks console when stderr
	// is a terminal.
	LogFormat string `yaml:"log_format"`

	// Duplicates is the duplicate-name policy for rename and insert:
	// reject or overwrite.
	Duplicates string `yaml:"duplicates"`

	// Compression forces the framing used on save: auto, none, gzip,
	// zlib or lz4.
	Compression string `yaml:"compression"`

	// Color is auto, always or never.
	Color string `yaml:"color"`

	// MaxDepth bounds container nesting when decoding.
	MaxDepth int `yaml:"max_depth"`

	// Backup copies the previous file to <name>.bak before each save.
	Backup bool `yaml:"backup"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		LogLevel:    "warn",
		LogFormat:   FormatAuto,
		Duplicates:  nbt.RejectDuplicates.String(),
		Compression: CompressionAuto,
		Color:       ColorAuto,
		MaxDepth:    nbt.DefaultMaxDepth,
	}
}

// Load loads the file named by path, or by NBTEDIT_CONFIG when path is
// empty. With neither set it returns the defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv(EnvVar)
	}
	if path == "" {
		return Default(), nil
	}
	return LoadFile(path)
}

// LoadFile loads and validates a configuration file.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.IO(errors.PhaseConfig, "read", path, err)
	}
	return Parse(data)
}

// Parse decodes YAML over the defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if len(bytes.TrimSpace(data)) > 0 {
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(cfg); err != nil && err != io.EOF {
			return nil, errors.Wrap(errors.PhaseConfig, errors.KindParse, err, "decode config")
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks every field and reports all problems at once.
func (c *Config) Validate() error {
	var problems []string

	if _, err := zapcore.ParseLevel(c.LogLevel); err != nil {
		problems = append(problems, "invalid log_level: "+c.LogLevel)
	}
	switch c.LogFormat {
	case FormatAuto, FormatConsole, FormatJSON:
	default:
		problems = append(problems, "invalid log_format: "+c.LogFormat)
	}
	if _, err := nbt.ParseDuplicatePolicy(c.Duplicates); err != nil {
		problems = append(problems, "invalid duplicates: "+c.Duplicates)
	}
	if c.Compression != CompressionAuto {
		if _, err := nbt.ParseCompression(c.Compression); err != nil {
			problems = append(problems, "invalid compression: "+c.Compression)
		}
	}
	switch c.Color {
	case ColorAuto, ColorAlways, ColorNever:
	default:
		problems = append(problems, "invalid color: "+c.Color)
	}
	if c.MaxDepth <= 0 {
		problems = append(problems, "max_depth must be positive")
	}

	if len(problems) > 0 {
		return errors.InvalidInput(errors.PhaseConfig, strings.Join(problems, "; "))
	}
	return nil
}

// Level returns the parsed log level. Call Validate first.
func (c *Config) Level() zapcore.Level {
	lvl, err := zapcore.ParseLevel(c.LogLevel)
	if err != nil {
		return zapcore.WarnLevel
	}
	return lvl
}

// DuplicatePolicy returns the parsed duplicate policy.
func (c *Config) DuplicatePolicy() nbt.DuplicatePolicy {
	p, err := nbt.ParseDuplicatePolicy(c.Duplicates)
	if err != nil {
		return nbt.RejectDuplicates
	}
	return p
}

// ForcedCompression reports the save framing when one is configured.
func (c *Config) ForcedCompression() (nbt.Compression, bool) {
	if c.Compression == CompressionAuto {
		return nbt.CompressionNone, false
	}
	comp, err := nbt.ParseCompression(c.Compression)
	if err != nil {
		return nbt.CompressionNone, false
	}
	return comp, true
}

// SessionOptions translates the configuration into session options.
func (c *Config) SessionOptions() []session.Option {
	opts := []session.Option{
		session.WithEditOptions(edit.Options{Duplicates: c.DuplicatePolicy()}),
		session.WithBackup(c.Backup),
		session.WithMaxDepth(c.MaxDepth),
	}
	if comp, ok := c.ForcedCompression(); ok {
		opts = append(opts, session.WithCompression(comp))
	}
	return opts
}
