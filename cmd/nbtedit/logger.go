package main

import (
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/term"

	"github.com/wippyai/nbt-editor/config"
)

// newLogger builds the CLI logger. With log_format auto it writes
// human-readable console lines when w is a terminal and JSON otherwise.
func newLogger(cfg *config.Config, w io.Writer) *zap.Logger {
	format := cfg.LogFormat
	if format == config.FormatAuto {
		format = config.FormatJSON
		if isTerminal(w) {
			format = config.FormatConsole
		}
	}

	var encoder zapcore.Encoder
	if format == config.FormatConsole {
		encoderConfig := zap.NewDevelopmentEncoderConfig()
		encoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		encoder = zapcore.NewConsoleEncoder(encoderConfig)
	} else {
		encoder = zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	}

	core := zapcore.NewCore(encoder, zapcore.AddSync(w), cfg.Level())
	return zap.New(core).Named("nbtedit")
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
