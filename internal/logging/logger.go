// Package logging builds the zap logger the CLI writes diagnostics to.
package logging

import (
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/term"
)

// Options select the log level. Debug wins over Verbose; with neither set
// the level comes from M365_LOG_LEVEL and defaults to warn.
type Options struct {
	Debug   bool
	Verbose bool
}

// New returns a logger writing to w. The console encoder is used when w is
// a terminal, JSON lines otherwise.
func New(w zapcore.WriteSyncer, opts Options) *zap.Logger {
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "timestamp"
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	var enc zapcore.Encoder
	if isTerminal(w) {
		encCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		enc = zapcore.NewConsoleEncoder(encCfg)
	} else {
		enc = zapcore.NewJSONEncoder(encCfg)
	}

	core := zapcore.NewCore(enc, w, level(opts))
	return zap.New(core)
}

func level(opts Options) zap.AtomicLevel {
	switch {
	case opts.Debug:
		return zap.NewAtomicLevelAt(zap.DebugLevel)
	case opts.Verbose:
		return zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	return parseLogLevel(os.Getenv("M365_LOG_LEVEL"))
}

func parseLogLevel(s string) zap.AtomicLevel {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return zap.NewAtomicLevelAt(zap.DebugLevel)
	case "INFO":
		return zap.NewAtomicLevelAt(zap.InfoLevel)
	case "ERROR":
		return zap.NewAtomicLevelAt(zap.ErrorLevel)
	default:
		return zap.NewAtomicLevelAt(zap.WarnLevel)
	}
}

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

func isTerminal(w zapcore.WriteSyncer) bool {
	f, ok := w.(*os.File)
	return ok && IsTerminal(f)
}
