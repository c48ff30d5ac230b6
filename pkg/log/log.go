// Package log configures the process-wide structured logger and hands
// out module-scoped child loggers. Components receive their logger at
// construction time; nothing mutates global state after Setup.
package log

import (
	"io"
	"log/slog"
	"os"
)

func Setup(logLevel string) {
	slog.SetDefault(NewLogger(os.Stderr, logLevel))
}

// NewLogger builds a text logger writing to w at the given level.
// Unknown levels fall back to info.
func NewLogger(w io.Writer, logLevel string) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: ParseLevel(logLevel),
	}))
}

func ParseLevel(logLevel string) slog.Level {
	switch logLevel {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func WithModule(module string) *slog.Logger {
	return slog.With("module", module)
}
