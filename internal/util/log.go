// Package util provides shared utility functions for logging, retries, and
// rate limiting.
package util

import (
	"io"
	"log/slog"
	"strings"
)

// NewLogger creates a structured logger using log/slog writing to w at the
// specified level. Supported levels: "debug", "info", "warn", "error";
// unrecognised values default to "info". Format is "json" or "text".
//
// The TUI passes a log file here rather than stdout, because stdout is owned
// by the terminal renderer while the program runs.
func NewLogger(w io.Writer, level string, format string) *slog.Logger {
	var slevel slog.Level
	switch strings.ToLower(level) {
	case "debug":
		slevel = slog.LevelDebug
	case "info":
		slevel = slog.LevelInfo
	case "warn":
		slevel = slog.LevelWarn
	case "error":
		slevel = slog.LevelError
	default:
		slevel = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: slevel}
	var handler slog.Handler
	if strings.ToLower(format) == "text" {
		handler = slog.NewTextHandler(w, opts)
	} else {
		handler = slog.NewJSONHandler(w, opts)
	}

	return slog.New(handler)
}

// SetDefault configures the provided logger as the default slog logger.
func SetDefault(logger *slog.Logger) {
	slog.SetDefault(logger)
}
