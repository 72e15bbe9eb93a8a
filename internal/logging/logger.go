// Package logging defines the structured-logging interface used across the
// client. Implementations wrap slog (default) or zerolog.
package logging

import (
	"context"
	"io"
	"strings"
)

// Logger is a context-aware, structured logger.
//
// The variadic args are interpreted as key-value pairs, e.g.:
//
//	log.Info(ctx, "request sent", "method", method, "path", path)
type Logger interface {
	// Debug logs diagnostic detail, off by default.
	Debug(ctx context.Context, msg string, args ...any)

	// Info logs an informational message.
	Info(ctx context.Context, msg string, args ...any)

	// Warn logs a warning message for unusual but non-fatal conditions.
	Warn(ctx context.Context, msg string, args ...any)

	// Error logs an error message for failures.
	Error(ctx context.Context, msg string, args ...any)

	// With returns a child logger that always includes the given key-value pairs.
	With(args ...any) Logger
}

// New builds a Logger writing to w. format is one of "text", "json"
// (both slog) or "console" (zerolog console writer). Unknown formats fall
// back to text.
func New(w io.Writer, level, format string) Logger {
	switch strings.ToLower(format) {
	case "console":
		return NewConsoleLogger(w, level)
	case "json":
		return NewSlogJSONLogger(w, level)
	default:
		return NewSlogTextLogger(w, level)
	}
}

// Nop returns a logger that discards everything.
func Nop() Logger {
	return NewSlogTextLogger(io.Discard, "error")
}
