// Package logging builds the leveled slog.Logger used for operational
// output on stderr. Simulation reports never go through it.
package logging

import (
	"io"
	"log/slog"
	"strings"
)

// LevelTrace sits below Debug and enables one record per simulated step.
const LevelTrace = slog.LevelDebug - 4

var levels = map[string]slog.Level{
	"trace": LevelTrace,
	"debug": slog.LevelDebug,
	"info":  slog.LevelInfo,
	"warn":  slog.LevelWarn,
	"error": slog.LevelError,
}

// ParseLevel maps a level name to a slog.Level, case-insensitively.
// Unknown values default to info.
func ParseLevel(s string) slog.Level {
	if lvl, ok := levels[strings.ToLower(s)]; ok {
		return lvl
	}
	return slog.LevelInfo
}

// ValidLevel reports whether s names a known level. The empty string is
// accepted as the default.
func ValidLevel(s string) bool {
	if s == "" {
		return true
	}
	_, ok := levels[strings.ToLower(s)]
	return ok
}

// NewLogger creates a text slog.Logger writing to w.
func NewLogger(level string, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: ParseLevel(level),
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.LevelKey {
				if lvl, ok := a.Value.Any().(slog.Level); ok && lvl == LevelTrace {
					a.Value = slog.StringValue("TRACE")
				}
			}
			return a
		},
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// Discard returns a logger that drops every record.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError + 4}))
}
