// Package internal holds process-level plumbing shared by the server
// binary: configuration, logging and schema migrations.
package internal

import (
	"io"
	"log/slog"
	"time"
)

// NewLogger builds the process logger. Development gets a human-readable
// text handler; prod emits JSON with RFC3339Nano timestamps so the log
// pipeline can order order and payment events precisely.
func NewLogger(w io.Writer, env, level string) *slog.Logger {
	lvl := new(slog.LevelVar)
	switch level {
	case "debug":
		lvl.Set(slog.LevelDebug)
	case "info":
		lvl.Set(slog.LevelInfo)
	case "warn":
		lvl.Set(slog.LevelWarn)
	case "error":
		lvl.Set(slog.LevelError)
	default:
		slog.Default().Warn("unknown log level, using info", slog.String("level", level))
	}

	opts := &slog.HandlerOptions{Level: lvl}
	if env != "prod" {
		return slog.New(slog.NewTextHandler(w, opts))
	}

	opts.ReplaceAttr = func(groups []string, a slog.Attr) slog.Attr {
		if a.Key == slog.TimeKey {
			a.Value = slog.StringValue(a.Value.Time().Format(time.RFC3339Nano))
		}
		return a
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}
