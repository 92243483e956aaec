package main

import (
	"io"
	"log/slog"
	"strings"
)

// levelFor picks the log level: --debug wins, then --log-level, then the
// configured level.
func levelFor(flags globalFlags, configured string) slog.Level {
	if flags.debug {
		return slog.LevelDebug
	}
	if flags.logLevel != "" {
		return parseLevel(flags.logLevel)
	}
	return parseLevel(configured)
}

func parseLevel(raw string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// newLogger returns a text logger writing timestamped, level-tagged records.
func newLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
