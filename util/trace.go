// Package util holds logging helpers shared by the placer packages.
package util

import (
	"context"
	"log/slog"
)

// LevelTrace sits above info so that swap traces survive an info handler.
const LevelTrace slog.Level = slog.LevelInfo + 1

// Trace logs a key/value trace record.
func Trace(msg string, args ...any) {
	slog.Log(context.Background(), LevelTrace, msg, args...)
}

// TraceEnabled tells if the default logger keeps trace records.
func TraceEnabled() bool {
	return slog.Default().Enabled(context.Background(), LevelTrace)
}
