package npu

import (
	"context"
	"log/slog"
)

const LevelTrace slog.Level = slog.LevelInfo + 1

// Trace logs cycle-level events at a level above Info so they stay out of
// regular runs.
func Trace(msg string, args ...any) {
	slog.Log(context.Background(), LevelTrace, msg, args...)
}
