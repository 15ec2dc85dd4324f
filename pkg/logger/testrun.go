package logger

import (
	"io"
	"log/slog"
)

// NewTestHandler discards everything; tests assert on behavior, not
// log output.
func NewTestHandler(_ slog.Level) slog.Handler {
	return slog.NewTextHandler(io.Discard, nil)
}
