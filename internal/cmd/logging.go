package cmd

import (
	"io"
	"log/slog"
)

// newLogger creates the diagnostics logger. Logs always go to w (stderr)
// so report output on stdout stays machine-readable.
func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
