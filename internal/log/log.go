package log

import (
	"io"
	"log/slog"
)

// New returns a slog.Logger writing to w. stdout carries data, so logs
// must always go to stderr (the caller passes it in). verbose enables
// debug-level records, used to trace keepassxc-cli invocations.
func New(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	h := slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	return slog.New(h)
}
