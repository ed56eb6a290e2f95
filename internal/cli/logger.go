// Package cli holds what the ndstool and ndsview commands share.
package cli

import (
	"log/slog"
	"os"

	"golang.org/x/term"
)

// NewCommandLogger writes human-readable records when stderr is a terminal
// and JSON records otherwise. Records below level are dropped.
func NewCommandLogger(level slog.Level) *slog.Logger {
	var handler slog.Handler
	options := &slog.HandlerOptions{Level: level}
	if term.IsTerminal(int(os.Stderr.Fd())) {
		handler = slog.NewTextHandler(os.Stderr, options)
	} else {
		handler = slog.NewJSONHandler(os.Stderr, options)
	}
	return slog.New(handler)
}
