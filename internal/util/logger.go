// Package util provides helper functions for logging events
package util

import (
	"log/slog"
	"os"
)

// SetupLogger configures the process-wide slog logger. With debug enabled the
// level drops to Debug so per-frame events become visible.
func SetupLogger(debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return logger
}
