// Package log bootstraps slog for the engine and API binaries. Every
// component logger hangs off the process default with a "module" attribute,
// so rule evaluation, persistence and transport lines stay filterable.
package log

import (
	"log/slog"
	"os"
)

// Setup installs the process-wide text handler. Unknown levels fall back to
// info rather than failing startup.
func Setup(logLevel string) {
	var level slog.Level

	switch logLevel {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})))
}

// WithModule returns the default logger tagged with a module name.
func WithModule(module string) *slog.Logger {
	return slog.With("module", module)
}
