// Package logging configures the diagnostic logger.
//
// The test report goes to stdout and is never logged. Diagnostics (resolved
// configuration, per-run timings, host load samples) go to stderr through
// log/slog so they can be filtered without disturbing the report.
//
// Usage:
//
//	logger := logging.SetupLogger(os.Stderr, "debug")
//	logger.Debug("run finished", "path", tc.InputPath, "mode", mode)
package logging

import (
	"io"
	"log/slog"
	"path/filepath"
	"strings"
)

// SetupLogger creates a text logger writing to w at the given level
// ("debug", "info", "warn", "error"; anything else means warn).
// Source locations are attached at debug level only.
//
// The logger is also installed as the slog default.
func SetupLogger(w io.Writer, level string) *slog.Logger {
	slogLevel := ParseLevel(level)

	opts := &slog.HandlerOptions{
		Level:     slogLevel,
		AddSource: slogLevel <= slog.LevelDebug,
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			if a.Key == slog.SourceKey {
				if source, ok := a.Value.Any().(*slog.Source); ok {
					source.File = shortenPath(source.File)
					source.Function = shortenPath(source.Function)
				}
			}
			return a
		},
	}

	logger := slog.New(slog.NewTextHandler(w, opts))
	slog.SetDefault(logger)
	return logger
}

// ParseLevel converts a level name to slog.Level. Unknown names map to warn,
// which keeps a normal run silent.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}

// WithComponent tags every record from a subsystem.
func WithComponent(logger *slog.Logger, component string) *slog.Logger {
	return logger.With(slog.String("component", component))
}

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError + 1}))
}

func shortenPath(p string) string {
	for _, marker := range []string{"internal/", "pkg/", "cmd/"} {
		if idx := strings.Index(p, marker); idx != -1 {
			return p[idx:]
		}
	}
	return filepath.Base(p)
}
