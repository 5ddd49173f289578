package logging

import (
	"log"
	"log/slog"
	"os"
	"strings"
)

// parseLevel converts a case-insensitive level name to a slog.Level.
// Unrecognized names fall back to slog.LevelInfo.
func parseLevel(level string) slog.Level {
	switch strings.ToUpper(strings.TrimSpace(level)) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewStructuredLogger builds a *slog.Logger that writes JSON to stderr,
// annotated with the given module name and version. When level is debug,
// every record carries its source location.
func NewStructuredLogger(module, version, level string) *slog.Logger {
	lvl := parseLevel(level)
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level:     lvl,
		AddSource: lvl <= slog.LevelDebug,
	})
	return slog.New(handler).With("module", module, "version", version)
}

// SetDefaultStructuredLogger installs a structured logger as the slog
// default, using LOG_LEVEL (or "info" if unset) for verbosity.
func SetDefaultStructuredLogger(module, version string) {
	SetDefaultStructuredLoggerWithLevel(module, version, os.Getenv("LOG_LEVEL"))
}

// SetDefaultStructuredLoggerWithLevel installs a structured logger as the
// slog default with an explicit level, overriding LOG_LEVEL. An empty level
// defaults to "info".
func SetDefaultStructuredLoggerWithLevel(module, version, level string) {
	if level == "" {
		level = "info"
	}
	slog.SetDefault(NewStructuredLogger(module, version, level))
}

// NewLogLogger returns a standard library *log.Logger backed by a new JSON
// handler on stderr, for callers (third-party libraries) that only accept
// that interface. Lines are logged at level; addSource controls source
// tracking. The module/version attributes of the default logger are not
// carried over.
func NewLogLogger(level slog.Level, addSource bool) *log.Logger {
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level:     level,
		AddSource: addSource,
	})
	return slog.NewLogLogger(handler, level)
}
