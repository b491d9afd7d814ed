package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Default is the package-level logger used by components that are not
// handed an explicit *slog.Logger.
var Default *slog.Logger

var level = new(slog.LevelVar)

func init() {
	Default = New(os.Stderr, false)
}

// ParseLevel converts a level name to a slog.Level.
func ParseLevel(name string) (slog.Level, error) {
	switch strings.ToLower(name) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q (must be debug, info, warn, or error)", name)
	}
}

// New creates a structured logger writing to output. When json is true the
// handler emits JSON records, otherwise human-readable text.
func New(output io.Writer, json bool) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}
	if json {
		return slog.New(slog.NewJSONHandler(output, opts))
	}
	return slog.New(slog.NewTextHandler(output, opts))
}

// SetLevel adjusts the level of every logger created by New.
func SetLevel(l slog.Level) {
	level.Set(l)
}

// SetDefault replaces the package-level logger and the slog default.
func SetDefault(l *slog.Logger) {
	Default = l
	slog.SetDefault(l)
}

// Debug logs a debug message via the default logger.
func Debug(msg string, args ...any) {
	Default.Debug(msg, args...)
}

// Info logs an info message via the default logger.
func Info(msg string, args ...any) {
	Default.Info(msg, args...)
}

// Warn logs a warning via the default logger.
func Warn(msg string, args ...any) {
	Default.Warn(msg, args...)
}

// Error logs an error via the default logger.
func Error(msg string, args ...any) {
	Default.Error(msg, args...)
}

// With returns the default logger extended with attributes.
func With(args ...any) *slog.Logger {
	return Default.With(args...)
}
