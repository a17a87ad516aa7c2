// Package log provides structured logging for arenabot.
// It wraps slog and tags every record with the process run id.
package log

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/google/uuid"
)

var (
	logger *slog.Logger
	runID  = uuid.NewString()
	once   sync.Once
)

// ParseLevel maps "debug", "info", "warn" or "error" to a slog level.
// Anything else is info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Init initializes the global logger with the specified level, writing to
// stdout. Only the first call to Init or InitTo has an effect.
func Init(level string) {
	InitTo(level, os.Stdout)
}

// InitTo is Init with an explicit destination, used when stdout belongs to
// the terminal view.
func InitTo(level string, w io.Writer) {
	once.Do(func() {
		opts := &slog.HandlerOptions{
			Level: ParseLevel(level),
		}

		// JSON for the arena log collector, text on a terminal
		var handler slog.Handler
		if os.Getenv("GO_ENV") == "production" {
			handler = slog.NewJSONHandler(w, opts)
		} else {
			handler = slog.NewTextHandler(w, opts)
		}

		logger = slog.New(handler).With("run", runID)
		slog.SetDefault(logger)
	})
}

// L returns the global logger instance.
func L() *slog.Logger {
	Init("info")
	return logger
}

// RunID identifies this process in logs and on the dashboard.
func RunID() string {
	return runID
}

// Debug logs at debug level.
func Debug(msg string, args ...any) {
	L().Debug(msg, args...)
}

// Info logs at info level.
func Info(msg string, args ...any) {
	L().Info(msg, args...)
}

// Warn logs at warn level.
func Warn(msg string, args ...any) {
	L().Warn(msg, args...)
}

// Error logs at error level.
func Error(msg string, args ...any) {
	L().Error(msg, args...)
}

// With returns a logger with the given attributes.
func With(args ...any) *slog.Logger {
	return L().With(args...)
}
