// Package debug holds the process-wide structured logger used by the
// migration engine and the CLI.
package debug

import (
	"io"
	"log/slog"
	"os"
	"sync"
)

var (
	logger  = slog.New(slog.NewTextHandler(io.Discard, nil))
	enabled bool
	mu      sync.RWMutex
)

// Init enables or disables debug output on os.Stderr
func Init(enable bool) {
	SetOutput(os.Stderr, enable)
}

// SetOutput sends log records to w. When enable is false only errors are
// written.
func SetOutput(w io.Writer, enable bool) {
	level := slog.LevelError
	if enable {
		level = slog.LevelDebug
	}
	SetLogger(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})), enable)
}

// SetLogger replaces the global logger. A nil logger discards everything.
func SetLogger(l *slog.Logger, enable bool) {
	if l == nil {
		l = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	mu.Lock()
	defer mu.Unlock()
	logger = l
	enabled = enable
}

// Enabled returns whether debug logging is enabled
func Enabled() bool {
	mu.RLock()
	defer mu.RUnlock()
	return enabled
}

// Debug logs a debug message
func Debug(msg string, args ...any) {
	Logger().Debug(msg, args...)
}

// Info logs an info message
func Info(msg string, args ...any) {
	Logger().Info(msg, args...)
}

// Warn logs a warning message
func Warn(msg string, args ...any) {
	Logger().Warn(msg, args...)
}

// Error logs an error message
func Error(msg string, args ...any) {
	Logger().Error(msg, args...)
}

// With returns a logger with the given attributes
func With(args ...any) *slog.Logger {
	return Logger().With(args...)
}

// Logger returns the underlying slog.Logger instance
func Logger() *slog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return logger
}
