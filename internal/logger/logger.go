// Package logger is the process-wide diagnostic log behind --verbose.
// Messages go through a log/slog text handler on stderr and are dropped
// entirely unless verbose mode is on.
package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"
)

// levelOff sits above every slog level so nothing is written.
const levelOff = slog.Level(16)

var (
	mu     sync.RWMutex
	level  = newLevel()
	logger = newLogger(os.Stderr)
)

func newLevel() *slog.LevelVar {
	v := new(slog.LevelVar)
	v.Set(levelOff)
	return v
}

// newLogger writes key=value lines without timestamps; verbose output is
// read live on a terminal.
func newLogger(w io.Writer) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if len(groups) == 0 && a.Key == slog.TimeKey {
				return slog.Attr{}
			}
			return a
		},
	}))
}

// SetVerbose turns debug output on or off.
func SetVerbose(v bool) {
	if v {
		level.Set(slog.LevelDebug)
	} else {
		level.Set(levelOff)
	}
}

// IsVerbose reports whether debug output is on.
func IsVerbose() bool {
	return level.Level() <= slog.LevelDebug
}

// SetOutput redirects the log. Tests point it at a buffer.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	logger = newLogger(w)
}

// Slog returns the underlying logger for callers that log with attributes.
func Slog() *slog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return logger
}

// Debug logs a formatted message at debug level.
func Debug(format string, args ...any) {
	logf(slog.LevelDebug, format, args...)
}

// Info logs a formatted message at info level.
func Info(format string, args ...any) {
	logf(slog.LevelInfo, format, args...)
}

// Warn logs a formatted message at warn level.
func Warn(format string, args ...any) {
	logf(slog.LevelWarn, format, args...)
}

func logf(lvl slog.Level, format string, args ...any) {
	if lvl < level.Level() {
		return
	}
	Slog().Log(context.Background(), lvl, fmt.Sprintf(format, args...))
}

// Timed returns a function that logs how long name took once called.
//
//	defer logger.Timed("recompute")()
func Timed(name string) func() {
	if !IsVerbose() {
		return func() {}
	}
	start := time.Now()
	return func() {
		Slog().Debug(name, "elapsed", time.Since(start).Round(time.Microsecond))
	}
}
