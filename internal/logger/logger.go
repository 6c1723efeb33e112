// Package logger provides the level-gated, column-aligned logging used by
// the masking tool. Each entry is one line:
//
//	2006-01-02 15:04:05.000 LEVEL [MODULE] action: message
//
// Levels, lowest to highest: debug, info, warn, error. Entries below the
// configured minimum are dropped. The masking engine logs through this
// package only for observability events (gender fallbacks, collisions);
// it never logs original PII values at info or above.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

// Level is a log severity.
type Level int

// Severities, ordered lowest to highest.
const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelWarn:
		return "WARN "
	case LevelError:
		return "ERROR"
	default:
		return "INFO "
	}
}

// Logger writes structured lines for one module.
type Logger struct {
	module string
	level  Level

	mu  sync.Mutex
	out io.Writer
}

// New returns a Logger for module, gated at the given level string.
// Unrecognized levels default to info. Output goes to stderr; tests can
// redirect it with SetOutput.
func New(module, levelStr string) *Logger {
	return &Logger{
		module: strings.ToUpper(module),
		level:  ParseLevel(levelStr),
		out:    os.Stderr,
	}
}

// SetOutput redirects the logger's output.
func (l *Logger) SetOutput(w io.Writer) {
	l.mu.Lock()
	l.out = w
	l.mu.Unlock()
}

// SetLevel changes the minimum level at runtime.
func (l *Logger) SetLevel(levelStr string) { l.level = ParseLevel(levelStr) }

// Debug logs at DEBUG level.
func (l *Logger) Debug(action, msg string) { l.write(LevelDebug, action, msg) }

// Info logs at INFO level.
func (l *Logger) Info(action, msg string) { l.write(LevelInfo, action, msg) }

// Warn logs at WARN level.
func (l *Logger) Warn(action, msg string) { l.write(LevelWarn, action, msg) }

// Error logs at ERROR level.
func (l *Logger) Error(action, msg string) { l.write(LevelError, action, msg) }

// Debugf logs a formatted message at DEBUG level.
func (l *Logger) Debugf(action, format string, args ...any) {
	l.Debug(action, fmt.Sprintf(format, args...))
}

// Infof logs a formatted message at INFO level.
func (l *Logger) Infof(action, format string, args ...any) {
	l.Info(action, fmt.Sprintf(format, args...))
}

// Warnf logs a formatted message at WARN level.
func (l *Logger) Warnf(action, format string, args ...any) {
	l.Warn(action, fmt.Sprintf(format, args...))
}

// Errorf logs a formatted message at ERROR level.
func (l *Logger) Errorf(action, format string, args ...any) {
	l.Error(action, fmt.Sprintf(format, args...))
}

// Fatalf logs a formatted message at ERROR level and exits.
func (l *Logger) Fatalf(action, format string, args ...any) {
	l.Error(action, fmt.Sprintf(format, args...))
	os.Exit(1)
}

func (l *Logger) write(level Level, action, msg string) {
	if level < l.level {
		return
	}
	ts := time.Now().Format("2006-01-02 15:04:05.000")
	l.mu.Lock()
	fmt.Fprintf(l.out, "%s %s [%s] %s: %s\n", ts, level, l.module, action, msg)
	l.mu.Unlock()
}

// ParseLevel converts a level string to a Level, defaulting to LevelInfo.
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}
