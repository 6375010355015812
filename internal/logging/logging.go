// Package logging provides structured logging for the application,
// backed by zerolog.
package logging

import (
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// Level controls the minimum severity a logger emits.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// ParseLevel converts a level name to a Level. Unknown names map to info.
func ParseLevel(name string) Level {
	switch strings.ToLower(strings.TrimSpace(name)) {
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

// Field carries structured key/value context attached to a log entry.
type Field struct {
	values map[string]interface{}
}

// WithField creates a Field holding a single key/value pair.
func WithField(key string, value interface{}) Field {
	return Field{values: map[string]interface{}{key: value}}
}

// WithFields creates a Field holding multiple key/value pairs.
func WithFields(values map[string]interface{}) Field {
	return Field{values: values}
}

// Logger writes structured log entries.
type Logger struct {
	zl zerolog.Logger
}

// New creates a Logger that writes JSON entries to stderr at the given level.
func New(level Level) *Logger {
	zl := zerolog.New(os.Stderr).With().Timestamp().Logger().Level(zerologLevel(level))
	return &Logger{zl: zl}
}

func zerologLevel(level Level) zerolog.Level {
	switch level {
	case LevelDebug:
		return zerolog.DebugLevel
	case LevelWarn:
		return zerolog.WarnLevel
	case LevelError:
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// Debug logs a message at debug level.
func (l *Logger) Debug(msg string, fields ...Field) {
	emit(l.zl.Debug(), msg, fields)
}

// Info logs a message at info level.
func (l *Logger) Info(msg string, fields ...Field) {
	emit(l.zl.Info(), msg, fields)
}

// Warn logs a message at warn level.
func (l *Logger) Warn(msg string, fields ...Field) {
	emit(l.zl.Warn(), msg, fields)
}

// Error logs a message at error level.
func (l *Logger) Error(msg string, fields ...Field) {
	emit(l.zl.Error(), msg, fields)
}

func emit(e *zerolog.Event, msg string, fields []Field) {
	for _, f := range fields {
		for k, v := range f.values {
			e = e.Interface(k, v)
		}
	}
	e.Msg(msg)
}
