// Package logger provides leveled structured logging on top of log/slog.
//
// Loggers are instances, not process-wide state: components receive a
// *Logger in their constructors, which keeps tests quiet (Nop) and lets an
// embedding application route output wherever it wants.
package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Level represents log levels
type Level int

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
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// toSlogLevel converts internal level to slog.Level
func toSlogLevel(l Level) slog.Level {
	switch l {
	case LevelDebug:
		return slog.LevelDebug
	case LevelInfo:
		return slog.LevelInfo
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// parseLevel maps a configuration string to a Level, defaulting to Info.
func parseLevel(level string) Level {
	switch strings.ToUpper(level) {
	case "DEBUG":
		return LevelDebug
	case "WARN":
		return LevelWarn
	case "ERROR":
		return LevelError
	default:
		return LevelInfo
	}
}

// Config holds logger configuration
type Config struct {
	Level  string `mapstructure:"level" json:"level,omitempty"`   // DEBUG, INFO, WARN, ERROR
	Format string `mapstructure:"format" json:"format,omitempty"` // text, json
	Output string `mapstructure:"output" json:"output,omitempty"` // stdout, stderr, or file path
}

// Logger is a leveled structured logger bound to one output.
type Logger struct {
	slogger *slog.Logger
	level   Level
}

// New creates a logger from configuration. Output can be "stdout",
// "stderr", or a file path (opened in append mode).
func New(cfg Config) (*Logger, error) {
	var output io.Writer
	switch strings.ToLower(cfg.Output) {
	case "stdout", "":
		output = os.Stdout
	case "stderr":
		output = os.Stderr
	default:
		f, err := os.OpenFile(cfg.Output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file %q: %w", cfg.Output, err)
		}
		output = f
	}

	return NewWithWriter(output, cfg.Level, cfg.Format), nil
}

// NewWithWriter creates a logger writing to w. Primarily useful for tests.
func NewWithWriter(w io.Writer, level, format string) *Logger {
	parsed := parseLevel(level)

	opts := &slog.HandlerOptions{Level: toSlogLevel(parsed)}

	var handler slog.Handler
	if strings.ToLower(format) == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	return &Logger{
		slogger: slog.New(handler),
		level:   parsed,
	}
}

// Nop returns a logger that discards everything.
func Nop() *Logger {
	return &Logger{
		slogger: slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError + 1})),
		level:   LevelError,
	}
}

// With returns a logger with additional pre-bound attributes.
// Usage: log.With("component", "resolver")
func (l *Logger) With(args ...any) *Logger {
	return &Logger{
		slogger: l.slogger.With(args...),
		level:   l.level,
	}
}

// Debug logs at debug level with structured fields.
// Usage: log.Debug("message", "key1", value1, "key2", value2)
func (l *Logger) Debug(msg string, args ...any) {
	if l.level > LevelDebug {
		return
	}
	l.slogger.Debug(msg, args...)
}

// Info logs at info level with structured fields.
func (l *Logger) Info(msg string, args ...any) {
	if l.level > LevelInfo {
		return
	}
	l.slogger.Info(msg, args...)
}

// Warn logs at warn level with structured fields.
func (l *Logger) Warn(msg string, args ...any) {
	if l.level > LevelWarn {
		return
	}
	l.slogger.Warn(msg, args...)
}

// Error logs at error level with structured fields.
func (l *Logger) Error(msg string, args ...any) {
	l.slogger.Error(msg, args...)
}
