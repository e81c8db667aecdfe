package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger wraps slog.Logger with the field names used across the simulator.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a Logger with the given handler.
// If handler is nil, uses a text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{Logger: slog.New(handler)}
}

// NewLoggerFromConfig builds the logger described by cfg. When cfg.File is set the
// output goes to a size-rotated file instead of stderr.
func NewLoggerFromConfig(cfg LogConfig) (*Logger, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		return nil, fmt.Errorf("log level %q: %w", cfg.Level, err)
	}

	var w io.Writer = os.Stderr
	if cfg.File != "" {
		w = &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			Compress:   cfg.Compress,
		}
	}

	opts := &slog.HandlerOptions{Level: level}
	switch strings.ToLower(cfg.Format) {
	case "json":
		return NewLogger(slog.NewJSONHandler(w, opts)), nil
	case "text", "":
		return NewLogger(slog.NewTextHandler(w, opts)), nil
	default:
		return nil, fmt.Errorf("unknown log format %q", cfg.Format)
	}
}

// NoopLogger discards all output.
func NoopLogger() *Logger {
	return NewLogger(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{
		Level: slog.Level(1000),
	}))
}

// WithRequestID tags every record with the request id.
func (l *Logger) WithRequestID(id string) *Logger {
	return &Logger{Logger: l.Logger.With("request_id", id)}
}

// LogIssue records an operation that was reported and skipped.
func (l *Logger) LogIssue(issue Issue) {
	l.Warn("operation skipped",
		"column", issue.Column,
		"positions", issue.Positions,
		"tags", issue.Tags,
		"error", issue.Err,
	)
}
