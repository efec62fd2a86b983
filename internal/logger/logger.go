// Package logger provides structured logging functionality.
package logger

import (
	"context"
	"log/slog"
	"os"

	"github.com/virtualpytest/core/internal/config"
)

// Logger wraps slog.Logger with additional context.
type Logger struct {
	logger *slog.Logger
}

// New creates a new logger based on the configuration.
func New(cfg config.LoggingConfig) *Logger {
	level := parseLevel(cfg.Level)

	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: cfg.Level == "debug",
	}

	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	return &Logger{logger: slog.New(handler)}
}

// With creates a new logger with the given attributes.
func (l *Logger) With(args ...interface{}) *Logger {
	return &Logger{logger: l.logger.With(args...)}
}

// WithExecution scopes the logger to an execution_id, the field every
// Block & Graph Executor log line carries.
func (l *Logger) WithExecution(executionID string) *Logger {
	return l.With("execution_id", executionID)
}

// WithDevice scopes the logger to a device_id.
func (l *Logger) WithDevice(deviceID string) *Logger {
	return l.With("device_id", deviceID)
}

func (l *Logger) Debug(msg string, args ...interface{}) { l.logger.Debug(msg, args...) }
func (l *Logger) Info(msg string, args ...interface{})  { l.logger.Info(msg, args...) }
func (l *Logger) Warn(msg string, args ...interface{})  { l.logger.Warn(msg, args...) }
func (l *Logger) Error(msg string, args ...interface{}) { l.logger.Error(msg, args...) }

func (l *Logger) DebugContext(ctx context.Context, msg string, args ...interface{}) {
	l.logger.DebugContext(ctx, msg, args...)
}
func (l *Logger) InfoContext(ctx context.Context, msg string, args ...interface{}) {
	l.logger.InfoContext(ctx, msg, args...)
}
func (l *Logger) WarnContext(ctx context.Context, msg string, args ...interface{}) {
	l.logger.WarnContext(ctx, msg, args...)
}
func (l *Logger) ErrorContext(ctx context.Context, msg string, args ...interface{}) {
	l.logger.ErrorContext(ctx, msg, args...)
}

func parseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

var defaultLogger = New(config.LoggingConfig{Level: "info", Format: "json"})

// Default returns the default logger.
func Default() *Logger { return defaultLogger }

// SetDefault sets the default logger.
func SetDefault(l *Logger) { defaultLogger = l }
