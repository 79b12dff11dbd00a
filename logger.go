package lshdb

import (
	"context"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with lshdb-specific context.
// This provides structured logging with consistent field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
// level sets the minimum log level (e.g., slog.LevelDebug, slog.LevelInfo).
func NewJSONLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

// NoopLogger creates a Logger that discards all log output.
func NoopLogger() *Logger {
	return NewLogger(slog.DiscardHandler)
}

// WithFolder adds the storage folder to the logger.
func (l *Logger) WithFolder(folder string) *Logger {
	return &Logger{
		Logger: l.Logger.With("folder", folder),
	}
}

// WithDimension adds a dimension field to the logger.
func (l *Logger) WithDimension(dim int) *Logger {
	return &Logger{
		Logger: l.Logger.With("dimension", dim),
	}
}

// WithHashBits adds the signature length to the logger.
func (l *Logger) WithHashBits(bits int) *Logger {
	return &Logger{
		Logger: l.Logger.With("hash_bits", bits),
	}
}

// LogInsert logs an insert operation.
func (l *Logger) LogInsert(ctx context.Context, position int, key string, err error) {
	if err != nil {
		l.ErrorContext(ctx, "insert failed",
			"key", key,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "insert completed",
			"position", position,
			"key", key,
		)
	}
}

// LogQuery logs a query operation.
func (l *Logger) LogQuery(ctx context.Context, topN, total, kept int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "query failed",
			"top_n", topN,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "query completed",
			"top_n", topN,
			"candidates", total,
			"results", kept,
		)
	}
}

// LogGrow logs a growth of the entry store.
func (l *Logger) LogGrow(ctx context.Context, from, to int) {
	l.InfoContext(ctx, "entry store grown",
		"from", from,
		"to", to,
	)
}

// LogLifecycle logs a start, stop or construction event.
func (l *Logger) LogLifecycle(ctx context.Context, event string, err error) {
	if err != nil {
		l.ErrorContext(ctx, event+" failed",
			"error", err,
		)
	} else {
		l.InfoContext(ctx, event)
	}
}
