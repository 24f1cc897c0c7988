package recgo

import (
	"context"
	"log/slog"
	"os"

	"github.com/hupe1980/recgo/model"
)

// Logger wraps slog.Logger with recgo-specific context.
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

// WithRID adds a rid field to the logger.
func (l *Logger) WithRID(rid model.RID) *Logger {
	return &Logger{
		Logger: l.Logger.With("rid", rid.String()),
	}
}

// WithBucket adds a bucket field to the logger.
func (l *Logger) WithBucket(bucket int32) *Logger {
	return &Logger{
		Logger: l.Logger.With("bucket", bucket),
	}
}

// LogCreate logs a record creation.
func (l *Logger) LogCreate(ctx context.Context, t model.RecordType, rid model.RID, err error) {
	if err != nil {
		l.ErrorContext(ctx, "create failed",
			"type", t.String(),
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "create completed",
			"type", t.String(),
			"rid", rid.String(),
		)
	}
}

// LogRead logs a failed record read. Successful reads are not logged.
func (l *Logger) LogRead(ctx context.Context, rid model.RID, err error) {
	if err != nil {
		l.ErrorContext(ctx, "read failed",
			"rid", rid.String(),
			"error", err,
		)
	}
}

// LogUpdate logs a property update.
func (l *Logger) LogUpdate(ctx context.Context, rid model.RID, err error) {
	if err != nil {
		l.ErrorContext(ctx, "update failed",
			"rid", rid.String(),
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "update completed",
			"rid", rid.String(),
		)
	}
}

// LogConnect logs the adjacency updates of a new edge.
func (l *Logger) LogConnect(ctx context.Context, from, to, edge model.RID, err error) {
	if err != nil {
		l.ErrorContext(ctx, "connect failed",
			"from", from.String(),
			"to", to.String(),
			"edge", edge.String(),
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "connect completed",
			"from", from.String(),
			"to", to.String(),
			"edge", edge.String(),
		)
	}
}

// LogRename logs a property rename.
func (l *Logger) LogRename(ctx context.Context, oldName, newName string, err error) {
	if err != nil {
		l.WarnContext(ctx, "rename failed",
			"old", oldName,
			"new", newName,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "property renamed",
			"old", oldName,
			"new", newName,
		)
	}
}

// LogDictionary logs a dictionary snapshot load or save.
func (l *Logger) LogDictionary(ctx context.Context, op, name string, entries int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "dictionary "+op+" failed",
			"name", name,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "dictionary "+op+" completed",
			"name", name,
			"entries", entries,
		)
	}
}
