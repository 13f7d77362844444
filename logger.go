package imgsim

import (
	"context"
	"errors"
	"log/slog"
	"os"

	"github.com/hupe1980/imgsim/hashing"
	"github.com/hupe1980/imgsim/metadata"
)

// Logger wraps slog.Logger with imgsim-specific context.
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
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NoopLogger creates a Logger that discards all log output.
func NoopLogger() *Logger {
	return &Logger{
		Logger: slog.New(slog.DiscardHandler),
	}
}

// WithField adds an image field name to the logger.
func (l *Logger) WithField(field string) *Logger {
	return &Logger{
		Logger: l.Logger.With("field", field),
	}
}

// WithDoc adds a document number to the logger.
func (l *Logger) WithDoc(doc int) *Logger {
	return &Logger{
		Logger: l.Logger.With("doc", doc),
	}
}

// WithK adds a k (result count) field to the logger.
func (l *Logger) WithK(k int) *Logger {
	return &Logger{
		Logger: l.Logger.With("k", k),
	}
}

// LogRegister logs a field registration.
func (l *Logger) LogRegister(ctx context.Context, field, layout string, err error) {
	if err != nil {
		l.ErrorContext(ctx, "register field failed",
			"field", field,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "field registered",
			"field", field,
			"layout", layout,
		)
	}
}

// LogIndex logs an index operation.
func (l *Logger) LogIndex(ctx context.Context, doc, fields int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "index failed",
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "index completed",
			"doc", doc,
			"fields", fields,
		)
	}
}

// LogDelete logs a delete operation.
func (l *Logger) LogDelete(ctx context.Context, doc int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "delete failed",
			"doc", doc,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "delete completed",
			"doc", doc,
		)
	}
}

// LogQuery logs a search operation.
func (l *Logger) LogQuery(ctx context.Context, query string, k, resultsFound int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "search failed",
			"query", query,
			"k", k,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "search completed",
			"query", query,
			"k", k,
			"results", resultsFound,
		)
	}
}

// LogTableLoad logs the outcome of loading one hash table.
func (l *Logger) LogTableLoad(ctx context.Context, ev hashing.LoadEvent) {
	if ev.Err != nil {
		l.ErrorContext(ctx, "hash table load failed",
			"scheme", ev.Scheme.String(),
			"name", ev.Name,
			"error", ev.Err,
		)
	} else {
		l.InfoContext(ctx, "hash table loaded",
			"scheme", ev.Scheme.String(),
			"name", ev.Name,
			"duration", ev.Duration,
		)
	}
}

// LogMetadataSkipped logs a metadata failure that did not fail indexing.
func (l *Logger) LogMetadataSkipped(ctx context.Context, field string, err error) {
	attrs := []any{"field", field, "error", err}
	var mdErr *metadata.MetadataError
	if errors.As(err, &mdErr) && mdErr.Field != "" {
		attrs = append(attrs, "metadata_field", mdErr.Field)
	}
	l.WarnContext(ctx, "metadata skipped", attrs...)
}
