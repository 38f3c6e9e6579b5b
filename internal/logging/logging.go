// Package logging builds the structured logger used across the CLI, the
// orchestrator, and the rewriter's diagnostic output.
package logging

import (
	"context"
	"io"
	"log/slog"
)

type loggerKey struct{}

// New builds a text-handler slog.Logger writing to w at the given level.
func New(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// WithLogger attaches logger to ctx for later retrieval by FromContext.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, logger)
}

// FromContext returns the logger attached to ctx, or slog.Default() if
// none was attached.
func FromContext(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok {
		return logger
	}
	return slog.Default()
}
