package logger

import (
	"context"
	"log/slog"
)

type ctxKey struct{}

// With derives a context whose logger carries the extra fields. Fields
// accumulate across calls, so trace ids attached by middleware survive
// into deeper layers.
func With(ctx context.Context, fields ...any) context.Context {
	return context.WithValue(ctx, ctxKey{}, From(ctx).With(fields...))
}

// From returns the context's logger, or the process-wide one when the
// context carries none.
func From(ctx context.Context) *slog.Logger {
	if ctx != nil {
		if l, ok := ctx.Value(ctxKey{}).(*slog.Logger); ok {
			return l
		}
	}
	return LoggerWrapper()
}
