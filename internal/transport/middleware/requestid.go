package middleware

import (
	"context"
	"net/http"

	"github.com/xtractpay/xtractpay/pkg/logger"

	"github.com/google/uuid"
)

type traceKey struct{}

// RequestID propagates the caller's X-Trace-ID or mints one, making it
// available on the response, the context and the request-scoped logger.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traceID := r.Header.Get("X-Trace-ID")
		if traceID == "" {
			traceID = uuid.NewString()
		}

		ctx := context.WithValue(r.Context(), traceKey{}, traceID)
		ctx = logger.With(ctx, "traceID", traceID)

		w.Header().Set("X-Trace-ID", traceID)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// TraceID returns the trace id set by RequestID, or empty.
func TraceID(ctx context.Context) string {
	id, _ := ctx.Value(traceKey{}).(string)
	return id
}
