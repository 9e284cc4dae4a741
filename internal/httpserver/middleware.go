package httpserver

import (
	"context"
	"net/http"
	"runtime/debug"
	"strings"

	"github.com/google/uuid"

	"github.com/nodeforge/rpc-gateway/internal/observability"
	"github.com/nodeforge/rpc-gateway/internal/responses"
)

type contextKey string

const requestIDKey contextKey = "requestID"

// RequestIDFromContext returns the inbound request's ID, or "" if none was
// set (only possible outside the normal middleware chain, e.g. in tests).
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// requestIDMiddleware propagates X-Request-ID or mints one, exactly as
// chi_server/middleware.go's requestIDMiddleware does.
func requestIDMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get("X-Request-ID")
			if strings.TrimSpace(id) == "" {
				id = uuid.New().String()
			}

			ctx := context.WithValue(r.Context(), requestIDKey, id)
			w.Header().Set("X-Request-ID", id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// recoverMiddleware turns a panic in any handler into a 500 instead of a
// dropped connection, logging the stack the way chi_server's
// recoverMiddleware does.
func recoverMiddleware(obs observability.Observability) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rw := newResponseWriter(w)

			defer func() {
				recovered := recover()
				if recovered == nil {
					return
				}

				obs.Logger().Error(r.Context(), "panic recovered",
					observability.String("path", r.URL.Path),
					observability.String("method", r.Method),
					observability.String("request_id", RequestIDFromContext(r.Context())),
					observability.Any("panic", recovered),
					observability.String("stack", string(debug.Stack())),
				)

				if !rw.HeaderWritten() {
					responses.Error(w, http.StatusInternalServerError, "internal server error", RequestIDFromContext(r.Context()))
				}
			}()

			next.ServeHTTP(rw, r)
		})
	}
}

// bodyLimitMiddleware enforces MAX_BODY (spec §3) unconditionally via
// http.MaxBytesReader, which also defeats a missing/forged Content-Length —
// the same always-apply rule chi_server's bodyLimitMiddleware documents.
func bodyLimitMiddleware(maxBytes int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			next.ServeHTTP(w, r)
		})
	}
}
