// Package trace tags every HTTP request with an id and logs its start and
// completion. The id travels in the request context so handler logs can
// correlate with the access log.
package trace

import (
	"context"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

type ctxKey int

const requestIDKey ctxKey = iota

// Middleware traces requests and keeps lightweight counters.
type Middleware struct {
	clientIP       func(*http.Request) string
	totalRequests  atomic.Int64
	lastDurationMS atomic.Int64
}

// Metrics is a point-in-time snapshot of the middleware's counters.
type Metrics struct {
	TotalRequests  int64
	LastDurationMS int64
}

// NewMiddleware builds the tracer; clientIP may be nil when the client
// address is not worth logging.
func NewMiddleware(clientIP func(*http.Request) string) *Middleware {
	return &Middleware{clientIP: clientIP}
}

// Handler wraps next with request-id generation and access logging. The
// completion log level follows the response status.
func (m *Middleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := uuid.NewString()

		ctx := context.WithValue(r.Context(), requestIDKey, requestID)
		r = r.WithContext(ctx)

		ip := ""
		if m.clientIP != nil {
			ip = m.clientIP(r)
		}

		slog.InfoContext(ctx, "Request started",
			"request_id", requestID,
			"method", r.Method,
			"path", r.URL.Path,
			"client_ip", ip)

		m.totalRequests.Add(1)

		rw := &responseWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rw, r)

		duration := time.Since(start)
		m.lastDurationMS.Store(duration.Milliseconds())

		level := slog.LevelInfo
		switch {
		case rw.status >= 500:
			level = slog.LevelError
		case rw.status >= 400:
			level = slog.LevelWarn
		}

		slog.Log(ctx, level, "Request completed",
			"request_id", requestID,
			"method", r.Method,
			"path", r.URL.Path,
			"status", rw.status,
			"duration_ms", duration.Milliseconds())
	})
}

// RequestID returns the id placed in the context by Handler, or "" outside
// a traced request.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// Metrics returns the current counters.
func (m *Middleware) Metrics() Metrics {
	return Metrics{
		TotalRequests:  m.totalRequests.Load(),
		LastDurationMS: m.lastDurationMS.Load(),
	}
}

type responseWriter struct {
	http.ResponseWriter
	status int
}

func (rw *responseWriter) WriteHeader(status int) {
	rw.status = status
	rw.ResponseWriter.WriteHeader(status)
}
