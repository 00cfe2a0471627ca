// Package middleware holds the HTTP middleware chain: request logging, CORS,
// and rate limiting.
package middleware

import (
	"net/http"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/civitas-ai/opinionspace/internal/infrastructure/monitoring/logging"
)

// LoggingConfig controls the request logging middleware.
type LoggingConfig struct {
	// SkipPaths are high-frequency paths excluded from logging.
	SkipPaths []string
	// SlowThreshold promotes requests above this duration to Warn level.
	SlowThreshold time.Duration
}

// DefaultLoggingConfig returns the standard logging configuration.
func DefaultLoggingConfig() LoggingConfig {
	return LoggingConfig{
		SkipPaths:     []string{"/healthz", "/readyz", "/metrics"},
		SlowThreshold: 3 * time.Second,
	}
}

// wrappedResponseWriter captures status code and bytes written.
type wrappedResponseWriter struct {
	http.ResponseWriter
	statusCode   int
	bytesWritten int64
	wroteHeader  bool
}

func (w *wrappedResponseWriter) WriteHeader(code int) {
	if !w.wroteHeader {
		w.statusCode = code
		w.wroteHeader = true
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *wrappedResponseWriter) Write(b []byte) (int, error) {
	if !w.wroteHeader {
		w.WriteHeader(http.StatusOK)
	}
	n, err := w.ResponseWriter.Write(b)
	w.bytesWritten += int64(n)
	return n, err
}

// RequestLogging logs one line per request with method, path, status,
// duration, and the chi request ID.  5xx log at Error, 4xx and slow requests
// at Warn.
func RequestLogging(log logging.Logger, cfg LoggingConfig) func(http.Handler) http.Handler {
	skip := make(map[string]struct{}, len(cfg.SkipPaths))
	for _, p := range cfg.SkipPaths {
		skip[p] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := skip[r.URL.Path]; ok {
				next.ServeHTTP(w, r)
				return
			}

			ww := &wrappedResponseWriter{ResponseWriter: w, statusCode: http.StatusOK}
			start := time.Now()
			next.ServeHTTP(ww, r)
			elapsed := time.Since(start)

			fields := []logging.Field{
				logging.String("method", r.Method),
				logging.String("path", r.URL.Path),
				logging.Int("status", ww.statusCode),
				logging.Duration("duration", elapsed),
				logging.Int64("bytes", ww.bytesWritten),
				logging.String("request_id", chimw.GetReqID(r.Context())),
			}

			switch {
			case ww.statusCode >= 500:
				log.Error("HTTP request failed", fields...)
			case ww.statusCode >= 400 || elapsed > cfg.SlowThreshold:
				log.Warn("HTTP request", fields...)
			default:
				log.Info("HTTP request", fields...)
			}
		})
	}
}
