package http

import (
	"log/slog"
	"net/http"
	"time"

	"iris-api/internal/infrastructure/logger"
	"iris-api/internal/infrastructure/metrics"
)

func LoggingMiddleware(logger logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(rw, r)

			duration := time.Since(start)

			logger.Debug("HTTP request",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", rw.statusCode),
				slog.Duration("duration", duration),
			)
		})
	}
}

// MetricsMiddleware counts and times every request except calls to the
// exposition endpoint itself, so scrapes never inflate the series they read.
func MetricsMiddleware(metrics metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if metrics == nil || r.URL.Path == "/metrics" {
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()

			rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(rw, r)

			duration := time.Since(start).Seconds()
			metrics.IncHTTPRequests(r.Method, r.URL.Path, rw.statusCode)
			metrics.ObserveHTTPDuration(r.Method, r.URL.Path, duration)
		})
	}
}
