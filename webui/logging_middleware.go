// Package webui serves the browser front end and the REST API for the studio.
// This file contains the LoggingMiddleware molecule for HTTP request logging.
package webui

import (
	"net/http"
	"time"

	"go.uber.org/zap"
)

// LoggingMiddleware logs every HTTP request with method, path, status code,
// duration, and client address. Thread-safe for concurrent requests.
type LoggingMiddleware struct {
	logger    RequestLogger
	skipPaths map[string]bool
}

// RequestLogger receives completed request entries.
type RequestLogger interface {
	LogRequest(entry RequestLogEntry)
}

// RequestLogEntry describes one completed HTTP request.
type RequestLogEntry struct {
	Timestamp     time.Time
	Method        string
	Path          string
	StatusCode    int
	Duration      time.Duration
	RemoteAddr    string
	UserAgent     string
	ContentLength int64
}

// ZapRequestLogger logs request entries through a zap logger. The entry level
// follows the status code: server errors at Error, client errors at Warn,
// everything else at Info.
type ZapRequestLogger struct {
	Logger *zap.Logger
}

// LogRequest implements RequestLogger.
func (z *ZapRequestLogger) LogRequest(entry RequestLogEntry) {
	log := z.Logger
	if log == nil {
		return
	}

	fields := []zap.Field{
		zap.String("method", entry.Method),
		zap.String("path", entry.Path),
		zap.Int("status", entry.StatusCode),
		zap.Duration("duration", entry.Duration.Round(time.Millisecond)),
		zap.String("remote", entry.RemoteAddr),
		zap.Int64("bytes", entry.ContentLength),
	}

	switch {
	case entry.StatusCode >= 500:
		log.Error("http request", fields...)
	case entry.StatusCode >= 400:
		log.Warn("http request", fields...)
	default:
		log.Info("http request", fields...)
	}
}

// NoopLogger discards all entries.
type NoopLogger struct{}

// LogRequest does nothing.
func (NoopLogger) LogRequest(entry RequestLogEntry) {}

// LoggingMiddlewareConfig holds configuration for the LoggingMiddleware.
type LoggingMiddlewareConfig struct {
	// Logger for request entries (default: NoopLogger)
	Logger RequestLogger

	// SkipPaths are exact paths to skip logging, e.g. health checks.
	SkipPaths []string
}

// NewLoggingMiddleware creates a middleware logging through the given zap
// logger.
func NewLoggingMiddleware(logger *zap.Logger) *LoggingMiddleware {
	return NewLoggingMiddlewareWithConfig(LoggingMiddlewareConfig{
		Logger: &ZapRequestLogger{Logger: logger},
	})
}

// NewLoggingMiddlewareWithConfig creates a middleware with explicit
// configuration.
func NewLoggingMiddlewareWithConfig(config LoggingMiddlewareConfig) *LoggingMiddleware {
	if config.Logger == nil {
		config.Logger = NoopLogger{}
	}

	skipPaths := make(map[string]bool)
	for _, path := range config.SkipPaths {
		skipPaths[path] = true
	}

	return &LoggingMiddleware{
		logger:    config.Logger,
		skipPaths: skipPaths,
	}
}

// Handler wraps an http.Handler with request logging.
func (m *LoggingMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.skipPaths[r.URL.Path] {
			next.ServeHTTP(w, r)
			return
		}

		start := time.Now()
		wrapped := &responseWriterWrapper{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		next.ServeHTTP(wrapped, r)

		m.logger.LogRequest(RequestLogEntry{
			Timestamp:     start,
			Method:        r.Method,
			Path:          r.URL.Path,
			StatusCode:    wrapped.statusCode,
			Duration:      time.Since(start),
			RemoteAddr:    getClientIP(r),
			UserAgent:     r.UserAgent(),
			ContentLength: wrapped.bytesWritten,
		})
	})
}

// responseWriterWrapper wraps http.ResponseWriter to capture the status code
// and response size.
type responseWriterWrapper struct {
	http.ResponseWriter
	statusCode   int
	bytesWritten int64
	wroteHeader  bool
}

// WriteHeader captures the status code.
func (w *responseWriterWrapper) WriteHeader(statusCode int) {
	if !w.wroteHeader {
		w.statusCode = statusCode
		w.wroteHeader = true
	}
	w.ResponseWriter.WriteHeader(statusCode)
}

// Write captures the bytes written and ensures the header is written.
func (w *responseWriterWrapper) Write(b []byte) (int, error) {
	if !w.wroteHeader {
		w.WriteHeader(http.StatusOK)
	}
	n, err := w.ResponseWriter.Write(b)
	w.bytesWritten += int64(n)
	return n, err
}

// Flush implements http.Flusher if the underlying writer supports it.
func (w *responseWriterWrapper) Flush() {
	if flusher, ok := w.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}

// getClientIP extracts the client IP, honoring proxy headers.
func getClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		for i := 0; i < len(xff); i++ {
			if xff[i] == ',' {
				return xff[:i]
			}
		}
		return xff
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	return r.RemoteAddr
}
