package webui

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

// recordingLogger captures entries for assertions.
type recordingLogger struct {
	entries []RequestLogEntry
}

func (r *recordingLogger) LogRequest(entry RequestLogEntry) {
	r.entries = append(r.entries, entry)
}

func TestLoggingMiddleware_CapturesStatusAndSize(t *testing.T) {
	logger := &recordingLogger{}
	mw := NewLoggingMiddlewareWithConfig(LoggingMiddlewareConfig{Logger: logger})

	handler := mw.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte("created"))
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/generate/txt2img", nil))

	if len(logger.entries) != 1 {
		t.Fatalf("logged %d entries, want 1", len(logger.entries))
	}
	entry := logger.entries[0]
	if entry.StatusCode != http.StatusCreated {
		t.Errorf("status = %d, want 201", entry.StatusCode)
	}
	if entry.ContentLength != int64(len("created")) {
		t.Errorf("bytes = %d", entry.ContentLength)
	}
	if entry.Method != http.MethodPost || entry.Path != "/api/generate/txt2img" {
		t.Errorf("unexpected entry: %+v", entry)
	}
	if entry.Duration < 0 {
		t.Errorf("negative duration: %v", entry.Duration)
	}
}

func TestLoggingMiddleware_ImplicitOKStatus(t *testing.T) {
	logger := &recordingLogger{}
	mw := NewLoggingMiddlewareWithConfig(LoggingMiddlewareConfig{Logger: logger})

	handler := mw.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if logger.entries[0].StatusCode != http.StatusOK {
		t.Errorf("status = %d, want implicit 200", logger.entries[0].StatusCode)
	}
}

func TestLoggingMiddleware_SkipPaths(t *testing.T) {
	logger := &recordingLogger{}
	mw := NewLoggingMiddlewareWithConfig(LoggingMiddlewareConfig{
		Logger:    logger,
		SkipPaths: []string{"/health"},
	})

	handler := mw.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	for _, path := range []string{"/health", "/api/status"} {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	}

	if len(logger.entries) != 1 {
		t.Fatalf("logged %d entries, want 1", len(logger.entries))
	}
	if logger.entries[0].Path != "/api/status" {
		t.Errorf("logged path = %q", logger.entries[0].Path)
	}
}

func TestLoggingMiddleware_Timestamp(t *testing.T) {
	logger := &recordingLogger{}
	mw := NewLoggingMiddlewareWithConfig(LoggingMiddlewareConfig{Logger: logger})

	before := time.Now()
	handler := mw.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	after := time.Now()

	ts := logger.entries[0].Timestamp
	if ts.Before(before) || ts.After(after) {
		t.Errorf("timestamp %v outside [%v, %v]", ts, before, after)
	}
}

func TestGetClientIP(t *testing.T) {
	cases := []struct {
		name    string
		headers map[string]string
		remote  string
		want    string
	}{
		{"remote addr only", nil, "10.0.0.1:1234", "10.0.0.1:1234"},
		{"x-forwarded-for single", map[string]string{"X-Forwarded-For": "1.2.3.4"}, "10.0.0.1:1234", "1.2.3.4"},
		{"x-forwarded-for list", map[string]string{"X-Forwarded-For": "1.2.3.4, 5.6.7.8"}, "10.0.0.1:1234", "1.2.3.4"},
		{"x-real-ip", map[string]string{"X-Real-IP": "9.9.9.9"}, "10.0.0.1:1234", "9.9.9.9"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tc.remote
			for k, v := range tc.headers {
				req.Header.Set(k, v)
			}
			if got := getClientIP(req); got != tc.want {
				t.Errorf("getClientIP = %q, want %q", got, tc.want)
			}
		})
	}
}
