package webui

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/fstest"
)

func testFS() fstest.MapFS {
	return fstest.MapFS{
		"index.html":     {Data: []byte("<html>studio</html>")},
		"css/studio.css": {Data: []byte("body{}")},
		"js/studio.js":   {Data: []byte("console.log(1)")},
	}
}

func newTestStaticHandler() *StaticAssetHandler {
	return NewStaticAssetHandlerWithFS(testFS(), DefaultStaticAssetConfig())
}

func TestStaticHandler_ServesFilesWithMIMETypes(t *testing.T) {
	h := newTestStaticHandler()

	cases := []struct {
		path     string
		wantType string
		wantBody string
	}{
		{"/static/index.html", "text/html", "<html>studio</html>"},
		{"/static/css/studio.css", "text/css", "body{}"},
		{"/static/js/studio.js", "javascript", "console.log(1)"},
	}

	for _, tc := range cases {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tc.path, nil))
		if rec.Code != http.StatusOK {
			t.Errorf("%s: status = %d", tc.path, rec.Code)
			continue
		}
		if ct := rec.Header().Get("Content-Type"); !strings.Contains(ct, tc.wantType) {
			t.Errorf("%s: content type = %q, want %q", tc.path, ct, tc.wantType)
		}
		if rec.Body.String() != tc.wantBody {
			t.Errorf("%s: body = %q", tc.path, rec.Body.String())
		}
	}
}

func TestStaticHandler_NotFound(t *testing.T) {
	h := newTestStaticHandler()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/static/missing.js", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestStaticHandler_TraversalBlocked(t *testing.T) {
	h := newTestStaticHandler()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/static/css/studio.css", nil)
	req.URL.Path = "/static/../../../etc/passwd"
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestStaticHandler_MethodNotAllowed(t *testing.T) {
	h := newTestStaticHandler()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/static/index.html", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", rec.Code)
	}
}

func TestStaticHandler_CacheHeaders(t *testing.T) {
	config := DefaultStaticAssetConfig()
	config.CacheMaxAge = 120
	h := NewStaticAssetHandlerWithFS(testFS(), config)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/static/css/studio.css", nil))
	if cc := rec.Header().Get("Cache-Control"); cc != "public, max-age=120" {
		t.Errorf("Cache-Control = %q", cc)
	}

	config.EnableCache = false
	h = NewStaticAssetHandlerWithFS(testFS(), config)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/static/css/studio.css", nil))
	if cc := rec.Header().Get("Cache-Control"); !strings.Contains(cc, "no-cache") {
		t.Errorf("Cache-Control = %q, want no-cache", cc)
	}
}

func TestServeApp(t *testing.T) {
	h := newTestStaticHandler()

	rec := httptest.NewRecorder()
	h.ServeApp()(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "studio") {
		t.Errorf("body = %q", rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); !strings.Contains(ct, "text/html") {
		t.Errorf("content type = %q", ct)
	}
}

func TestEmbeddedAssetsPresent(t *testing.T) {
	h := NewStaticAssetHandler(DefaultStaticAssetConfig())

	for _, path := range []string{"/static/index.html", "/static/css/studio.css", "/static/js/studio.js"} {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusOK {
			t.Errorf("%s: status = %d", path, rec.Code)
		}
	}
}
