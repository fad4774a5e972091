// Package webui serves the browser front end and the REST API for the studio.
// This file contains the StaticAssetHandler molecule for embedded assets.
package webui

import (
	"io/fs"
	"mime"
	"net/http"
	"path"
	"path/filepath"
	"strconv"
	"strings"

	"sdstudio/webui/static"
)

// StaticAssetHandler serves embedded static assets with proper MIME type
// detection and cache headers.
type StaticAssetHandler struct {
	fs           fs.FS
	prefix       string
	indexFile    string
	enableCache  bool
	cacheMaxAge  int
	notFoundFunc http.HandlerFunc
}

// StaticAssetConfig configures the StaticAssetHandler.
type StaticAssetConfig struct {
	// Prefix is the URL prefix for static assets (default: "/static")
	Prefix string

	// IndexFile is the file served for directory requests (default: "index.html")
	IndexFile string

	// EnableCache enables cache headers (default: true)
	EnableCache bool

	// CacheMaxAge is the max-age in seconds for cache headers (default: 3600)
	CacheMaxAge int

	// NotFoundFunc is called when a file is not found (default: http.NotFound)
	NotFoundFunc http.HandlerFunc
}

// DefaultStaticAssetConfig returns a default configuration.
func DefaultStaticAssetConfig() StaticAssetConfig {
	return StaticAssetConfig{
		Prefix:      "/static",
		IndexFile:   "index.html",
		EnableCache: true,
		CacheMaxAge: 3600,
	}
}

// NewStaticAssetHandler creates a handler backed by the embedded filesystem.
func NewStaticAssetHandler(config StaticAssetConfig) *StaticAssetHandler {
	if config.Prefix == "" {
		config.Prefix = "/static"
	}
	if config.IndexFile == "" {
		config.IndexFile = "index.html"
	}
	if config.CacheMaxAge == 0 {
		config.CacheMaxAge = 3600
	}

	return &StaticAssetHandler{
		fs:           static.GetFS(),
		prefix:       config.Prefix,
		indexFile:    config.IndexFile,
		enableCache:  config.EnableCache,
		cacheMaxAge:  config.CacheMaxAge,
		notFoundFunc: config.NotFoundFunc,
	}
}

// NewStaticAssetHandlerWithFS creates a handler with a custom filesystem.
// Useful for testing or serving files from disk during development.
func NewStaticAssetHandlerWithFS(fsys fs.FS, config StaticAssetConfig) *StaticAssetHandler {
	h := NewStaticAssetHandler(config)
	h.fs = fsys
	return h
}

// ServeHTTP implements http.Handler for serving static assets.
func (h *StaticAssetHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	urlPath := r.URL.Path
	if h.prefix != "" && strings.HasPrefix(urlPath, h.prefix) {
		urlPath = strings.TrimPrefix(urlPath, h.prefix)
	}

	// Clean the path to prevent directory traversal.
	urlPath = path.Clean("/" + urlPath)
	urlPath = strings.TrimPrefix(urlPath, "/")
	if urlPath == "" || urlPath == "." {
		urlPath = h.indexFile
	}

	file, err := h.fs.Open(urlPath)
	if err != nil {
		h.handleNotFound(w, r)
		return
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil || stat.IsDir() {
		h.handleNotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", h.detectContentType(urlPath))
	if h.enableCache {
		w.Header().Set("Cache-Control", "public, max-age="+strconv.Itoa(h.cacheMaxAge))
	} else {
		w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	}

	data, err := fs.ReadFile(h.fs, urlPath)
	if err != nil {
		h.handleNotFound(w, r)
		return
	}
	w.WriteHeader(http.StatusOK)
	if r.Method != http.MethodHead {
		w.Write(data)
	}
}

// StripPrefix returns a handler that strips the prefix before serving.
func (h *StaticAssetHandler) StripPrefix() http.Handler {
	return http.StripPrefix(h.prefix, h)
}

// detectContentType determines the MIME type based on file extension.
func (h *StaticAssetHandler) detectContentType(filePath string) string {
	ext := filepath.Ext(filePath)
	if ct := mime.TypeByExtension(ext); ct != "" {
		return ct
	}

	switch strings.ToLower(ext) {
	case ".html", ".htm":
		return "text/html; charset=utf-8"
	case ".css":
		return "text/css; charset=utf-8"
	case ".js":
		return "application/javascript; charset=utf-8"
	case ".json":
		return "application/json; charset=utf-8"
	case ".svg":
		return "image/svg+xml"
	case ".png":
		return "image/png"
	case ".ico":
		return "image/x-icon"
	default:
		return "application/octet-stream"
	}
}

func (h *StaticAssetHandler) handleNotFound(w http.ResponseWriter, r *http.Request) {
	if h.notFoundFunc != nil {
		h.notFoundFunc(w, r)
		return
	}
	http.NotFound(w, r)
}

// RegisterRoutes registers the static handler on a ServeMux.
func (h *StaticAssetHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.Handle(h.prefix+"/", h.StripPrefix())
}

// ServeApp returns a handler that serves the studio index page.
func (h *StaticAssetHandler) ServeApp() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data, err := fs.ReadFile(h.fs, h.indexFile)
		if err != nil {
			http.Error(w, "UI not found", http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
		w.WriteHeader(http.StatusOK)
		w.Write(data)
	}
}
