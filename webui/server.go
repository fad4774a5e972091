// Package webui serves the browser front end and the REST API for the studio.
// This file contains the WebUIServer organism that wires together the web
// components.
package webui

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// WebUIServer is the HTTP server for the studio. It wires together:
//   - StaticAssetHandler for the embedded front end
//   - LoggingMiddleware for request logging
//   - StudioAPI for the REST endpoints
type WebUIServer struct {
	httpServer    *http.Server
	mux           *http.ServeMux
	config        ServerConfig
	logger        *zap.Logger
	loggingMw     *LoggingMiddleware
	api           *StudioAPI
	staticHandler *StaticAssetHandler
}

// ServerConfig configures the WebUIServer.
type ServerConfig struct {
	// Port to listen on (default: 7860)
	Port int

	// Host to bind to (default: "127.0.0.1")
	Host string

	// ReadTimeout for HTTP requests (default: 30s)
	ReadTimeout time.Duration

	// WriteTimeout for HTTP responses. Generation requests block while the
	// engine runs, so this must exceed the generation timeout (default: 10m).
	WriteTimeout time.Duration

	// IdleTimeout for keep-alive connections (default: 120s)
	IdleTimeout time.Duration

	// ShutdownTimeout for graceful shutdown (default: 30s)
	ShutdownTimeout time.Duration

	// StaticConfig for the static asset handler
	StaticConfig StaticAssetConfig

	// LogSkipPaths are paths excluded from request logging
	LogSkipPaths []string
}

// DefaultServerConfig returns a ServerConfig with sensible defaults.
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Port:            7860,
		Host:            "127.0.0.1",
		ReadTimeout:     30 * time.Second,
		WriteTimeout:    10 * time.Minute,
		IdleTimeout:     120 * time.Second,
		ShutdownTimeout: 30 * time.Second,
		StaticConfig:    DefaultStaticAssetConfig(),
		LogSkipPaths:    []string{"/health", "/api/status"},
	}
}

// NewServer creates a WebUIServer serving the given API.
func NewServer(config ServerConfig, api *StudioAPI, logger *zap.Logger) *WebUIServer {
	if logger == nil {
		logger = zap.NewNop()
	}

	mux := http.NewServeMux()
	staticHandler := NewStaticAssetHandler(config.StaticConfig)
	loggingMw := NewLoggingMiddlewareWithConfig(LoggingMiddlewareConfig{
		Logger:    &ZapRequestLogger{Logger: logger},
		SkipPaths: config.LogSkipPaths,
	})

	server := &WebUIServer{
		mux:           mux,
		config:        config,
		logger:        logger,
		loggingMw:     loggingMw,
		api:           api,
		staticHandler: staticHandler,
	}
	server.setupRoutes()

	addr := fmt.Sprintf("%s:%d", config.Host, config.Port)
	server.httpServer = &http.Server{
		Addr:         addr,
		Handler:      server.rootHandler(),
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
		IdleTimeout:  config.IdleTimeout,
	}

	logger.Info("web server created", zap.String("addr", addr))
	return server
}

// setupRoutes configures all HTTP routes.
func (s *WebUIServer) setupRoutes() {
	s.mux.HandleFunc("/health", s.handleHealth)
	s.staticHandler.RegisterRoutes(s.mux)
	s.api.RegisterRoutes(s.mux)
	s.mux.HandleFunc("/", s.handleRoot)
}

// rootHandler wraps the mux with middleware.
func (s *WebUIServer) rootHandler() http.Handler {
	return s.loggingMw.Handler(s.mux)
}

// handleRoot serves the studio UI at the root path.
func (s *WebUIServer) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	s.staticHandler.ServeApp()(w, r)
}

// handleHealth handles health check requests.
func (s *WebUIServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}

// Start begins listening for HTTP requests. It blocks until the server is
// shut down.
func (s *WebUIServer) Start() error {
	s.logger.Info("web server starting", zap.String("addr", s.httpServer.Addr))

	err := s.httpServer.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server error: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server.
func (s *WebUIServer) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down web server")

	shutdownCtx, cancel := context.WithTimeout(ctx, s.config.ShutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown error: %w", err)
	}

	s.logger.Info("web server stopped")
	return nil
}

// Addr returns the server's listen address.
func (s *WebUIServer) Addr() string {
	return s.httpServer.Addr
}

// Handler returns the fully wired root handler, for tests.
func (s *WebUIServer) Handler() http.Handler {
	return s.httpServer.Handler
}
