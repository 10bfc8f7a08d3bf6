// Package server exposes the docfill engine over HTTP.
//
// Routes:
//
//	POST /process   fill an uploaded DOCX template
//	GET  /healthz   liveness probe
//	GET  /metrics   Prometheus exposition
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/benjaminschreck/docfill/pkg/docfill"
)

const shutdownTimeout = 10 * time.Second

// Server serves fill requests with a shared engine
type Server struct {
	engine   *docfill.Engine
	logger   *docfill.Logger
	metrics  *Metrics
	override func(*docfill.Config)
}

// Option configures a Server
type Option func(*Server)

// WithLogger sets the logger requests are logged with
func WithLogger(logger *docfill.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithMetrics sets the metrics the server records to
func WithMetrics(metrics *Metrics) Option {
	return func(s *Server) {
		s.metrics = metrics
	}
}

// WithConfigOverride registers a function applied to every configuration
// loaded by ReloadConfig, after the file and the environment. Command line
// flags use it to keep precedence across reloads.
func WithConfigOverride(fn func(*docfill.Config)) Option {
	return func(s *Server) {
		s.override = fn
	}
}

// New creates a server around engine
func New(engine *docfill.Engine, opts ...Option) *Server {
	s := &Server{engine: engine}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = docfill.GetLogger()
	}
	if s.metrics == nil {
		s.metrics = NewMetrics()
	}
	return s
}

// Metrics returns the metrics the server records to
func (s *Server) Metrics() *Metrics {
	return s.metrics
}

// Handler returns the HTTP handler of the server
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})
	r.Method(http.MethodGet, "/metrics", s.metrics.Handler())
	r.Post("/process", s.handleProcess)

	return otelhttp.NewHandler(r, "docfill")
}

// ListenAndServe serves on the configured address until ctx is cancelled,
// then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	cfg := s.engine.Config().Server

	httpServer := &http.Server{
		Addr:         cfg.Addr,
		Handler:      s.Handler(),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	listener, err := net.Listen("tcp", cfg.Addr)
	if err != nil {
		return fmt.Errorf("failed to bind %s: %w", cfg.Addr, err)
	}
	s.logger.WithField("addr", listener.Addr().String()).Info("server listening")

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.Serve(listener)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		s.logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	}
}

// ReloadConfig loads the configuration at path and swaps it into the
// engine. On failure the running configuration is kept.
func (s *Server) ReloadConfig(path string) error {
	config, err := docfill.LoadConfig(path)
	if err == nil && s.override != nil {
		s.override(config)
	}
	if err == nil {
		err = s.engine.SetConfig(config)
	}
	if err != nil {
		s.metrics.RecordConfigReload("failure")
		return docfill.WithContext(err, "reload config", map[string]interface{}{"path": path})
	}

	s.logger.SetLevel(docfill.ParseLogLevel(config.LogLevel))
	s.metrics.RecordConfigReload("success")
	return nil
}
