// Package api serves the stack registry over HTTP. It owns stack id
// generation and the mapping from registry errors to status codes.
package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/example/rpnd/internal/calc"
	"github.com/example/rpnd/internal/logging"
	"github.com/example/rpnd/internal/metrics"
)

// Config holds the listener settings for Server.
type Config struct {
	Addr              string
	ReadHeaderTimeout time.Duration
	ShutdownTimeout   time.Duration
	MaxBodyBytes      int64
	// MetricsPath mounts the Prometheus handler when Metrics is set.
	MetricsPath string
}

// Server exposes a calc.Registry over HTTP.
type Server struct {
	cfg      Config
	registry *calc.Registry
	logger   *slog.Logger
	metrics  *metrics.Metrics
	ids      *idGenerator

	handler    http.Handler
	httpServer *http.Server
}

// Option customizes a Server.
type Option func(*Server)

// WithMetrics records request and operation metrics and serves them on
// Config.MetricsPath.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Server) { s.metrics = m }
}

// NewServer wires routes for registry. The registry is owned by the caller.
func NewServer(cfg Config, registry *calc.Registry, logger *slog.Logger, opts ...Option) (*Server, error) {
	if registry == nil {
		return nil, fmt.Errorf("api server requires a registry")
	}
	if logger == nil {
		logger = logging.NewLogger(nil, logging.LevelInfo)
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = 1 << 20
	}
	if cfg.ReadHeaderTimeout <= 0 {
		cfg.ReadHeaderTimeout = 5 * time.Second
	}

	s := &Server{
		cfg:      cfg,
		registry: registry,
		logger:   logger,
		ids:      newIDGenerator(),
	}
	for _, opt := range opts {
		opt(s)
	}

	mux := http.NewServeMux()
	s.routes(mux)
	s.handler = s.instrument(mux)
	s.httpServer = &http.Server{
		Addr:              cfg.Addr,
		Handler:           s.handler,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		ErrorLog:          logging.StdLogger(logger, "http"),
	}
	return s, nil
}

// Handler returns the instrumented route handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Run listens on the configured address and serves until ctx is cancelled,
// then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	if strings.TrimSpace(s.cfg.Addr) == "" {
		return fmt.Errorf("listen address is required")
	}
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.cfg.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve is Run with a caller-provided listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("rpn service listening", "addr", ln.Addr().String())
		errCh <- s.httpServer.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	timeout := s.cfg.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	s.logger.Info("shutting down rpn service", "timeout", timeout)
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	s.logger.Debug("rpn service stopped")
	return nil
}
