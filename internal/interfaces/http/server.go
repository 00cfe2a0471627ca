package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/civitas-ai/opinionspace/internal/config"
	"github.com/civitas-ai/opinionspace/internal/infrastructure/monitoring/logging"
)

// Server wraps http.Server with graceful lifecycle handling.
type Server struct {
	srv    *http.Server
	cfg    config.ServerConfig
	logger logging.Logger
}

// NewServer builds a server around the given handler.
func NewServer(cfg config.ServerConfig, handler http.Handler, log logging.Logger) *Server {
	return &Server{
		cfg:    cfg,
		logger: log.Named("http-server"),
		srv: &http.Server{
			Addr:         fmt.Sprintf(":%d", cfg.Port),
			Handler:      handler,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
			IdleTimeout:  cfg.IdleTimeout,
		},
	}
}

// Start blocks serving requests until Stop or a listener error.
func (s *Server) Start() error {
	s.logger.Info("HTTP server listening", logging.Int("port", s.cfg.Port))
	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

// Stop drains in-flight requests within the configured shutdown timeout.
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(ctx, s.cfg.ShutdownTimeout)
	defer cancel()

	if err := s.srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	s.logger.Info("HTTP server stopped")
	return nil
}

// Handler exposes the underlying handler for tests.
func (s *Server) Handler() http.Handler {
	return s.srv.Handler
}
