package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"

	"github.com/instatodoist/instant-todos-server/internal/config"
)

// Server wraps the HTTP listener with the configured timeouts.
type Server struct {
	srv    *http.Server
	logger *otelzap.Logger
}

func NewServer(cfg config.HTTPConfig, router *gin.Engine, logger *otelzap.Logger) *Server {
	return &Server{
		srv: &http.Server{
			Addr:         ":" + cfg.Port,
			Handler:      router,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
			IdleTimeout:  cfg.IdleTimeout,
		},
		logger: logger,
	}
}

// Run blocks until the listener fails or is shut down.
func (s *Server) Run() error {
	s.logger.Info("Server starting", zap.String("addr", s.srv.Addr))

	if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}

	return nil
}

// Shutdown drains in-flight requests until ctx expires.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Server shutting down")
	return s.srv.Shutdown(ctx)
}
