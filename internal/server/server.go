package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"avatar-agent/internal/config"
	"avatar-agent/internal/logger"
)

const shutdownTimeout = 10 * time.Second

// Server runs the API and widget listeners together.
type Server struct {
	api    *http.Server
	widget *http.Server
}

// New builds both HTTP servers from the config.
func New(cfg config.ServerConfig, api *API) *Server {
	return &Server{
		api: &http.Server{
			Addr:    cfg.APIAddr,
			Handler: api.Router(),
		},
		widget: &http.Server{
			Addr:    cfg.WidgetAddr,
			Handler: WidgetRouter(cfg.APIBaseURL),
		},
	}
}

// Run serves until ctx is cancelled or a listener fails, then shuts both
// listeners down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 2)

	go func() {
		logger.Info().Str("addr", s.api.Addr).Msg("API server listening")
		if err := s.api.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	go func() {
		logger.Info().Str("addr", s.widget.Addr).Msg("widget server listening")
		if err := s.widget.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	var runErr error
	select {
	case <-ctx.Done():
	case runErr = <-errCh:
		logger.Error().Err(runErr).Msg("HTTP server failed")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := s.api.Shutdown(shutdownCtx); err != nil {
		logger.Warn().Err(err).Msg("API server shutdown error")
	}
	if err := s.widget.Shutdown(shutdownCtx); err != nil {
		logger.Warn().Err(err).Msg("widget server shutdown error")
	}

	return runErr
}
