package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/jonesrussell/gosites/internal/api"
	"github.com/jonesrussell/gosites/internal/config"
	"github.com/jonesrussell/gosites/internal/events"
	"github.com/jonesrussell/gosites/internal/handlers"
	"github.com/jonesrussell/gosites/internal/logger"
	"github.com/jonesrussell/gosites/internal/metadata"
	"github.com/jonesrussell/gosites/internal/probe"
	"github.com/jonesrussell/gosites/internal/registry"
)

const shutdownTimeout = 10 * time.Second

// Server wraps the HTTP server with graceful shutdown.
type Server struct {
	httpServer *http.Server
	logger     logger.Logger
}

// SetupHTTPServer creates and configures the HTTP server.
func SetupHTTPServer(
	cfg *config.Config,
	reg *registry.Registry,
	publisher *events.Publisher,
	log logger.Logger,
) *Server {
	checker := probe.NewChecker(log,
		probe.WithTimeout(cfg.Probe.Timeout),
		probe.WithMaxConcurrent(cfg.Probe.MaxConcurrent),
	)
	extractor := metadata.NewExtractor(log)
	handler := handlers.NewSiteHandler(reg, checker, extractor, publisher, log)
	router := api.NewRouter(handler, cfg.Server.CORSOrigins, log)

	return &Server{
		httpServer: &http.Server{
			Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
			Handler:      router,
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
		},
		logger: log,
	}
}

// Run serves until ctx is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down HTTP server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return <-errCh
}
