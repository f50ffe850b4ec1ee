// Package bootstrap handles application initialization and lifecycle
// management for the gosites service.
package bootstrap

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/jonesrussell/gosites/internal/logger"
	"github.com/jonesrussell/gosites/internal/registry"
)

const version = "dev"

// Start initializes and starts the gosites application.
func Start() error {
	// Phase 1: Load config and create logger
	cfg, err := LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log, err := CreateLogger(cfg, version)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Phase 2: Setup document store and registry
	fileStore, err := SetupStore(cfg, log)
	if err != nil {
		return fmt.Errorf("failed to set up store: %w", err)
	}
	reg := registry.New(fileStore, log)

	if cfg.Store.WatchEnabled {
		go watchStore(ctx, fileStore, log)
	}

	// Phase 3: Setup event publisher (optional)
	publisher := SetupEventPublisher(cfg, log)

	// Phase 4: Setup and run HTTP server
	server := SetupHTTPServer(cfg, reg, publisher, log)

	log.Info("Starting HTTP server",
		logger.String("host", cfg.Server.Host),
		logger.Int("port", cfg.Server.Port),
	)

	if runErr := server.Run(ctx); runErr != nil {
		log.Error("Server error", logger.Error(runErr))
		return fmt.Errorf("server error: %w", runErr)
	}

	log.Info("Server exited")
	return nil
}
