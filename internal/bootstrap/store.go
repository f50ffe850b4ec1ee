package bootstrap

import (
	"context"
	"fmt"

	"github.com/jonesrussell/gosites/internal/config"
	"github.com/jonesrussell/gosites/internal/logger"
	"github.com/jonesrussell/gosites/internal/registry"
	"github.com/jonesrussell/gosites/internal/store"
)

// SetupStore opens the shared config document and creates it with an empty
// site collection when it does not exist yet.
func SetupStore(cfg *config.Config, log logger.Logger) (*store.FileStore, error) {
	fileStore := store.New(cfg.Store.Path, log)
	if err := fileStore.Init(registry.SitesKey); err != nil {
		return nil, fmt.Errorf("init document %s: %w", cfg.Store.Path, err)
	}

	log.Info("Config document ready",
		logger.String("path", cfg.Store.Path),
	)
	return fileStore, nil
}

// watchStore logs external edits to the document until ctx is canceled.
// The registry re-reads the document on every operation, so an external
// edit needs no cache invalidation, only visibility.
func watchStore(ctx context.Context, fileStore *store.FileStore, log logger.Logger) {
	err := fileStore.Watch(ctx, func() {
		log.Info("Config document changed on disk",
			logger.String("path", fileStore.Path()),
		)
	})
	if err != nil {
		log.Warn("Document watcher stopped",
			logger.Error(err),
		)
	}
}
