package store

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/jonesrussell/gosites/internal/logger"
)

// Watch invokes onChange whenever the document is rewritten on disk,
// including replacements via rename (which is how Write lands). It watches
// the parent directory because editors and atomic writers swap the file out
// rather than modifying it in place. Watch blocks until ctx is canceled.
func (s *FileStore) Watch(ctx context.Context, onChange func()) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	dir := filepath.Dir(s.path)
	if addErr := watcher.Add(dir); addErr != nil {
		return fmt.Errorf("watch %s: %w", dir, addErr)
	}

	target := filepath.Clean(s.path)
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			s.logger.Debug("Config document changed on disk",
				logger.String("path", s.path),
				logger.String("op", event.Op.String()),
			)
			onChange()
		case watchErr, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			s.logger.Warn("Document watcher error",
				logger.Error(watchErr),
			)
		}
	}
}
