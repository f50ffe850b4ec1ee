// Package testhelpers provides shared fixtures for package tests.
package testhelpers

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/jonesrussell/gosites/internal/logger"
	"github.com/jonesrussell/gosites/internal/registry"
	"github.com/jonesrussell/gosites/internal/store"
)

// NewTestLogger creates a logger suitable for testing (discards output).
func NewTestLogger() logger.Logger {
	return logger.NewNop()
}

// NewTestRegistry creates a registry over an initialized document in a
// temp directory.
func NewTestRegistry(t *testing.T) (*registry.Registry, *store.FileStore) {
	t.Helper()

	fs := store.New(filepath.Join(t.TempDir(), "config.json"), logger.NewNop())
	if err := fs.Init(registry.SitesKey); err != nil {
		t.Fatalf("init store: %v", err)
	}
	return registry.New(fs, logger.NewNop()), fs
}

// NewWordPressServer fakes the WordPress posts listing endpoint. It accepts
// the credentials admin/x, reports total posts via the X-WP-Total header,
// and serves body as the listing.
func NewWordPressServer(t *testing.T, body, total string) *httptest.Server {
	t.Helper()

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/wp-json/wp/v2/posts" {
			http.NotFound(w, r)
			return
		}
		user, pass, ok := r.BasicAuth()
		if !ok || user != "admin" || pass != "x" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if total != "" {
			w.Header().Set("X-WP-Total", total)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
}
