// Package registry implements CRUD over the site collection inside the
// shared config document.
package registry

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/jonesrussell/gosites/internal/logger"
	"github.com/jonesrussell/gosites/internal/models"
	"github.com/jonesrussell/gosites/internal/store"
)

// SitesKey is the top-level document key holding the site collection.
const SitesKey = "wordpress_sites"

// ErrStore is wrapped by every registry failure caused by the underlying
// document store.
var ErrStore = errors.New("site registry store failure")

// Store is the document store contract the registry needs.
type Store interface {
	Read() (store.Document, error)
	Write(store.Document) error
}

// Registry performs list/upsert/delete over the site collection. A single
// mutex covers each full read-modify-write cycle so concurrent mutations
// cannot drop each other's changes or corrupt unrelated document keys.
type Registry struct {
	store  Store
	logger logger.Logger
	mu     sync.Mutex
}

// New creates a registry over the given store.
func New(s Store, log logger.Logger) *Registry {
	return &Registry{
		store:  s,
		logger: log,
	}
}

// List returns the site collection as stored. An absent sites key is an
// empty collection, not an error; only a store read failure fails.
func (r *Registry) List() ([]models.Site, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, sites, err := r.load()
	if err != nil {
		return nil, err
	}
	return sites, nil
}

// Upsert inserts the site or replaces the record sharing its URL, keeping
// the replaced record's position. The updated collection is persisted
// before returning. The bool reports whether a new record was created.
func (r *Registry) Upsert(site models.Site) ([]models.Site, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	site.Normalize()

	doc, sites, err := r.load()
	if err != nil {
		return nil, false, err
	}

	created := true
	for i := range sites {
		if sites[i].URL == site.URL {
			sites[i] = site
			created = false
			break
		}
	}
	if created {
		sites = append(sites, site)
	}

	if writeErr := r.save(doc, sites); writeErr != nil {
		return nil, false, writeErr
	}

	r.logger.Info("Site upserted",
		logger.String("url", site.URL),
		logger.Bool("created", created),
	)
	return sites, created, nil
}

// Delete removes all records matching url. Deleting an absent URL is a
// successful no-op, and nothing is written back in that case. The bool
// reports whether anything was removed.
func (r *Registry) Delete(url string) ([]models.Site, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	url = models.NormalizeURL(url)

	doc, sites, err := r.load()
	if err != nil {
		return nil, false, err
	}

	kept := sites[:0:0]
	for _, s := range sites {
		if s.URL != url {
			kept = append(kept, s)
		}
	}
	if kept == nil {
		kept = []models.Site{}
	}

	if len(kept) == len(sites) {
		return kept, false, nil
	}

	if writeErr := r.save(doc, kept); writeErr != nil {
		return nil, false, writeErr
	}

	r.logger.Info("Site deleted",
		logger.String("url", url),
	)
	return kept, true, nil
}

// load reads the document and decodes the site collection. Callers hold the
// registry mutex.
func (r *Registry) load() (store.Document, []models.Site, error) {
	doc, err := r.store.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("%w: read: %w", ErrStore, err)
	}

	raw, ok := doc[SitesKey]
	if !ok {
		return doc, []models.Site{}, nil
	}

	var sites []models.Site
	if unmarshalErr := json.Unmarshal(raw, &sites); unmarshalErr != nil {
		return nil, nil, fmt.Errorf("%w: decode %s: %w", ErrStore, SitesKey, unmarshalErr)
	}
	if sites == nil {
		sites = []models.Site{}
	}
	return doc, sites, nil
}

// save replaces the site collection in the document and writes the whole
// document back; every other key is carried as read.
func (r *Registry) save(doc store.Document, sites []models.Site) error {
	raw, err := json.Marshal(sites)
	if err != nil {
		return fmt.Errorf("%w: encode %s: %w", ErrStore, SitesKey, err)
	}

	doc[SitesKey] = raw
	if writeErr := r.store.Write(doc); writeErr != nil {
		return fmt.Errorf("%w: write: %w", ErrStore, writeErr)
	}
	return nil
}
