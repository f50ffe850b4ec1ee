// Package store persists the shared configuration document.
//
// The document is a single JSON object shared with other parts of the
// application; the store exposes it whole, and top-level keys it does not
// understand pass through a read/write round-trip with their values intact.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/jonesrussell/gosites/internal/logger"
)

var (
	// ErrDocumentMissing is wrapped when the document file does not exist.
	ErrDocumentMissing = errors.New("config document missing")
	// ErrDocumentInvalid is wrapped when the document cannot be parsed.
	ErrDocumentInvalid = errors.New("config document invalid")
)

// Document is the whole persisted configuration object. Values stay raw so
// keys owned by other subsystems survive untouched.
type Document map[string]json.RawMessage

// FileStore reads and writes the document at a fixed path. All file I/O is
// serialized through an internal mutex.
type FileStore struct {
	path   string
	logger logger.Logger
	mu     sync.Mutex
}

// New creates a store for the document at path.
func New(path string, log logger.Logger) *FileStore {
	return &FileStore{
		path:   path,
		logger: log,
	}
}

// Path returns the document location.
func (s *FileStore) Path() string {
	return s.path
}

// Read loads and parses the document. A missing file wraps
// ErrDocumentMissing; unparsable content wraps ErrDocumentInvalid. The
// store never substitutes a default document on read.
func (s *FileStore) Read() (Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrDocumentMissing, s.path)
	}
	if err != nil {
		return nil, fmt.Errorf("read document %s: %w", s.path, err)
	}

	var doc Document
	if unmarshalErr := json.Unmarshal(raw, &doc); unmarshalErr != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrDocumentInvalid, s.path, unmarshalErr)
	}
	return doc, nil
}

// Write persists the document atomically: it is marshaled to a temp file in
// the target directory, synced, then renamed over the target. Readers never
// observe a half-written document.
func (s *FileStore) Write(doc Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal document: %w", err)
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp document: %w", err)
	}
	tmpName := tmp.Name()

	if _, writeErr := tmp.Write(data); writeErr != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp document: %w", writeErr)
	}
	if syncErr := tmp.Sync(); syncErr != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("sync temp document: %w", syncErr)
	}
	if closeErr := tmp.Close(); closeErr != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp document: %w", closeErr)
	}

	if renameErr := os.Rename(tmpName, s.path); renameErr != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace document %s: %w", s.path, renameErr)
	}
	return nil
}

// Init creates the document with an empty sites collection when it does not
// exist yet. This is the explicit "no sites yet" fallback; Read itself never
// defaults.
func (s *FileStore) Init(sitesKey string) error {
	_, err := s.Read()
	if err == nil {
		return nil
	}
	if !errors.Is(err, ErrDocumentMissing) {
		return err
	}

	if mkdirErr := os.MkdirAll(filepath.Dir(s.path), 0o755); mkdirErr != nil {
		return fmt.Errorf("create document directory: %w", mkdirErr)
	}

	doc := Document{sitesKey: json.RawMessage("[]")}
	if writeErr := s.Write(doc); writeErr != nil {
		return writeErr
	}

	s.logger.Info("Initialized config document",
		logger.String("path", s.path),
	)
	return nil
}
