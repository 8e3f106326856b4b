package db

import (
	"anonmsg/internal/domain" // Store document
	"encoding/json"           // JSON encoding/decoding
	"fmt"                     // Error wrapping
	"os"                      // File operations
	"path/filepath"           // Path manipulation

	"github.com/sirupsen/logrus" // Logging library
)

// FileStore persists the whole store document as a single JSON file.
// Writes go to a temporary file first and are published with an atomic
// rename, so readers never observe a partially written document.
type FileStore struct {
	path string // Canonical store file path
}

// NewFileStore creates the data directory if needed and returns a codec
// for the store file inside it
func NewFileStore(dataDir string) (*FileStore, error) {
	// Make sure the data directory exists
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &FileStore{path: filepath.Join(dataDir, "store.json")}, nil
}

// Path returns the canonical store file path
func (f *FileStore) Path() string {
	return f.path
}

// Load returns the current on-disk state. A missing or unparsable file
// yields a fresh empty store: fail-open is deliberate, not an error.
func (f *FileStore) Load() *domain.Store {
	raw, err := os.ReadFile(f.path) // Read the whole document
	if err != nil {
		return domain.NewStore() // No file yet: start empty
	}
	store := domain.NewStore()
	if err := json.Unmarshal(raw, store); err != nil {
		// Unparsable content: log and start empty rather than crash
		logrus.WithField("path", f.path).Warn("store file unparsable, starting empty")
		return domain.NewStore()
	}
	// Guard against documents written before these fields existed
	if store.Users == nil {
		store.Users = []domain.User{}
	}
	if store.Messages == nil {
		store.Messages = []domain.Message{}
	}
	if store.Tokens == nil {
		store.Tokens = map[string]int{}
	}
	return store
}

// Save atomically replaces the on-disk state. On any failure the
// previous valid file survives untouched.
func (f *FileStore) Save(store *domain.Store) error {
	raw, err := json.Marshal(store) // Serialize the full document
	if err != nil {
		return fmt.Errorf("marshal store: %w", err)
	}
	tmp := f.path + ".tmp" // Scratch path next to the canonical file
	if err := os.WriteFile(tmp, raw, 0o600); err != nil {
		return fmt.Errorf("write store: %w", err)
	}
	// Atomic publish over the canonical path
	if err := os.Rename(tmp, f.path); err != nil {
		return fmt.Errorf("replace store: %w", err)
	}
	return nil
}
