package store

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
)

// Compile-time interface check.
var _ WatchlistStore = (*FileStore)(nil)

// FileStore implements WatchlistStore as a single JSON file holding the
// array of event IDs. It exists for setups where a database file is
// unwanted; semantics match SQLiteStore.
type FileStore struct {
	Path string
}

// NewFileStore creates a FileStore persisting to the given path.
func NewFileStore(path string) *FileStore {
	return &FileStore{Path: path}
}

// Load reads the persisted IDs. A missing file or malformed JSON yields an
// empty slice, not an error.
func (s *FileStore) Load(_ context.Context) ([]string, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		return nil, nil
	}
	return ids, nil
}

// Save writes the full ID set as a JSON array, creating parent directories
// as needed.
func (s *FileStore) Save(_ context.Context, ids []string) error {
	if ids == nil {
		ids = []string{}
	}
	data, err := json.Marshal(ids)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.Path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(s.Path, data, 0o644)
}
