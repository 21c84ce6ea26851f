package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/micro-nova/inventory-go/internal/models"
)

const jsonFileName = models.StorageKey + ".json"

// JSONStore keeps the snapshot in <dir>/inventory-storage.json.
// Every Save writes a temp file and renames it into place, so readers never
// observe a half-written snapshot.
type JSONStore struct {
	mu   sync.Mutex
	path string
}

// NewJSONStore creates a JSON store in the given state directory.
func NewJSONStore(dir string) *JSONStore {
	return &JSONStore{
		path: filepath.Join(dir, jsonFileName),
	}
}

// Path returns the file path used by this store.
func (s *JSONStore) Path() string { return s.path }

// Load reads the snapshot from disk. Returns an empty snapshot on ENOENT or
// parse errors.
func (s *JSONStore) Load(_ context.Context) (*models.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			empty := models.EmptySnapshot()
			return &empty, nil
		}
		return nil, fmt.Errorf("storage: read %s: %w", s.path, err)
	}
	return decodeSnapshot(data, s.path), nil
}

// Save writes the snapshot to disk before returning.
func (s *JSONStore) Save(_ context.Context, snap *models.Snapshot) error {
	data, err := encodeSnapshot(snap)
	if err != nil {
		return fmt.Errorf("storage: encode snapshot: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writeAtomic(data)
}

// Close is a no-op; the file is only held open during Save.
func (s *JSONStore) Close() error { return nil }

func (s *JSONStore) writeAtomic(data []byte) (retErr error) {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("storage: create %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, jsonFileName+".*.tmp")
	if err != nil {
		return fmt.Errorf("storage: create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		if retErr != nil {
			_ = tmp.Close()
			_ = os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("storage: write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("storage: sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("storage: close temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, 0644); err != nil {
		return fmt.Errorf("storage: chmod temp file: %w", err)
	}
	// Rename is atomic on the same filesystem.
	if err := os.Rename(tmpPath, s.path); err != nil {
		return fmt.Errorf("storage: replace %s: %w", s.path, err)
	}
	return nil
}

var _ Store = (*JSONStore)(nil)
