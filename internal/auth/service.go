// Package auth guards the local bridge with access keys read from
// <state dir>/access-keys.json. With no keys configured the bridge is open.
package auth

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/micro-nova/inventory-go/internal/storage"
)

const keysFileName = "access-keys.json"

// Key is one named access key.
type Key struct {
	AccessKey string `json:"access_key"`
	Created   string `json:"created,omitempty"`
}

// Service holds the current key set and reloads it when the file changes.
type Service struct {
	mu     sync.RWMutex
	path   string
	keys   map[string]Key
	cancel context.CancelFunc
}

// NewService loads the keys in dir and watches the file for changes. An
// empty dir means open mode with no watcher.
func NewService(dir string) (*Service, error) {
	s := &Service{keys: make(map[string]Key)}
	if dir == "" {
		return s, nil
	}
	s.path = filepath.Join(dir, keysFileName)

	if err := s.Reload(); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	err := storage.Watch(ctx, s.path, func() {
		if err := s.Reload(); err != nil {
			slog.Warn("auth: failed to reload access keys", "err", err)
		}
	})
	if err != nil {
		slog.Warn("auth: could not watch access keys", "err", err)
	}
	return s, nil
}

// Path returns the key file location, or "" in open mode.
func (s *Service) Path() string { return s.path }

// Reload re-reads the key file. A missing file clears every key.
func (s *Service) Reload() error {
	if s.path == "" {
		return nil
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			s.mu.Lock()
			s.keys = make(map[string]Key)
			s.mu.Unlock()
			return nil
		}
		return err
	}

	var keys map[string]Key
	if err := json.Unmarshal(data, &keys); err != nil {
		return err
	}
	if keys == nil {
		keys = make(map[string]Key)
	}

	s.mu.Lock()
	s.keys = keys
	s.mu.Unlock()
	slog.Debug("auth: reloaded access keys", "count", len(keys))
	return nil
}

// IsOpenMode reports whether no non-empty key is configured.
func (s *Service) IsOpenMode() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, k := range s.keys {
		if k.AccessKey != "" {
			return false
		}
	}
	return true
}

// VerifyKey reports whether key matches a configured access key, using a
// constant-time comparison. The empty key never matches.
func (s *Service) VerifyKey(key string) bool {
	if key == "" {
		return false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, k := range s.keys {
		if subtle.ConstantTimeCompare([]byte(key), []byte(k.AccessKey)) == 1 {
			return true
		}
	}
	return false
}

// Close stops the file watcher.
func (s *Service) Close() {
	if s.cancel != nil {
		s.cancel()
	}
}
