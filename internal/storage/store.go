// Package storage persists the inventory snapshot ({"items": [...]}) under the
// "inventory-storage" key so a restarted client resumes with its last list.
package storage

import (
	"context"

	"github.com/micro-nova/inventory-go/internal/models"
)

// Store is the interface for persisting the inventory snapshot.
type Store interface {
	// Load returns the persisted snapshot. A missing or unreadable snapshot
	// yields an empty one, not an error; errors are reserved for an
	// unreachable backing store.
	Load(ctx context.Context) (*models.Snapshot, error)

	// Save replaces the persisted snapshot.
	Save(ctx context.Context, snap *models.Snapshot) error

	// Path describes where the snapshot lives (file path, DSN or key).
	Path() string

	// Close releases any long-lived resources held by the driver.
	Close() error
}
