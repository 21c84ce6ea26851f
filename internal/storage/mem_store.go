package storage

import (
	"context"
	"sync"

	"github.com/micro-nova/inventory-go/internal/models"
)

// MemStore is an in-memory Store for tests that never writes to disk.
type MemStore struct {
	mu    sync.Mutex
	snap  *models.Snapshot
	saves int
}

// NewMemStore returns an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{}
}

// NewMemStoreWith returns an in-memory store pre-seeded with items.
func NewMemStoreWith(items ...models.Item) *MemStore {
	snap := models.Snapshot{Items: append([]models.Item{}, items...)}
	return &MemStore{snap: &snap}
}

// Load returns a copy of the stored snapshot, or an empty one if nothing has
// been saved yet.
func (m *MemStore) Load(_ context.Context) (*models.Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.snap == nil {
		empty := models.EmptySnapshot()
		return &empty, nil
	}
	cp := m.snap.DeepCopy()
	return &cp, nil
}

// Save stores a deep copy of the given snapshot in memory.
func (m *MemStore) Save(_ context.Context, snap *models.Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := snap.DeepCopy()
	m.snap = &cp
	m.saves++
	return nil
}

// Saves returns how many times Save has been called.
func (m *MemStore) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}

// Path returns ":memory:" to indicate this is an in-memory store.
func (m *MemStore) Path() string { return ":memory:" }

// Close is a no-op for in-memory stores.
func (m *MemStore) Close() error { return nil }

var _ Store = (*MemStore)(nil)
