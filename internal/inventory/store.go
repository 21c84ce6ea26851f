// Package inventory implements the client-side inventory state store: the
// single source of truth for the items mirrored from the backend, plus the
// loading and error flags the UI renders.
package inventory

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/micro-nova/inventory-go/internal/backend"
	"github.com/micro-nova/inventory-go/internal/events"
	"github.com/micro-nova/inventory-go/internal/models"
	"github.com/micro-nova/inventory-go/internal/storage"
)

// Failure messages stored in State.Error.
const (
	MsgFetchFailed  = "Failed to fetch items"
	MsgAddFailed    = "Failed to add item"
	MsgUpdateFailed = "Failed to update item"
	MsgDeleteFailed = "Failed to delete item"
)

// ErrClosed is returned by mutators called after Close.
var ErrClosed = errors.New("inventory: store closed")

// StateStore holds the inventory state. Mutators run one at a time: each
// flips loading on, makes one backend call, then folds the result (or the
// failure message) into the state. Every transition is published on the bus
// and every change to the items is saved to the storage driver.
type StateStore struct {
	opMu sync.Mutex // serialises mutators

	mu      sync.RWMutex
	state   models.State
	backend backend.Backend
	store   storage.Store
	bus     *events.Bus
	closed  bool
}

// New creates a StateStore seeded from the persisted snapshot. An unreadable
// or unreachable store is logged and yields an empty list. A nil bus gets a
// private one.
func New(ctx context.Context, b backend.Backend, store storage.Store, bus *events.Bus) (*StateStore, error) {
	if b == nil {
		return nil, errors.New("inventory: backend is required")
	}
	if store == nil {
		return nil, errors.New("inventory: storage is required")
	}
	if bus == nil {
		bus = events.NewBus()
	}

	state := models.EmptyState()
	snap, err := store.Load(ctx)
	switch {
	case err != nil:
		slog.Warn("inventory: could not load snapshot, starting empty", "path", store.Path(), "err", err)
	case snap != nil && snap.Items != nil:
		state.Items = snap.Items
	}
	slog.Info("inventory: state loaded", "path", store.Path(), "items", len(state.Items))

	return &StateStore{
		state:   state,
		backend: b,
		store:   store,
		bus:     bus,
	}, nil
}

// State returns a deep copy of the current state.
func (s *StateStore) State() models.State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.DeepCopy()
}

// Items returns a copy of the current item list.
func (s *StateStore) Items() []models.Item {
	return s.State().Items
}

// Item returns the item with the given id.
func (s *StateStore) Item(id string) (models.Item, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.state.IndexOf(id); i >= 0 {
		return s.state.Items[i], true
	}
	return models.Item{}, false
}

// LowStock returns the items whose quantity is at or below their threshold,
// in list order.
func (s *StateStore) LowStock() []models.Item {
	s.mu.RLock()
	defer s.mu.RUnlock()
	low := []models.Item{}
	for _, it := range s.state.Items {
		if it.IsLow() {
			low = append(low, it)
		}
	}
	return low
}

// Subscribe registers for state updates. See events.Bus.Subscribe.
func (s *StateStore) Subscribe() (string, <-chan models.State) {
	return s.bus.Subscribe()
}

// Unsubscribe removes a subscription.
func (s *StateStore) Unsubscribe(id string) {
	s.bus.Unsubscribe(id)
}

// FetchItems replaces the item list with the backend's collection.
func (s *StateStore) FetchItems(ctx context.Context) error {
	return s.run(ctx, "fetch items", MsgFetchFailed, func(ctx context.Context) (func(*models.State), error) {
		items, err := s.backend.ListItems(ctx)
		if err != nil {
			return nil, err
		}
		return func(st *models.State) {
			st.Items = items
		}, nil
	})
}

// AddItem creates an item on the backend and appends the returned record.
// Nothing is added locally before the backend confirms.
func (s *StateStore) AddItem(ctx context.Context, item models.ItemCreate) error {
	return s.run(ctx, "add item", MsgAddFailed, func(ctx context.Context) (func(*models.State), error) {
		created, err := s.backend.CreateItem(ctx, item)
		if err != nil {
			return nil, err
		}
		return func(st *models.State) {
			st.Items = append(st.Items, created)
		}, nil
	})
}

// UpdateItem sends a partial update and merges the fields the backend
// returns into the local item with the same id. An id that is not held
// locally is left alone.
func (s *StateStore) UpdateItem(ctx context.Context, id string, upd models.ItemUpdate) error {
	return s.run(ctx, "update item", MsgUpdateFailed, func(ctx context.Context) (func(*models.State), error) {
		merged, err := s.backend.UpdateItem(ctx, id, upd)
		if err != nil {
			return nil, err
		}
		return func(st *models.State) {
			if i := st.IndexOf(id); i >= 0 {
				merged.ApplyTo(&st.Items[i])
			}
		}, nil
	})
}

// DeleteItem deletes an item on the backend and removes it locally.
func (s *StateStore) DeleteItem(ctx context.Context, id string) error {
	return s.run(ctx, "delete item", MsgDeleteFailed, func(ctx context.Context) (func(*models.State), error) {
		if err := s.backend.DeleteItem(ctx, id); err != nil {
			return nil, err
		}
		return func(st *models.State) {
			if i := st.IndexOf(id); i >= 0 {
				st.Items = append(st.Items[:i], st.Items[i+1:]...)
			}
		}, nil
	})
}

// ClearError resets the error message. Successful operations leave a
// previous error in place; this is the only way to clear it.
func (s *StateStore) ClearError() {
	s.apply(context.Background(), false, func(st *models.State) {
		st.Error = ""
	})
}

// Rehydrate reloads the items from storage, e.g. after another process
// rewrote the snapshot. The state is only published when the items differ.
func (s *StateStore) Rehydrate(ctx context.Context) error {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	snap, err := s.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("inventory: rehydrate: %w", err)
	}
	items := []models.Item{}
	if snap != nil && snap.Items != nil {
		items = snap.Items
	}

	s.mu.RLock()
	same := models.ItemsEqual(s.state.Items, items)
	s.mu.RUnlock()
	if same {
		return nil
	}

	slog.Info("inventory: rehydrated from storage", "path", s.store.Path(), "items", len(items))
	s.apply(ctx, false, func(st *models.State) {
		st.Items = items
	})
	return nil
}

// Close waits for the running operation, then closes the storage driver.
func (s *StateStore) Close() error {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	return s.store.Close()
}

// run executes one mutator. call talks to the backend and returns the fold
// to apply on success. loading is cleared on every path, including a panic
// in call.
func (s *StateStore) run(ctx context.Context, op, failMsg string, call func(context.Context) (func(*models.State), error)) (err error) {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	s.mu.RLock()
	closed := s.closed
	s.mu.RUnlock()
	if closed {
		return ErrClosed
	}

	s.apply(ctx, false, func(st *models.State) {
		st.Loading = true
	})

	var fold func(*models.State)
	defer func() {
		s.apply(ctx, true, func(st *models.State) {
			st.Loading = false
			if err != nil || fold == nil {
				st.Error = failMsg
				return
			}
			fold(st)
		})
	}()

	fold, err = call(ctx)
	if err != nil {
		slog.Warn("inventory: "+op+" failed", "err", err)
		return fmt.Errorf("inventory: %s: %w", op, err)
	}
	return nil
}

// apply is the only place state is written. It mutates a copy under the
// write lock and publishes the result. When persist is set and the items
// changed, the snapshot is saved after the lock is released; callers hold
// opMu so saves land in transition order. Save errors are logged only.
func (s *StateStore) apply(ctx context.Context, persist bool, fn func(*models.State)) {
	s.mu.Lock()
	next := s.state.DeepCopy()
	fn(&next)
	changed := !models.ItemsEqual(s.state.Items, next.Items)
	s.state = next
	s.bus.Publish(s.state)
	var snap models.Snapshot
	if persist && changed {
		snap = s.state.Snapshot()
	}
	s.mu.Unlock()

	if !persist || !changed {
		return
	}
	if err := s.store.Save(context.WithoutCancel(ctx), &snap); err != nil {
		slog.Error("inventory: failed to save snapshot", "path", s.store.Path(), "err", err)
	}
}
