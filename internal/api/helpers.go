// Package api is the local HTTP bridge a UI uses to drive the inventory
// state store: reads, the four mutators and an SSE stream of state changes.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/micro-nova/inventory-go/internal/models"
)

// Handlers holds dependencies for all HTTP handlers.
type Handlers struct {
	inv     Inventory
	events  EventBus
	backups Backups
}

// Inventory is the interface the handlers use to read and change the store.
type Inventory interface {
	State() models.State
	Items() []models.Item
	Item(id string) (models.Item, bool)
	LowStock() []models.Item
	FetchItems(ctx context.Context) error
	AddItem(ctx context.Context, item models.ItemCreate) error
	UpdateItem(ctx context.Context, id string, upd models.ItemUpdate) error
	DeleteItem(ctx context.Context, id string) error
	ClearError()
}

// EventBus is the interface for subscribing to state change events.
type EventBus interface {
	Subscribe() (string, <-chan models.State)
	Unsubscribe(id string)
}

// Backups creates and lists snapshot backups.
type Backups interface {
	RunBackupNow() (string, error)
	ListBackups() ([]string, error)
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError writes an AppError as a JSON response.
func writeError(w http.ResponseWriter, err error) {
	w.Header().Set("Content-Type", "application/json")
	if appErr, ok := err.(*models.AppError); ok {
		w.WriteHeader(appErr.Status)
		_ = json.NewEncoder(w).Encode(appErr)
		return
	}
	w.WriteHeader(http.StatusInternalServerError)
	_ = json.NewEncoder(w).Encode(models.ErrInternal(err.Error()))
}

// decodeBody decodes the JSON request body into v.
func decodeBody(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return models.ErrBadRequest("invalid JSON: " + err.Error())
	}
	return nil
}
