package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/micro-nova/inventory-go/internal/models"
)

// Mutators answer 200 with the resulting state whether or not the backend
// call succeeded; a failure shows up in State.Error.

func (h *Handlers) getState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.inv.State())
}

func (h *Handlers) getItems(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.inv.Items())
}

func (h *Handlers) getLowStock(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.inv.LowStock())
}

func (h *Handlers) getItem(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	item, ok := h.inv.Item(id)
	if !ok {
		writeError(w, models.ErrNotFound("item "+id+" not found"))
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (h *Handlers) refreshItems(w http.ResponseWriter, r *http.Request) {
	if err := h.inv.FetchItems(r.Context()); err != nil {
		slog.Debug("api: refresh failed", "err", err)
	}
	writeJSON(w, http.StatusOK, h.inv.State())
}

func (h *Handlers) addItem(w http.ResponseWriter, r *http.Request) {
	var req models.ItemCreate
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if err := h.inv.AddItem(r.Context(), req); err != nil {
		slog.Debug("api: add failed", "err", err)
	}
	writeJSON(w, http.StatusOK, h.inv.State())
}

func (h *Handlers) updateItem(w http.ResponseWriter, r *http.Request) {
	var upd models.ItemUpdate
	if err := decodeBody(r, &upd); err != nil {
		writeError(w, err)
		return
	}
	if err := h.inv.UpdateItem(r.Context(), chi.URLParam(r, "id"), upd); err != nil {
		slog.Debug("api: update failed", "err", err)
	}
	writeJSON(w, http.StatusOK, h.inv.State())
}

func (h *Handlers) deleteItem(w http.ResponseWriter, r *http.Request) {
	if err := h.inv.DeleteItem(r.Context(), chi.URLParam(r, "id")); err != nil {
		slog.Debug("api: delete failed", "err", err)
	}
	writeJSON(w, http.StatusOK, h.inv.State())
}

func (h *Handlers) clearError(w http.ResponseWriter, r *http.Request) {
	h.inv.ClearError()
	writeJSON(w, http.StatusOK, h.inv.State())
}
