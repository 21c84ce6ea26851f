package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/micro-nova/inventory-go/internal/auth"
)

// NewRouter creates the local bridge router. guard and backups may be nil:
// without a guard every request is allowed, without backups the backup
// routes are not mounted.
func NewRouter(inv Inventory, guard *auth.Service, bus EventBus, backups Backups) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(corsMiddleware)
	r.Use(middleware.CleanPath)

	h := &Handlers{inv: inv, events: bus, backups: backups}

	r.Group(func(r chi.Router) {
		if guard != nil {
			r.Use(guard.Middleware)
		}

		r.Get("/api", h.getState)
		r.Get("/api/state", h.getState)

		// Items
		r.Get("/api/items", h.getItems)
		r.Get("/api/items/low-stock", h.getLowStock)
		r.Get("/api/items/{id}", h.getItem)
		r.Post("/api/items/refresh", h.refreshItems)
		r.Post("/api/items", h.addItem)
		r.Put("/api/items/{id}", h.updateItem)
		r.Patch("/api/items/{id}", h.updateItem)
		r.Delete("/api/items/{id}", h.deleteItem)

		r.Delete("/api/error", h.clearError)

		if backups != nil {
			r.Get("/api/backups", h.listBackups)
			r.Post("/api/backups", h.createBackup)
		}

		// SSE
		r.Get("/api/subscribe", h.sseEvents)
	})

	return r
}

// corsMiddleware adds permissive CORS headers for local network access.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Api-Key")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
