// Package mockserver is an in-memory implementation of the inventory REST
// API. It backs development runs (cmd/inventory-mock) and tests.
package mockserver

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/micro-nova/inventory-go/internal/models"
)

// PathPrefix is where the inventory collection is mounted.
const PathPrefix = "/api"

// Option configures a Server.
type Option func(*Server)

// WithClock overrides the source of lastUpdated timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

// WithIDs overrides id generation.
func WithIDs(newID func() string) Option {
	return func(s *Server) { s.newID = newID }
}

// WithItems seeds the collection.
func WithItems(items ...models.Item) Option {
	return func(s *Server) { s.items = append(s.items, items...) }
}

// Server holds the collection and serves the REST contract.
type Server struct {
	mu       sync.RWMutex
	items    []models.Item
	now      func() time.Time
	newID    func() string
	failWith int
	requests int
}

// New creates an empty mock backend.
func New(opts ...Option) *Server {
	s := &Server{
		items: []models.Item{},
		now:   func() time.Time { return time.Now().UTC().Truncate(time.Second) },
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the HTTP handler serving PathPrefix + "/inventory".
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.CleanPath)
	r.Use(s.countAndFail)

	r.Route(PathPrefix+"/inventory", func(r chi.Router) {
		r.Get("/", s.listItems)
		r.Post("/", s.createItem)
		r.Put("/{id}", s.updateItem)
		r.Delete("/{id}", s.deleteItem)
	})
	return r
}

// Items returns a copy of the current collection.
func (s *Server) Items() []models.Item {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Item, len(s.items))
	copy(out, s.items)
	return out
}

// FailWith makes every following request answer with status until it is
// called again with 0.
func (s *Server) FailWith(status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failWith = status
}

// Requests returns how many requests have been received.
func (s *Server) Requests() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.requests
}

func (s *Server) countAndFail(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.requests++
		status := s.failWith
		s.mu.Unlock()
		if status != 0 {
			writeError(w, &models.AppError{Code: "INJECTED", Message: http.StatusText(status), Status: status})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) listItems(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.Items())
}

func (s *Server) createItem(w http.ResponseWriter, r *http.Request) {
	var req models.ItemCreate
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, models.ErrBadRequest("invalid JSON: "+err.Error()))
		return
	}

	s.mu.Lock()
	item := models.Item{
		ID:          s.newID(),
		Name:        req.Name,
		Category:    req.Category,
		Quantity:    req.Quantity,
		Unit:        req.Unit,
		Threshold:   req.Threshold,
		Supplier:    req.Supplier,
		LastUpdated: s.now(),
	}
	s.items = append(s.items, item)
	s.mu.Unlock()

	writeJSON(w, http.StatusCreated, item)
}

func (s *Server) updateItem(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var upd models.ItemUpdate
	if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
		writeError(w, models.ErrBadRequest("invalid JSON: "+err.Error()))
		return
	}

	s.mu.Lock()
	idx := s.indexOf(id)
	if idx < 0 {
		s.mu.Unlock()
		writeError(w, models.ErrNotFound("item "+id+" not found"))
		return
	}
	upd.ApplyTo(&s.items[idx])
	s.items[idx].LastUpdated = s.now()
	item := s.items[idx]
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, item)
}

func (s *Server) deleteItem(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	s.mu.Lock()
	idx := s.indexOf(id)
	if idx >= 0 {
		s.items = append(s.items[:idx], s.items[idx+1:]...)
	}
	s.mu.Unlock()

	if idx < 0 {
		writeError(w, models.ErrNotFound("item "+id+" not found"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// indexOf must be called with s.mu held.
func (s *Server) indexOf(id string) int {
	for i := range s.items {
		if s.items[i].ID == id {
			return i
		}
	}
	return -1
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, appErr *models.AppError) {
	writeJSON(w, appErr.Status, appErr)
}
