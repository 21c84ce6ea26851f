package auth

import (
	"encoding/json"
	"net/http"

	"github.com/micro-nova/inventory-go/internal/models"
)

const (
	apiKeyHeader     = "Api-Key"
	apiKeyQueryParam = "api-key"
)

// Middleware rejects requests without a valid key unless the service is in
// open mode. The key is taken from the Api-Key header, then from the api-key
// query parameter (EventSource cannot set headers).
func (s *Service) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.IsOpenMode() {
			next.ServeHTTP(w, r)
			return
		}
		if s.VerifyKey(r.Header.Get(apiKeyHeader)) || s.VerifyKey(r.URL.Query().Get(apiKeyQueryParam)) {
			next.ServeHTTP(w, r)
			return
		}

		appErr := &models.AppError{Code: "UNAUTHORIZED", Message: "missing or invalid api key", Status: http.StatusUnauthorized}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(appErr.Status)
		_ = json.NewEncoder(w).Encode(appErr)
	})
}
