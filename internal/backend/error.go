package backend

import (
	"encoding/json"
	"fmt"
	"net/http"
)

const maxErrorBody = 64 << 10

// HTTPError represents a non-2xx HTTP response returned by the backend.
type HTTPError struct {
	Method     string
	URL        string
	StatusCode int
	Body       []byte
	Header     http.Header
	JSON       any
}

func (e *HTTPError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("backend: %s %s: status=%d body=%s", e.Method, e.URL, e.StatusCode, string(e.Body))
}

// NotFound reports whether the backend answered 404.
func (e *HTTPError) NotFound() bool {
	return e != nil && e.StatusCode == http.StatusNotFound
}

// decodeJSONBody parses the body bytes into a generic JSON payload.
func decodeJSONBody(body []byte) any {
	if len(body) == 0 {
		return nil
	}
	var payload any
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil
	}
	return payload
}
