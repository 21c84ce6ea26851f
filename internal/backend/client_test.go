package backend_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/micro-nova/inventory-go/internal/backend"
)

func TestNewClientValidation(t *testing.T) {
	for _, raw := range []string{"", "   ", "ftp://example.com", "example.com/api", "://bad"} {
		if _, err := backend.NewClient(raw); err == nil {
			t.Errorf("NewClient(%q) expected error", raw)
		}
	}
}

func TestClientPreservesBasePath(t *testing.T) {
	var gotPath, gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	for _, base := range []string{srv.URL + "/api", srv.URL + "/api/"} {
		c, err := backend.NewClient(base)
		if err != nil {
			t.Fatalf("NewClient() error = %v", err)
		}
		resp, err := c.Do(context.Background(), &backend.Request{
			Method: http.MethodGet,
			Path:   "/inventory",
			Query:  map[string][]string{"q": {"flour"}},
		})
		if err != nil {
			t.Fatalf("Do() error = %v", err)
		}
		resp.Body.Close()
		if gotPath != "/api/inventory" {
			t.Errorf("base %q: path = %q, want /api/inventory", base, gotPath)
		}
		if gotQuery != "q=flour" {
			t.Errorf("base %q: query = %q, want q=flour", base, gotQuery)
		}
	}
}

func TestClientHeaders(t *testing.T) {
	var got http.Header
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
	}))
	defer srv.Close()

	c, err := backend.NewClient(srv.URL,
		backend.WithUserAgent("inventoryd/test"),
		backend.WithHeaders(http.Header{"X-Api-Key": {"secret"}}),
	)
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	resp, err := c.Do(context.Background(), &backend.Request{
		Method: http.MethodGet,
		Path:   "inventory",
		Header: http.Header{"X-Request-Id": {"r1"}},
	})
	if err != nil {
		t.Fatalf("Do() error = %v", err)
	}
	resp.Body.Close()

	if ua := got.Get("User-Agent"); ua != "inventoryd/test" {
		t.Errorf("User-Agent = %q", ua)
	}
	if got.Get("Accept") != "application/json" {
		t.Errorf("Accept = %q", got.Get("Accept"))
	}
	if got.Get("X-Api-Key") != "secret" {
		t.Errorf("X-Api-Key = %q", got.Get("X-Api-Key"))
	}
	if got.Get("X-Request-Id") != "r1" {
		t.Errorf("X-Request-Id = %q", got.Get("X-Request-Id"))
	}
}

func TestClientHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		io.WriteString(w, `{"error":"boom"}`)
	}))
	defer srv.Close()

	c, err := backend.NewClient(srv.URL + "/api")
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	_, err = c.Do(context.Background(), &backend.Request{Method: http.MethodGet, Path: "inventory"})

	var httpErr *backend.HTTPError
	if !errors.As(err, &httpErr) {
		t.Fatalf("Do() error = %v, want *HTTPError", err)
	}
	if httpErr.StatusCode != http.StatusInternalServerError {
		t.Errorf("StatusCode = %d", httpErr.StatusCode)
	}
	if httpErr.NotFound() {
		t.Error("NotFound() = true for 500")
	}
	payload, ok := httpErr.JSON.(map[string]any)
	if !ok || payload["error"] != "boom" {
		t.Errorf("JSON = %#v", httpErr.JSON)
	}
	if !strings.Contains(httpErr.Error(), "status=500") {
		t.Errorf("Error() = %q", httpErr.Error())
	}
}

func TestClientMakesSingleAttempt(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c, _ := backend.NewClient(srv.URL)
	if _, err := c.Do(context.Background(), &backend.Request{Method: http.MethodGet, Path: "x"}); err == nil {
		t.Fatal("Do() expected error")
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestClientTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	c, _ := backend.NewClient(srv.URL, backend.WithTimeout(50*time.Millisecond))
	start := time.Now()
	if _, err := c.Do(context.Background(), &backend.Request{Method: http.MethodGet, Path: "slow"}); err == nil {
		t.Fatal("Do() expected timeout error")
	}
	if time.Since(start) > 2*time.Second {
		t.Errorf("timeout took %v", time.Since(start))
	}
}

func TestClientRateLimitHonoursContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()

	c, _ := backend.NewClient(srv.URL, backend.WithRateLimit(0.001, 1))
	resp, err := c.Do(context.Background(), &backend.Request{Method: http.MethodGet, Path: "a"})
	if err != nil {
		t.Fatalf("first Do() error = %v", err)
	}
	resp.Body.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := c.Do(ctx, &backend.Request{Method: http.MethodGet, Path: "b"}); err == nil {
		t.Fatal("second Do() expected rate limit error")
	}
}

func TestClientRejectsBadRequest(t *testing.T) {
	c, _ := backend.NewClient("http://localhost")
	if _, err := c.Do(context.Background(), nil); err == nil {
		t.Error("Do(nil) expected error")
	}
	if _, err := c.Do(context.Background(), &backend.Request{Path: "x"}); err == nil {
		t.Error("Do() without method expected error")
	}
}
