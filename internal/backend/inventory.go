// Package backend is the HTTP client for the inventory REST API:
//
//	GET    {base}/inventory       -> []Item
//	POST   {base}/inventory       -> Item
//	PUT    {base}/inventory/{id}  -> Item (possibly partial)
//	DELETE {base}/inventory/{id}  -> status only
//
// Every call makes exactly one attempt. Non-2xx answers come back as
// *HTTPError; there is no status-specific handling.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/micro-nova/inventory-go/internal/models"
)

const collectionPath = "inventory"

// Backend is the set of remote operations the inventory store depends on.
type Backend interface {
	ListItems(ctx context.Context) ([]models.Item, error)
	CreateItem(ctx context.Context, item models.ItemCreate) (models.Item, error)
	UpdateItem(ctx context.Context, id string, upd models.ItemUpdate) (models.ItemUpdate, error)
	DeleteItem(ctx context.Context, id string) error
}

// HTTPBackend implements Backend over a Client.
type HTTPBackend struct {
	client *Client
}

// New constructs an HTTPBackend bound to the provided base URL.
func New(baseURL string, opts ...Option) (*HTTPBackend, error) {
	cl, err := NewClient(baseURL, opts...)
	if err != nil {
		return nil, err
	}
	return NewWithClient(cl), nil
}

// NewWithClient wraps an existing Client.
func NewWithClient(c *Client) *HTTPBackend {
	return &HTTPBackend{client: c}
}

// BaseURL returns the base URL requests are resolved against.
func (b *HTTPBackend) BaseURL() string { return b.client.BaseURL() }

// ListItems fetches the full collection. A JSON null body yields an empty list.
func (b *HTTPBackend) ListItems(ctx context.Context) ([]models.Item, error) {
	var items []models.Item
	if err := b.doJSON(ctx, http.MethodGet, collectionPath, nil, &items); err != nil {
		return nil, err
	}
	if items == nil {
		items = []models.Item{}
	}
	return items, nil
}

// CreateItem posts a new item and returns the server's record.
func (b *HTTPBackend) CreateItem(ctx context.Context, item models.ItemCreate) (models.Item, error) {
	var created models.Item
	if err := b.doJSON(ctx, http.MethodPost, collectionPath, item, &created); err != nil {
		return models.Item{}, err
	}
	return created, nil
}

// UpdateItem sends a partial update and returns the fields the server sent
// back.
func (b *HTTPBackend) UpdateItem(ctx context.Context, id string, upd models.ItemUpdate) (models.ItemUpdate, error) {
	var merged models.ItemUpdate
	if err := b.doJSON(ctx, http.MethodPut, itemPath(id), upd, &merged); err != nil {
		return models.ItemUpdate{}, err
	}
	return merged, nil
}

// DeleteItem removes an item. Any response body is discarded.
func (b *HTTPBackend) DeleteItem(ctx context.Context, id string) error {
	resp, err := b.client.Do(ctx, &Request{
		Method: http.MethodDelete,
		Path:   itemPath(id),
	})
	if err != nil {
		return err
	}
	_, _ = readAllAndClose(resp.Body)
	return nil
}

func (b *HTTPBackend) doJSON(ctx context.Context, method, path string, in, out any) error {
	if b == nil || b.client == nil {
		return fmt.Errorf("backend: client not configured")
	}
	req := &Request{Method: method, Path: path}
	if in != nil {
		body, err := jsonBody(in)
		if err != nil {
			return fmt.Errorf("backend: encode %s %s body: %w", method, path, err)
		}
		req.Body = body
		req.Header = http.Header{"Content-Type": []string{"application/json"}}
	}

	resp, err := b.client.Do(ctx, req)
	if err != nil {
		return err
	}
	data, err := readAllAndClose(resp.Body)
	if err != nil {
		return fmt.Errorf("backend: read %s %s response: %w", method, path, err)
	}
	if err := json.Unmarshal(bytes.TrimSpace(data), out); err != nil {
		return fmt.Errorf("backend: decode %s %s response: %w", method, path, err)
	}
	return nil
}

func itemPath(id string) string {
	return collectionPath + "/" + url.PathEscape(id)
}
