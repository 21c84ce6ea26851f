package storage_test

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"

	"github.com/micro-nova/inventory-go/internal/storage"
)

func TestOpen_Drivers(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	mr := miniredis.RunT(t)

	tests := []struct {
		name     string
		cfg      storage.Config
		wantPath string
	}{
		{"default is json", storage.Config{Dir: dir}, filepath.Join(dir, "inventory-storage.json")},
		{"json", storage.Config{Driver: "JSON", Dir: dir}, filepath.Join(dir, "inventory-storage.json")},
		{"sqlite", storage.Config{Driver: "sqlite", Dir: dir}, filepath.Join(dir, "inventory.db")},
		{"memory", storage.Config{Driver: "memory"}, ":memory:"},
		{"redis", storage.Config{Driver: "redis", RedisAddr: mr.Addr(), RedisPrefix: "t"}, "redis://" + mr.Addr() + "/t:inventory-storage"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			store, err := storage.Open(ctx, tc.cfg)
			if err != nil {
				t.Fatalf("Open() error = %v", err)
			}
			defer store.Close()
			if store.Path() != tc.wantPath {
				t.Errorf("Path() = %q, want %q", store.Path(), tc.wantPath)
			}
			roundTrip(t, store)
		})
	}
}

func TestOpen_Errors(t *testing.T) {
	ctx := context.Background()

	if _, err := storage.Open(ctx, storage.Config{Driver: "etcd"}); err == nil || !strings.Contains(err.Error(), "unsupported") {
		t.Errorf("Open(etcd) error = %v, want unsupported driver", err)
	}
	if _, err := storage.Open(ctx, storage.Config{Driver: "redis"}); err == nil {
		t.Error("Open(redis) without address should fail")
	}
}
