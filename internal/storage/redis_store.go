package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/micro-nova/inventory-go/internal/models"
)

// RedisStore keeps the snapshot under a single Redis string key, so several
// clients on different hosts can share one persisted list.
type RedisStore struct {
	client *redis.Client
	key    string
}

// NewRedisStore wraps an existing client. The key is prefix + ":" +
// "inventory-storage", or just "inventory-storage" without a prefix.
func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	key := models.StorageKey
	if prefix != "" {
		key = prefix + ":" + key
	}
	return &RedisStore{client: client, key: key}
}

// Path returns the Redis key holding the snapshot.
func (s *RedisStore) Path() string { return "redis://" + s.client.Options().Addr + "/" + s.key }

// Load fetches the snapshot. A missing key or corrupt value yields an empty
// snapshot.
func (s *RedisStore) Load(ctx context.Context) (*models.Snapshot, error) {
	data, err := s.client.Get(ctx, s.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			empty := models.EmptySnapshot()
			return &empty, nil
		}
		return nil, fmt.Errorf("storage: redis get %s: %w", s.key, err)
	}
	return decodeSnapshot(data, s.Path()), nil
}

// Save replaces the snapshot. The key never expires.
func (s *RedisStore) Save(ctx context.Context, snap *models.Snapshot) error {
	data, err := encodeSnapshot(snap)
	if err != nil {
		return fmt.Errorf("storage: encode snapshot: %w", err)
	}
	if err := s.client.Set(ctx, s.key, data, 0).Err(); err != nil {
		return fmt.Errorf("storage: redis set %s: %w", s.key, err)
	}
	return nil
}

// Close closes the underlying client.
func (s *RedisStore) Close() error { return s.client.Close() }

var _ Store = (*RedisStore)(nil)
