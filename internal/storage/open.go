package storage

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/redis/go-redis/v9"
)

// Driver names accepted by Open.
const (
	DriverJSON   = "json"
	DriverSQLite = "sqlite"
	DriverRedis  = "redis"
	DriverMemory = "memory"
)

// Config selects and configures a storage driver.
type Config struct {
	Driver        string
	Dir           string // state directory for the json and sqlite drivers
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisPrefix   string
}

// Open returns the Store named by cfg.Driver. An empty driver means json.
func Open(ctx context.Context, cfg Config) (Store, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Driver)) {
	case "", DriverJSON:
		return NewJSONStore(cfg.Dir), nil
	case DriverSQLite:
		return NewSQLiteStore(ctx, filepath.Join(cfg.Dir, sqliteFileName))
	case DriverRedis:
		if cfg.RedisAddr == "" {
			return nil, fmt.Errorf("storage: redis driver requires an address")
		}
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("storage: redis ping %s: %w", cfg.RedisAddr, err)
		}
		return NewRedisStore(client, cfg.RedisPrefix), nil
	case DriverMemory:
		return NewMemStore(), nil
	default:
		return nil, fmt.Errorf("storage: unsupported driver %q", cfg.Driver)
	}
}
