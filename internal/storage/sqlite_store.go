package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/micro-nova/inventory-go/internal/models"

	_ "modernc.org/sqlite" // pure go sqlite driver
)

const sqliteFileName = "inventory.db"

// SQLiteStore keeps the snapshot as a JSON blob in a key/value table.
// The database is opened for each Load or Save and closed before returning,
// so no handle outlives an operation.
type SQLiteStore struct {
	path string
}

// NewSQLiteStore prepares the database at path, creating the kv table if
// needed. An empty path means "inventory.db" in the working directory.
func NewSQLiteStore(ctx context.Context, path string) (*SQLiteStore, error) {
	if path == "" {
		path = sqliteFileName
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
		return nil, fmt.Errorf("storage: create dirs: %w", err)
	}
	s := &SQLiteStore{path: path}
	err := s.withDB(ctx, func(db *sql.DB) error {
		_, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS kv (
			key TEXT PRIMARY KEY,
			value BLOB NOT NULL
		)`)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("storage: create kv table: %w", err)
	}
	return s, nil
}

// Path returns the database file path.
func (s *SQLiteStore) Path() string { return s.path }

// Load reads the snapshot row. A missing row or corrupt blob yields an empty
// snapshot.
func (s *SQLiteStore) Load(ctx context.Context) (*models.Snapshot, error) {
	var data []byte
	err := s.withDB(ctx, func(db *sql.DB) error {
		return db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, models.StorageKey).Scan(&data)
	})
	if errors.Is(err, sql.ErrNoRows) {
		empty := models.EmptySnapshot()
		return &empty, nil
	}
	if err != nil {
		return nil, fmt.Errorf("storage: select snapshot: %w", err)
	}
	return decodeSnapshot(data, s.path), nil
}

// Save upserts the snapshot row inside a transaction.
func (s *SQLiteStore) Save(ctx context.Context, snap *models.Snapshot) error {
	data, err := encodeSnapshot(snap)
	if err != nil {
		return fmt.Errorf("storage: encode snapshot: %w", err)
	}
	return s.withDB(ctx, func(db *sql.DB) (retErr error) {
		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		defer func() {
			if retErr != nil {
				_ = tx.Rollback()
			}
		}()
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO kv(key, value) VALUES(?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
			models.StorageKey, data); err != nil {
			return fmt.Errorf("storage: upsert snapshot: %w", err)
		}
		return tx.Commit()
	})
}

// Close is a no-op; connections are released after every operation.
func (s *SQLiteStore) Close() error { return nil }

// withDB opens the database, runs fn and always closes the handle.
func (s *SQLiteStore) withDB(ctx context.Context, fn func(*sql.DB) error) (retErr error) {
	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return fmt.Errorf("storage: open sqlite: %w", err)
	}
	defer func() {
		if cerr := db.Close(); cerr != nil && retErr == nil {
			retErr = cerr
		}
	}()
	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("storage: ping sqlite: %w", err)
	}
	return fn(db)
}

var _ Store = (*SQLiteStore)(nil)
