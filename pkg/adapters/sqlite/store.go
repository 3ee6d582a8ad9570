package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/aretw0/loom/pkg/domain"
	"github.com/aretw0/loom/pkg/ports"

	// Registers the pure-Go "sqlite" driver.
	_ "modernc.org/sqlite"
)

// Store is a ports.SnapshotStore backed by SQLite.
type Store struct {
	db    *sql.DB
	owned bool
	now   func() time.Time
}

var _ ports.ExpiringStore = (*Store)(nil)

// Open opens (or creates) the database at path and initializes the schema.
// Use ":memory:" for a throwaway database.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	// A single connection keeps ":memory:" databases coherent and serializes writers.
	db.SetMaxOpenConns(1)

	s, err := New(db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	s.owned = true
	return s, nil
}

// New initializes the required schema in db and returns a Store.
// The caller keeps ownership of db.
func New(db *sql.DB) (*Store, error) {
	s := &Store{db: db, now: time.Now}
	if err := s.initSchema(); err != nil {
		return nil, fmt.Errorf("failed to initialize sqlite schema: %w", err)
	}
	return s, nil
}

func (s *Store) initSchema() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS snapshots (
			key TEXT PRIMARY KEY,
			data BLOB NOT NULL,
			updated_at INTEGER NOT NULL,
			expires_at INTEGER
		);`,
	)
	return err
}

// Save upserts the snapshot.
func (s *Store) Save(ctx context.Context, key string, data []byte) error {
	return s.SaveWithTTL(ctx, key, data, 0)
}

// SaveWithTTL upserts the snapshot, expiring it after ttl. Zero means never.
func (s *Store) SaveWithTTL(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	now := s.now()
	var expires sql.NullInt64
	if ttl > 0 {
		expires = sql.NullInt64{Int64: now.Add(ttl).UnixNano(), Valid: true}
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO snapshots (key, data, updated_at, expires_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			data = excluded.data,
			updated_at = excluded.updated_at,
			expires_at = excluded.expires_at`,
		key, data, now.UnixNano(), expires,
	)
	if err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	return nil
}

// Load returns the snapshot under key.
func (s *Store) Load(ctx context.Context, key string) ([]byte, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT data FROM snapshots
		WHERE key = ? AND (expires_at IS NULL OR expires_at > ?)`,
		key, s.now().UnixNano(),
	)

	var data []byte
	if err := row.Scan(&data); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrSnapshotNotFound
		}
		return nil, fmt.Errorf("failed to load snapshot: %w", err)
	}
	return data, nil
}

// Delete removes the snapshot.
func (s *Store) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM snapshots WHERE key = ?`, key); err != nil {
		return fmt.Errorf("failed to delete snapshot: %w", err)
	}
	return nil
}

// List prunes expired rows and returns the remaining keys in key order.
func (s *Store) List(ctx context.Context) ([]string, error) {
	now := s.now().UnixNano()
	if _, err := s.db.ExecContext(ctx, `DELETE FROM snapshots WHERE expires_at IS NOT NULL AND expires_at <= ?`, now); err != nil {
		return nil, fmt.Errorf("failed to prune expired snapshots: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `SELECT key FROM snapshots ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}
	defer rows.Close()

	keys := []string{}
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}
	return keys, rows.Err()
}

// Close closes the database if the Store opened it.
func (s *Store) Close() error {
	if !s.owned {
		return nil
	}
	return s.db.Close()
}
