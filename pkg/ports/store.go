package ports

import (
	"context"
	"time"
)

// SnapshotStore persists encoded state snapshots by key.
// Snapshots are opaque bytes: encoding is the caller's concern.
type SnapshotStore interface {
	// Save writes data under key, replacing any previous snapshot.
	Save(ctx context.Context, key string, data []byte) error

	// Load returns the snapshot stored under key.
	// Returns domain.ErrSnapshotNotFound if there is none.
	Load(ctx context.Context, key string) ([]byte, error)

	// Delete removes the snapshot under key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// List returns the keys of all stored snapshots.
	List(ctx context.Context) ([]string, error)
}

// ExpiringStore is implemented by stores that can drop snapshots after a TTL.
type ExpiringStore interface {
	SnapshotStore
	SaveWithTTL(ctx context.Context, key string, data []byte, ttl time.Duration) error
}
