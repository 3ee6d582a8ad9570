package memory

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/aretw0/loom/pkg/domain"
)

type entry struct {
	data      []byte
	expiresAt time.Time
}

func (e entry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && !now.Before(e.expiresAt)
}

// Store implements ports.SnapshotStore in memory.
// Safe for concurrent use.
type Store struct {
	data map[string]entry
	mu   sync.RWMutex
	now  func() time.Time
}

// Option configures the Store.
type Option func(*Store)

// WithClock overrides the clock used for expiry.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// NewStore creates a new in-memory store.
func NewStore(opts ...Option) *Store {
	s := &Store{
		data: make(map[string]entry),
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Save stores a copy of data.
func (s *Store) Save(ctx context.Context, key string, data []byte) error {
	return s.SaveWithTTL(ctx, key, data, 0)
}

// SaveWithTTL stores a copy of data that expires after ttl. A zero ttl never expires.
func (s *Store) SaveWithTTL(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	e := entry{data: slices.Clone(data)}
	if ttl > 0 {
		e.expiresAt = s.now().Add(ttl)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = e
	return nil
}

// Load returns a copy of the snapshot, so callers can't mutate stored bytes.
func (s *Store) Load(ctx context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.data[key]
	if !ok || e.expired(s.now()) {
		return nil, domain.ErrSnapshotNotFound
	}
	return slices.Clone(e.data), nil
}

// Delete removes the snapshot.
func (s *Store) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	return nil
}

// List returns the keys of all live snapshots.
func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	now := s.now()
	keys := make([]string, 0, len(s.data))
	for k, e := range s.data {
		if !e.expired(now) {
			keys = append(keys, k)
		}
	}
	return keys, nil
}
