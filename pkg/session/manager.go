package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/aretw0/loom/internal/logging"
	"github.com/aretw0/loom/pkg/cell"
	"github.com/aretw0/loom/pkg/domain"
	"github.com/aretw0/loom/pkg/persistence"
	"github.com/aretw0/loom/pkg/ports"
	"github.com/aretw0/loom/pkg/reducer"
	"github.com/aretw0/loom/pkg/store"
	"github.com/google/uuid"
)

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// running is a live session.
type running[S, A any] struct {
	store *store.Store[S, A]
	sub   *cell.Subscription
}

// Manager runs one store per session ID.
//
// Sessions are started on demand, restored from the snapshot store when a
// snapshot exists, and written back after every state change. Lifecycle
// operations on one session ID are serialized; they reference-count their
// locks so unused IDs do not leak.
type Manager[S, A any] struct {
	reducer reducer.Reducer[S, A]
	initial func() S

	snapshots ports.SnapshotStore
	storeOpts []store.Option

	mu       sync.Mutex
	locks    map[string]*lockEntry
	sessions map[string]*running[S, A]

	locker  ports.DistributedLocker
	lockTTL time.Duration
	logger  *slog.Logger
}

// Option configures the Manager. It is not generic, so options are shared by
// managers of every state type.
type Option func(*options)

type options struct {
	snapshots ports.SnapshotStore
	storeOpts []store.Option
	locker    ports.DistributedLocker
	lockTTL   time.Duration
	logger    *slog.Logger
}

// WithSnapshots persists sessions in snapshots.
func WithSnapshots(snapshots ports.SnapshotStore) Option {
	return func(o *options) {
		o.snapshots = snapshots
	}
}

// WithStoreOptions passes options to every session store. The session name is
// always set by the manager.
func WithStoreOptions(opts ...store.Option) Option {
	return func(o *options) {
		o.storeOpts = append(o.storeOpts, opts...)
	}
}

// WithLocker enables distributed locking.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(o *options) {
		o.locker = locker
	}
}

// WithLockTTL sets how long a distributed lock is held before it expires.
func WithLockTTL(ttl time.Duration) Option {
	return func(o *options) {
		o.lockTTL = ttl
	}
}

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// NewManager creates a Manager whose sessions reduce with r and start from initial().
func NewManager[S, A any](r reducer.Reducer[S, A], initial func() S, opts ...Option) *Manager[S, A] {
	o := options{
		lockTTL: 30 * time.Second,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	return &Manager[S, A]{
		reducer:   r,
		initial:   initial,
		snapshots: o.snapshots,
		storeOpts: o.storeOpts,
		locks:     make(map[string]*lockEntry),
		sessions:  make(map[string]*running[S, A]),
		locker:    o.locker,
		lockTTL:   o.lockTTL,
		logger:    o.logger,
	}
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller MUST Lock the entry.mu, and then call release(id) after unlocking.
func (m *Manager[S, A]) acquire(id string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[id]
	if !exists {
		entry = &lockEntry{}
		m.locks[id] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry if it reaches zero.
func (m *Manager[S, A]) release(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[id]
	if !exists {
		return
	}
	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, id)
	}
}

// WithLock executes fn while holding the lock for the session.
// fn must not call other lifecycle methods for the same ID.
func (m *Manager[S, A]) WithLock(ctx context.Context, id string, fn func(context.Context) error) error {
	entry := m.acquire(id)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(id)
	}()

	if m.locker != nil {
		unlock, err := m.locker.Lock(ctx, id, m.lockTTL)
		if err != nil {
			return fmt.Errorf("failed to acquire distributed lock: %w", err)
		}
		defer func() {
			if err := unlock(ctx); err != nil {
				m.logger.Warn("Failed to release distributed lock (will expire via TTL)",
					"session_id", id,
					"err", err,
				)
			}
		}()
	}

	return fn(ctx)
}

func (m *Manager[S, A]) lookup(id string) (*store.Store[S, A], bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.sessions[id]
	if !ok {
		return nil, false
	}
	return r.store, true
}

// Get returns the running store for id, restoring it from its snapshot if needed.
// Returns domain.ErrSessionNotFound when the session does not exist anywhere.
func (m *Manager[S, A]) Get(ctx context.Context, id string) (*store.Store[S, A], error) {
	if s, ok := m.lookup(id); ok {
		return s, nil
	}

	var s *store.Store[S, A]
	err := m.WithLock(ctx, id, func(ctx context.Context) error {
		if existing, ok := m.lookup(id); ok {
			s = existing
			return nil
		}
		state, err := m.restore(ctx, id)
		if err != nil {
			return err
		}
		s = m.start(id, state)
		return nil
	})
	return s, err
}

// Open returns the store for id, creating a fresh session if none exists.
func (m *Manager[S, A]) Open(ctx context.Context, id string) (*store.Store[S, A], error) {
	s, err := m.Get(ctx, id)
	if err == nil || !errors.Is(err, domain.ErrSessionNotFound) {
		return s, err
	}
	s, err = m.create(ctx, id)
	if errors.Is(err, domain.ErrSessionExists) {
		return m.Get(ctx, id)
	}
	return s, err
}

// Create starts a new session. An empty id is replaced by a random UUID.
func (m *Manager[S, A]) Create(ctx context.Context, id string) (string, *store.Store[S, A], error) {
	if id == "" {
		id = uuid.NewString()
	}
	s, err := m.create(ctx, id)
	return id, s, err
}

func (m *Manager[S, A]) create(ctx context.Context, id string) (*store.Store[S, A], error) {
	var s *store.Store[S, A]
	err := m.WithLock(ctx, id, func(ctx context.Context) error {
		if _, ok := m.lookup(id); ok {
			return domain.ErrSessionExists
		}
		if _, err := m.restore(ctx, id); err == nil {
			return domain.ErrSessionExists
		} else if !errors.Is(err, domain.ErrSessionNotFound) {
			return err
		}

		state := m.initial()
		// Persist immediately to reserve the ID.
		if err := m.persist(ctx, id, state); err != nil {
			return fmt.Errorf("failed to initialize session: %w", err)
		}
		s = m.start(id, state)
		return nil
	})
	return s, err
}

// restore loads the snapshot for id.
func (m *Manager[S, A]) restore(ctx context.Context, id string) (S, error) {
	var zero S
	if m.snapshots == nil {
		return zero, domain.ErrSessionNotFound
	}
	data, err := m.snapshots.Load(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrSnapshotNotFound) {
			return zero, domain.ErrSessionNotFound
		}
		return zero, fmt.Errorf("failed to load session %s: %w", id, err)
	}
	state, err := persistence.Decode[S](data)
	if err != nil {
		return zero, fmt.Errorf("failed to restore session %s: %w", id, err)
	}
	return state, nil
}

func (m *Manager[S, A]) persist(ctx context.Context, id string, state S) error {
	if m.snapshots == nil {
		return nil
	}
	data, err := persistence.Encode(state)
	if err != nil {
		return err
	}
	return m.snapshots.Save(ctx, id, data)
}

// start runs a store for id. The caller holds the lock for id.
func (m *Manager[S, A]) start(id string, state S) *store.Store[S, A] {
	opts := append(slices.Clone(m.storeOpts), store.WithName(id))
	s := store.New(state, m.reducer, opts...)

	// Write-through: every change is saved on the dispatching goroutine.
	sub := s.Subscribe(func(state S) {
		if err := m.persist(context.Background(), id, state); err != nil {
			m.logger.Error("Failed to save session snapshot",
				"session_id", id,
				"err", err,
			)
		}
	})

	m.mu.Lock()
	m.sessions[id] = &running[S, A]{store: s, sub: sub}
	m.mu.Unlock()

	m.logger.Debug("Session started", "session_id", id)
	return s
}

func (m *Manager[S, A]) stop(id string) (*running[S, A], bool) {
	m.mu.Lock()
	r, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()
	if !ok {
		return nil, false
	}

	r.sub.Cancel()
	_ = r.store.Close()
	m.logger.Debug("Session stopped", "session_id", id)
	return r, true
}

// Close stops the running store for id after a final save. The snapshot is kept,
// so a later Get restores it. Closing a session that is not running is a no-op.
func (m *Manager[S, A]) Close(ctx context.Context, id string) error {
	return m.WithLock(ctx, id, func(ctx context.Context) error {
		r, ok := m.stop(id)
		if !ok {
			return nil
		}
		return m.persist(ctx, id, r.store.Value())
	})
}

// Delete stops the session and removes its snapshot.
func (m *Manager[S, A]) Delete(ctx context.Context, id string) error {
	return m.WithLock(ctx, id, func(ctx context.Context) error {
		m.stop(id)
		if m.snapshots == nil {
			return nil
		}
		return m.snapshots.Delete(ctx, id)
	})
}

// List returns the IDs of running and persisted sessions, sorted.
func (m *Manager[S, A]) List(ctx context.Context) ([]string, error) {
	m.mu.Lock()
	ids := make([]string, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	m.mu.Unlock()

	if m.snapshots != nil {
		keys, err := m.snapshots.List(ctx)
		if err != nil {
			return nil, err
		}
		ids = append(ids, keys...)
	}

	slices.Sort(ids)
	return slices.Compact(ids), nil
}

// Running reports how many sessions currently have a live store.
func (m *Manager[S, A]) Running() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// CloseAll closes every running session and returns the first error.
func (m *Manager[S, A]) CloseAll(ctx context.Context) error {
	m.mu.Lock()
	ids := make([]string, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	m.mu.Unlock()

	var errs []error
	for _, id := range ids {
		if err := m.Close(ctx, id); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
