package store

import (
	"context"
	"sync/atomic"

	"github.com/aretw0/loom/pkg/cell"
	"github.com/aretw0/loom/pkg/domain"
	"github.com/aretw0/loom/pkg/reducer"
)

// Store owns one state value and the reducer that is allowed to change it.
//
// Send is the only way to mutate state. It is safe to call from any goroutine
// and from inside effects: actions are applied one at a time, in the order they
// reach the store.
//
// A zero Store is a placeholder for a store that has not been wired yet. Using
// it returns domain.ErrNotInitialized instead of panicking.
type Store[S, A any] struct {
	name      string
	get       func() S
	send      func(A) error
	subscribe func(func(S)) *cell.Subscription
	wait      func(context.Context) error
	release   func()
	upstream  func() bool

	closed atomic.Bool
}

// New creates a root store holding initial and reducing with r.
//
// The reducer receives a shallow copy of the state. Slices, maps and pointers
// in it are shared with snapshots already returned by Value, so r must replace
// them instead of mutating them in place.
func New[S, A any](initial S, r reducer.Reducer[S, A], opts ...Option) *Store[S, A] {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	rt := newRoot(initial, r, cfg)
	s := &Store[S, A]{
		name:      cfg.name,
		get:       rt.state.Value,
		send:      rt.send,
		subscribe: rt.state.Subscribe,
		wait:      rt.inflight.wait,
	}
	s.release = rt.close
	return s
}

// Name returns the store name.
func (s *Store[S, A]) Name() string {
	if s == nil {
		return ""
	}
	return s.name
}

// Send dispatches action. Follow-up actions produced synchronously by effects
// are applied before Send returns.
func (s *Store[S, A]) Send(action A) error {
	if !s.initialized() {
		return domain.ErrNotInitialized
	}
	if s.Closed() {
		return domain.ErrStoreClosed
	}
	return s.send(action)
}

// Value returns a snapshot of the current state.
func (s *Store[S, A]) Value() S {
	if !s.initialized() {
		var zero S
		return zero
	}
	return s.get()
}

// Subscribe registers fn for state changes. Whether the current state is
// replayed first depends on the store (see WithHotState and Observe).
func (s *Store[S, A]) Subscribe(fn func(S)) *cell.Subscription {
	if !s.initialized() || s.Closed() {
		return cell.Canceled()
	}
	return s.subscribe(fn)
}

// Wait blocks until every effect started by the store, and every action they
// delivered, has finished, or until ctx is done.
func (s *Store[S, A]) Wait(ctx context.Context) error {
	if !s.initialized() {
		return domain.ErrNotInitialized
	}
	return s.wait(ctx)
}

// Close releases the store. On a root it cancels the effect context and
// rejects further sends. On a derived store it detaches only the derived store.
func (s *Store[S, A]) Close() error {
	if !s.initialized() {
		return domain.ErrNotInitialized
	}
	if s.closed.CompareAndSwap(false, true) && s.release != nil {
		s.release()
	}
	return nil
}

// Closed reports whether the store, or the root it derives from, was closed.
func (s *Store[S, A]) Closed() bool {
	if s == nil {
		return false
	}
	if s.closed.Load() {
		return true
	}
	return s.upstream != nil && s.upstream()
}

func (s *Store[S, A]) initialized() bool {
	return s != nil && s.send != nil
}
