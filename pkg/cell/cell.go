// Package cell provides observable value cells.
//
// Two propagation strategies are offered. A cold cell notifies subscribers
// only when it is written. A hot cell also replays its current value to every
// new subscriber, so the first notification an observer sees is the value at
// subscription time.
//
// Notifications are delivered synchronously on the writer's goroutine, in
// subscription order. The one exception is a write that races with a hot
// replay: it is delivered by the subscribing goroutine right after the replay. Writes to one cell are expected to come from a single
// goroutine at a time (the store guarantees this for its state cell).
package cell

import (
	"slices"
	"sync"
	"sync/atomic"
)

// Cell is a mutable value with change notification.
type Cell[T any] interface {
	// Value returns a point-in-time snapshot.
	Value() T
	// Set replaces the value and notifies subscribers.
	Set(v T)
	// Update mutates the value in place and notifies subscribers.
	Update(f func(*T))
	// Subscribe registers fn for future notifications.
	Subscribe(fn func(T)) *Subscription
}

// Subscription is the handle returned by Subscribe.
type Subscription struct {
	active atomic.Bool
	cancel func()
	once   sync.Once
}

func newSubscription(cancel func()) *Subscription {
	s := &Subscription{cancel: cancel}
	s.active.Store(true)
	return s
}

// Canceled returns a subscription that is already inactive.
func Canceled() *Subscription {
	return &Subscription{}
}

// Cancel stops further notifications. It is safe to call more than once and
// from inside a notification.
func (s *Subscription) Cancel() {
	if s == nil {
		return
	}
	s.active.Store(false)
	s.once.Do(func() {
		if s.cancel != nil {
			s.cancel()
		}
	})
}

// Active reports whether the subscription still receives notifications.
func (s *Subscription) Active() bool {
	return s != nil && s.active.Load()
}

type subscriber[T any] struct {
	id    uint64
	fn    func(T)
	sub   *Subscription
	since uint64
	gate  *gate[T]
}

// gate holds notifications back until a replaying subscriber has seen its
// initial value.
type gate[T any] struct {
	mu      sync.Mutex
	open    bool
	pending []T
}

// hold queues v and reports true while the gate is closed.
func (g *gate[T]) hold(v T) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.open {
		return false
	}
	g.pending = append(g.pending, v)
	return true
}

// release delivers held values in order, then opens the gate.
func (g *gate[T]) release(sub *Subscription, fn func(T)) {
	for {
		g.mu.Lock()
		if len(g.pending) == 0 {
			g.open = true
			g.mu.Unlock()
			return
		}
		held := g.pending
		g.pending = nil
		g.mu.Unlock()

		for _, v := range held {
			if sub.Active() {
				fn(v)
			}
		}
	}
}

// notifier fans values out to subscribers. The list is copied before
// publishing so callbacks can subscribe or cancel freely.
type notifier[T any] struct {
	mu     sync.Mutex
	nextID uint64
	subs   []subscriber[T]
}

// add registers fn for writes newer than version since. A non-nil g delays
// delivery until it is released.
func (n *notifier[T]) add(fn func(T), since uint64, g *gate[T]) *Subscription {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.nextID++
	id := n.nextID
	sub := newSubscription(func() { n.remove(id) })
	n.subs = append(n.subs, subscriber[T]{id: id, fn: fn, sub: sub, since: since, gate: g})
	return sub
}

func (n *notifier[T]) remove(id uint64) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.subs = slices.DeleteFunc(n.subs, func(s subscriber[T]) bool { return s.id == id })
}

func (n *notifier[T]) publish(v T, version uint64) {
	n.mu.Lock()
	subs := slices.Clone(n.subs)
	n.mu.Unlock()

	for _, s := range subs {
		if !s.sub.Active() || version <= s.since {
			continue
		}
		if s.gate != nil && s.gate.hold(v) {
			continue
		}
		s.fn(v)
	}
}

type valueCell[T any] struct {
	mu      sync.RWMutex
	value   T
	version uint64
	replay  bool
	notifier[T]
}

// Cold returns a cell that notifies only on write.
func Cold[T any](v T) Cell[T] {
	return &valueCell[T]{value: v}
}

// Hot returns a current-value cell that replays its value on subscribe.
func Hot[T any](v T) Cell[T] {
	return &valueCell[T]{value: v, replay: true}
}

func (c *valueCell[T]) Value() T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.value
}

func (c *valueCell[T]) Set(v T) {
	c.mu.Lock()
	c.value = v
	c.version++
	version := c.version
	c.mu.Unlock()
	c.publish(v, version)
}

func (c *valueCell[T]) Update(f func(*T)) {
	c.mu.Lock()
	f(&c.value)
	v := c.value
	c.version++
	version := c.version
	c.mu.Unlock()
	c.publish(v, version)
}

// Subscribe registers fn. On a hot cell the value read at registration is
// delivered first; writes racing with the replay are held back until after it.
func (c *valueCell[T]) Subscribe(fn func(T)) *Subscription {
	if !c.replay {
		c.mu.RLock()
		defer c.mu.RUnlock()
		return c.add(fn, c.version, nil)
	}

	g := &gate[T]{}
	c.mu.RLock()
	v := c.value
	sub := c.add(fn, c.version, g)
	c.mu.RUnlock()

	fn(v)
	g.release(sub, fn)
	return sub
}
