package store

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/aretw0/loom/internal/runtime"
	"github.com/aretw0/loom/pkg/cell"
	"github.com/aretw0/loom/pkg/domain"
	"github.com/aretw0/loom/pkg/effect"
	"github.com/aretw0/loom/pkg/reducer"
	"github.com/google/uuid"
)

// root is the runtime behind a store created with New.
type root[S, A any] struct {
	name    string
	state   cell.Cell[S]
	reducer reducer.Reducer[S, A]
	mailbox runtime.Mailbox[A]
	main    effect.Executor
	hooks   domain.Hooks
	logger  *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	closed atomic.Bool

	inflight inflight
}

func newRoot[S, A any](initial S, r reducer.Reducer[S, A], cfg config) *root[S, A] {
	if r == nil {
		r = reducer.Noop[S, A]()
	}
	state := cell.Cold(initial)
	if cfg.hot {
		state = cell.Hot(initial)
	}
	ctx, cancel := context.WithCancel(cfg.ctx)
	return &root[S, A]{
		name:    cfg.name,
		state:   state,
		reducer: r,
		main:    cfg.main,
		hooks:   cfg.hooks,
		logger:  cfg.logger,
		ctx:     ctx,
		cancel:  cancel,
	}
}

func (r *root[S, A]) send(action A) error {
	return r.post(action, nil)
}

// post queues action and drains the mailbox. done runs once the action has
// been reduced, which may be later, on the goroutine holding the token.
func (r *root[S, A]) post(action A, done func()) error {
	if r.closed.Load() {
		return domain.ErrStoreClosed
	}
	r.mailbox.Post(action, done)
	r.mailbox.Drain(r.apply)
	return nil
}

// apply runs one action through the reducer. It only ever runs while the
// mailbox token is held.
func (r *root[S, A]) apply(action A) {
	if r.closed.Load() {
		r.drop(action, "store closed")
		return
	}

	name := domain.ActionName(action)
	start := time.Now()

	state := r.state.Value()
	effects := r.reducer(&state, action)
	r.state.Set(state)

	id := uuid.NewString()
	r.logger.Debug("Action reduced",
		"store", r.name,
		"action", name,
		"action_id", id,
		"effects", len(effects),
	)
	if r.hooks.OnAction != nil {
		r.hooks.OnAction(r.ctx, &domain.ActionEvent{
			EventBase: domain.EventBase{
				Timestamp: start,
				Type:      domain.EventAction,
				Store:     r.name,
			},
			ID:       id,
			Name:     name,
			Action:   action,
			Duration: time.Since(start),
			Effects:  len(effects),
		})
	}

	for i, e := range effects {
		if r.hooks.OnEffectStart != nil {
			r.hooks.OnEffectStart(r.ctx, &domain.EffectEvent{
				EventBase: domain.EventBase{
					Timestamp: time.Now(),
					Type:      domain.EventEffectStart,
					Store:     r.name,
				},
				ActionID: id,
				Action:   name,
				Index:    i,
			})
		}

		r.inflight.add()
		if err := e.Run(r.ctx, r.deliver, r.inflight.done); err != nil {
			r.inflight.done()
			r.logger.Warn("Effect not started",
				"store", r.name,
				"action", name,
				"index", i,
				"err", err,
			)
		}
	}
}

// deliver feeds an effect's action back into the store through the main executor.
func (r *root[S, A]) deliver(action A) {
	if r.closed.Load() {
		r.drop(action, "store closed")
		return
	}
	r.inflight.add()
	r.main.Execute(func() {
		// The delivery stays in flight until the action is reduced, not merely queued.
		if err := r.post(action, r.inflight.done); err != nil {
			r.inflight.done()
			reason := err.Error()
			if errors.Is(err, domain.ErrStoreClosed) {
				reason = "store closed"
			}
			r.drop(action, reason)
		}
	})
}

func (r *root[S, A]) drop(action A, reason string) {
	name := domain.ActionName(action)
	r.logger.Debug("Action dropped",
		"store", r.name,
		"action", name,
		"reason", reason,
	)
	if r.hooks.OnDrop != nil {
		r.hooks.OnDrop(r.ctx, &domain.DropEvent{
			EventBase: domain.EventBase{
				Timestamp: time.Now(),
				Type:      domain.EventDrop,
				Store:     r.name,
			},
			Name:   name,
			Action: action,
			Reason: reason,
		})
	}
}

func (r *root[S, A]) close() {
	if r.closed.CompareAndSwap(false, true) {
		r.cancel()
		r.logger.Debug("Store closed", "store", r.name)
	}
}

// inflight counts effects and deliveries that have not finished yet.
type inflight struct {
	mu   sync.Mutex
	n    int
	idle chan struct{}
}

func (f *inflight) add() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.n == 0 {
		f.idle = make(chan struct{})
	}
	f.n++
}

func (f *inflight) done() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.n == 0 {
		return
	}
	f.n--
	if f.n == 0 {
		close(f.idle)
	}
}

func (f *inflight) wait(ctx context.Context) error {
	for {
		f.mu.Lock()
		if f.n == 0 {
			f.mu.Unlock()
			return nil
		}
		idle := f.idle
		f.mu.Unlock()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-idle:
		}
	}
}
