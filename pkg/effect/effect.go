package effect

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
)

// ErrConsumed is returned when an effect (or an effect it wraps) is run a second time.
var ErrConsumed = errors.New("effect already run")

// runFunc is the raw body of an effect. send delivers the follow-up action and
// done reports that the work, and any delivery it scheduled, has finished.
type runFunc[A any] func(ctx context.Context, send func(A), done func()) error

// Effect is a deferred, single-use unit of work that yields at most one action.
//
// Effects never touch state. They communicate back only through the send
// callback handed to Run, and the goroutine on which the work and the delivery
// happen is chosen by the effect itself (see RunOn and ReceiveOn).
//
// A nil *Effect is valid and behaves like None.
type Effect[A any] struct {
	used atomic.Bool
	run  runFunc[A]
}

func newEffect[A any](run runFunc[A]) *Effect[A] {
	return &Effect[A]{run: run}
}

// New creates an effect from a body that may call send once.
// The effect is finished when work returns. Bodies that hand send to another
// goroutine must use Callback instead.
// If ctx is already cancelled when the effect starts, work is skipped.
func New[A any](work func(ctx context.Context, send func(A))) *Effect[A] {
	return newEffect(func(ctx context.Context, send func(A), done func()) error {
		defer done()
		if ctx.Err() != nil {
			return nil
		}
		work(ctx, send)
		return nil
	})
}

// Callback adapts callback-style APIs. The body must eventually call exactly one
// of resolve or skip, from any goroutine; the effect is finished at that point.
func Callback[A any](work func(ctx context.Context, resolve func(A), skip func())) *Effect[A] {
	return newEffect(func(ctx context.Context, send func(A), done func()) error {
		if ctx.Err() != nil {
			done()
			return nil
		}
		var once sync.Once
		resolve := func(a A) {
			once.Do(func() {
				send(a)
				done()
			})
		}
		skip := func() { once.Do(done) }
		work(ctx, resolve, skip)
		return nil
	})
}

// Sync creates an effect that resolves inline to f().
func Sync[A any](f func() A) *Effect[A] {
	return New(func(_ context.Context, send func(A)) {
		send(f())
	})
}

// Optional creates an effect that sends the value only when f reports it as present.
func Optional[A any](f func(ctx context.Context) (A, bool)) *Effect[A] {
	return New(func(ctx context.Context, send func(A)) {
		if a, ok := f(ctx); ok {
			send(a)
		}
	})
}

// Attempt runs f and maps a successful value to an action.
// Errors are swallowed: the effect then produces no action.
func Attempt[T, A any](f func(ctx context.Context) (T, error), onValue func(T) A) *Effect[A] {
	return New(func(ctx context.Context, send func(A)) {
		v, err := f(ctx)
		if err != nil {
			return
		}
		send(onValue(v))
	})
}

// Result runs f and always sends toAction(value, err), so the reducer decides
// how a failure is presented.
func Result[T, A any](f func(ctx context.Context) (T, error), toAction func(T, error) A) *Effect[A] {
	return New(func(ctx context.Context, send func(A)) {
		v, err := f(ctx)
		send(toAction(v, err))
	})
}

// FireAndForget creates an effect that performs work and never sends an action.
func FireAndForget[A any](f func(ctx context.Context)) *Effect[A] {
	return New(func(ctx context.Context, _ func(A)) {
		f(ctx)
	})
}

// None creates an effect that does nothing.
func None[A any]() *Effect[A] {
	return New(func(context.Context, func(A)) {})
}

// Map transforms the eventual action through f before delivery.
// It is how a child effect is embedded into a parent's action type.
func Map[A, B any](e *Effect[A], f func(A) B) *Effect[B] {
	if e == nil {
		return nil
	}
	return newEffect(func(ctx context.Context, send func(B), done func()) error {
		return e.start(ctx, func(a A) { send(f(a)) }, done)
	})
}

// RunOn moves the work of the effect onto exec.
func (e *Effect[A]) RunOn(exec Executor) *Effect[A] {
	if e == nil {
		return nil
	}
	return newEffect(func(ctx context.Context, send func(A), done func()) error {
		if err := e.claim(); err != nil {
			return err
		}
		exec.Execute(func() {
			if err := e.run(ctx, send, done); err != nil {
				done()
			}
		})
		return nil
	})
}

// ReceiveOn moves the delivery of the action onto exec.
// The effect is finished only after the delivery itself has executed.
func (e *Effect[A]) ReceiveOn(exec Executor) *Effect[A] {
	if e == nil {
		return nil
	}
	return newEffect(func(ctx context.Context, send func(A), done func()) error {
		var pending atomic.Int32
		pending.Store(1)
		release := func() {
			if pending.Add(-1) == 0 {
				done()
			}
		}
		return e.start(ctx, func(a A) {
			pending.Add(1)
			exec.Execute(func() {
				defer release()
				send(a)
			})
		}, release)
	})
}

// Run starts the effect. send receives at most one action; extra calls from a
// misbehaving body are dropped. done, when non-nil, is called exactly once after
// the work and any delivery it scheduled have finished. done is not called when
// Run returns an error.
func (e *Effect[A]) Run(ctx context.Context, send func(A), done func()) error {
	if done == nil {
		done = func() {}
	}
	if e == nil {
		done()
		return nil
	}
	if send == nil {
		send = func(A) {}
	}

	var sendOnce, doneOnce sync.Once
	deliver := func(a A) { sendOnce.Do(func() { send(a) }) }
	finish := func() { doneOnce.Do(done) }
	return e.start(ctx, deliver, finish)
}

func (e *Effect[A]) start(ctx context.Context, send func(A), done func()) error {
	if err := e.claim(); err != nil {
		return err
	}
	return e.run(ctx, send, done)
}

func (e *Effect[A]) claim() error {
	if !e.used.CompareAndSwap(false, true) {
		return ErrConsumed
	}
	return nil
}
