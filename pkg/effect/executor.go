package effect

import (
	"context"
	"sync"
	"time"
)

// Executor is the execution context an effect's work or delivery runs on.
type Executor interface {
	Execute(f func())
}

// ExecutorFunc adapts a function to the Executor interface.
type ExecutorFunc func(f func())

// Execute calls fn(f).
func (fn ExecutorFunc) Execute(f func()) { fn(f) }

var (
	// Immediate runs f inline on the calling goroutine.
	Immediate Executor = ExecutorFunc(func(f func()) { f() })

	// Background runs f on a new goroutine.
	Background Executor = ExecutorFunc(func(f func()) { go f() })
)

// After returns an executor that runs f on a new goroutine once d has elapsed.
func After(d time.Duration) Executor {
	return ExecutorFunc(func(f func()) {
		time.AfterFunc(d, f)
	})
}

// Queue is a serial executor: work is enqueued from any goroutine and run one
// item at a time by whoever drains it. It plays the role of a main loop.
type Queue struct {
	mu      sync.Mutex
	items   []func()
	pending chan struct{}
}

// NewQueue creates an empty queue.
func NewQueue() *Queue {
	return &Queue{pending: make(chan struct{}, 1)}
}

// Execute enqueues f. It never blocks.
func (q *Queue) Execute(f func()) {
	q.mu.Lock()
	q.items = append(q.items, f)
	q.mu.Unlock()

	select {
	case q.pending <- struct{}{}:
	default:
	}
}

// Pending signals when the queue may hold work. Receivers should call Drain.
func (q *Queue) Pending() <-chan struct{} {
	return q.pending
}

// Len reports how many items are waiting.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Drain runs everything currently enqueued, including work enqueued by the
// items themselves, and returns how many items ran.
func (q *Queue) Drain() int {
	n := 0
	for {
		q.mu.Lock()
		if len(q.items) == 0 {
			q.mu.Unlock()
			return n
		}
		f := q.items[0]
		q.items[0] = nil
		q.items = q.items[1:]
		q.mu.Unlock()

		f()
		n++
	}
}

// Run drains the queue whenever work arrives until ctx is done.
func (q *Queue) Run(ctx context.Context) error {
	for {
		q.Drain()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-q.pending:
		}
	}
}
