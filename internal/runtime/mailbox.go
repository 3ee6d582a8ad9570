package runtime

import (
	"sync"
	"sync/atomic"
)

// Mailbox serializes the application of messages posted from any goroutine.
//
// Exactly one caller at a time holds the dispatch token. Posts made while the
// token is held, including re-entrant posts from inside apply, are queued and
// applied by the holder before it lets go, in the order they were posted.
type Mailbox[M any] struct {
	token atomic.Bool

	mu    sync.Mutex
	queue []letter[M]
}

type letter[M any] struct {
	msg  M
	done func()
}

// Post enqueues m. done, when non-nil, runs after m has been applied, on the
// goroutine that applied it, even if apply panics.
func (b *Mailbox[M]) Post(m M, done func()) {
	b.mu.Lock()
	b.queue = append(b.queue, letter[M]{msg: m, done: done})
	b.mu.Unlock()
}

// Len reports the number of queued messages.
func (b *Mailbox[M]) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.queue)
}

// Drain applies queued messages until the queue is empty. It returns false
// without applying anything when another caller already holds the token;
// that caller will pick up whatever was posted.
func (b *Mailbox[M]) Drain(apply func(M)) bool {
	drained := false
	for {
		if !b.token.CompareAndSwap(false, true) {
			return drained
		}
		b.drainHeld(apply)
		drained = true

		// A post that raced with the release may have seen the token held and
		// given up. Take another turn if so.
		if b.Len() == 0 {
			return drained
		}
	}
}

func (b *Mailbox[M]) drainHeld(apply func(M)) {
	defer b.token.Store(false)
	for {
		l, ok := b.pop()
		if !ok {
			return
		}
		l.deliver(apply)
	}
}

func (l letter[M]) deliver(apply func(M)) {
	if l.done != nil {
		defer l.done()
	}
	apply(l.msg)
}

func (b *Mailbox[M]) pop() (letter[M], bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.queue) == 0 {
		return letter[M]{}, false
	}
	l := b.queue[0]
	b.queue[0] = letter[M]{}
	b.queue = b.queue[1:]
	return l, true
}
