package cell

type projected[S, T any] struct {
	src Cell[S]
	get func(S) T
	set func(*S, T)
}

// Project derives a cell of another type. Notifications are get applied to the
// source's notifications (a hot source therefore replays the projected value)
// and writes are routed to the source as a read-modify-write through set.
func Project[S, T any](src Cell[S], get func(S) T, set func(*S, T)) Cell[T] {
	return &projected[S, T]{src: src, get: get, set: set}
}

// Map derives a read-only cell. Writes to it are ignored.
func Map[S, T any](src Cell[S], get func(S) T) Cell[T] {
	return &projected[S, T]{src: src, get: get}
}

func (p *projected[S, T]) Value() T {
	return p.get(p.src.Value())
}

func (p *projected[S, T]) Set(v T) {
	if p.set == nil {
		return
	}
	p.src.Update(func(s *S) { p.set(s, v) })
}

func (p *projected[S, T]) Update(f func(*T)) {
	if p.set == nil {
		return
	}
	p.src.Update(func(s *S) {
		v := p.get(*s)
		f(&v)
		p.set(s, v)
	})
}

func (p *projected[S, T]) Subscribe(fn func(T)) *Subscription {
	return p.src.Subscribe(func(s S) { fn(p.get(s)) })
}

type filtered[T any] struct {
	Cell[T]
	keep func(T) bool
}

// Filter passes through only the notifications keep accepts. Reads and writes
// go to src unchanged.
func Filter[T any](src Cell[T], keep func(T) bool) Cell[T] {
	return &filtered[T]{Cell: src, keep: keep}
}

func (f *filtered[T]) Subscribe(fn func(T)) *Subscription {
	return f.Cell.Subscribe(func(v T) {
		if f.keep(v) {
			fn(v)
		}
	})
}
