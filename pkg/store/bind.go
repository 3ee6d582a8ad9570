package store

// Binding is a two-way handle on one value of a store's state: reads come from
// the state and writes become actions.
type Binding[T any] struct {
	get func() T
	set func(T) error
}

// Bind creates a Binding that reads get(state) and sends event(v) on Set.
func Bind[S, A, T any](s *Store[S, A], get func(S) T, event func(T) A) Binding[T] {
	return Binding[T]{
		get: func() T { return get(s.Value()) },
		set: func(v T) error { return s.Send(event(v)) },
	}
}

// Get returns the bound value.
func (b Binding[T]) Get() T {
	if b.get == nil {
		var zero T
		return zero
	}
	return b.get()
}

// Set sends the action for v.
func (b Binding[T]) Set(v T) error {
	if b.set == nil {
		return nil
	}
	return b.set(v)
}
