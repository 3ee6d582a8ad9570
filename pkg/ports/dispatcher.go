package ports

// Dispatcher accepts actions of type A. *store.Store satisfies it, as do views.
// Adapters that only need to send (HTTP handlers, CLIs) should depend on this.
type Dispatcher[A any] interface {
	Send(action A) error
}

// StateReader exposes a snapshot of state S.
type StateReader[S any] interface {
	Value() S
}
