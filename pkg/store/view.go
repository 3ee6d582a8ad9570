package store

import (
	"github.com/aretw0/loom/pkg/cell"
)

// View derives a cold store over a narrower state and action type.
//
// The view has no storage of its own. Send forwards lift(action) to parent and
// Value re-derives project(parent.Value()), so after Send returns the view
// always reflects the parent's updated state.
func View[S, A, L, LA any](parent *Store[S, A], project func(S) L, lift func(LA) A) *Store[L, LA] {
	if !parent.initialized() {
		return &Store[L, LA]{}
	}
	return &Store[L, LA]{
		name: parent.name,
		get:  func() L { return project(parent.Value()) },
		send: func(a LA) error { return parent.Send(lift(a)) },
		subscribe: func(fn func(L)) *cell.Subscription {
			return parent.Subscribe(func(s S) { fn(project(s)) })
		},
		wait:     parent.Wait,
		upstream: parent.Closed,
	}
}

// ViewState derives a cold store that narrows only the state.
func ViewState[S, A, L any](parent *Store[S, A], project func(S) L) *Store[L, A] {
	return View(parent, project, func(a A) A { return a })
}

// ViewAction derives a cold store that narrows only the actions.
func ViewAction[S, A, LA any](parent *Store[S, A], lift func(LA) A) *Store[S, LA] {
	return View(parent, func(s S) S { return s }, lift)
}

// Stateless derives a store that can send actions but exposes no state.
func Stateless[S, A any](parent *Store[S, A]) *Store[struct{}, A] {
	return ViewState(parent, func(S) struct{} { return struct{}{} })
}

// Observe derives a hot store. It keeps its own copy of project(state),
// refreshed through a subscription to parent, and replays it to new
// subscribers. Close must be called to detach it from parent.
func Observe[S, A, L, LA any](parent *Store[S, A], project func(S) L, lift func(LA) A) *Store[L, LA] {
	if !parent.initialized() {
		return &Store[L, LA]{}
	}

	local := cell.Hot(project(parent.Value()))
	sub := parent.Subscribe(func(s S) { local.Set(project(s)) })

	return &Store[L, LA]{
		name:      parent.name,
		get:       local.Value,
		send:      func(a LA) error { return parent.Send(lift(a)) },
		subscribe: local.Subscribe,
		wait:      parent.Wait,
		release:   sub.Cancel,
		upstream:  parent.Closed,
	}
}
