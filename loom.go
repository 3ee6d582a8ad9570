package loom

import (
	_ "embed"

	"github.com/aretw0/loom/pkg/effect"
	"github.com/aretw0/loom/pkg/lens"
	"github.com/aretw0/loom/pkg/reducer"
	"github.com/aretw0/loom/pkg/store"
)

// Version is the library version, read from the VERSION file.
//
//go:embed VERSION
var Version string

type (
	// Store owns one state value and the reducer allowed to change it.
	Store[S, A any] = store.Store[S, A]
	// Reducer applies an action to state and returns the effects to run next.
	Reducer[S, A any] = reducer.Reducer[S, A]
	// Effect is a deferred, single-use unit of work yielding at most one action.
	Effect[A any] = effect.Effect[A]
)

// NewStore creates a root store holding initial and reducing with r.
func NewStore[S, A any](initial S, r Reducer[S, A], opts ...store.Option) *Store[S, A] {
	return store.New(initial, r, opts...)
}

// Combine runs reducers in order against the same state and action.
func Combine[S, A any](reducers ...Reducer[S, A]) Reducer[S, A] {
	return reducer.Combine(reducers...)
}

// Pullback lifts a reducer over local state and actions into a global one.
func Pullback[LS, LA, GS, GA any](r Reducer[LS, LA], value lens.Lens[GS, LS], action lens.Prism[GA, LA]) Reducer[GS, GA] {
	return reducer.Pullback(r, value, action)
}
