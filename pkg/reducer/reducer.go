// Package reducer defines reducers and the operators that compose them.
//
// A Reducer mutates state in place for one action and returns the effects to
// run afterwards. Reducers must terminate and must not block: I/O belongs in
// the returned effects.
package reducer

import (
	"github.com/aretw0/loom/pkg/effect"
	"github.com/aretw0/loom/pkg/lens"
)

// Reducer applies action to state and returns the effects to run next.
type Reducer[S, A any] func(state *S, action A) []*effect.Effect[A]

// HigherOrder transforms a reducer, for example to add logging or auditing.
type HigherOrder[S, A any] func(Reducer[S, A]) Reducer[S, A]

// Noop returns a reducer that ignores every action.
func Noop[S, A any]() Reducer[S, A] {
	return func(*S, A) []*effect.Effect[A] { return nil }
}

// Combine runs reducers in order against the same state and action.
// Later reducers observe the mutations of earlier ones, and effects are
// concatenated in the same order.
func Combine[S, A any](reducers ...Reducer[S, A]) Reducer[S, A] {
	return func(state *S, action A) []*effect.Effect[A] {
		var effects []*effect.Effect[A]
		for _, r := range reducers {
			effects = append(effects, r(state, action)...)
		}
		return effects
	}
}

// Pullback lifts a reducer over local state and actions into one over global
// state and actions.
//
// When the action prism does not match, the lifted reducer leaves state alone
// and returns nothing. Otherwise the local state is read through value, reduced,
// written back, and every effect's action is embedded into the global type.
func Pullback[LS, LA, GS, GA any](r Reducer[LS, LA], value lens.Lens[GS, LS], action lens.Prism[GA, LA]) Reducer[GS, GA] {
	return func(global *GS, ga GA) []*effect.Effect[GA] {
		la, ok := action.Extract(ga)
		if !ok {
			return nil
		}

		local := value.Get(*global)
		effects := r(&local, la)
		value.Set(global, local)

		if len(effects) == 0 {
			return nil
		}
		lifted := make([]*effect.Effect[GA], 0, len(effects))
		for _, e := range effects {
			lifted = append(lifted, effect.Map(e, action.Embed))
		}
		return lifted
	}
}

// Compose chains higher-order reducers so that Compose(f, g)(r) is f(g(r)).
func Compose[S, A any](hs ...HigherOrder[S, A]) HigherOrder[S, A] {
	return func(r Reducer[S, A]) Reducer[S, A] {
		for i := len(hs) - 1; i >= 0; i-- {
			r = hs[i](r)
		}
		return r
	}
}

// Apply wraps r with hs, outermost first.
func Apply[S, A any](r Reducer[S, A], hs ...HigherOrder[S, A]) Reducer[S, A] {
	return Compose(hs...)(r)
}
