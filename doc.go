/*
Package loom is a unidirectional state runtime: one Store owns the state, a
Reducer is the only code allowed to change it, and side effects are returned as
Effect values that feed their results back as new actions.

# Concept

A reducer mutates state in place for one action and returns effects:

	func counter(s *State, a Action) []*loom.Effect[Action] {
		switch a.(type) {
		case Incr:
			s.Count++
		}
		return nil
	}

The Store applies actions one at a time, in arrival order, from any goroutine.
Follow-up actions produced by effects are queued behind the action that caused
them, never applied re-entrantly.

# Composition

Reducers for independent features are written against their own state and
action types and composed into the application's:

  - Combine runs reducers in order against the same state and action.
  - Pullback lifts a feature reducer through a lens.Lens (state) and a
    lens.Prism (action).
  - reducer.Logging and other reducer.HigherOrder values decorate a reducer.

Derived stores (store.View, store.Observe) expose part of a store to code that
should not see the rest.

# Effects

Effects decide where they run: Effect.RunOn moves the work onto an executor
and Effect.ReceiveOn moves the delivery of the result. An effect delivers at
most one action. Failures are either swallowed or encoded as an action payload.

# Packages

  - pkg/effect, pkg/reducer, pkg/lens, pkg/cell, pkg/store: the runtime.
  - pkg/ports and pkg/adapters: snapshot storage (memory, file, redis, sqlite)
    and the HTTP adapter.
  - pkg/persistence: effects reading and writing snapshots, plus middlewares.
  - pkg/session: one store per session ID, restored from snapshots.
  - pkg/observability: Prometheus metrics and log hooks.
*/
package loom
