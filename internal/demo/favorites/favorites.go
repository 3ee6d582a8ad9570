// Package favorites is the favorite primes list with load and save.
package favorites

import (
	"slices"

	"github.com/aretw0/loom/pkg/effect"
	"github.com/aretw0/loom/pkg/persistence"
	"github.com/aretw0/loom/pkg/ports"
	"github.com/aretw0/loom/pkg/reducer"
)

// DefaultKey is the snapshot key the list is saved under.
const DefaultKey = "favorite-primes"

// State is the favorites list and the outcome of the last save.
type State struct {
	Primes []int `json:"primes"`
	// SaveError holds the last failed save. A successful save clears it.
	SaveError string `json:"save_error,omitempty"`
}

// Action is one of the favorites actions below.
type Action interface {
	favoritesAction()
}

type (
	// DeleteAt removes the primes at the given indices of the list.
	DeleteAt struct {
		Indices []int `json:"indices"`
	}
	// LoadRequested reads the saved list.
	LoadRequested struct{}
	// SaveRequested writes the current list.
	SaveRequested struct{}
	// Loaded replaces the list with a saved one.
	Loaded struct {
		Primes []int
	}
	// Saved reports the outcome of a write and is recorded in State.SaveError.
	// Err is nil on success.
	Saved struct {
		Err error
	}
)

func (DeleteAt) favoritesAction()      {}
func (LoadRequested) favoritesAction() {}
func (SaveRequested) favoritesAction() {}
func (Loaded) favoritesAction()        {}
func (Saved) favoritesAction()         {}

// Environment is where the list is saved and where the I/O runs.
type Environment struct {
	Snapshots ports.SnapshotStore
	Key       string
	// Work runs loads and saves. Nil runs them on the dispatching goroutine.
	Work effect.Executor
	// Main receives their results. Nil delivers on the goroutine that did the I/O.
	Main effect.Executor
}

func (env Environment) key() string {
	if env.Key == "" {
		return DefaultKey
	}
	return env.Key
}

func (env Environment) schedule(e *effect.Effect[Action]) *effect.Effect[Action] {
	if env.Work != nil {
		e = e.RunOn(env.Work)
	}
	if env.Main != nil {
		e = e.ReceiveOn(env.Main)
	}
	return e
}

// Reducer returns the favorites reducer for env.
// A missing or unreadable saved list leaves the state unchanged.
func Reducer(env Environment) reducer.Reducer[State, Action] {
	return func(s *State, action Action) []*effect.Effect[Action] {
		switch a := action.(type) {
		case DeleteAt:
			s.Primes = Delete(s.Primes, a.Indices)
		case LoadRequested:
			return []*effect.Effect[Action]{
				env.schedule(persistence.LoadOptional(env.Snapshots, env.key(), func(p []int) Action {
					return Loaded{Primes: p}
				})),
			}
		case SaveRequested:
			return []*effect.Effect[Action]{
				env.schedule(persistence.SaveThen(env.Snapshots, env.key(), slices.Clone(s.Primes), func(err error) Action {
					return Saved{Err: err}
				})),
			}
		case Loaded:
			s.Primes = slices.Clone(a.Primes)
		case Saved:
			s.SaveError = ""
			if a.Err != nil {
				s.SaveError = a.Err.Error()
			}
		}
		return nil
	}
}

// Delete returns primes without the entries at indices. Indices out of range
// and duplicates are ignored, and removal runs from the highest index down so
// earlier removals never shift later ones.
func Delete(primes []int, indices []int) []int {
	order := slices.Clone(indices)
	slices.Sort(order)
	order = slices.Compact(order)

	out := slices.Clone(primes)
	for _, i := range slices.Backward(order) {
		if i < 0 || i >= len(out) {
			continue
		}
		out = slices.Delete(out, i, i+1)
	}
	return out
}

// Removed returns the primes at indices that Delete would remove, in index order.
func Removed(primes []int, indices []int) []int {
	order := slices.Clone(indices)
	slices.Sort(order)
	order = slices.Compact(order)

	var out []int
	for _, i := range order {
		if i >= 0 && i < len(primes) {
			out = append(out, primes[i])
		}
	}
	return out
}
