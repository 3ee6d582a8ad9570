// Package primemodal is the "is this prime?" modal: it checks the current
// count and saves or removes it from the favorite primes.
package primemodal

import (
	"slices"

	"github.com/aretw0/loom/internal/demo/primes"
	"github.com/aretw0/loom/pkg/effect"
	"github.com/aretw0/loom/pkg/reducer"
)

// State is the modal's view of the app.
type State struct {
	Count          int   `json:"count"`
	FavoritePrimes []int `json:"favorite_primes"`
	// IsPrime is nil while the check is running.
	IsPrime *bool `json:"is_prime,omitempty"`
}

// Favorite reports whether the count is already a favorite.
func (s State) Favorite() bool {
	return slices.Contains(s.FavoritePrimes, s.Count)
}

// Action is one of the modal actions below.
type Action interface {
	primeModalAction()
}

type (
	// StartLoadingIsPrime checks the current count.
	StartLoadingIsPrime struct{}
	// IsPrimeResponse carries the check result.
	IsPrimeResponse struct {
		IsPrime bool
	}
	// SaveFavorite adds the count to the favorites.
	SaveFavorite struct{}
	// RemoveFavorite removes every occurrence of the count from the favorites.
	RemoveFavorite struct{}
)

func (StartLoadingIsPrime) primeModalAction() {}
func (IsPrimeResponse) primeModalAction()     {}
func (SaveFavorite) primeModalAction()        {}
func (RemoveFavorite) primeModalAction()      {}

// Environment holds the executors the check runs and reports on.
type Environment struct {
	Work effect.Executor
	Main effect.Executor
}

// Reducer returns the modal reducer for env.
func Reducer(env Environment) reducer.Reducer[State, Action] {
	return func(s *State, action Action) []*effect.Effect[Action] {
		switch a := action.(type) {
		case StartLoadingIsPrime:
			s.IsPrime = nil
			n := s.Count
			check := effect.Sync(func() Action {
				return IsPrimeResponse{IsPrime: primes.IsPrime(n)}
			})
			return []*effect.Effect[Action]{check.RunOn(env.Work).ReceiveOn(env.Main)}
		case IsPrimeResponse:
			s.IsPrime = &a.IsPrime
		case SaveFavorite:
			s.FavoritePrimes = append(slices.Clip(s.FavoritePrimes), s.Count)
		case RemoveFavorite:
			// The backing array is shared with earlier snapshots.
			count := s.Count
			s.FavoritePrimes = slices.DeleteFunc(slices.Clone(s.FavoritePrimes), func(p int) bool { return p == count })
		}
		return nil
	}
}
