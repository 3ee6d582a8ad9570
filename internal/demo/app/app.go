// Package app assembles the demo features into one store: the counter, the
// prime modal and the favorites list share a single AppState, and an activity
// feed records every favorite that is added or removed.
package app

import (
	"log/slog"
	"slices"
	"time"

	"github.com/aretw0/loom/internal/demo/counter"
	"github.com/aretw0/loom/internal/demo/favorites"
	"github.com/aretw0/loom/internal/demo/primemodal"
	"github.com/aretw0/loom/pkg/domain"
	"github.com/aretw0/loom/pkg/effect"
	"github.com/aretw0/loom/pkg/lens"
	"github.com/aretw0/loom/pkg/ports"
	"github.com/aretw0/loom/pkg/reducer"
)

// State is the whole application state.
type State struct {
	Count                 int        `json:"count"`
	FavoritePrimes        []int      `json:"favorite_primes"`
	FavoritesSaveError    string     `json:"favorites_save_error,omitempty"`
	IsPrime               *bool      `json:"is_prime,omitempty"`
	AlertNthPrime         *string    `json:"alert_nth_prime,omitempty"`
	NthPrimeButtonEnabled bool       `json:"nth_prime_button_enabled"`
	PrimeModalShown       bool       `json:"prime_modal_shown"`
	LoggedInUser          *User      `json:"logged_in_user,omitempty"`
	ActivityFeed          []Activity `json:"activity_feed"`
}

// NewState returns the state the app starts in.
func NewState() State {
	return State{NthPrimeButtonEnabled: true}
}

// User is the signed-in user.
type User struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	Bio  string `json:"bio"`
}

// ActivityType classifies an activity feed entry.
type ActivityType string

const (
	AddedFavoritePrime   ActivityType = "added_favorite_prime"
	RemovedFavoritePrime ActivityType = "removed_favorite_prime"
)

// Activity is one activity feed entry.
type Activity struct {
	Timestamp time.Time    `json:"timestamp"`
	Type      ActivityType `json:"type"`
	Prime     int          `json:"prime"`
}

// Action is one of the feature actions wrapped below.
type Action interface {
	appAction()
}

type (
	// Counter wraps a counter action.
	Counter struct{ Action counter.Action }
	// PrimeModal wraps a prime modal action.
	PrimeModal struct{ Action primemodal.Action }
	// Favorites wraps a favorites action.
	Favorites struct{ Action favorites.Action }
)

func (Counter) appAction()    {}
func (PrimeModal) appAction() {}
func (Favorites) appAction()  {}

func (a Counter) ActionName() string    { return domain.ActionName(a.Action) }
func (a PrimeModal) ActionName() string { return domain.ActionName(a.Action) }
func (a Favorites) ActionName() string  { return domain.ActionName(a.Action) }

// Lenses from State to each feature's state.
var (
	CounterState = lens.Lens[State, counter.State]{
		Get: func(s State) counter.State {
			return counter.State{
				AlertNthPrime:         s.AlertNthPrime,
				Count:                 s.Count,
				NthPrimeButtonEnabled: s.NthPrimeButtonEnabled,
				PrimeModalShown:       s.PrimeModalShown,
			}
		},
		Set: func(s *State, c counter.State) {
			s.AlertNthPrime = c.AlertNthPrime
			s.Count = c.Count
			s.NthPrimeButtonEnabled = c.NthPrimeButtonEnabled
			s.PrimeModalShown = c.PrimeModalShown
		},
	}

	PrimeModalState = lens.Lens[State, primemodal.State]{
		Get: func(s State) primemodal.State {
			return primemodal.State{Count: s.Count, FavoritePrimes: s.FavoritePrimes, IsPrime: s.IsPrime}
		},
		Set: func(s *State, m primemodal.State) {
			s.Count = m.Count
			s.FavoritePrimes = m.FavoritePrimes
			s.IsPrime = m.IsPrime
		},
	}

	FavoritesState = lens.Lens[State, favorites.State]{
		Get: func(s State) favorites.State {
			return favorites.State{Primes: s.FavoritePrimes, SaveError: s.FavoritesSaveError}
		},
		Set: func(s *State, f favorites.State) {
			s.FavoritePrimes = f.Primes
			s.FavoritesSaveError = f.SaveError
		},
	}
)

// Prisms from Action to each feature's actions.
var (
	CounterAction = lens.Prism[Action, counter.Action]{
		Extract: func(a Action) (counter.Action, bool) {
			c, ok := a.(Counter)
			return c.Action, ok && c.Action != nil
		},
		Embed: func(a counter.Action) Action { return Counter{a} },
	}

	PrimeModalAction = lens.Prism[Action, primemodal.Action]{
		Extract: func(a Action) (primemodal.Action, bool) {
			m, ok := a.(PrimeModal)
			return m.Action, ok && m.Action != nil
		},
		Embed: func(a primemodal.Action) Action { return PrimeModal{a} },
	}

	FavoritesAction = lens.Prism[Action, favorites.Action]{
		Extract: func(a Action) (favorites.Action, bool) {
			f, ok := a.(Favorites)
			return f.Action, ok && f.Action != nil
		},
		Embed: func(a favorites.Action) Action { return Favorites{a} },
	}
)

// Environment wires the app to the outside world.
type Environment struct {
	// Work runs the prime computations and favorites I/O. Defaults to effect.Background.
	Work effect.Executor
	// Main receives their results. Defaults to effect.Immediate.
	Main effect.Executor
	// Snapshots stores the favorites list.
	Snapshots    ports.SnapshotStore
	FavoritesKey string
	// Now stamps activity feed entries. Defaults to time.Now.
	Now func() time.Time
	// Logger, when set, logs every applied action.
	Logger *slog.Logger
}

func (env Environment) withDefaults() Environment {
	if env.Work == nil {
		env.Work = effect.Background
	}
	if env.Main == nil {
		env.Main = effect.Immediate
	}
	if env.Now == nil {
		env.Now = time.Now
	}
	return env
}

// Base combines the feature reducers over State without any decoration.
func Base(env Environment) reducer.Reducer[State, Action] {
	env = env.withDefaults()
	return reducer.Combine(
		reducer.Pullback(counter.Reducer(counter.Environment{Work: env.Work, Main: env.Main}), CounterState, CounterAction),
		reducer.Pullback(primemodal.Reducer(primemodal.Environment{Work: env.Work, Main: env.Main}), PrimeModalState, PrimeModalAction),
		reducer.Pullback(favorites.Reducer(favorites.Environment{
			Snapshots: env.Snapshots,
			Key:       env.FavoritesKey,
			Work:      env.Work,
			Main:      env.Main,
		}), FavoritesState, FavoritesAction),
	)
}

// Reducer is Base decorated with logging and the activity feed.
func Reducer(env Environment) reducer.Reducer[State, Action] {
	env = env.withDefaults()
	decorators := []reducer.HigherOrder[State, Action]{ActivityFeed(env.Now)}
	if env.Logger != nil {
		decorators = append([]reducer.HigherOrder[State, Action]{reducer.WithLogging[State, Action](env.Logger)}, decorators...)
	}
	return reducer.Apply(Base(env), decorators...)
}

// ActivityFeed records favorite additions and removals before the wrapped
// reducer sees the action, so entries describe the state the user acted on.
func ActivityFeed(now func() time.Time) reducer.HigherOrder[State, Action] {
	return func(next reducer.Reducer[State, Action]) reducer.Reducer[State, Action] {
		return func(s *State, action Action) []*effect.Effect[Action] {
			record := func(t ActivityType, prime int) {
				s.ActivityFeed = append(slices.Clip(s.ActivityFeed), Activity{Timestamp: now(), Type: t, Prime: prime})
			}

			switch a := action.(type) {
			case PrimeModal:
				switch a.Action.(type) {
				case primemodal.SaveFavorite:
					record(AddedFavoritePrime, s.Count)
				case primemodal.RemoveFavorite:
					record(RemovedFavoritePrime, s.Count)
				}
			case Favorites:
				if del, ok := a.Action.(favorites.DeleteAt); ok {
					for _, p := range favorites.Removed(s.FavoritePrimes, del.Indices) {
						record(RemovedFavoritePrime, p)
					}
				}
			}
			return next(s, action)
		}
	}
}
