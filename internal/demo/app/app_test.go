package app_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/aretw0/loom/internal/demo/app"
	"github.com/aretw0/loom/internal/demo/counter"
	"github.com/aretw0/loom/internal/demo/favorites"
	"github.com/aretw0/loom/internal/demo/primemodal"
	"github.com/aretw0/loom/internal/logging"
	"github.com/aretw0/loom/pkg/adapters/memory"
	"github.com/aretw0/loom/pkg/effect"
	"github.com/aretw0/loom/pkg/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var epoch = time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

func newStore(t *testing.T, env app.Environment) *store.Store[app.State, app.Action] {
	t.Helper()
	if env.Now == nil {
		env.Now = func() time.Time { return epoch }
	}
	st := store.New(app.NewState(), app.Reducer(env))
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func send(t *testing.T, st *store.Store[app.State, app.Action], actions ...app.Action) {
	t.Helper()
	for _, a := range actions {
		require.NoError(t, st.Send(a))
	}
	require.NoError(t, st.Wait(context.Background()))
}

func TestApp_CounterAndModalShareCount(t *testing.T) {
	st := newStore(t, app.Environment{Snapshots: memory.NewStore()})

	send(t, st,
		app.Counter{counter.Incr{}},
		app.Counter{counter.Incr{}},
		app.PrimeModal{primemodal.StartLoadingIsPrime{}},
	)
	require.NotNil(t, st.Value().IsPrime)
	assert.True(t, *st.Value().IsPrime)

	send(t, st, app.PrimeModal{primemodal.SaveFavorite{}})
	assert.Equal(t, []int{2}, st.Value().FavoritePrimes)

	send(t, st, app.Counter{counter.NthPrimeRequested{}})
	require.NotNil(t, st.Value().AlertNthPrime)
	assert.Equal(t, "The 2nd prime is 3", *st.Value().AlertNthPrime)
	assert.True(t, st.Value().NthPrimeButtonEnabled)
}

func TestApp_ActivityFeed(t *testing.T) {
	st := newStore(t, app.Environment{Snapshots: memory.NewStore()})

	send(t, st,
		app.Counter{counter.Incr{}},
		app.Counter{counter.Incr{}},
		app.PrimeModal{primemodal.SaveFavorite{}},
		app.Counter{counter.Incr{}},
		app.PrimeModal{primemodal.SaveFavorite{}},
		app.PrimeModal{primemodal.RemoveFavorite{}},
		app.Favorites{favorites.DeleteAt{Indices: []int{0}}},
	)

	assert.Empty(t, st.Value().FavoritePrimes)
	assert.Equal(t, []app.Activity{
		{Timestamp: epoch, Type: app.AddedFavoritePrime, Prime: 2},
		{Timestamp: epoch, Type: app.AddedFavoritePrime, Prime: 3},
		{Timestamp: epoch, Type: app.RemovedFavoritePrime, Prime: 3},
		{Timestamp: epoch, Type: app.RemovedFavoritePrime, Prime: 2},
	}, st.Value().ActivityFeed)
}

func TestApp_FavoritesRoundTrip(t *testing.T) {
	snapshots := memory.NewStore()
	st := newStore(t, app.Environment{Snapshots: snapshots, FavoritesKey: "favs"})

	send(t, st,
		app.Counter{counter.Incr{}},
		app.Counter{counter.Incr{}},
		app.PrimeModal{primemodal.SaveFavorite{}},
		app.Favorites{favorites.SaveRequested{}},
		app.Favorites{favorites.DeleteAt{Indices: []int{0}}},
	)
	assert.Empty(t, st.Value().FavoritePrimes)

	send(t, st, app.Favorites{favorites.LoadRequested{}})
	assert.Equal(t, []int{2}, st.Value().FavoritePrimes)
}

func TestApp_LoggingSeesUpdatedState(t *testing.T) {
	var buf bytes.Buffer
	st := newStore(t, app.Environment{
		Work:   effect.Immediate,
		Logger: logging.NewWithWriter(&buf, slog.LevelInfo),
	})

	send(t, st, app.Counter{counter.Incr{}})
	assert.Contains(t, buf.String(), "Action applied")
	assert.Contains(t, buf.String(), "action=counter.Incr")
	assert.Contains(t, buf.String(), "Count:1")
}

func TestApp_PrismsIgnoreOtherFeatures(t *testing.T) {
	_, ok := app.CounterAction.Extract(app.Favorites{favorites.LoadRequested{}})
	assert.False(t, ok)
	_, ok = app.CounterAction.Extract(app.Counter{})
	assert.False(t, ok)

	a, ok := app.PrimeModalAction.Extract(app.PrimeModal{primemodal.SaveFavorite{}})
	assert.True(t, ok)
	assert.Equal(t, primemodal.Action(primemodal.SaveFavorite{}), a)
}

func TestActions(t *testing.T) {
	actions := app.Actions()

	a, err := actions.Decode("delete-favorites", map[string]any{"indices": []any{float64(0), float64(2)}})
	require.NoError(t, err)
	assert.Equal(t, app.Action(app.Favorites{favorites.DeleteAt{Indices: []int{0, 2}}}), a)

	a, err = actions.Decode("incr", nil)
	require.NoError(t, err)
	assert.Equal(t, app.Action(app.Counter{counter.Incr{}}), a)

	assert.Contains(t, actions.Names(), "nth-prime")
	assert.NotContains(t, actions.Names(), "nth-prime-response")
}
