package primemodal_test

import (
	"context"
	"testing"

	"github.com/aretw0/loom/internal/demo/primemodal"
	"github.com/aretw0/loom/pkg/effect"
	"github.com/aretw0/loom/pkg/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReducer_Favorites(t *testing.T) {
	r := primemodal.Reducer(primemodal.Environment{Work: effect.Immediate, Main: effect.Immediate})
	s := primemodal.State{Count: 7, FavoritePrimes: []int{2, 7, 3, 7}}

	assert.True(t, s.Favorite())
	r(&s, primemodal.RemoveFavorite{})
	assert.Equal(t, []int{2, 3}, s.FavoritePrimes)
	assert.False(t, s.Favorite())

	r(&s, primemodal.SaveFavorite{})
	assert.Equal(t, []int{2, 3, 7}, s.FavoritePrimes)
}

func TestReducer_StartLoadingResetsResult(t *testing.T) {
	r := primemodal.Reducer(primemodal.Environment{Work: effect.Immediate, Main: effect.Immediate})
	yes := true
	s := primemodal.State{Count: 9, IsPrime: &yes}

	effects := r(&s, primemodal.StartLoadingIsPrime{})
	assert.Nil(t, s.IsPrime)
	require.Len(t, effects, 1)

	var got primemodal.Action
	require.NoError(t, effects[0].Run(context.Background(), func(a primemodal.Action) { got = a }, nil))
	assert.Equal(t, primemodal.IsPrimeResponse{IsPrime: false}, got)
}

func TestStore_CheckIsPrime(t *testing.T) {
	st := store.New(primemodal.State{Count: 13},
		primemodal.Reducer(primemodal.Environment{Work: effect.Background, Main: effect.Immediate}))
	defer st.Close()

	require.NoError(t, st.Send(primemodal.StartLoadingIsPrime{}))
	require.NoError(t, st.Wait(context.Background()))

	require.NotNil(t, st.Value().IsPrime)
	assert.True(t, *st.Value().IsPrime)
}

func TestStore_EarlierSnapshotsSurviveFavoriteChanges(t *testing.T) {
	st := store.New(primemodal.State{Count: 3, FavoritePrimes: []int{2, 3, 5}},
		primemodal.Reducer(primemodal.Environment{Work: effect.Immediate, Main: effect.Immediate}))
	defer st.Close()

	before := st.Value()
	require.NoError(t, st.Send(primemodal.RemoveFavorite{}))
	assert.Equal(t, []int{2, 5}, st.Value().FavoritePrimes)
	assert.Equal(t, []int{2, 3, 5}, before.FavoritePrimes)

	removed := st.Value()
	require.NoError(t, st.Send(primemodal.SaveFavorite{}))
	require.NoError(t, st.Send(primemodal.RemoveFavorite{}))
	assert.Equal(t, []int{2, 5}, removed.FavoritePrimes)
}
