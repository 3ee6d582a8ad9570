package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/loom/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunSnapshotStoreContract runs a suite of tests to verify that a SnapshotStore
// implementation adheres to the defined interface contract.
func RunSnapshotStoreContract(t *testing.T, store SnapshotStore) {
	ctx := context.Background()
	key := "contract-" + time.Now().Format("20060102150405")

	t.Run("Save and Load", func(t *testing.T) {
		data := []byte(`{"count":42}`)

		err := store.Save(ctx, key, data)
		require.NoError(t, err, "Save should not return error")

		loaded, err := store.Load(ctx, key)
		require.NoError(t, err, "Load should not return error")
		assert.JSONEq(t, string(data), string(loaded))
	})

	t.Run("Save Overwrites", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, key, []byte(`[1]`)))
		require.NoError(t, store.Save(ctx, key, []byte(`[2]`)))

		loaded, err := store.Load(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, "[2]", string(loaded))
	})

	t.Run("Caller Buffers Are Not Retained", func(t *testing.T) {
		data := []byte(`"abc"`)
		require.NoError(t, store.Save(ctx, key, data))
		data[1] = 'X'

		loaded, err := store.Load(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, `"abc"`, string(loaded))

		loaded[1] = 'Y'
		again, err := store.Load(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, `"abc"`, string(again))
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+key)
		assert.ErrorIs(t, err, domain.ErrSnapshotNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, key, []byte(`{}`)))

		err := store.Delete(ctx, key)
		require.NoError(t, err, "Delete should not return error")

		_, err = store.Load(ctx, key)
		assert.ErrorIs(t, err, domain.ErrSnapshotNotFound, "Load after Delete should return ErrSnapshotNotFound")

		assert.NoError(t, store.Delete(ctx, key), "Deleting a missing key is not an error")
	})

	t.Run("List", func(t *testing.T) {
		id1 := key + "-1"
		id2 := key + "-2"
		_ = store.Save(ctx, id1, []byte(`1`))
		_ = store.Save(ctx, id2, []byte(`2`))

		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		keys, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, keys, id1)
		assert.Contains(t, keys, id2)
	})
}
