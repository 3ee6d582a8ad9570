package session_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/loom/pkg/adapters/memory"
	"github.com/aretw0/loom/pkg/adapters/redis"
	"github.com/aretw0/loom/pkg/domain"
	"github.com/aretw0/loom/pkg/effect"
	"github.com/aretw0/loom/pkg/session"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type tally struct {
	Count int `json:"count"`
}

func add(s *tally, n int) []*effect.Effect[int] {
	s.Count += n
	return nil
}

func newTally() tally { return tally{} }

// SlowStore simulates latency to provoke race conditions if locking is missing.
type SlowStore struct {
	*memory.Store
}

func (s SlowStore) Load(ctx context.Context, key string) ([]byte, error) {
	time.Sleep(10 * time.Millisecond) // Simulate IO
	return s.Store.Load(ctx, key)
}

func TestManager_OpenIsAtomic(t *testing.T) {
	snapshots := SlowStore{memory.NewStore()}
	manager := session.NewManager(add, newTally, session.WithSnapshots(snapshots))
	ctx := context.Background()

	var wg sync.WaitGroup
	stores := make(chan any, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s, err := manager.Open(ctx, "atomic-init")
			assert.NoError(t, err)
			stores <- s
		}()
	}
	wg.Wait()
	close(stores)

	var first any
	for s := range stores {
		if first == nil {
			first = s
		}
		assert.Same(t, first, s, "every caller must get the same store")
	}
	assert.Equal(t, 1, manager.Running())
}

func TestManager_PersistsAndRestores(t *testing.T) {
	snapshots := memory.NewStore()
	manager := session.NewManager(add, newTally, session.WithSnapshots(snapshots))
	ctx := context.Background()

	id, s, err := manager.Create(ctx, "")
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	require.NoError(t, s.Send(2))
	require.NoError(t, s.Send(3))

	data, err := snapshots.Load(ctx, id)
	require.NoError(t, err)
	assert.JSONEq(t, `{"count":5}`, string(data), "every change is written through")

	require.NoError(t, manager.Close(ctx, id))
	assert.ErrorIs(t, s.Send(1), domain.ErrStoreClosed)

	restored, err := manager.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, tally{Count: 5}, restored.Value())

	t.Run("CreateRejectsTakenID", func(t *testing.T) {
		_, _, err := manager.Create(ctx, id)
		assert.ErrorIs(t, err, domain.ErrSessionExists)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, manager.Delete(ctx, id))
		_, err := manager.Get(ctx, id)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})
}

func TestManager_ListAndCloseAll(t *testing.T) {
	snapshots := memory.NewStore()
	ctx := context.Background()
	require.NoError(t, snapshots.Save(ctx, "persisted", []byte(`{"count":1}`)))

	manager := session.NewManager(add, newTally, session.WithSnapshots(snapshots))
	_, err := manager.Open(ctx, "live")
	require.NoError(t, err)

	ids, err := manager.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"live", "persisted"}, ids)

	require.NoError(t, manager.CloseAll(ctx))
	assert.Equal(t, 0, manager.Running())
}

func TestManager_WithoutSnapshots(t *testing.T) {
	manager := session.NewManager(add, newTally)
	ctx := context.Background()

	_, err := manager.Get(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)

	s, err := manager.Open(ctx, "ephemeral")
	require.NoError(t, err)
	require.NoError(t, s.Send(1))
	require.NoError(t, manager.Close(ctx, "ephemeral"))

	_, err = manager.Get(ctx, "ephemeral")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestManager_DistributedLock(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	defer client.Close()

	snapshots := redis.NewFromClient(client, redis.WithPrefix("test:"))
	manager := session.NewManager(add, newTally,
		session.WithSnapshots(snapshots),
		session.WithLocker(redis.NewLocker(client, "test:")),
		session.WithLockTTL(time.Second),
	)
	ctx := context.Background()

	s, err := manager.Open(ctx, "shared")
	require.NoError(t, err)
	require.NoError(t, s.Send(4))

	assert.False(t, mr.Exists("test:lock:shared"), "lock is released after Open")
	raw, err := mr.Get("test:shared")
	require.NoError(t, err)
	assert.JSONEq(t, `{"count":4}`, raw)
}
