package store_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/aretw0/loom/pkg/domain"
	"github.com/aretw0/loom/pkg/effect"
	"github.com/aretw0/loom/pkg/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type counterState struct{ Count int }

type counterAction int

const (
	increment counterAction = iota
	decrement
)

func counter(s *counterState, a counterAction) []*effect.Effect[counterAction] {
	switch a {
	case increment:
		s.Count++
	case decrement:
		s.Count--
	}
	return nil
}

func TestStore_CounterScenario(t *testing.T) {
	s := store.New(counterState{}, counter)

	require.NoError(t, s.Send(increment))
	assert.Equal(t, counterState{Count: 1}, s.Value())

	require.NoError(t, s.Send(decrement))
	require.NoError(t, s.Send(decrement))
	assert.Equal(t, counterState{Count: -1}, s.Value())
}

type loadState struct {
	Loading bool
	Value   int
}

type loadAction interface{ isLoad() }

type startLoad struct{}

func (startLoad) isLoad() {}

type loaded struct{ Value int }

func (loaded) isLoad() {}

func loader(exec effect.Executor) func(*loadState, loadAction) []*effect.Effect[loadAction] {
	return func(s *loadState, a loadAction) []*effect.Effect[loadAction] {
		switch a := a.(type) {
		case startLoad:
			s.Loading = true
			e := effect.Sync(func() loadAction { return loaded{Value: 42} })
			if exec != nil {
				e = e.ReceiveOn(exec)
			}
			return []*effect.Effect[loadAction]{e}
		case loaded:
			s.Loading = false
			s.Value = a.Value
		}
		return nil
	}
}

func TestStore_LoadingScenario(t *testing.T) {
	t.Run("Synchronous", func(t *testing.T) {
		s := store.New(loadState{}, loader(nil))
		var seen []loadState
		s.Subscribe(func(v loadState) { seen = append(seen, v) })

		require.NoError(t, s.Send(startLoad{}))
		assert.Equal(t, []loadState{{Loading: true}, {Loading: false, Value: 42}}, seen)
		assert.Equal(t, loadState{Value: 42}, s.Value())
	})

	t.Run("DeferredDelivery", func(t *testing.T) {
		main := effect.NewQueue()
		s := store.New(loadState{}, loader(main))

		require.NoError(t, s.Send(startLoad{}))
		assert.Equal(t, loadState{Loading: true}, s.Value())

		main.Drain()
		assert.Equal(t, loadState{Value: 42}, s.Value())
		require.NoError(t, s.Wait(context.Background()))
	})
}

func TestStore_SendMatchesDirectReduce(t *testing.T) {
	r := loader(nil)
	direct := loadState{}
	r(&direct, startLoad{})

	main := effect.NewQueue()
	s := store.New(loadState{}, loader(main))
	require.NoError(t, s.Send(startLoad{}))
	assert.Equal(t, direct, s.Value())
}

func TestStore_FollowUpsAreBreadthFirst(t *testing.T) {
	var order []string
	r := func(s *[]string, a string) []*effect.Effect[string] {
		order = append(order, a)
		switch a {
		case "root":
			return []*effect.Effect[string]{
				effect.Sync(func() string { return "a" }),
				effect.Sync(func() string { return "b" }),
			}
		case "a":
			return []*effect.Effect[string]{effect.Sync(func() string { return "a.1" })}
		}
		return nil
	}

	s := store.New([]string{}, r)
	require.NoError(t, s.Send("root"))
	assert.Equal(t, []string{"root", "a", "b", "a.1"}, order)
}

func TestStore_ConcurrentSendsAreSerialized(t *testing.T) {
	s := store.New(counterState{}, counter)

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, s.Send(increment))
		}()
	}
	wg.Wait()
	assert.Equal(t, 100, s.Value().Count)
}

func TestStore_BackgroundEffects(t *testing.T) {
	r := func(s *counterState, a counterAction) []*effect.Effect[counterAction] {
		counter(s, a)
		if a == increment && s.Count < 3 {
			return []*effect.Effect[counterAction]{
				effect.Sync(func() counterAction { return increment }).RunOn(effect.Background),
			}
		}
		return nil
	}
	s := store.New(counterState{}, r)
	require.NoError(t, s.Send(increment))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, s.Wait(ctx))
	assert.Equal(t, 3, s.Value().Count)
}

type raceState struct {
	Loaded bool
	Slow   bool
}

func TestStore_WaitCoversDeliveriesQueuedBehindAnotherSender(t *testing.T) {
	inSlow := make(chan struct{})
	delivered := make(chan struct{})

	r := func(s *raceState, a string) []*effect.Effect[string] {
		switch a {
		case "start":
			return []*effect.Effect[string]{
				effect.New(func(_ context.Context, send func(string)) {
					<-inSlow
					// The token is held by the slow sender, so this only queues.
					send("loaded")
					close(delivered)
				}).RunOn(effect.Background),
			}
		case "slow":
			close(inSlow)
			<-delivered
			time.Sleep(20 * time.Millisecond)
			s.Slow = true
		case "loaded":
			s.Loaded = true
		}
		return nil
	}
	s := store.New(raceState{}, r)
	require.NoError(t, s.Send("start"))

	go func() { _ = s.Send("slow") }()
	<-inSlow

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, s.Wait(ctx))
	assert.Equal(t, raceState{Loaded: true, Slow: true}, s.Value())
}

func TestStore_ZeroValue(t *testing.T) {
	var s store.Store[counterState, counterAction]

	assert.ErrorIs(t, s.Send(increment), domain.ErrNotInitialized)
	assert.Equal(t, counterState{}, s.Value())
	assert.False(t, s.Subscribe(func(counterState) {}).Active())
	assert.ErrorIs(t, s.Close(), domain.ErrNotInitialized)

	view := store.ViewState(&s, func(c counterState) int { return c.Count })
	assert.ErrorIs(t, view.Send(increment), domain.ErrNotInitialized)
}

func TestStore_Close(t *testing.T) {
	main := effect.NewQueue()
	var drops []*domain.DropEvent
	hooks := domain.Hooks{
		OnDrop: func(_ context.Context, e *domain.DropEvent) { drops = append(drops, e) },
	}
	s := store.New(loadState{}, loader(main), store.WithHooks(hooks), store.WithName("loader"))
	view := store.ViewState(s, func(l loadState) bool { return l.Loading })

	require.NoError(t, s.Send(startLoad{}))
	require.NoError(t, s.Close())
	require.NoError(t, s.Close())

	assert.ErrorIs(t, s.Send(startLoad{}), domain.ErrStoreClosed)
	assert.ErrorIs(t, view.Send(startLoad{}), domain.ErrStoreClosed)
	assert.True(t, view.Closed())

	main.Drain()
	require.Len(t, drops, 1)
	assert.Equal(t, "loader", drops[0].Store)
	assert.Equal(t, "store closed", drops[0].Reason)
	assert.Equal(t, loadState{Loading: true}, s.Value())
}

func TestStore_Hooks(t *testing.T) {
	var actions []*domain.ActionEvent
	var starts []*domain.EffectEvent
	hooks := domain.Hooks{
		OnAction:      func(_ context.Context, e *domain.ActionEvent) { actions = append(actions, e) },
		OnEffectStart: func(_ context.Context, e *domain.EffectEvent) { starts = append(starts, e) },
	}
	s := store.New(loadState{}, loader(nil), store.WithHooks(hooks))
	require.NoError(t, s.Send(startLoad{}))

	require.Len(t, actions, 2)
	assert.Equal(t, "store_test.startLoad", actions[0].Name)
	assert.Equal(t, 1, actions[0].Effects)
	assert.NotEmpty(t, actions[0].ID)
	assert.Equal(t, "store_test.loaded", actions[1].Name)

	require.Len(t, starts, 1)
	assert.Equal(t, actions[0].ID, starts[0].ActionID)
	assert.Equal(t, 0, starts[0].Index)
}

func TestStore_CloseCancelsEffectContext(t *testing.T) {
	started := make(chan struct{})
	cancelled := make(chan struct{})
	r := func(s *counterState, a counterAction) []*effect.Effect[counterAction] {
		return []*effect.Effect[counterAction]{
			effect.FireAndForget[counterAction](func(ctx context.Context) {
				close(started)
				<-ctx.Done()
				close(cancelled)
			}).RunOn(effect.Background),
		}
	}
	s := store.New(counterState{}, r)
	require.NoError(t, s.Send(increment))
	<-started
	require.NoError(t, s.Close())

	select {
	case <-cancelled:
	case <-time.After(time.Second):
		t.Fatal("effect context was not cancelled")
	}
}

func TestStore_HotState(t *testing.T) {
	s := store.New(counterState{Count: 7}, counter, store.WithHotState())
	var seen []int
	s.Subscribe(func(c counterState) { seen = append(seen, c.Count) })
	require.NoError(t, s.Send(increment))
	assert.Equal(t, []int{7, 8}, seen)

	cold := store.New(counterState{Count: 7}, counter, store.WithHotState(), store.WithColdState())
	seen = nil
	cold.Subscribe(func(c counterState) { seen = append(seen, c.Count) })
	assert.Empty(t, seen)
}
