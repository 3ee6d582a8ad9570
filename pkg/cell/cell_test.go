package cell_test

import (
	"sync"
	"testing"

	"github.com/aretw0/loom/pkg/cell"
	"github.com/stretchr/testify/assert"
)

type point struct{ X, Y int }

func record[T any](c cell.Cell[T]) (*[]T, *cell.Subscription) {
	var got []T
	sub := c.Subscribe(func(v T) { got = append(got, v) })
	return &got, sub
}

func TestCold_NoReplay(t *testing.T) {
	c := cell.Cold(1)
	got, _ := record(c)
	assert.Empty(t, *got)

	c.Set(2)
	c.Update(func(v *int) { *v *= 10 })
	assert.Equal(t, []int{2, 20}, *got)
	assert.Equal(t, 20, c.Value())
}

func TestHot_ReplaysCurrentValue(t *testing.T) {
	c := cell.Hot("a")
	c.Set("b")

	got, _ := record(c)
	assert.Equal(t, []string{"b"}, *got)

	c.Set("c")
	c.Set("d")
	assert.Equal(t, []string{"b", "c", "d"}, *got)
}

func TestHot_ReplayPrecedesRacingWrites(t *testing.T) {
	c := cell.Hot("old")

	var got []string
	c.Subscribe(func(v string) {
		got = append(got, v)
		if v != "old" {
			return
		}
		// A write from another goroutine lands while the replay is running.
		var wg sync.WaitGroup
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.Set("new")
		}()
		wg.Wait()
		got = append(got, "replay done")
	})

	assert.Equal(t, []string{"old", "replay done", "new"}, got)
}

func TestHot_ConcurrentSubscribersSeeIncreasingValues(t *testing.T) {
	c := cell.Hot(0)
	stop := make(chan struct{})
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		for i := 1; ; i++ {
			select {
			case <-stop:
				return
			default:
				c.Set(i)
			}
		}
	}()

	var wg sync.WaitGroup
	seen := make([][]int, 20)
	for i := range seen {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			var mu sync.Mutex
			sub := c.Subscribe(func(v int) {
				mu.Lock()
				seen[i] = append(seen[i], v)
				mu.Unlock()
			})
			for {
				mu.Lock()
				n := len(seen[i])
				mu.Unlock()
				if n >= 5 {
					break
				}
			}
			sub.Cancel()
		}(i)
	}
	wg.Wait()
	close(stop)
	<-writerDone

	for _, values := range seen {
		for j := 1; j < len(values); j++ {
			assert.Greater(t, values[j], values[j-1], "values %v", values)
		}
	}
}

func TestSubscription_Cancel(t *testing.T) {
	c := cell.Cold(0)

	var first []int
	var sub *cell.Subscription
	sub = c.Subscribe(func(v int) {
		first = append(first, v)
		sub.Cancel()
	})
	second, _ := record(c)

	c.Set(1)
	c.Set(2)
	assert.Equal(t, []int{1}, first)
	assert.Equal(t, []int{1, 2}, *second)
	assert.False(t, sub.Active())

	sub.Cancel()
	assert.False(t, cell.Canceled().Active())
}

func TestSubscription_OrderIsSubscriptionOrder(t *testing.T) {
	c := cell.Cold(0)
	var order []string
	c.Subscribe(func(int) { order = append(order, "a") })
	c.Subscribe(func(int) { order = append(order, "b") })
	c.Set(1)
	assert.Equal(t, []string{"a", "b"}, order)
}

func TestProject(t *testing.T) {
	src := cell.Hot(point{X: 1, Y: 2})
	x := cell.Project(src,
		func(p point) int { return p.X },
		func(p *point, v int) { p.X = v },
	)

	got, _ := record(x)
	assert.Equal(t, []int{1}, *got, "hot source replays projected value")

	x.Set(5)
	assert.Equal(t, point{X: 5, Y: 2}, src.Value())

	x.Update(func(v *int) { *v++ })
	assert.Equal(t, 6, x.Value())
	assert.Equal(t, []int{1, 5, 6}, *got)

	t.Run("ColdSource", func(t *testing.T) {
		src := cell.Cold(point{})
		y := cell.Project(src, func(p point) int { return p.Y }, func(p *point, v int) { p.Y = v })
		got, _ := record(y)
		assert.Empty(t, *got)
		src.Set(point{Y: 3})
		assert.Equal(t, []int{3}, *got)
	})
}

func TestMap_ReadOnly(t *testing.T) {
	src := cell.Cold(point{X: 1})
	m := cell.Map(src, func(p point) int { return p.X * 100 })

	m.Set(7)
	m.Update(func(v *int) { *v = 9 })
	assert.Equal(t, point{X: 1}, src.Value())
	assert.Equal(t, 100, m.Value())
}

func TestFilter(t *testing.T) {
	src := cell.Cold(0)
	even := cell.Filter(src, func(v int) bool { return v%2 == 0 })
	got, _ := record(even)

	for i := 1; i <= 4; i++ {
		even.Set(i)
	}
	assert.Equal(t, []int{2, 4}, *got)
	assert.Equal(t, 4, src.Value())
}
