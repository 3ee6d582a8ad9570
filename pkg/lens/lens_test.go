package lens_test

import (
	"testing"

	"github.com/aretw0/loom/pkg/lens"
	"github.com/stretchr/testify/assert"
)

type inner struct{ N int }

type outer struct {
	In   inner
	Name string
}

var inLens = lens.Lens[outer, inner]{
	Get: func(o outer) inner { return o.In },
	Set: func(o *outer, v inner) { o.In = v },
}

var nLens = lens.Lens[inner, int]{
	Get: func(i inner) int { return i.N },
	Set: func(i *inner, v int) { i.N = v },
}

func TestComposeLens(t *testing.T) {
	l := lens.ComposeLens(inLens, nLens)
	o := outer{In: inner{N: 1}, Name: "x"}

	assert.Equal(t, 1, l.Get(o))
	l.Set(&o, 5)
	assert.Equal(t, outer{In: inner{N: 5}, Name: "x"}, o)

	l.Modify(&o, func(n *int) { *n++ })
	assert.Equal(t, 6, o.In.N)
}

func TestIdentityAndReadOnly(t *testing.T) {
	o := outer{Name: "a"}
	lens.Identity[outer]().Set(&o, outer{Name: "b"})
	assert.Equal(t, "b", o.Name)

	ro := lens.ReadOnly(func(o outer) string { return o.Name })
	ro.Set(&o, "c")
	assert.Equal(t, "b", ro.Get(o))
}

type action interface{ isAction() }

type child struct{ V int }

func (child) isAction() {}

type other struct{}

func (other) isAction() {}

type wrapped struct{ C child }

func TestPrisms(t *testing.T) {
	p := lens.Case[action](func(c child) action { return c })

	c, ok := p.Extract(child{V: 3})
	assert.True(t, ok)
	assert.Equal(t, 3, c.V)

	_, ok = p.Extract(other{})
	assert.False(t, ok)

	t.Run("Compose", func(t *testing.T) {
		w := lens.Prism[child, wrapped]{
			Extract: func(c child) (wrapped, bool) { return wrapped{C: c}, c.V > 0 },
			Embed:   func(w wrapped) child { return w.C },
		}
		composed := lens.ComposePrism(p, w)

		got, ok := composed.Extract(child{V: 2})
		assert.True(t, ok)
		assert.Equal(t, wrapped{C: child{V: 2}}, got)

		_, ok = composed.Extract(child{V: 0})
		assert.False(t, ok)
		_, ok = composed.Extract(other{})
		assert.False(t, ok)

		assert.Equal(t, action(child{V: 9}), composed.Embed(wrapped{C: child{V: 9}}))
	})

	t.Run("Identity", func(t *testing.T) {
		id := lens.IdentityPrism[int]()
		v, ok := id.Extract(4)
		assert.True(t, ok)
		assert.Equal(t, 4, id.Embed(v))
	})
}
