// Package lens provides the explicit accessors used to focus reducers and
// cells on part of a larger value.
//
// A Lens focuses on a field of a state value. A Prism focuses on one case of
// an action sum type: Extract reports whether an action belongs to the case and
// Embed builds the enclosing action from it.
package lens

// Lens reads and writes a T inside an S.
type Lens[S, T any] struct {
	Get func(S) T
	Set func(*S, T)
}

// Identity focuses on the whole value.
func Identity[S any]() Lens[S, S] {
	return Lens[S, S]{
		Get: func(s S) S { return s },
		Set: func(s *S, v S) { *s = v },
	}
}

// ReadOnly builds a lens whose Set does nothing.
func ReadOnly[S, T any](get func(S) T) Lens[S, T] {
	return Lens[S, T]{
		Get: get,
		Set: func(*S, T) {},
	}
}

// ComposeLens focuses outer, then inner.
func ComposeLens[A, B, C any](outer Lens[A, B], inner Lens[B, C]) Lens[A, C] {
	return Lens[A, C]{
		Get: func(a A) C { return inner.Get(outer.Get(a)) },
		Set: func(a *A, c C) {
			b := outer.Get(*a)
			inner.Set(&b, c)
			outer.Set(a, b)
		},
	}
}

// Modify applies f to the focused value of s in place.
func (l Lens[S, T]) Modify(s *S, f func(*T)) {
	v := l.Get(*s)
	f(&v)
	l.Set(s, v)
}

// Prism matches one case B of the sum type A.
type Prism[A, B any] struct {
	Extract func(A) (B, bool)
	Embed   func(B) A
}

// IdentityPrism matches every value.
func IdentityPrism[A any]() Prism[A, A] {
	return Prism[A, A]{
		Extract: func(a A) (A, bool) { return a, true },
		Embed:   func(a A) A { return a },
	}
}

// ComposePrism matches outer, then inner.
func ComposePrism[A, B, C any](outer Prism[A, B], inner Prism[B, C]) Prism[A, C] {
	return Prism[A, C]{
		Extract: func(a A) (C, bool) {
			b, ok := outer.Extract(a)
			if !ok {
				var zero C
				return zero, false
			}
			return inner.Extract(b)
		},
		Embed: func(c C) A { return outer.Embed(inner.Embed(c)) },
	}
}

// Case builds a prism for a sum type modelled as an interface A with a
// concrete case B, the common Go shape for closed action sets.
func Case[A, B any](embed func(B) A) Prism[A, B] {
	return Prism[A, B]{
		Extract: func(a A) (B, bool) {
			b, ok := any(a).(B)
			return b, ok
		},
		Embed: embed,
	}
}
