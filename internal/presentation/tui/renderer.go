// Package tui renders the demo app for a terminal.
package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/aretw0/loom/internal/demo/app"
	"github.com/aretw0/loom/internal/demo/primemodal"
	"github.com/muesli/termenv"
)

// Renderer prints app states as a short text view.
type Renderer struct {
	w       io.Writer
	profile termenv.Profile
}

// NewRenderer renders to w, styled for the detected color profile of stdout.
func NewRenderer(w io.Writer) *Renderer {
	return &Renderer{w: w, profile: termenv.ColorProfile()}
}

// NewPlainRenderer renders to w without colors.
func NewPlainRenderer(w io.Writer) *Renderer {
	return &Renderer{w: w, profile: termenv.Ascii}
}

func (r *Renderer) style(s, color string) termenv.Style {
	return r.profile.String(s).Foreground(r.profile.Color(color))
}

// Render writes s.
func (r *Renderer) Render(s app.State) {
	var b strings.Builder

	fmt.Fprintf(&b, "%s %d\n", r.style("count:", "#818cf8").Bold(), s.Count)

	fmt.Fprintf(&b, "%s %s\n", r.style("favorite primes:", "#a78bfa"), favoriteList(s.FavoritePrimes))
	if s.FavoritesSaveError != "" {
		fmt.Fprintf(&b, "%s %s\n", r.style("save failed:", "#f87171").Bold(), s.FavoritesSaveError)
	}

	if !s.NthPrimeButtonEnabled {
		fmt.Fprintf(&b, "%s\n", r.style("looking up the nth prime...", "#c084fc").Faint())
	}
	if s.AlertNthPrime != nil {
		fmt.Fprintf(&b, "%s %s\n", r.style("!", "#f472b6").Bold(), *s.AlertNthPrime)
	}
	if s.PrimeModalShown {
		fmt.Fprintf(&b, "%s\n", r.modal(s))
	}
	if n := len(s.ActivityFeed); n > 0 {
		last := s.ActivityFeed[n-1]
		fmt.Fprintf(&b, "%s %s %d (%d entries)\n", r.style("activity:", "#fb7185"), last.Type, last.Prime, n)
	}

	fmt.Fprint(r.w, b.String())
}

// Help writes the built-in commands and the action names.
func (r *Renderer) Help(actions []string) {
	fmt.Fprintf(r.w, "commands: state, help, quit\nactions:  %s\n", strings.Join(actions, ", "))
}

func (r *Renderer) modal(s app.State) string {
	m := app.PrimeModalState.Get(s)
	switch {
	case m.IsPrime == nil:
		return r.style("[modal] calculating...", "#c084fc").Faint().String()
	case *m.IsPrime:
		return fmt.Sprintf("[modal] %d is prime 🎉 (%s)", m.Count, favoriteHint(m))
	default:
		return fmt.Sprintf("[modal] %d is not prime :(", m.Count)
	}
}

func favoriteHint(m primemodal.State) string {
	if m.Favorite() {
		return "remove-favorite to remove it"
	}
	return "save-favorite to save it"
}
