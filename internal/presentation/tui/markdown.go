package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/aretw0/loom/internal/demo/app"
	"github.com/charmbracelet/glamour"
)

// View renders app states and the command help.
type View interface {
	Render(s app.State)
	Help(actions []string)
}

// MarkdownRenderer renders app states as markdown through glamour.
// It is meant for interactive terminals; piped output uses Renderer.
type MarkdownRenderer struct {
	w  io.Writer
	md *glamour.TermRenderer
}

// NewMarkdownRenderer renders to w, wrapping at width columns.
func NewMarkdownRenderer(w io.Writer, width int) (*MarkdownRenderer, error) {
	md, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(), // Automatically detect light/dark background
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create markdown renderer: %w", err)
	}
	return &MarkdownRenderer{w: w, md: md}, nil
}

// Render writes s.
func (r *MarkdownRenderer) Render(s app.State) {
	r.write(StateMarkdown(s))
}

// Help writes the command reference.
func (r *MarkdownRenderer) Help(actions []string) {
	r.write(HelpMarkdown(actions))
}

func (r *MarkdownRenderer) write(markdown string) {
	out, err := r.md.Render(markdown)
	if err != nil {
		// Unstyled markdown is still readable.
		out = markdown
	}
	fmt.Fprint(r.w, out)
}

// StateMarkdown describes s as a markdown document.
func StateMarkdown(s app.State) string {
	var b strings.Builder
	fmt.Fprintf(&b, "## Count: %d\n\n", s.Count)
	fmt.Fprintf(&b, "**Favorite primes:** %s\n\n", favoriteList(s.FavoritePrimes))

	if s.FavoritesSaveError != "" {
		fmt.Fprintf(&b, "**Save failed:** %s\n\n", s.FavoritesSaveError)
	}
	if !s.NthPrimeButtonEnabled {
		b.WriteString("*Looking up the nth prime...*\n\n")
	}
	if s.AlertNthPrime != nil {
		fmt.Fprintf(&b, "> %s\n\n", *s.AlertNthPrime)
	}
	if s.PrimeModalShown {
		m := app.PrimeModalState.Get(s)
		b.WriteString("### Is this prime?\n\n")
		switch {
		case m.IsPrime == nil:
			b.WriteString("*calculating...*\n\n")
		case *m.IsPrime:
			fmt.Fprintf(&b, "%d is prime 🎉 (%s)\n\n", m.Count, favoriteHint(m))
		default:
			fmt.Fprintf(&b, "%d is not prime :(\n\n", m.Count)
		}
	}
	if n := len(s.ActivityFeed); n > 0 {
		last := s.ActivityFeed[n-1]
		fmt.Fprintf(&b, "**Activity:** %s %d (%d entries)\n", last.Type, last.Prime, n)
	}
	return b.String()
}

// HelpMarkdown lists the built-in commands and actions as markdown.
func HelpMarkdown(actions []string) string {
	var b strings.Builder
	b.WriteString("## Commands\n\n")
	b.WriteString("- `state` prints the current state\n")
	b.WriteString("- `help` prints this reference\n")
	b.WriteString("- `quit` saves and leaves\n\n")
	b.WriteString("## Actions\n\n")
	for _, a := range actions {
		fmt.Fprintf(&b, "- `%s`\n", a)
	}
	b.WriteString("\nActions that take a payload read a JSON object after the name, for example `delete-favorites {\"indices\":[0]}`.\n")
	return b.String()
}

func favoriteList(primes []int) string {
	if len(primes) == 0 {
		return "none"
	}
	parts := make([]string, len(primes))
	for i, p := range primes {
		parts[i] = fmt.Sprintf("%d", p)
	}
	return strings.Join(parts, ", ")
}
