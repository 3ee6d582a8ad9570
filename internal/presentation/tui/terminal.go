package tui

import (
	"os"

	"golang.org/x/term"
)

// IsInteractive reports whether f is a terminal, meaning a person is typing.
func IsInteractive(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
