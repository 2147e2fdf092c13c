package ui

import (
	"io"

	"golang.org/x/term"
)

const (
	defaultWidth = 80
	minMapWidth  = 10
)

// Terminal describes where command output is going.
type Terminal struct {
	// Styled is set when w is a terminal, so lipgloss colors are worth
	// emitting.
	Styled bool
	// Width is the column count available to a segment map.
	Width int
}

// fder is satisfied by *os.File.
type fder interface {
	Fd() uintptr
}

// ProbeTerminal inspects w. Anything that is not a terminal, including
// pipes and buffers, is unstyled and 80 columns wide.
func ProbeTerminal(w io.Writer) Terminal {
	f, ok := w.(fder)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return Terminal{Width: defaultWidth}
	}
	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil || width <= 0 {
		width = defaultWidth
	}
	return Terminal{Styled: true, Width: max(width, minMapWidth)}
}
