package tui

import (
	"github.com/charmbracelet/glamour"
)

// NewRenderer returns a function that renders generated markdown using glamour.
// It detects the terminal background automatically.
func NewRenderer() func(string) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		// Fall back to plain passthrough on exotic terminals.
		return func(markdown string) (string, error) {
			return markdown, nil
		}
	}

	return r.Render
}
