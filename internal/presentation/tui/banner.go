package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"

	"github.com/gratitude5dee/tendril/pkg/domain"
	"github.com/gratitude5dee/tendril/pkg/ports"
)

// PrintBanner writes the ASCII art banner for Tendril.
func PrintBanner(w io.Writer) {
	p := termenv.ColorProfile()
	// Subtle gradient-like color scheme (Indigo/Violet)
	lines := []string{
		"  _____              _      _ _",
		" |_   _|__ _ __   __| |_ __(_) |",
		"   | |/ _ \\ '_ \\ / _`| '__| | |",
		"   | |  __/ | | | (_| | |  | | |",
		"   |_|\\___|_| |_|\\__,_|_|  |_|_|",
	}
	colors := []string{"#818cf8", "#a78bfa", "#c084fc", "#e879f9", "#f472b6"}

	fmt.Fprintln(w)
	for i, line := range lines {
		fmt.Fprintln(w, termenv.String(line).Foreground(p.Color(colors[i])))
	}
	fmt.Fprintln(w)
}

// NoticePrinter returns a notifier that writes notices to w with
// severity-colored titles, the terminal equivalent of an editor toast.
func NoticePrinter(w io.Writer) ports.NotifierFunc {
	p := termenv.ColorProfile()

	return func(notice domain.Notice) {
		color := "#34d399"
		switch notice.Severity {
		case domain.SeverityWarning:
			color = "#fbbf24"
		case domain.SeverityError:
			color = "#f87171"
		}

		title := termenv.String(notice.Title).Foreground(p.Color(color)).Bold()
		fmt.Fprintf(w, "%s %s\n", title, notice.Description)
	}
}
