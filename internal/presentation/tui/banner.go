package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the arbor ASCII art banner to w.
func PrintBanner(w io.Writer, profile termenv.Profile) {
	out := termenv.NewOutput(w, termenv.WithProfile(profile))
	// Green gradient, canopy to trunk.
	lines := []struct {
		text, color string
	}{
		{"                 _", "#bbf7d0"},
		{"   __ _ _ __| |__   ___  _ __", "#86efac"},
		{"  / _` | '__| '_ \\ / _ \\| '__|", "#4ade80"},
		{" | (_| | |  | |_) | (_) | |", "#22c55e"},
		{"  \\__,_|_|  |_.__/ \\___/|_|", "#16a34a"},
	}

	fmt.Fprintln(w)
	for _, line := range lines {
		fmt.Fprintln(w, out.String(line.text).Foreground(out.Color(line.color)))
	}
	fmt.Fprintln(w)
}
