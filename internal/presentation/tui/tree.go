package tui

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/aretw0/arbor/pkg/domain"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

var stateColors = map[domain.State]string{
	domain.Ready:     "#9ca3af",
	domain.Running:   "#facc15",
	domain.Succeeded: "#4ade80",
	domain.Failed:    "#f87171",
}

// ProfileFor returns the color profile to use for w: plain ASCII unless w is
// a terminal.
func ProfileFor(w io.Writer) termenv.Profile {
	f, ok := w.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return termenv.Ascii
	}
	return termenv.NewOutput(f).Profile
}

// TreePrinter draws tree snapshots with box-drawing guides, coloring each
// node by its state.
type TreePrinter struct {
	out *termenv.Output
	w   io.Writer
}

// NewTreePrinter creates a TreePrinter writing to w with profile.
func NewTreePrinter(w io.Writer, profile termenv.Profile) *TreePrinter {
	return &TreePrinter{
		out: termenv.NewOutput(w, termenv.WithProfile(profile)),
		w:   w,
	}
}

// Print writes root and its subtree.
func (p *TreePrinter) Print(root domain.NodeDetails) {
	fmt.Fprintln(p.w, p.line(root))
	p.children(root.Children, "")
}

func (p *TreePrinter) children(nodes []domain.NodeDetails, prefix string) {
	for i, child := range nodes {
		guide, indent := "├── ", "│   "
		if i == len(nodes)-1 {
			guide, indent = "└── ", "    "
		}
		fmt.Fprintf(p.w, "%s%s%s\n", prefix, guide, p.line(child))
		p.children(child.Children, prefix+indent)
	}
}

func (p *TreePrinter) line(node domain.NodeDetails) string {
	label := node.Name
	if len(node.Args) > 0 {
		args := make([]string, len(node.Args))
		for i, arg := range node.Args {
			args[i] = fmt.Sprint(arg)
		}
		label += " " + strings.Join(args, ", ")
	}
	state := p.out.String("[" + node.State.String() + "]").Foreground(p.out.Color(stateColors[node.State]))
	return fmt.Sprintf("%s %s", label, state)
}
