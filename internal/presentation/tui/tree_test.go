package tui

import (
	"bytes"
	"os"
	"testing"

	"github.com/aretw0/arbor/pkg/domain"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
)

func TestTreePrinter_Plain(t *testing.T) {
	var buf bytes.Buffer
	NewTreePrinter(&buf, termenv.Ascii).Print(domain.NodeDetails{
		Name: "ROOT", State: domain.Running,
		Children: []domain.NodeDetails{{
			Name: "SEQUENCE", State: domain.Running,
			Children: []domain.NodeDetails{
				{Name: "HasTarget", State: domain.Succeeded},
				{Name: "FLIP", State: domain.Ready, Children: []domain.NodeDetails{
					{Name: "Say", State: domain.Ready, Args: []any{`"hi"`, 2}},
				}},
			},
		}},
	})

	want := "ROOT [RUNNING]\n" +
		"└── SEQUENCE [RUNNING]\n" +
		"    ├── HasTarget [SUCCEEDED]\n" +
		"    └── FLIP [READY]\n" +
		"        └── Say \"hi\", 2 [READY]\n"
	assert.Equal(t, want, buf.String())
}

func TestTreePrinter_Colored(t *testing.T) {
	var buf bytes.Buffer
	NewTreePrinter(&buf, termenv.TrueColor).Print(domain.NodeDetails{Name: "ROOT", State: domain.Failed})
	assert.Contains(t, buf.String(), "\x1b[")
	assert.Contains(t, buf.String(), "FAILED")
}

func TestPrintBanner_Plain(t *testing.T) {
	var buf bytes.Buffer
	PrintBanner(&buf, termenv.Ascii)
	assert.NotContains(t, buf.String(), "\x1b[")
	assert.Contains(t, buf.String(), "|_.__/")
}

func TestProfileFor_NonTerminal(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "out")
	assert.NoError(t, err)
	defer f.Close()
	assert.Equal(t, termenv.Ascii, ProfileFor(f))
}

func TestProfileFor_Buffer(t *testing.T) {
	assert.Equal(t, termenv.Ascii, ProfileFor(&bytes.Buffer{}))
}
