package main

import (
	"fmt"

	"github.com/aretw0/arbor"
	"github.com/aretw0/arbor/internal/cli"
	"github.com/aretw0/arbor/internal/presentation/graph"
	"github.com/aretw0/arbor/internal/presentation/tui"
	"github.com/spf13/cobra"
)

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph <definition>",
	Short: "Export the tree visualization",
	Long:  `Compiles a definition and outputs a Mermaid diagram (graph TD) of the resulting tree, with branches inlined.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		logger, err := loggerFrom(cmd)
		if err != nil {
			return err
		}
		format, _ := cmd.Flags().GetString("format")

		reg, err := cli.LoadRegistry(cmd.Context(), subtreesFrom(cmd), logger)
		if err != nil {
			return err
		}

		// The tree is never stepped, so an empty agent is enough.
		tree, err := arbor.CompileFile(args[0], struct{}{}, arbor.WithRegistry(reg), arbor.WithLogger(logger))
		if err != nil {
			return err
		}

		switch format {
		case "mermaid":
			fmt.Fprint(cmd.OutOrStdout(), graph.GenerateMermaid(tree.Details(), false))
		case "tree":
			out := cmd.OutOrStdout()
			tui.NewTreePrinter(out, tui.ProfileFor(out)).Print(tree.Details())
		default:
			return fmt.Errorf("unknown format: %s. Supported: mermaid, tree", format)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
	graphCmd.Flags().String("format", "mermaid", "Output format: 'mermaid' or 'tree'")
}
