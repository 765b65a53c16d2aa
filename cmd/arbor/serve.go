package main

import (
	"context"
	"fmt"

	"github.com/aretw0/arbor/internal/cli"
	"github.com/aretw0/arbor/internal/presentation/tui"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve <definition>",
	Short: "Serve a tree over HTTP",
	Long: `Compiles a definition against a scripted agent and exposes it over HTTP:
POST /step, POST /reset, GET /state, GET /tree, GET /graph, GET /events (SSE)
and GET /metrics (Prometheus).`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		logger, err := loggerFrom(cmd)
		if err != nil {
			return err
		}

		opts := cli.ServeOptions{
			DefinitionPath: args[0],
			Subtrees:       subtreesFrom(cmd),
		}
		opts.AgentPath, _ = cmd.Flags().GetString("agent")
		opts.CommandsPath, _ = cmd.Flags().GetString("commands")
		opts.Addr, _ = cmd.Flags().GetString("addr")
		opts.Seed, _ = cmd.Flags().GetUint64("seed")

		ctx := cli.NewSignalContext(context.Background())
		defer ctx.Cancel()

		banner := cmd.ErrOrStderr()
		tui.PrintBanner(banner, tui.ProfileFor(banner))
		fmt.Fprintf(banner, "Serving %s on %s\n", opts.DefinitionPath, opts.Addr)

		return cli.Serve(ctx, opts, logger)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("agent", "", "Path to the YAML agent script")
	serveCmd.Flags().String("commands", "", "Path to a YAML file of commands callable as actions")
	serveCmd.Flags().StringP("addr", "a", ":8080", "Address to listen on")
	serveCmd.Flags().Uint64("seed", 0, "Seed for lotto and random ranges (0 for a random seed)")
}
