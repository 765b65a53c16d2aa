package main

import (
	"context"

	"github.com/aretw0/arbor/internal/cli"
	"github.com/spf13/cobra"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run <definition>",
	Short: "Run a definition against a scripted agent",
	Long: `Compiles a definition and steps it until it resolves, the tick limit is
reached or the process is interrupted. The agent is a YAML script of
blackboard values, conditions and actions.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		logger, err := loggerFrom(cmd)
		if err != nil {
			return err
		}

		opts := cli.RunOptions{
			DefinitionPath: args[0],
			Subtrees:       subtreesFrom(cmd),
		}
		opts.AgentPath, _ = cmd.Flags().GetString("agent")
		opts.CommandsPath, _ = cmd.Flags().GetString("commands")
		opts.MaxTicks, _ = cmd.Flags().GetInt("ticks")
		opts.Interval, _ = cmd.Flags().GetDuration("interval")
		opts.Seed, _ = cmd.Flags().GetUint64("seed")
		opts.Trace, _ = cmd.Flags().GetBool("trace")
		opts.JSON, _ = cmd.Flags().GetBool("json")

		ctx := cli.NewSignalContext(context.Background())
		defer ctx.Cancel()

		_, err = cli.Run(ctx, opts, cmd.OutOrStdout(), logger)
		if err != nil && ctx.Signal() != nil {
			logger.Info("Run interrupted", "signal", ctx.Signal())
			return nil
		}
		return err
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().String("agent", "", "Path to the YAML agent script")
	runCmd.Flags().String("commands", "", "Path to a YAML file of commands callable as actions")
	runCmd.Flags().Int("ticks", 1000, "Maximum number of ticks (0 for no limit)")
	runCmd.Flags().Duration("interval", 0, "Pause between ticks (e.g. 100ms)")
	runCmd.Flags().Uint64("seed", 0, "Seed for lotto and random ranges (0 for a random seed)")
	runCmd.Flags().Bool("trace", false, "Print the tree after every tick")
	runCmd.Flags().Bool("json", false, "Write state changes and the result as NDJSON")
}
