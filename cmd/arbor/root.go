package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/aretw0/arbor/internal/cli"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "arbor",
	Short: "Arbor compiles and runs behaviour trees",
	Long: `Arbor validates, visualizes and runs behaviour trees written in MDSL or JSON.
Agents are scripted in YAML so definitions can be exercised without writing Go.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("log-level", "warn", "Log level: debug, info, warn, error or off")
	rootCmd.PersistentFlags().String("subtrees", "", "Directory of Markdown documents holding shared subtrees")
	rootCmd.PersistentFlags().String("redis", "", "Redis address holding shared subtrees (host:port)")
	rootCmd.PersistentFlags().String("redis-prefix", "", "Key prefix of the Redis definition store")
}

func loggerFrom(cmd *cobra.Command) (*slog.Logger, error) {
	level, _ := cmd.Flags().GetString("log-level")
	return cli.NewLogger(level)
}

func subtreesFrom(cmd *cobra.Command) cli.SubtreeOptions {
	dir, _ := cmd.Flags().GetString("subtrees")
	addr, _ := cmd.Flags().GetString("redis")
	prefix, _ := cmd.Flags().GetString("redis-prefix")
	return cli.SubtreeOptions{Dir: dir, RedisAddr: addr, RedisPrefix: prefix}
}
