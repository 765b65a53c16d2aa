package main

import (
	"encoding/json"
	"fmt"

	"github.com/aretw0/arbor"
	"github.com/aretw0/arbor/internal/cli"
	"github.com/aretw0/arbor/internal/compiler"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate <definition>",
	Short: "Check a definition for errors",
	Long: `Parses and validates a definition file. With --subtrees or --redis, branch
references are also resolved against the shared subtrees.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		logger, err := loggerFrom(cmd)
		if err != nil {
			return err
		}
		jsonMode, _ := cmd.Flags().GetBool("json")

		var result arbor.ValidationResult
		if roots, err := compiler.LoadFile(args[0]); err != nil {
			result.ErrorMessage = err.Error()
		} else {
			result = arbor.Validate(roots)
		}

		// Strict pass: every branch must resolve.
		if result.Succeeded {
			subtrees := subtreesFrom(cmd)
			reg, err := cli.LoadRegistry(cmd.Context(), subtrees, logger)
			if err != nil {
				return err
			}
			if subtrees.Dir != "" || subtrees.RedisAddr != "" {
				if _, err := arbor.Compile(result.Definition, struct{}{}, arbor.WithRegistry(reg)); err != nil {
					result = arbor.ValidationResult{ErrorMessage: err.Error()}
				}
			}
		}

		if jsonMode {
			result.Definition = nil
			if err := json.NewEncoder(cmd.OutOrStdout()).Encode(result); err != nil {
				return err
			}
		} else if result.Succeeded {
			fmt.Fprintln(cmd.OutOrStdout(), "Definition is valid! ✅")
		}

		if !result.Succeeded {
			return fmt.Errorf("validation failed: %s", result.ErrorMessage)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
	validateCmd.Flags().Bool("json", false, "Print the validation result as JSON")
}
