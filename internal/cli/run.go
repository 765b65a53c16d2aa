package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/aretw0/arbor"
	"github.com/aretw0/arbor/internal/presentation/tui"
	"github.com/aretw0/arbor/pkg/domain"
)

// RunOptions contains all the configuration for the run command.
type RunOptions struct {
	DefinitionPath string
	AgentPath      string
	Subtrees       SubtreeOptions
	// CommandsPath is a commands file whose entries become action functions.
	CommandsPath string
	// MaxTicks bounds the run. Zero means no limit.
	MaxTicks int
	Interval time.Duration
	// Seed makes lotto and random ranges deterministic when non-zero.
	Seed uint64
	// Trace prints the tree after every tick.
	Trace bool
	// JSON writes NDJSON: one line per state change and a final summary.
	JSON bool
}

// RunResult summarizes a finished run.
type RunResult struct {
	State      domain.State   `json:"state"`
	Ticks      int            `json:"ticks"`
	Blackboard map[string]any `json:"blackboard"`
}

// Run compiles the definition against the scripted agent and steps it until
// it resolves, the tick limit is reached or ctx is done.
func Run(ctx context.Context, opts RunOptions, stdout io.Writer, logger *slog.Logger) (RunResult, error) {
	reg, err := LoadRegistry(ctx, opts.Subtrees, logger)
	if err != nil {
		return RunResult{}, err
	}
	if err := BindCommands(ctx, reg, opts.CommandsPath, logger); err != nil {
		return RunResult{}, err
	}
	agent, err := LoadAgent(opts.AgentPath, logger)
	if err != nil {
		return RunResult{}, err
	}

	encoder := json.NewEncoder(stdout)
	compileOpts := []arbor.Option{
		arbor.WithRegistry(reg),
		arbor.WithLogger(logger),
	}
	if opts.Seed != 0 {
		compileOpts = append(compileOpts, arbor.WithRandom(arbor.SeededRandom(opts.Seed)))
	}
	if opts.JSON {
		compileOpts = append(compileOpts, arbor.WithStateObserver(func(change domain.StateChange) {
			if err := encoder.Encode(change); err != nil {
				logger.Error("failed to write state change", "error", err)
			}
		}))
	}

	tree, err := arbor.CompileFile(opts.DefinitionPath, agent, compileOpts...)
	if err != nil {
		return RunResult{}, err
	}

	runner := arbor.NewRunner()
	runner.Interval = opts.Interval
	runner.MaxTicks = opts.MaxTicks
	if opts.Trace && !opts.JSON {
		printer := tui.NewTreePrinter(stdout, tui.ProfileFor(stdout))
		runner.OnTick = func(tick int, tree *arbor.Tree) {
			fmt.Fprintf(stdout, "--- tick %d ---\n", tick)
			printer.Print(tree.Details())
		}
	}

	state, ticks, err := runner.Run(ctx, tree)
	result := RunResult{State: state, Ticks: ticks, Blackboard: agent.Blackboard()}
	if err != nil {
		return result, err
	}

	if opts.JSON {
		return result, encoder.Encode(result)
	}
	if state.Resolved() {
		printSystemMessage(stdout, "Finished with %s after %d ticks.", state, ticks)
	} else {
		printSystemMessage(stdout, "Stopped while %s after %d ticks.", state, ticks)
	}
	return result, nil
}
