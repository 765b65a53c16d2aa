package arbor

import (
	"context"
	"time"

	"github.com/aretw0/arbor/pkg/domain"
)

// Runner drives a tree until it resolves, so hosts without their own game
// loop (CLI, HTTP demo, tests) can execute a definition end to end.
type Runner struct {
	// Interval is the pause between steps. Zero steps back to back.
	Interval time.Duration
	// MaxTicks bounds the number of steps. Zero means no limit.
	MaxTicks int
	// OnTick is called after every successful step, ticks counted from 1.
	OnTick func(tick int, tree *Tree)
}

// NewRunner creates a Runner that steps back to back without a tick limit.
func NewRunner() *Runner {
	return &Runner{}
}

// Run steps tree until it resolves, MaxTicks is reached, a step fails or ctx
// is done. It returns the tree state and the number of steps performed.
func (r *Runner) Run(ctx context.Context, tree *Tree) (domain.State, int, error) {
	var tick <-chan time.Time
	if r.Interval > 0 {
		ticker := time.NewTicker(r.Interval)
		defer ticker.Stop()
		tick = ticker.C
	}

	ticks := 0
	for r.MaxTicks == 0 || ticks < r.MaxTicks {
		if ticks > 0 && tick != nil {
			select {
			case <-ctx.Done():
				return tree.State(), ticks, ctx.Err()
			case <-tick:
			}
		} else if err := ctx.Err(); err != nil {
			return tree.State(), ticks, err
		}

		if err := tree.Step(); err != nil {
			return tree.State(), ticks, err
		}
		ticks++

		if r.OnTick != nil {
			r.OnTick(ticks, tree)
		}
		if tree.State().Resolved() {
			break
		}
	}
	return tree.State(), ticks, nil
}
