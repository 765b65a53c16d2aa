package arbor_test

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/arbor"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunner_StopsWhenResolved(t *testing.T) {
	tree, err := arbor.Compile(`root { repeat [3] { action [Tick] } }`, &counter{})
	require.NoError(t, err)

	var seen []int
	runner := arbor.NewRunner()
	runner.OnTick = func(tick int, _ *arbor.Tree) { seen = append(seen, tick) }

	state, ticks, err := runner.Run(context.Background(), tree)
	require.NoError(t, err)
	assert.Equal(t, domain.Succeeded, state)
	assert.Equal(t, 3, ticks)
	assert.Equal(t, []int{1, 2, 3}, seen)
}

func TestRunner_MaxTicks(t *testing.T) {
	tree, err := arbor.Compile(`root { wait }`, &counter{})
	require.NoError(t, err)

	runner := &arbor.Runner{MaxTicks: 4}
	state, ticks, err := runner.Run(context.Background(), tree)
	require.NoError(t, err)
	assert.Equal(t, domain.Running, state)
	assert.Equal(t, 4, ticks)
}

func TestRunner_ContextCancelled(t *testing.T) {
	tree, err := arbor.Compile(`root { wait }`, &counter{})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	runner := &arbor.Runner{Interval: 5 * time.Millisecond}
	_, ticks, err := runner.Run(ctx, tree)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Positive(t, ticks)
}

func TestRunner_StepError(t *testing.T) {
	tree, err := arbor.Compile(`root { action [Missing] }`, &counter{})
	require.NoError(t, err)

	_, ticks, err := arbor.NewRunner().Run(context.Background(), tree)
	require.Error(t, err)
	assert.Zero(t, ticks)
}
