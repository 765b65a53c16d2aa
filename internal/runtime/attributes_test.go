package runtime_test

import (
	"testing"

	"github.com/aretw0/arbor/internal/runtime"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWhileGuard(t *testing.T) {
	run := func(t *testing.T, mdsl string, want domain.State) {
		enabled := true
		var exits []domain.ExitResult
		agent := newAgent().
			on("IsEnabled", func([]any) any { return enabled }).
			returns("Work", domain.Running).
			returns("Other", domain.Succeeded).
			on("OnExit", func(args []any) any {
				exits = append(exits, args[0].(domain.ExitResult))
				return nil
			})
		tree := build(t, mdsl, agent, runtime.Options{})

		assert.Equal(t, domain.Running, update(t, tree))

		enabled = false
		update(t, tree)

		guarded := child(tree, 0, 0)
		assert.Equal(t, want, guarded.State())
		assert.Equal(t, domain.Ready, child(guarded, 0).State(), "the running subtree is aborted")
		assert.Equal(t, []domain.ExitResult{{Aborted: true}}, exits)
		assert.Equal(t, 1, agent.count("Work"), "aborted nodes are not ticked")
		assert.Equal(t, 1, agent.count("Other"), "siblings of the guarded node keep running")
	}

	t.Run("fails by default", func(t *testing.T) {
		run(t, `root { selector { sequence while [IsEnabled] { action [Work] exit [OnExit] } action [Other] } }`, domain.Failed)
	})

	t.Run("then succeed", func(t *testing.T) {
		run(t, `root { sequence { sequence while [IsEnabled] then succeed { action [Work] exit [OnExit] } action [Other] } }`, domain.Succeeded)
	})
}

func TestUntilGuard(t *testing.T) {
	agent := newAgent().sequence("IsDone", false, true).returns("Work", domain.Running)
	tree := build(t, `root { action [Work] until [IsDone] }`, agent, runtime.Options{})

	assert.Equal(t, domain.Running, update(t, tree))
	assert.Equal(t, domain.Failed, update(t, tree))
	assert.Equal(t, 1, agent.count("Work"))
}

func TestGuard_UnsatisfiedBeforeStart(t *testing.T) {
	agent := newAgent().returns("IsEnabled", false).returns("Work", domain.Succeeded)
	tree := build(t, `root { action [Work] while [IsEnabled] }`, agent, runtime.Options{})

	assert.Equal(t, domain.Failed, update(t, tree))
	assert.Zero(t, agent.count("Work"))
}

func TestGuard_Errors(t *testing.T) {
	agent := newAgent().returns("IsEnabled", "yes").returns("Work", domain.Running)
	tree := build(t, `root { action [Work] while [IsEnabled] }`, agent, runtime.Options{})
	err := tree.Update()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected guard condition function 'IsEnabled' to return a boolean but returned 'yes'")

	tree = build(t, `root { action [Work] while [Missing] }`, agent, runtime.Options{})
	err = tree.Update()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot evaluate node guard as the condition 'Missing' function is not defined")
}

func TestCallbacks(t *testing.T) {
	var events []string
	record := func(name string) func([]any) any {
		return func(args []any) any {
			events = append(events, name)
			return nil
		}
	}
	var exit domain.ExitResult
	agent := newAgent().
		on("Enter", record("entry")).
		on("Tick", record("step")).
		on("Leave", func(args []any) any {
			exit = args[0].(domain.ExitResult)
			events = append(events, "exit:"+args[1].(string))
			return nil
		}).
		sequence("Work", domain.Running, domain.Succeeded)
	tree := build(t, `root { action [Work] entry [Enter] step [Tick] exit [Leave, "bye"] }`, agent, runtime.Options{})

	update(t, tree)
	update(t, tree)

	assert.Equal(t, []string{"entry", "step", "step", "exit:bye"}, events)
	assert.Equal(t, domain.ExitResult{Succeeded: true}, exit)

	tree = build(t, `root { action [Work] entry [Nope] }`, agent, runtime.Options{})
	err := tree.Update()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot call entry function 'Nope' as is not defined on the agent and has not been registered")
}
