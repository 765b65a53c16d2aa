package runtime_test

import (
	"testing"

	"github.com/aretw0/arbor/internal/compiler"
	"github.com/aretw0/arbor/internal/runtime"
	"github.com/aretw0/arbor/pkg/definition"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/stretchr/testify/require"
)

// fakeAgent answers calls through domain.Dispatcher and records them.
type fakeAgent struct {
	handlers map[string]func(args []any) any
	calls    []string
	args     map[string][][]any
}

func newAgent() *fakeAgent {
	return &fakeAgent{
		handlers: make(map[string]func([]any) any),
		args:     make(map[string][][]any),
	}
}

func (a *fakeAgent) on(name string, fn func(args []any) any) *fakeAgent {
	a.handlers[name] = fn
	return a
}

func (a *fakeAgent) returns(name string, value any) *fakeAgent {
	return a.on(name, func([]any) any { return value })
}

// sequence makes name return values in order, repeating the last one.
func (a *fakeAgent) sequence(name string, values ...any) *fakeAgent {
	i := 0
	return a.on(name, func([]any) any {
		v := values[min(i, len(values)-1)]
		i++
		return v
	})
}

func (a *fakeAgent) Dispatch(name string, args []any) (any, bool, error) {
	fn, ok := a.handlers[name]
	if !ok {
		return nil, false, nil
	}
	a.calls = append(a.calls, name)
	a.args[name] = append(a.args[name], args)
	return fn(args), true, nil
}

func (a *fakeAgent) count(name string) int {
	return len(a.args[name])
}

func build(t *testing.T, mdsl string, agent any, opts runtime.Options) runtime.Node {
	t.Helper()
	tree, err := tryBuild(t, mdsl, agent, opts)
	require.NoError(t, err)
	return tree
}

func tryBuild(t *testing.T, mdsl string, agent any, opts runtime.Options) (runtime.Node, error) {
	t.Helper()
	parsed, err := compiler.NewParser().Parse(mdsl)
	require.NoError(t, err)

	roots := runtime.Roots{Named: make(map[string]*definition.Node)}
	for _, root := range parsed {
		if root.ID == "" {
			roots.Main = root
		} else {
			roots.Named[root.ID] = root
		}
	}
	return runtime.Build(roots, agent, opts)
}

func update(t *testing.T, tree runtime.Node) domain.State {
	t.Helper()
	require.NoError(t, tree.Update())
	return tree.State()
}

// states returns the state of every node in depth-first order.
func states(tree runtime.Node) []domain.State {
	var out []domain.State
	tree.Details().Walk(func(node domain.NodeDetails, _ int) {
		out = append(out, node.State)
	})
	return out
}

func child(tree runtime.Node, path ...int) runtime.Node {
	n := tree
	for _, i := range path {
		n = n.Children()[i]
	}
	return n
}
