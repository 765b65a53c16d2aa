package runtime

import (
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/aretw0/arbor/internal/logging"
	"github.com/aretw0/arbor/pkg/definition"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/registry"
)

// FunctionRegistry resolves functions the agent does not define itself.
// *registry.Registry satisfies it.
type FunctionRegistry interface {
	Function(name string) (registry.Func, bool)
}

// Options tunes how a built tree talks to the outside world.
type Options struct {
	// Random returns a float in [0,1). Used by lotto, repeat, retry and wait.
	Random func() float64
	// DeltaTime returns the seconds elapsed since the previous step. When set,
	// wait nodes accumulate it instead of reading the clock.
	DeltaTime func() float64
	// Now is the wall clock used by wait nodes when DeltaTime is nil.
	Now func() time.Time
	// OnStateChange is called for every node state transition.
	OnStateChange domain.StateObserver
	Logger        *slog.Logger
	Functions     FunctionRegistry
}

func (o Options) withDefaults() Options {
	if o.Random == nil {
		o.Random = rand.Float64
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	if o.Logger == nil {
		o.Logger = logging.NewNop()
	}
	return o
}

// Roots is the set of root definitions a tree is built from.
type Roots struct {
	// Main is the unnamed root the tree starts at.
	Main *definition.Node
	// Named holds every root a branch node may refer to, keyed by id.
	Named map[string]*definition.Node
}

// env is shared by every node of one tree.
type env struct {
	agent any
	opts  Options
}
