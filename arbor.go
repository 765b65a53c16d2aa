package arbor

import (
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"sort"
	"time"

	"github.com/aretw0/arbor/internal/compiler"
	"github.com/aretw0/arbor/internal/runtime"
	"github.com/aretw0/arbor/internal/validator"
	"github.com/aretw0/arbor/pkg/definition"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/observability"
	"github.com/aretw0/arbor/pkg/registry"
)

// Version is the library and CLI version.
const Version = "0.1.0"

// Tree is a compiled behaviour tree bound to an agent.
// A Tree is not safe for concurrent use.
type Tree struct {
	root    runtime.Node
	logger  *slog.Logger
	metrics *observability.Metrics
}

type config struct {
	registry  *registry.Registry
	random    func() float64
	deltaTime func() float64
	now       func() time.Time
	observer  domain.StateObserver
	logger    *slog.Logger
	metrics   *observability.Metrics
}

// Option defines a functional option for Compile.
type Option func(*config)

// WithRegistry makes the registry's functions and subtrees available to the tree.
func WithRegistry(r *registry.Registry) Option {
	return func(c *config) {
		c.registry = r
	}
}

// WithRandom overrides the random source used by lotto, repeat, retry and
// wait nodes. fn must return values in [0, 1).
func WithRandom(fn func() float64) Option {
	return func(c *config) {
		c.random = fn
	}
}

// WithDeltaTime makes wait nodes accumulate the seconds returned by fn on
// every step instead of reading the clock.
func WithDeltaTime(fn func() float64) Option {
	return func(c *config) {
		c.deltaTime = fn
	}
}

// WithClock overrides the wall clock used by wait nodes.
func WithClock(now func() time.Time) Option {
	return func(c *config) {
		c.now = now
	}
}

// WithStateObserver registers a callback for every node state change.
func WithStateObserver(fn domain.StateObserver) Option {
	return func(c *config) {
		c.observer = fn
	}
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// WithMetrics records transitions and steps in m.
func WithMetrics(m *observability.Metrics) Option {
	return func(c *config) {
		c.metrics = m
	}
}

// SeededRandom returns a deterministic random source for WithRandom.
func SeededRandom(seed uint64) func() float64 {
	return rand.New(rand.NewPCG(seed, seed)).Float64
}

// Compile parses, validates and builds a tree for agent.
//
// definition may be MDSL text, JSON text (string or []byte), a
// *definition.Node, a []*definition.Node, or decoded JSON/YAML data
// (map[string]any or []any). Named roots in the definition take precedence
// over subtrees of the same name in the registry.
func Compile(def any, agent any, opts ...Option) (*Tree, error) {
	if agent == nil {
		return nil, domain.ErrNilAgent
	}

	cfg := &config{}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.logger == nil {
		cfg.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	logger := cfg.logger.With("component", "arbor")

	roots, err := load(def)
	if err != nil {
		return nil, fmt.Errorf("invalid definition: %w", err)
	}

	set := runtime.Roots{Named: make(map[string]*definition.Node)}
	if cfg.registry != nil {
		for name, root := range cfg.registry.Subtrees() {
			set.Named[name] = root
		}
	}
	for _, root := range roots {
		if root.ID == "" {
			set.Main = root
		} else {
			set.Named[root.ID] = root
		}
	}

	if err := validator.ValidateBranchLinks(linkedRoots(set), true); err != nil {
		return nil, &domain.BuildError{Err: err}
	}

	var fns runtime.FunctionRegistry
	if cfg.registry != nil {
		fns = cfg.registry
	}
	root, err := runtime.Build(set, agent, runtime.Options{
		Random:        cfg.random,
		DeltaTime:     cfg.deltaTime,
		Now:           cfg.now,
		OnStateChange: observe(cfg),
		Logger:        logger,
		Functions:     fns,
	})
	if err != nil {
		return nil, &domain.BuildError{Err: err}
	}

	logger.Debug("tree compiled", "roots", len(roots), "subtrees", len(set.Named))
	return &Tree{root: root, logger: logger, metrics: cfg.metrics}, nil
}

// CompileFile reads a definition from disk (MDSL, JSON or YAML by extension)
// and compiles it.
func CompileFile(path string, agent any, opts ...Option) (*Tree, error) {
	roots, err := compiler.LoadFile(path)
	if err != nil {
		return nil, fmt.Errorf("invalid definition: %w", err)
	}
	return Compile(roots, agent, opts...)
}

// ValidationResult reports whether a definition is valid.
type ValidationResult struct {
	Succeeded    bool   `json:"succeeded"`
	ErrorMessage string `json:"errorMessage,omitempty"`
	// Definition holds the parsed roots when validation succeeded.
	Definition []*definition.Node `json:"definition,omitempty"`
}

// Validate checks a definition without building it. Branch nodes referring
// to roots that are not part of the definition are accepted, since the
// subtree may be registered before the definition is compiled.
func Validate(def any) ValidationResult {
	roots, err := load(def)
	if err != nil {
		return ValidationResult{ErrorMessage: err.Error()}
	}
	return ValidationResult{Succeeded: true, Definition: roots}
}

func load(def any) ([]*definition.Node, error) {
	roots, err := compiler.Load(def)
	if err != nil {
		return nil, err
	}
	if err := validator.ValidateRoots(roots); err != nil {
		return nil, err
	}
	return roots, nil
}

// linkedRoots lists the main root and every named root under its lookup name,
// sorted so cycle reports are deterministic.
func linkedRoots(set runtime.Roots) []*definition.Node {
	names := make([]string, 0, len(set.Named))
	for name := range set.Named {
		names = append(names, name)
	}
	sort.Strings(names)

	out := []*definition.Node{set.Main}
	for _, name := range names {
		named := *set.Named[name]
		named.ID = name
		out = append(out, &named)
	}
	return out
}

func observe(cfg *config) domain.StateObserver {
	if cfg.metrics == nil {
		return cfg.observer
	}
	user := cfg.observer
	return func(change domain.StateChange) {
		cfg.metrics.ObserveTransition(change)
		if user != nil {
			user(change)
		}
	}
}

// Step ticks the tree once. A tree that already resolved is reset first, so
// stepping it again runs it from the start.
func (t *Tree) Step() error {
	started := time.Now()
	if t.root.State().Resolved() {
		t.logger.Debug("resetting resolved tree", "state", t.root.State())
		t.root.Reset()
	}

	err := t.root.Update()
	if t.metrics != nil {
		t.metrics.ObserveStep(t.root.State(), err, time.Since(started))
	}
	if err != nil {
		t.logger.Warn("tree step failed", "error", err)
		return &domain.RuntimeError{Err: err}
	}
	return nil
}

// Reset returns every node to READY, aborting nothing.
func (t *Tree) Reset() {
	t.root.Reset()
}

// IsRunning reports whether the root is RUNNING.
func (t *Tree) IsRunning() bool {
	return t.root.State() == domain.Running
}

// State returns the state of the root.
func (t *Tree) State() domain.State {
	return t.root.State()
}

// Details returns a snapshot of the whole tree.
func (t *Tree) Details() domain.NodeDetails {
	return t.root.Details()
}
