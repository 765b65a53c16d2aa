package cli

import (
	"fmt"
	"log/slog"
	"maps"
	"os"
	"reflect"
	"slices"
	"strings"
	"sync"

	"github.com/aretw0/arbor/pkg/domain"
	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Script describes a scripted agent in YAML:
//
//	blackboard:
//	  enemies: 2
//	conditions:
//	  HasEnemies: enemies > 0
//	actions:
//	  Attack:
//	    ticks: 1
//	    result: enemies > 0
//	    set:
//	      enemies: enemies - 1
//
// Expressions use expr-lang syntax. They see every blackboard entry as a
// variable and the call arguments as "args".
type Script struct {
	Blackboard map[string]any          `yaml:"blackboard"`
	Conditions map[string]string       `yaml:"conditions" validate:"dive,keys,required,endkeys,required"`
	Actions    map[string]ActionScript `yaml:"actions" validate:"dive,keys,required,endkeys,required"`
}

// ActionScript describes one action or callback.
type ActionScript struct {
	// Ticks is the number of updates the action stays RUNNING before resolving.
	Ticks int `yaml:"ticks" validate:"gte=0"`
	// Result evaluates to a boolean or a state name. Empty means SUCCEEDED.
	Result string `yaml:"result"`
	// Set assigns blackboard entries when the action resolves.
	Set map[string]string `yaml:"set" validate:"dive,keys,required,endkeys,required"`
}

var scriptValidate = validator.New()

// LoadScript reads and parses a script file.
func LoadScript(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read agent script: %w", err)
	}
	return ParseScript(data)
}

// ParseScript parses and validates a YAML script.
func ParseScript(data []byte) (*Script, error) {
	var script Script
	if err := yaml.Unmarshal(data, &script); err != nil {
		return nil, fmt.Errorf("invalid agent script: %w", err)
	}
	if err := scriptValidate.Struct(&script); err != nil {
		return nil, fmt.Errorf("invalid agent script: %w", err)
	}
	return &script, nil
}

type compiledAction struct {
	ticks  int
	result *vm.Program
	set    map[string]*vm.Program
}

// ScriptAgent runs a Script. It implements domain.Dispatcher for calls and
// domain.PropertyProvider for "$name" arguments, both backed by the
// blackboard.
type ScriptAgent struct {
	mu         sync.Mutex
	blackboard map[string]any
	conditions map[string]*vm.Program
	actions    map[string]compiledAction
	running    map[string]int
	logger     *slog.Logger
}

// NewScriptAgent compiles every expression of script.
func NewScriptAgent(script *Script, logger *slog.Logger) (*ScriptAgent, error) {
	if logger == nil {
		logger = slog.Default()
	}
	a := &ScriptAgent{
		blackboard: maps.Clone(script.Blackboard),
		conditions: make(map[string]*vm.Program, len(script.Conditions)),
		actions:    make(map[string]compiledAction, len(script.Actions)),
		running:    make(map[string]int),
		logger:     logger,
	}
	if a.blackboard == nil {
		a.blackboard = make(map[string]any)
	}

	for name, src := range script.Conditions {
		program, err := expr.Compile(src, expr.AsBool(), expr.AllowUndefinedVariables())
		if err != nil {
			return nil, fmt.Errorf("condition %s: expression compilation failed: %w", name, err)
		}
		a.conditions[name] = program
	}

	for name, action := range script.Actions {
		compiled := compiledAction{ticks: action.Ticks, set: make(map[string]*vm.Program, len(action.Set))}
		if action.Result != "" {
			program, err := expr.Compile(action.Result, expr.AllowUndefinedVariables())
			if err != nil {
				return nil, fmt.Errorf("action %s: expression compilation failed: %w", name, err)
			}
			compiled.result = program
		}
		for key, src := range action.Set {
			program, err := expr.Compile(src, expr.AllowUndefinedVariables())
			if err != nil {
				return nil, fmt.Errorf("action %s: set %s: expression compilation failed: %w", name, key, err)
			}
			compiled.set[key] = program
		}
		a.actions[name] = compiled
	}

	return a, nil
}

// agentMethods are the ScriptAgent methods the runtime could otherwise reach
// by reflection when a call is missing from the script.
var agentMethods = func() []string {
	t := reflect.TypeOf(&ScriptAgent{})
	names := make([]string, 0, t.NumMethod())
	for i := range t.NumMethod() {
		names = append(names, t.Method(i).Name)
	}
	return names
}()

func isAgentMethod(name string) bool {
	return slices.ContainsFunc(agentMethods, func(m string) bool {
		return strings.EqualFold(m, name)
	})
}

// Dispatch implements domain.Dispatcher. Calls missing from the script are
// reported as not found so registered functions can answer them, except
// names of the agent's own methods, which are rejected.
func (a *ScriptAgent) Dispatch(name string, args []any) (any, bool, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if program, ok := a.conditions[name]; ok {
		result, err := expr.Run(program, a.env(args))
		if err != nil {
			return nil, true, fmt.Errorf("expression evaluation failed: %w", err)
		}
		return result, true, nil
	}

	action, ok := a.actions[name]
	if !ok {
		if isAgentMethod(name) {
			return nil, true, fmt.Errorf("unknown call '%s': not defined by the agent script", name)
		}
		return nil, false, nil
	}

	if a.running[name] < action.ticks {
		a.running[name]++
		return domain.Running, true, nil
	}
	delete(a.running, name)

	state, err := a.resolve(name, action, args)
	if err != nil {
		return nil, true, err
	}
	a.logger.Debug("scripted action resolved", "action", name, "state", state)
	return state, true, nil
}

func (a *ScriptAgent) resolve(name string, action compiledAction, args []any) (domain.State, error) {
	env := a.env(args)

	state := domain.Succeeded
	if action.result != nil {
		result, err := expr.Run(action.result, env)
		if err != nil {
			return "", fmt.Errorf("expression evaluation failed: %w", err)
		}
		if state, err = toState(result); err != nil {
			return "", fmt.Errorf("action %s: %w", name, err)
		}
	}

	// Effects all see the blackboard as it was before the action resolved.
	for _, key := range slices.Sorted(maps.Keys(action.set)) {
		value, err := expr.Run(action.set[key], env)
		if err != nil {
			return "", fmt.Errorf("action %s: set %s: expression evaluation failed: %w", name, key, err)
		}
		a.blackboard[key] = value
	}
	return state, nil
}

func toState(result any) (domain.State, error) {
	switch v := result.(type) {
	case bool:
		if v {
			return domain.Succeeded, nil
		}
		return domain.Failed, nil
	case string:
		return domain.ParseState(v)
	case nil:
		return domain.Succeeded, nil
	}
	return "", fmt.Errorf("expression returned %T, expected a boolean or a state name", result)
}

func (a *ScriptAgent) env(args []any) map[string]any {
	env := maps.Clone(a.blackboard)
	env["args"] = args
	return env
}

// Property implements domain.PropertyProvider.
func (a *ScriptAgent) Property(name string) (any, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	v, ok := a.blackboard[name]
	return v, ok
}

// Blackboard returns a copy of the current blackboard.
func (a *ScriptAgent) Blackboard() map[string]any {
	a.mu.Lock()
	defer a.mu.Unlock()
	return maps.Clone(a.blackboard)
}
