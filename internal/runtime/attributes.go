package runtime

import (
	"fmt"

	"github.com/aretw0/arbor/pkg/definition"
	"github.com/aretw0/arbor/pkg/domain"
)

type attribute struct {
	name           string
	call           string
	args           []definition.Argument
	succeedOnAbort bool
}

type attributes struct {
	while, until, entry, step, exit *attribute
}

func newAttributes(def *definition.Node) attributes {
	convert := func(name string) *attribute {
		a := def.Attribute(name)
		if a == nil {
			return nil
		}
		return &attribute{name: name, call: a.Call, args: a.Args, succeedOnAbort: a.SucceedOnAbort}
	}
	return attributes{
		while: convert(definition.AttributeWhile),
		until: convert(definition.AttributeUntil),
		entry: convert(definition.AttributeEntry),
		step:  convert(definition.AttributeStep),
		exit:  convert(definition.AttributeExit),
	}
}

// guards returns the guard attributes in evaluation order.
func (a attributes) guards() []*attribute {
	var guards []*attribute
	for _, g := range []*attribute{a.while, a.until} {
		if g != nil {
			guards = append(guards, g)
		}
	}
	return guards
}

// invoke runs a callback attribute. The result of the call is ignored.
func (a *attribute) invoke(e *env, leading ...any) error {
	if a == nil {
		return nil
	}
	_, found, err := e.call(a.call, a.args, leading...)
	if err != nil {
		return fmt.Errorf("%s function '%s' failed: %w", a.name, a.call, err)
	}
	if !found {
		return fmt.Errorf("cannot call %s function '%s' as is not defined on the agent and has not been registered", a.name, a.call)
	}
	return nil
}

// satisfied evaluates a guard: while holds when its call returns true, until
// when it returns false.
func (a *attribute) satisfied(e *env) (bool, error) {
	result, found, err := e.call(a.call, a.args)
	if err != nil {
		return false, fmt.Errorf("guard condition function '%s' failed: %w", a.call, err)
	}
	if !found {
		return false, fmt.Errorf("cannot evaluate node guard as the condition '%s' function is not defined on the agent and has not been registered", a.call)
	}
	ok, isBool := result.(bool)
	if !isBool {
		return false, fmt.Errorf("expected guard condition function '%s' to return a boolean but returned '%v'", a.call, result)
	}
	if a.name == definition.AttributeUntil {
		return !ok, nil
	}
	return ok, nil
}

func (a *attribute) details() *domain.AttributeDetails {
	if a == nil {
		return nil
	}
	return &domain.AttributeDetails{
		Type:           a.name,
		Call:           a.call,
		Args:           literals(a.args),
		SucceedOnAbort: a.succeedOnAbort,
	}
}

func literals(args []definition.Argument) []any {
	if len(args) == 0 {
		return nil
	}
	out := make([]any, 0, len(args))
	for _, arg := range args {
		out = append(out, arg.Literal())
	}
	return out
}

// guardFailure travels up the update chain as an error until the node owning
// the unsatisfied guard catches it.
type guardFailure struct {
	owner          Node
	succeedOnAbort bool
}

func (g *guardFailure) Error() string {
	return fmt.Sprintf("guard unsatisfied for %s node '%s'", g.owner.Type(), g.owner.ID())
}

type guardEntry struct {
	owner  Node
	guards []*attribute
}

// guardPath lists every guarded node from the root down to the node it
// belongs to, the node itself included.
type guardPath []guardEntry

func (p guardPath) evaluate(e *env) error {
	for _, entry := range p {
		for _, guard := range entry.guards {
			ok, err := guard.satisfied(e)
			if err != nil {
				return err
			}
			if !ok {
				return &guardFailure{owner: entry.owner, succeedOnAbort: guard.succeedOnAbort}
			}
		}
	}
	return nil
}
