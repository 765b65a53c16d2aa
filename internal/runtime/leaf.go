package runtime

import (
	"fmt"
	"math"
	"time"

	"github.com/aretw0/arbor/pkg/definition"
	"github.com/aretw0/arbor/pkg/domain"
)

type action struct {
	node
	call string
	args []definition.Argument

	// pending is the future returned by the last call, polled every tick.
	pending domain.Future
}

func (a *action) Name() string { return a.call }

func (a *action) detailArgs() []any { return literals(a.args) }

func (a *action) onReset() { a.pending = nil }

func (a *action) onUpdate() error {
	if a.pending != nil {
		return a.poll()
	}

	result, found, err := a.env.call(a.call, a.args)
	if err != nil {
		return fmt.Errorf("action function '%s' failed: %w", a.call, err)
	}
	if !found {
		return fmt.Errorf("cannot update action node as the action '%s' function is not defined on the agent and has not been registered", a.call)
	}

	switch v := result.(type) {
	case nil:
		a.setState(domain.Running)
	case domain.Future:
		a.pending = v
		a.setState(domain.Running)
	case domain.State:
		if v != domain.Succeeded && v != domain.Failed && v != domain.Running {
			return fmt.Errorf("expected action function '%s' to return an optional State.SUCCEEDED or State.FAILED value but returned '%v'", a.call, v)
		}
		a.setState(v)
	default:
		return fmt.Errorf("expected action function '%s' to return an optional State.SUCCEEDED or State.FAILED value but returned '%v'", a.call, result)
	}
	return nil
}

func (a *action) poll() error {
	value, done, err := a.pending.Poll()
	if !done {
		return nil
	}
	a.pending = nil

	if err != nil {
		return fmt.Errorf("action function '%s' promise rejected with '%v'", a.call, err)
	}
	state, ok := value.(domain.State)
	if !ok || !state.Resolved() {
		return fmt.Errorf("action function '%s' promise resolved with an invalid value, expected a State.SUCCEEDED or State.FAILED value but got '%v'", a.call, value)
	}
	a.setState(state)
	return nil
}

type condition struct {
	node
	call string
	args []definition.Argument
}

func (c *condition) Name() string { return c.call }

func (c *condition) detailArgs() []any { return literals(c.args) }

func (c *condition) onUpdate() error {
	result, found, err := c.env.call(c.call, c.args)
	if err != nil {
		return fmt.Errorf("condition function '%s' failed: %w", c.call, err)
	}
	if !found {
		return fmt.Errorf("cannot update condition node as the condition '%s' function is not defined on the agent and has not been registered", c.call)
	}

	ok, isBool := result.(bool)
	if !isBool {
		return fmt.Errorf("expected condition function '%s' to return a boolean but returned '%v'", c.call, result)
	}
	if ok {
		c.setState(domain.Succeeded)
	} else {
		c.setState(domain.Failed)
	}
	return nil
}

type wait struct {
	node
	duration *definition.Range

	// target is the picked duration in milliseconds, negative for forever.
	target    int
	startedAt time.Time
	elapsed   float64
}

func (w *wait) Name() string {
	switch {
	case w.duration == nil:
		return "WAIT"
	case w.duration.IsFixed():
		return fmt.Sprintf("WAIT %dms", w.duration.Min)
	default:
		return fmt.Sprintf("WAIT %dms-%dms", w.duration.Min, w.duration.Max)
	}
}

func (w *wait) onUpdate() error {
	if w.state == domain.Ready {
		w.startedAt = w.env.opts.Now()
		w.elapsed = 0
		w.target = -1
		if w.duration != nil {
			w.target = w.duration.Pick(w.env.opts.Random)
		}
		w.setState(domain.Running)
	}

	if w.target < 0 {
		return nil
	}

	if deltaTime := w.env.opts.DeltaTime; deltaTime != nil {
		delta := deltaTime()
		if math.IsNaN(delta) || math.IsInf(delta, 0) || delta < 0 {
			return fmt.Errorf("the delta time must be a positive number or zero but got '%v'", delta)
		}
		w.elapsed += delta * 1000
	} else {
		w.elapsed = float64(w.env.opts.Now().Sub(w.startedAt).Milliseconds())
	}

	if w.elapsed >= float64(w.target) {
		w.setState(domain.Succeeded)
	}
	return nil
}
