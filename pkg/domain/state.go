package domain

import (
	"fmt"
	"strings"
)

// State is the position of a node (or a whole tree) in its lifecycle.
type State string

const (
	// Ready means the node has not been updated since it was built or reset.
	Ready State = "READY"
	// Running means the node has been updated but has not resolved yet.
	Running State = "RUNNING"
	// Succeeded is a resolved state.
	Succeeded State = "SUCCEEDED"
	// Failed is a resolved state.
	Failed State = "FAILED"
)

// Resolved reports whether the state is SUCCEEDED or FAILED.
func (s State) Resolved() bool {
	return s == Succeeded || s == Failed
}

func (s State) String() string {
	return string(s)
}

// ParseState converts a case-insensitive state name into a State.
func ParseState(name string) (State, error) {
	switch State(strings.ToUpper(strings.TrimSpace(name))) {
	case Ready:
		return Ready, nil
	case Running:
		return Running, nil
	case Succeeded:
		return Succeeded, nil
	case Failed:
		return Failed, nil
	default:
		return "", fmt.Errorf("unknown state: %q", name)
	}
}
