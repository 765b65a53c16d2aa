package domain

import "errors"

// ErrNilAgent is returned when a tree is compiled without an agent.
var ErrNilAgent = errors.New("the agent must be defined and not nil")

// ErrUnsupportedDefinition is returned when a definition value has an unknown Go type.
var ErrUnsupportedDefinition = errors.New("unsupported definition type")

// ErrDefinitionNotFound is returned by definition sources for unknown names.
var ErrDefinitionNotFound = errors.New("definition not found")

// ErrPromiseRejected is the reason used when a Promise is rejected without one.
var ErrPromiseRejected = errors.New("promise rejected")

// SyntaxError is raised by the MDSL tokenizer and parser.
type SyntaxError struct {
	Message string
}

func (e *SyntaxError) Error() string { return e.Message }

// ValidationError reports a structurally or semantically invalid definition.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// BuildError wraps a failure to turn a validated definition into runtime nodes.
type BuildError struct {
	Err error
}

func (e *BuildError) Error() string { return "error building tree: " + e.Err.Error() }

func (e *BuildError) Unwrap() error { return e.Err }

// RuntimeError wraps a failure raised while stepping a tree.
type RuntimeError struct {
	Err error
}

func (e *RuntimeError) Error() string { return "error stepping tree: " + e.Err.Error() }

func (e *RuntimeError) Unwrap() error { return e.Err }
