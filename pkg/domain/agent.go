package domain

// Dispatcher lets an agent resolve call names itself instead of relying on
// exported methods. A false found value defers to the next lookup strategy.
type Dispatcher interface {
	Dispatch(name string, args []any) (result any, found bool, err error)
}

// PropertyProvider lets an agent resolve "$name" argument references.
type PropertyProvider interface {
	Property(name string) (value any, ok bool)
}

// ExitResult is passed as the first argument of every exit callback.
type ExitResult struct {
	Succeeded bool `json:"succeeded"`
	Aborted   bool `json:"aborted"`
}
