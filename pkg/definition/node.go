package definition

import "github.com/aretw0/arbor/pkg/domain"

// Node is a single node of a behaviour tree definition.
// Which fields are meaningful depends on Type.
type Node struct {
	Type domain.NodeType `json:"type" yaml:"type" mapstructure:"type"`

	// ID names a root node. An empty ID marks the main root.
	ID string `json:"id,omitempty" yaml:"id,omitempty" mapstructure:"id"`
	// Ref is the id of the root a branch node inlines.
	Ref string `json:"ref,omitempty" yaml:"ref,omitempty" mapstructure:"ref"`

	// Call and Args are used by action and condition nodes.
	Call string     `json:"call,omitempty" yaml:"call,omitempty" mapstructure:"call"`
	Args []Argument `json:"args,omitempty" yaml:"args,omitempty" mapstructure:"args"`

	Duration   *Range `json:"duration,omitempty" yaml:"duration,omitempty" mapstructure:"duration"`
	Iterations *Range `json:"iterations,omitempty" yaml:"iterations,omitempty" mapstructure:"iterations"`
	Attempts   *Range `json:"attempts,omitempty" yaml:"attempts,omitempty" mapstructure:"attempts"`
	Weights    []int  `json:"weights,omitempty" yaml:"weights,omitempty" mapstructure:"weights"`

	Child    *Node   `json:"child,omitempty" yaml:"child,omitempty" mapstructure:"child"`
	Children []*Node `json:"children,omitempty" yaml:"children,omitempty" mapstructure:"children"`

	While *Attribute `json:"while,omitempty" yaml:"while,omitempty" mapstructure:"while"`
	Until *Attribute `json:"until,omitempty" yaml:"until,omitempty" mapstructure:"until"`
	Entry *Attribute `json:"entry,omitempty" yaml:"entry,omitempty" mapstructure:"entry"`
	Step  *Attribute `json:"step,omitempty" yaml:"step,omitempty" mapstructure:"step"`
	Exit  *Attribute `json:"exit,omitempty" yaml:"exit,omitempty" mapstructure:"exit"`
}

// Attribute is a guard (while, until) or callback (entry, step, exit).
// SucceedOnAbort only applies to guards.
type Attribute struct {
	Call           string     `json:"call" yaml:"call" mapstructure:"call"`
	Args           []Argument `json:"args,omitempty" yaml:"args,omitempty" mapstructure:"args"`
	SucceedOnAbort bool       `json:"succeedOnAbort,omitempty" yaml:"succeedOnAbort,omitempty" mapstructure:"succeedOnAbort"`
}

// Attribute names in evaluation order.
const (
	AttributeWhile = "while"
	AttributeUntil = "until"
	AttributeEntry = "entry"
	AttributeStep  = "step"
	AttributeExit  = "exit"
)

// AttributeNames lists every attribute name.
var AttributeNames = []string{AttributeWhile, AttributeUntil, AttributeEntry, AttributeStep, AttributeExit}

// IsGuard reports whether the named attribute is a guard.
func IsGuard(name string) bool {
	return name == AttributeWhile || name == AttributeUntil
}

// Attribute returns the attribute stored under name, or nil.
func (n *Node) Attribute(name string) *Attribute {
	switch name {
	case AttributeWhile:
		return n.While
	case AttributeUntil:
		return n.Until
	case AttributeEntry:
		return n.Entry
	case AttributeStep:
		return n.Step
	case AttributeExit:
		return n.Exit
	}
	return nil
}

// SetAttribute stores attr under name. Unknown names are ignored.
func (n *Node) SetAttribute(name string, attr *Attribute) {
	switch name {
	case AttributeWhile:
		n.While = attr
	case AttributeUntil:
		n.Until = attr
	case AttributeEntry:
		n.Entry = attr
	case AttributeStep:
		n.Step = attr
	case AttributeExit:
		n.Exit = attr
	}
}

// Nodes returns the direct children of n regardless of its category.
func (n *Node) Nodes() []*Node {
	if n.Child != nil {
		return []*Node{n.Child}
	}
	return n.Children
}

// Walk visits n and all its descendants depth-first.
func (n *Node) Walk(fn func(node *Node, depth int)) {
	n.walk(fn, 0)
}

func (n *Node) walk(fn func(*Node, int), depth int) {
	fn(n, depth)
	for _, child := range n.Nodes() {
		if child != nil {
			child.walk(fn, depth+1)
		}
	}
}

// BranchRefs returns the refs of every branch node under n, in definition order.
func (n *Node) BranchRefs() []string {
	var refs []string
	n.Walk(func(node *Node, _ int) {
		if node.Type == domain.NodeTypeBranch {
			refs = append(refs, node.Ref)
		}
	})
	return refs
}
