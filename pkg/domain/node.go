package domain

// NodeType identifies the behaviour of a node, both in a definition and at runtime.
type NodeType string

// NodeType constants mirror the keywords of the definition language (lowercased).
const (
	// NodeTypeRoot is the entry point of a tree or a named subtree.
	NodeTypeRoot NodeType = "root"
	// NodeTypeBranch inlines another root by reference. It only exists in definitions.
	NodeTypeBranch NodeType = "branch"

	NodeTypeAction    NodeType = "action"
	NodeTypeCondition NodeType = "condition"
	NodeTypeWait      NodeType = "wait"

	NodeTypeSequence NodeType = "sequence"
	NodeTypeSelector NodeType = "selector"
	NodeTypeParallel NodeType = "parallel"
	NodeTypeRace     NodeType = "race"
	NodeTypeAll      NodeType = "all"
	NodeTypeLotto    NodeType = "lotto"

	NodeTypeRepeat  NodeType = "repeat"
	NodeTypeRetry   NodeType = "retry"
	NodeTypeFlip    NodeType = "flip"
	NodeTypeSucceed NodeType = "succeed"
	NodeTypeFail    NodeType = "fail"
)

// NodeTypes lists every known node type in keyword order.
var NodeTypes = []NodeType{
	NodeTypeRoot, NodeTypeBranch,
	NodeTypeAction, NodeTypeCondition, NodeTypeWait,
	NodeTypeSequence, NodeTypeSelector, NodeTypeParallel, NodeTypeRace, NodeTypeAll, NodeTypeLotto,
	NodeTypeRepeat, NodeTypeRetry, NodeTypeFlip, NodeTypeSucceed, NodeTypeFail,
}

// IsComposite reports whether nodes of this type own one or more children.
func (t NodeType) IsComposite() bool {
	switch t {
	case NodeTypeSequence, NodeTypeSelector, NodeTypeParallel, NodeTypeRace, NodeTypeAll, NodeTypeLotto:
		return true
	}
	return false
}

// IsDecorator reports whether nodes of this type own exactly one child.
func (t NodeType) IsDecorator() bool {
	switch t {
	case NodeTypeRoot, NodeTypeRepeat, NodeTypeRetry, NodeTypeFlip, NodeTypeSucceed, NodeTypeFail:
		return true
	}
	return false
}

// IsLeaf reports whether nodes of this type have no children.
func (t NodeType) IsLeaf() bool {
	switch t {
	case NodeTypeBranch, NodeTypeAction, NodeTypeCondition, NodeTypeWait:
		return true
	}
	return false
}

// IsKnown reports whether t is one of the NodeTypes.
func (t NodeType) IsKnown() bool {
	return t.IsComposite() || t.IsDecorator() || t.IsLeaf()
}

// AttributeDetails describes a guard or callback attached to a node.
type AttributeDetails struct {
	Type           string `json:"type"`
	Call           string `json:"call"`
	Args           []any  `json:"args,omitempty"`
	SucceedOnAbort bool   `json:"succeedOnAbort,omitempty"`
}

// NodeDetails is a read-only snapshot of a runtime node and its subtree.
// Property reference arguments are rendered as "$name".
type NodeDetails struct {
	ID    string   `json:"id"`
	Type  NodeType `json:"type"`
	Name  string   `json:"name"`
	State State    `json:"state"`

	While *AttributeDetails `json:"while,omitempty"`
	Until *AttributeDetails `json:"until,omitempty"`
	Entry *AttributeDetails `json:"entry,omitempty"`
	Step  *AttributeDetails `json:"step,omitempty"`
	Exit  *AttributeDetails `json:"exit,omitempty"`

	Args     []any         `json:"args,omitempty"`
	Children []NodeDetails `json:"children,omitempty"`
}

// Walk visits d and every descendant depth-first, parents before children.
// The depth of d itself is 0.
func (d NodeDetails) Walk(fn func(node NodeDetails, depth int)) {
	d.walk(fn, 0)
}

func (d NodeDetails) walk(fn func(NodeDetails, int), depth int) {
	fn(d, depth)
	for _, child := range d.Children {
		child.walk(fn, depth+1)
	}
}
