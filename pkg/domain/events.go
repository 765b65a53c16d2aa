package domain

// StateChange is emitted every time a node moves from one state to another.
type StateChange struct {
	NodeID   string   `json:"id"`
	NodeType NodeType `json:"type"`
	Name     string   `json:"name"`
	Previous State    `json:"previousState"`
	State    State    `json:"state"`
}

// StateObserver receives node state changes. It is called synchronously from
// within a tree step and must not step the tree itself.
type StateObserver func(StateChange)
