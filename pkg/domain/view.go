package domain

// NodeView is the user-facing projection of a node. Evaluators are never rendered.
type NodeView struct {
	ID       string   `json:"id"`
	Type     NodeType `json:"type"`
	Question string   `json:"question,omitempty"`
	Options  []Option `json:"options,omitempty"`
	// ResultKey and Result are set for result nodes only.
	ResultKey ResultKey `json:"resultKey,omitempty"`
	Result    *Outcome  `json:"result,omitempty"`
}
