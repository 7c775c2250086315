package domain

// Unavailable is the conventional answer value for a parameter that could not be measured.
const Unavailable = "unavailable"

// EvalContext is the read-only view of a session handed to evaluator routes.
type EvalContext struct {
	AlgorithmID string
	ModeID      string
	answers     map[string]string
}

// NewEvalContext wraps an answer set. The map is read, never written.
func NewEvalContext(algorithmID, modeID string, answers map[string]string) *EvalContext {
	return &EvalContext{AlgorithmID: algorithmID, ModeID: modeID, answers: answers}
}

// Lookup returns the recorded value and whether one exists.
func (c *EvalContext) Lookup(nodeID string) (string, bool) {
	v, ok := c.answers[nodeID]
	return v, ok
}

// Answered reports whether the node has a recorded value.
func (c *EvalContext) Answered(nodeID string) bool {
	_, ok := c.answers[nodeID]
	return ok
}

// Is reports whether the node was answered with one of values.
func (c *EvalContext) Is(nodeID string, values ...string) bool {
	v, ok := c.answers[nodeID]
	if !ok {
		return false
	}
	for _, want := range values {
		if v == want {
			return true
		}
	}
	return false
}
