package domain

import (
	"fmt"
	"slices"
)

// Citation identifies the published guideline an algorithm implements.
type Citation struct {
	Authors string `json:"authors" yaml:"authors"`
	Title   string `json:"title" yaml:"title"`
	Journal string `json:"journal" yaml:"journal"`
	URL     string `json:"url,omitempty" yaml:"url,omitempty"`
}

// Mode is a named alternate entry point into an algorithm's node pool.
type Mode struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	StartNodeID string `json:"startNodeId"`
}

// Metadata is the presentation view of an algorithm. It never carries nodes.
type Metadata struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Citation    Citation `json:"citation"`
	Modes       []Mode   `json:"modes,omitempty"`
	StartNodeID string   `json:"startNodeId"`
}

// Algorithm is a validated, immutable decision graph.
// It is safe for concurrent reads.
type Algorithm struct {
	meta  Metadata
	nodes map[string]Node
	order []string
}

// NewAlgorithm validates the definition and returns the frozen algorithm.
// Nodes are copied, so later changes to the arguments are not seen.
// Validation failures are reported as a *DefinitionError.
func NewAlgorithm(meta Metadata, nodes ...Node) (*Algorithm, error) {
	a := &Algorithm{
		meta:  copyMetadata(meta),
		nodes: make(map[string]Node, len(nodes)),
		order: make([]string, 0, len(nodes)),
	}
	var problems []string
	for i, n := range nodes {
		if n == nil {
			problems = append(problems, fmt.Sprintf("node #%d is nil", i))
			continue
		}
		id := n.NodeID()
		if id == "" {
			problems = append(problems, fmt.Sprintf("node #%d has an empty id", i))
			continue
		}
		if _, dup := a.nodes[id]; dup {
			problems = append(problems, fmt.Sprintf("duplicate node id %q", id))
			continue
		}
		a.nodes[id] = cloneNode(n)
		a.order = append(a.order, id)
	}
	problems = append(problems, a.validate()...)
	if len(problems) > 0 {
		return nil, &DefinitionError{AlgorithmID: meta.ID, Problems: problems}
	}
	return a, nil
}

func (a *Algorithm) ID() string          { return a.meta.ID }
func (a *Algorithm) Name() string        { return a.meta.Name }
func (a *Algorithm) Description() string { return a.meta.Description }
func (a *Algorithm) Citation() Citation  { return a.meta.Citation }
func (a *Algorithm) StartNodeID() string { return a.meta.StartNodeID }

// Modes returns a copy of the mode list.
func (a *Algorithm) Modes() []Mode { return slices.Clone(a.meta.Modes) }

// Metadata returns a copy of the algorithm metadata.
func (a *Algorithm) Metadata() Metadata { return copyMetadata(a.meta) }

// Mode looks up a mode by id.
func (a *Algorithm) Mode(id string) (Mode, bool) {
	for _, m := range a.meta.Modes {
		if m.ID == id {
			return m, true
		}
	}
	return Mode{}, false
}

// EntryNodeID returns the entry node for a mode.
// An empty or unknown mode falls back to the default entry.
func (a *Algorithm) EntryNodeID(modeID string) string {
	if m, ok := a.Mode(modeID); ok {
		return m.StartNodeID
	}
	return a.meta.StartNodeID
}

// Node looks up a node by id. The node is shared by every caller and must
// not be modified.
func (a *Algorithm) Node(id string) (Node, error) {
	n, ok := a.nodes[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q in algorithm %q", ErrNodeNotFound, id, a.meta.ID)
	}
	return n, nil
}

// NodeIDs returns node ids in declaration order.
func (a *Algorithm) NodeIDs() []string { return slices.Clone(a.order) }

// Nodes returns nodes in declaration order. The nodes are shared, as with Node.
func (a *Algorithm) Nodes() []Node {
	out := make([]Node, 0, len(a.order))
	for _, id := range a.order {
		out = append(out, a.nodes[id])
	}
	return out
}

// Len returns the number of nodes.
func (a *Algorithm) Len() int { return len(a.order) }

func copyMetadata(m Metadata) Metadata {
	m.Modes = slices.Clone(m.Modes)
	return m
}
