package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/diastole/pkg/domain"
)

// GraphOverlay contains dynamic state data to visualize on the graph.
type GraphOverlay struct {
	VisitedNodes []string
	CurrentNode  string
}

// OverlayFromState marks every node in the history as visited.
func OverlayFromState(state *domain.State) *GraphOverlay {
	if state == nil {
		return nil
	}
	o := &GraphOverlay{CurrentNode: state.CurrentNodeID}
	for _, h := range state.History {
		o.VisitedNodes = append(o.VisitedNodes, h.NodeID)
	}
	return o
}

// GenerateMermaid produces a Mermaid flowchart for an algorithm.
// It applies semantic styling:
// - Entry points: ((Circle))
// - Evaluator: [[Subroutine]]
// - Decision: [/Parallelogram/]
// - Result: ([Stadium])
// Decision edges are labelled with the answer value; wildcard edges read "any".
func GenerateMermaid(alg *domain.Algorithm, overlay *GraphOverlay) string {
	entries := map[string]bool{alg.StartNodeID(): true}
	for _, m := range alg.Modes() {
		entries[m.StartNodeID] = true
	}

	var sb strings.Builder
	sb.WriteString("graph TD\n")

	for _, node := range alg.Nodes() {
		safeID := sanitizeMermaidID(node.NodeID())

		opener, closer := "[", "]"
		switch {
		case entries[node.NodeID()]:
			opener, closer = "((", "))"
		case node.Type() == domain.NodeTypeEvaluator:
			opener, closer = "[[", "]]"
		case node.Type() == domain.NodeTypeDecision:
			opener, closer = "[/", "/]"
		case node.Type() == domain.NodeTypeResult:
			opener, closer = "([", "])"
		}

		label := node.NodeID()
		if r, ok := node.(*domain.Result); ok {
			label = fmt.Sprintf("%s <br/> %s", r.ID, r.ResultKey)
		}
		fmt.Fprintf(&sb, "    %s%s\"%s\"%s\n", safeID, opener, label, closer)

		for _, e := range domain.Edges(node) {
			safeTo := sanitizeMermaidID(e.To)
			switch e.Label {
			case "":
				// Evaluator routes are computed, not chosen.
				fmt.Fprintf(&sb, "    %s -.-> %s\n", safeID, safeTo)
			case domain.Wildcard:
				fmt.Fprintf(&sb, "    %s -- \"any\" --> %s\n", safeID, safeTo)
			default:
				safeCondition := strings.ReplaceAll(e.Label, "\"", "'")
				fmt.Fprintf(&sb, "    %s -- \"%s\" --> %s\n", safeID, safeCondition, safeTo)
			}
		}
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text (color:#000) for high-contrast on light backgrounds, regardless of theme (Light/Dark)
		sb.WriteString("    classDef visited fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		visitedSet := make(map[string]bool)
		for _, id := range overlay.VisitedNodes {
			safeID := sanitizeMermaidID(id)
			if !visitedSet[safeID] && safeID != "" {
				visitedSet[safeID] = true
				fmt.Fprintf(&sb, "    class %s visited;\n", safeID)
			}
		}

		if overlay.CurrentNode != "" {
			fmt.Fprintf(&sb, "    class %s current;\n", sanitizeMermaidID(overlay.CurrentNode))
		}
	}

	return sb.String()
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	s = strings.ReplaceAll(s, " ", "_")
	return s
}
