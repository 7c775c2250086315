package domain

import "slices"

// Edge is a directed link between two nodes. Label is the answer value for
// decision edges and empty for evaluator edges.
type Edge struct {
	From  string
	To    string
	Label string
}

// Edges lists the outgoing links of a node in a stable order: decision options
// first, in declaration order, then the wildcard, then evaluator targets.
func Edges(n Node) []Edge {
	var edges []Edge
	_ = n.Accept(VisitorFuncs{
		Decision: func(d *Decision) error {
			for _, o := range d.Options {
				if to, ok := d.Next[o.Value]; ok {
					edges = append(edges, Edge{From: d.ID, To: to, Label: o.Value})
				}
			}
			if to, ok := d.Next[Wildcard]; ok {
				edges = append(edges, Edge{From: d.ID, To: to, Label: Wildcard})
			}
			return nil
		},
		Evaluator: func(ev *Evaluator) error {
			for _, to := range ev.Targets {
				edges = append(edges, Edge{From: ev.ID, To: to})
			}
			return nil
		},
		Result: func(*Result) error { return nil },
	})
	return edges
}

// Successors returns the distinct node ids reachable in one step from n.
func Successors(n Node) []string {
	var out []string
	for _, e := range Edges(n) {
		if !slices.Contains(out, e.To) {
			out = append(out, e.To)
		}
	}
	return out
}
