package validator

import (
	"fmt"
	"slices"
	"strings"

	"github.com/aretw0/diastole/pkg/domain"
)

// Report summarizes a reachability crawl over an algorithm.
type Report struct {
	AlgorithmID string
	// Reachable lists every node reached from the default start or a mode entry, in visit order.
	Reachable []string
	// Unreachable lists declared nodes no entry can reach, in declaration order.
	Unreachable []string
	// Missing lists edge targets that are not declared.
	Missing []string
	// Dangling lists non-result nodes without any outgoing edge.
	Dangling []string
}

// OK reports whether the crawl found broken links. Unreachable nodes are
// warnings; they do not fail validation.
func (r Report) OK() bool { return len(r.Missing) == 0 && len(r.Dangling) == 0 }

// Err converts the broken links into an error, or nil.
func (r Report) Err() error {
	if r.OK() {
		return nil
	}
	var errors []string
	for _, id := range r.Missing {
		errors = append(errors, fmt.Sprintf("Missing node: '%s'", id))
	}
	for _, id := range r.Dangling {
		errors = append(errors, fmt.Sprintf("Dead end: '%s'", id))
	}
	return fmt.Errorf("%s: found %d errors:\n- %s", r.AlgorithmID, len(errors), strings.Join(errors, "\n- "))
}

// ValidateAlgorithm crawls the graph from every entry point.
func ValidateAlgorithm(alg *domain.Algorithm) Report {
	report := Report{AlgorithmID: alg.ID()}

	queue := []string{alg.StartNodeID()}
	for _, m := range alg.Modes() {
		queue = append(queue, m.StartNodeID)
	}

	visited := make(map[string]bool)
	for len(queue) > 0 {
		currentID := queue[0]
		queue = queue[1:]

		if visited[currentID] {
			continue
		}
		visited[currentID] = true

		node, err := alg.Node(currentID)
		if err != nil {
			if !slices.Contains(report.Missing, currentID) {
				report.Missing = append(report.Missing, currentID)
			}
			continue
		}
		report.Reachable = append(report.Reachable, currentID)

		next := domain.Successors(node)
		if len(next) == 0 && node.Type() != domain.NodeTypeResult {
			report.Dangling = append(report.Dangling, currentID)
		}
		for _, target := range next {
			if !visited[target] {
				queue = append(queue, target)
			}
		}
	}

	for _, id := range alg.NodeIDs() {
		if !visited[id] {
			report.Unreachable = append(report.Unreachable, id)
		}
	}
	return report
}
