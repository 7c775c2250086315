package dsl

import (
	"fmt"

	"github.com/aretw0/diastole/pkg/domain"
)

// Builder manages the algorithm construction.
type Builder struct {
	meta  domain.Metadata
	order []string
	nodes map[string]domain.Node
	errs  []error
}

// New creates a new algorithm builder.
func New(id, name string) *Builder {
	return &Builder{
		meta:  domain.Metadata{ID: id, Name: name},
		nodes: make(map[string]domain.Node),
	}
}

// Describe sets the one-line algorithm description.
func (b *Builder) Describe(text string) *Builder {
	b.meta.Description = text
	return b
}

// Cite sets the guideline citation.
func (b *Builder) Cite(c domain.Citation) *Builder {
	b.meta.Citation = c
	return b
}

// Start sets the default entry node.
func (b *Builder) Start(nodeID string) *Builder {
	b.meta.StartNodeID = nodeID
	return b
}

// Mode adds a named entry point.
func (b *Builder) Mode(id, name, description, startNodeID string) *Builder {
	b.meta.Modes = append(b.meta.Modes, domain.Mode{
		ID:          id,
		Name:        name,
		Description: description,
		StartNodeID: startNodeID,
	})
	return b
}

// Decision adds a question node, or returns the existing one with the same id.
func (b *Builder) Decision(id string) *DecisionBuilder {
	if n, ok := b.nodes[id]; ok {
		if d, ok := n.(*domain.Decision); ok {
			return &DecisionBuilder{node: d}
		}
		b.errs = append(b.errs, fmt.Errorf("node %q redeclared as a decision", id))
		return &DecisionBuilder{node: &domain.Decision{ID: id, Next: domain.NextMap{}}}
	}
	d := &domain.Decision{ID: id, Next: domain.NextMap{}}
	b.add(d)
	return &DecisionBuilder{node: d}
}

// Evaluator adds a computed node, or returns the existing one with the same id.
func (b *Builder) Evaluator(id string) *EvaluatorBuilder {
	if n, ok := b.nodes[id]; ok {
		if e, ok := n.(*domain.Evaluator); ok {
			return &EvaluatorBuilder{node: e}
		}
		b.errs = append(b.errs, fmt.Errorf("node %q redeclared as an evaluator", id))
		return &EvaluatorBuilder{node: &domain.Evaluator{ID: id}}
	}
	e := &domain.Evaluator{ID: id}
	b.add(e)
	return &EvaluatorBuilder{node: e}
}

// Result adds a terminal node.
func (b *Builder) Result(id string, key domain.ResultKey) *Builder {
	if _, ok := b.nodes[id]; ok {
		b.errs = append(b.errs, fmt.Errorf("node %q declared twice", id))
		return b
	}
	b.add(&domain.Result{ID: id, ResultKey: key})
	return b
}

func (b *Builder) add(n domain.Node) {
	b.nodes[n.NodeID()] = n
	b.order = append(b.order, n.NodeID())
}

// Build validates and freezes the algorithm.
func (b *Builder) Build() (*domain.Algorithm, error) {
	if len(b.errs) > 0 {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidDefinition, b.errs[0])
	}
	nodes := make([]domain.Node, 0, len(b.order))
	for _, id := range b.order {
		nodes = append(nodes, b.nodes[id])
	}
	alg, err := domain.NewAlgorithm(b.meta, nodes...)
	if err != nil {
		return nil, fmt.Errorf("failed to build algorithm: %w", err)
	}
	return alg, nil
}

// MustBuild is like Build but panics on error.
// It is meant for package-level algorithm definitions.
func (b *Builder) MustBuild() *domain.Algorithm {
	alg, err := b.Build()
	if err != nil {
		panic(err)
	}
	return alg
}
