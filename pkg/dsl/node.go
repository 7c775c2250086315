package dsl

import "github.com/aretw0/diastole/pkg/domain"

// DecisionBuilder provides a fluent API for configuring a question node.
type DecisionBuilder struct {
	node *domain.Decision
}

// Ask sets the question text.
func (d *DecisionBuilder) Ask(question string) *DecisionBuilder {
	d.node.Question = question
	return d
}

// Option adds a choice. A non-empty next maps the value to that node;
// an empty next leaves routing to Otherwise.
func (d *DecisionBuilder) Option(value, text, next string) *DecisionBuilder {
	d.node.Options = append(d.node.Options, domain.Option{Value: value, Text: text})
	if next != "" {
		d.node.Next[value] = next
	}
	return d
}

// Otherwise routes every value without a specific entry to next.
func (d *DecisionBuilder) Otherwise(next string) *DecisionBuilder {
	d.node.Next[domain.Wildcard] = next
	return d
}

// EvaluatorBuilder provides a fluent API for configuring a computed node.
type EvaluatorBuilder struct {
	node *domain.Evaluator
}

// Describe documents what the evaluator decides.
func (e *EvaluatorBuilder) Describe(text string) *EvaluatorBuilder {
	e.node.Description = text
	return e
}

// Remap declares that the answer under from is copied into to before routing.
// A nil values table copies the value unchanged.
func (e *EvaluatorBuilder) Remap(from, to string, values map[string]string) *EvaluatorBuilder {
	e.node.Remaps = append(e.node.Remaps, domain.Remap{From: from, To: to, Values: values})
	return e
}

// Remaps appends a prepared mapping table.
func (e *EvaluatorBuilder) Remaps(remaps ...domain.Remap) *EvaluatorBuilder {
	e.node.Remaps = append(e.node.Remaps, remaps...)
	return e
}

// Route sets the routing function and the complete set of nodes it may return.
func (e *EvaluatorBuilder) Route(fn domain.RouteFunc, targets ...string) *EvaluatorBuilder {
	e.node.Route = fn
	e.node.Targets = append(e.node.Targets, targets...)
	return e
}

// Goto routes unconditionally. It is the common case for remap-only bridges.
func (e *EvaluatorBuilder) Goto(target string) *EvaluatorBuilder {
	return e.Route(func(*domain.EvalContext) string { return target }, target)
}
