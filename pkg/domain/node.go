package domain

import (
	"maps"
	"slices"
)

// NodeType tags the three node variants.
type NodeType string

const (
	// NodeTypeDecision presents a question and halts waiting for an answer.
	NodeTypeDecision NodeType = "decision"
	// NodeTypeEvaluator computes the next node from the accumulated answers (silent step).
	NodeTypeEvaluator NodeType = "evaluator"
	// NodeTypeResult is a terminal node carrying a result key.
	NodeTypeResult NodeType = "result"
)

// Wildcard is the Next-Map key matching any value without a specific entry.
const Wildcard = "*"

// Node is a vertex of a decision graph.
// The set of implementations is closed: only *Decision, *Evaluator and *Result satisfy it.
type Node interface {
	NodeID() string
	Type() NodeType
	// Accept dispatches to the matching Visitor method.
	Accept(v Visitor) error

	node() // marker method restricting implementations to this package
}

// Visitor is implemented by every site that consumes nodes.
// Adding a variant adds a method here, which breaks every visitor at compile time.
type Visitor interface {
	VisitDecision(*Decision) error
	VisitEvaluator(*Evaluator) error
	VisitResult(*Result) error
}

// Option is one selectable answer of a Decision.
type Option struct {
	Value string `json:"value" yaml:"value"`
	Text  string `json:"text" yaml:"text"`
}

// NextMap maps an answer value to a successor node id.
type NextMap map[string]string

// Resolve returns the successor for value. A specific entry wins over the wildcard.
func (m NextMap) Resolve(value string) (string, bool) {
	if next, ok := m[value]; ok {
		return next, true
	}
	next, ok := m[Wildcard]
	return next, ok
}

// Decision asks the user a question.
type Decision struct {
	ID       string
	Question string
	Options  []Option
	Next     NextMap
}

func (d *Decision) NodeID() string         { return d.ID }
func (d *Decision) Type() NodeType         { return NodeTypeDecision }
func (d *Decision) Accept(v Visitor) error { return v.VisitDecision(d) }
func (d *Decision) node()                  {}

// HasOption reports whether value is one of the declared options.
func (d *Decision) HasOption(value string) bool {
	for _, o := range d.Options {
		if o.Value == value {
			return true
		}
	}
	return false
}

// Resolve returns the successor for an answer, or an *AnswerError wrapping ErrInvalidAnswer.
func (d *Decision) Resolve(value string) (string, error) {
	next, ok := d.Next.Resolve(value)
	if !ok {
		return "", &AnswerError{NodeID: d.ID, Value: value}
	}
	return next, nil
}

// Remap copies the answer recorded under From into the slot To, translating
// the value through Values. A nil Values table copies the value unchanged.
// Values missing from a non-nil table are not written.
type Remap struct {
	From   string
	To     string
	Values map[string]string
}

// Apply returns the value to write into To, if any.
func (r Remap) Apply(answers map[string]string) (string, bool) {
	v, ok := answers[r.From]
	if !ok {
		return "", false
	}
	if r.Values == nil {
		return v, true
	}
	mapped, ok := r.Values[v]
	return mapped, ok
}

// RouteFunc selects the successor of an Evaluator. It must be pure.
type RouteFunc func(*EvalContext) string

// Evaluator is a computed edge: it never presents anything to the user.
type Evaluator struct {
	ID          string
	Description string
	// Remaps are applied, in order, before Route runs.
	Remaps []Remap
	Route  RouteFunc
	// Targets lists every id Route may return.
	Targets []string
}

func (e *Evaluator) NodeID() string         { return e.ID }
func (e *Evaluator) Type() NodeType         { return NodeTypeEvaluator }
func (e *Evaluator) Accept(v Visitor) error { return v.VisitEvaluator(e) }
func (e *Evaluator) node()                  {}

// Result is a terminal node.
type Result struct {
	ID        string
	ResultKey ResultKey
}

func (r *Result) NodeID() string         { return r.ID }
func (r *Result) Type() NodeType         { return NodeTypeResult }
func (r *Result) Accept(v Visitor) error { return v.VisitResult(r) }
func (r *Result) node()                  {}

// cloneNode returns a deep copy of the built-in variants. Route functions are shared.
func cloneNode(n Node) Node {
	switch v := n.(type) {
	case *Decision:
		c := *v
		c.Options = slices.Clone(v.Options)
		c.Next = maps.Clone(v.Next)
		return &c
	case *Evaluator:
		c := *v
		c.Remaps = slices.Clone(v.Remaps)
		for i := range c.Remaps {
			c.Remaps[i].Values = maps.Clone(c.Remaps[i].Values)
		}
		c.Targets = slices.Clone(v.Targets)
		return &c
	case *Result:
		c := *v
		return &c
	default:
		return n
	}
}

// VisitorFuncs adapts plain functions to a Visitor.
// A nil field makes the corresponding visit fail with ErrUnsupportedNode.
type VisitorFuncs struct {
	Decision  func(*Decision) error
	Evaluator func(*Evaluator) error
	Result    func(*Result) error
}

func (f VisitorFuncs) VisitDecision(d *Decision) error {
	if f.Decision == nil {
		return unsupported(d)
	}
	return f.Decision(d)
}

func (f VisitorFuncs) VisitEvaluator(e *Evaluator) error {
	if f.Evaluator == nil {
		return unsupported(e)
	}
	return f.Evaluator(e)
}

func (f VisitorFuncs) VisitResult(r *Result) error {
	if f.Result == nil {
		return unsupported(r)
	}
	return f.Result(r)
}
