// Package tally counts positive, negative and unavailable answers for threshold-based evaluators.
//
// An unavailable parameter is excluded from both the positive and negative counts
// but stays in the pool of expected parameters, so majorities are computed over
// the available ones (2 of 3 rather than 2 of 4). A parameter that was never
// answered is treated as unavailable.
package tally

import "github.com/aretw0/diastole/pkg/domain"

// Polarity classifies one answer.
type Polarity int

const (
	Unavailable Polarity = iota
	Positive
	Negative
	// Neutral answers are available but count toward neither side.
	Neutral
)

func (p Polarity) String() string {
	switch p {
	case Positive:
		return "positive"
	case Negative:
		return "negative"
	case Neutral:
		return "neutral"
	default:
		return "unavailable"
	}
}

// Param describes how to read one node's answer.
type Param struct {
	NodeID   string
	Positive []string
	Negative []string
}

// Binary returns a Param using the conventional "positive" and "negative" values.
func Binary(nodeID string) Param {
	return Param{NodeID: nodeID, Positive: []string{"positive"}, Negative: []string{"negative"}}
}

// Binaries applies Binary to each id.
func Binaries(nodeIDs ...string) []Param {
	out := make([]Param, len(nodeIDs))
	for i, id := range nodeIDs {
		out[i] = Binary(id)
	}
	return out
}

// Classify maps a raw value to a polarity.
func (p Param) Classify(value string, answered bool) Polarity {
	if !answered || value == domain.Unavailable || value == "" {
		return Unavailable
	}
	for _, v := range p.Positive {
		if v == value {
			return Positive
		}
	}
	for _, v := range p.Negative {
		if v == value {
			return Negative
		}
	}
	return Neutral
}

// Counts is the result of a tally.
type Counts struct {
	Positive    int
	Negative    int
	Neutral     int
	Unavailable int
}

// Of tallies already classified answers.
func Of(polarities ...Polarity) Counts {
	var c Counts
	for _, p := range polarities {
		c.Add(p)
	}
	return c
}

// Count reads each param from the evaluation context.
func Count(ctx *domain.EvalContext, params ...Param) Counts {
	var c Counts
	for _, p := range params {
		v, ok := ctx.Lookup(p.NodeID)
		c.Add(p.Classify(v, ok))
	}
	return c
}

// Add records one answer.
func (c *Counts) Add(p Polarity) {
	switch p {
	case Positive:
		c.Positive++
	case Negative:
		c.Negative++
	case Neutral:
		c.Neutral++
	default:
		c.Unavailable++
	}
}

// Total is the size of the expected pool, unavailable included.
func (c Counts) Total() int { return c.Positive + c.Negative + c.Neutral + c.Unavailable }

// Available is the pool minus unavailable answers.
func (c Counts) Available() int { return c.Total() - c.Unavailable }

// PositiveMajority reports whether positives are more than half of the available answers.
func (c Counts) PositiveMajority() bool { return c.Available() > 0 && 2*c.Positive > c.Available() }

// NegativeMajority reports whether negatives are more than half of the available answers.
func (c Counts) NegativeMajority() bool { return c.Available() > 0 && 2*c.Negative > c.Available() }
