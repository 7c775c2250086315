package domain

import (
	"fmt"
	"slices"
)

// validate checks the closed-graph and well-formedness rules. It returns every problem found.
func (a *Algorithm) validate() []string {
	var problems []string
	report := func(format string, args ...any) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	if a.meta.ID == "" {
		report("algorithm id is empty")
	}
	if a.meta.Name == "" {
		report("algorithm name is empty")
	}
	if _, ok := a.nodes[a.meta.StartNodeID]; !ok {
		report("start node %q does not exist", a.meta.StartNodeID)
	}
	seenModes := make(map[string]bool, len(a.meta.Modes))
	for _, m := range a.meta.Modes {
		if m.ID == "" {
			report("mode with empty id")
			continue
		}
		if seenModes[m.ID] {
			report("duplicate mode id %q", m.ID)
		}
		seenModes[m.ID] = true
		if _, ok := a.nodes[m.StartNodeID]; !ok {
			report("mode %q starts at missing node %q", m.ID, m.StartNodeID)
		}
	}

	check := &structureCheck{alg: a, report: report}
	for _, id := range a.order {
		if err := a.nodes[id].Accept(check); err != nil {
			report("%v", err)
		}
	}
	return problems
}

type structureCheck struct {
	alg    *Algorithm
	report func(string, ...any)
}

func (c *structureCheck) exists(id string) bool {
	_, ok := c.alg.nodes[id]
	return ok
}

func (c *structureCheck) VisitDecision(d *Decision) error {
	if len(d.Options) == 0 {
		c.report("decision %q has no options", d.ID)
	}
	seen := make(map[string]bool, len(d.Options))
	for _, o := range d.Options {
		if seen[o.Value] {
			c.report("decision %q repeats option %q", d.ID, o.Value)
		}
		seen[o.Value] = true
		if _, ok := d.Next.Resolve(o.Value); !ok {
			c.report("decision %q: option %q does not resolve", d.ID, o.Value)
		}
	}
	for value, target := range d.Next {
		if !c.exists(target) {
			c.report("decision %q: %q leads to missing node %q", d.ID, value, target)
		}
	}
	return nil
}

func (c *structureCheck) VisitEvaluator(e *Evaluator) error {
	if e.Route == nil {
		c.report("evaluator %q has no route", e.ID)
	}
	if len(e.Targets) == 0 {
		c.report("evaluator %q declares no targets", e.ID)
	}
	for _, t := range e.Targets {
		if !c.exists(t) {
			c.report("evaluator %q targets missing node %q", e.ID, t)
		}
		if t == e.ID {
			c.report("evaluator %q targets itself", e.ID)
		}
	}
	for _, r := range e.Remaps {
		c.checkRemap(e, r)
	}
	return nil
}

// checkRemap rejects remaps that would write a value the target decision does not offer.
func (c *structureCheck) checkRemap(e *Evaluator, r Remap) {
	if r.From == "" || r.To == "" {
		c.report("evaluator %q has a remap with an empty slot", e.ID)
		return
	}
	target, ok := c.alg.nodes[r.To].(*Decision)
	if !ok {
		return
	}
	var produced []string
	if r.Values != nil {
		for _, v := range r.Values {
			produced = append(produced, v)
		}
	} else if src, ok := c.alg.nodes[r.From].(*Decision); ok {
		for _, o := range src.Options {
			produced = append(produced, o.Value)
		}
	}
	slices.Sort(produced)
	for _, v := range slices.Compact(produced) {
		if !target.HasOption(v) {
			c.report("evaluator %q remaps %q into %q with value %q, which is not an option there", e.ID, r.From, r.To, v)
		}
	}
}

func (c *structureCheck) VisitResult(r *Result) error {
	if r.ResultKey == "" {
		c.report("result %q has no result key", r.ID)
	}
	return nil
}
