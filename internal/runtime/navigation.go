package runtime

import (
	"context"
	"fmt"
	"slices"

	"github.com/aretw0/diastole/pkg/domain"
)

// Start creates a fresh state at the entry node of the algorithm and mode.
// Unknown modes fall back to the default entry. An evaluator entry is resolved immediately.
func (e *Engine) Start(ctx context.Context, algorithmID, modeID string) (*domain.State, error) {
	alg, err := e.source.Get(algorithmID)
	if err != nil {
		return nil, err
	}
	state := domain.NewState(alg.ID(), modeID, alg.EntryNodeID(modeID))
	if _, err := alg.Node(state.CurrentNodeID); err != nil {
		return nil, err
	}
	e.emitEnter(ctx, alg, state.CurrentNodeID)

	if err := e.settle(ctx, alg, state); err != nil {
		return nil, err
	}
	return state, nil
}

// Submit answers the current node. The input state is never modified; on error
// no partial state is returned.
func (e *Engine) Submit(ctx context.Context, state *domain.State, answer string) (*domain.State, error) {
	alg, node, err := e.locate(state)
	if err != nil {
		return nil, err
	}

	next := state.Clone()
	step := &submitStep{engine: e, ctx: ctx, alg: alg, state: next, answer: answer}
	if err := node.Accept(step); err != nil {
		return nil, err
	}
	if err := e.settle(ctx, alg, next); err != nil {
		return nil, err
	}
	return next, nil
}

// StepBack undoes exactly one history entry. The current node becomes the node
// of the popped entry, which may be an evaluator.
func (e *Engine) StepBack(ctx context.Context, state *domain.State) (*domain.State, error) {
	if state == nil || len(state.History) == 0 {
		return nil, domain.ErrHistoryEmpty
	}
	next := state.Clone()
	stepBack(next)
	e.logger.Debug("stepped back", "algorithm", next.AlgorithmID, "node", next.CurrentNodeID)
	return next, nil
}

// Back undoes history until the current node is user-displayable. It is the
// exact inverse of the last Submit made from a decision.
func (e *Engine) Back(ctx context.Context, state *domain.State) (*domain.State, error) {
	alg, _, err := e.locate(state)
	if err != nil {
		return nil, err
	}
	if !slices.ContainsFunc(state.History, func(h domain.HistoryEntry) bool { return !h.IsEvaluation() }) {
		return nil, domain.ErrHistoryEmpty
	}

	next := state.Clone()
	for {
		stepBack(next)
		node, err := alg.Node(next.CurrentNodeID)
		if err != nil {
			return nil, err
		}
		if node.Type() != domain.NodeTypeEvaluator {
			break
		}
	}
	e.logger.Debug("went back", "algorithm", next.AlgorithmID, "node", next.CurrentNodeID)
	return next, nil
}

// Current returns the node the state points at.
func (e *Engine) Current(state *domain.State) (domain.Node, error) {
	_, node, err := e.locate(state)
	return node, err
}

// Phase reports the externally visible engine state.
func (e *Engine) Phase(state *domain.State) domain.Phase {
	if state == nil || state.AlgorithmID == "" {
		return domain.PhaseUninitialized
	}
	node, err := e.Current(state)
	if err != nil {
		return domain.PhaseUninitialized
	}
	switch node.Type() {
	case domain.NodeTypeResult:
		return domain.PhaseAtResult
	case domain.NodeTypeEvaluator:
		return domain.PhaseAtEvaluator
	default:
		return domain.PhaseAtDecision
	}
}

func (e *Engine) locate(state *domain.State) (*domain.Algorithm, domain.Node, error) {
	if state == nil || state.AlgorithmID == "" {
		return nil, nil, domain.ErrNoActiveAlgorithm
	}
	alg, err := e.source.Get(state.AlgorithmID)
	if err != nil {
		return nil, nil, err
	}
	node, err := alg.Node(state.CurrentNodeID)
	if err != nil {
		return nil, nil, err
	}
	return alg, node, nil
}

// settle auto-resolves evaluators until the state rests on a decision or result.
func (e *Engine) settle(ctx context.Context, alg *domain.Algorithm, state *domain.State) error {
	visited := make(map[string]bool)
	for steps := 0; ; steps++ {
		node, err := alg.Node(state.CurrentNodeID)
		if err != nil {
			return err
		}
		ev, ok := node.(*domain.Evaluator)
		if !ok {
			return nil
		}
		if visited[ev.ID] {
			return fmt.Errorf("%w: %q revisited in algorithm %q", domain.ErrEvaluatorCycle, ev.ID, alg.ID())
		}
		if steps >= e.maxChain {
			return fmt.Errorf("%w: more than %d evaluators in algorithm %q", domain.ErrChainTooDeep, e.maxChain, alg.ID())
		}
		visited[ev.ID] = true
		if err := e.evaluate(ctx, alg, state, ev); err != nil {
			return err
		}
	}
}

// evaluate applies the evaluator's remaps, routes, and records one history entry.
func (e *Engine) evaluate(ctx context.Context, alg *domain.Algorithm, state *domain.State, ev *domain.Evaluator) (err error) {
	var writes []domain.Write
	for _, r := range ev.Remaps {
		v, ok := r.Apply(state.Answers)
		if !ok {
			continue
		}
		if prev, had := state.Answers[r.To]; had && prev == v {
			continue
		}
		writes = append(writes, state.Set(r.To, v))
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("evaluator %q failed: %v", ev.ID, r)
		}
	}()
	target := ev.Route(domain.NewEvalContext(state.AlgorithmID, state.ModeID, state.Answers))
	if !slices.Contains(ev.Targets, target) {
		return fmt.Errorf("%w: evaluator %q routed to undeclared node %q", domain.ErrNodeNotFound, ev.ID, target)
	}

	state.History = append(state.History, domain.HistoryEntry{
		NodeID: ev.ID,
		Answer: domain.AutoEvaluation,
		Writes: writes,
	})
	e.logger.Debug("evaluator resolved", "algorithm", alg.ID(), "node", ev.ID, "next", target, "writes", len(writes))
	if e.hooks.OnEvaluate != nil {
		e.hooks.OnEvaluate(ctx, &domain.EvaluateEvent{
			Timestamp:   e.now(),
			AlgorithmID: alg.ID(),
			NodeID:      ev.ID,
			Next:        target,
			Writes:      writes,
		})
	}
	e.advance(ctx, alg, state, ev, target, domain.AutoEvaluation)
	return nil
}

func (e *Engine) advance(ctx context.Context, alg *domain.Algorithm, state *domain.State, from domain.Node, to, answer string) {
	e.emit(ctx, e.hooks.OnNodeLeave, domain.EventNodeLeave, alg, from.NodeID(), from.Type(), answer)
	state.CurrentNodeID = to
	e.emitEnter(ctx, alg, to)
}

func stepBack(state *domain.State) {
	last := state.History[len(state.History)-1]
	state.History = state.History[:len(state.History)-1]
	state.Undo(last.Writes)
	state.CurrentNodeID = last.NodeID
}

// submitStep applies one answer to the current node.
type submitStep struct {
	engine *Engine
	ctx    context.Context
	alg    *domain.Algorithm
	state  *domain.State
	answer string
}

func (s *submitStep) VisitDecision(d *domain.Decision) error {
	target, err := d.Resolve(s.answer)
	if err != nil {
		return err
	}
	w := s.state.Set(d.ID, s.answer)
	s.state.History = append(s.state.History, domain.HistoryEntry{
		NodeID: d.ID,
		Answer: s.answer,
		Writes: []domain.Write{w},
	})
	s.engine.advance(s.ctx, s.alg, s.state, d, target, s.answer)
	return nil
}

func (s *submitStep) VisitEvaluator(ev *domain.Evaluator) error {
	return s.engine.evaluate(s.ctx, s.alg, s.state, ev)
}

func (s *submitStep) VisitResult(r *domain.Result) error {
	return fmt.Errorf("%w: %q", domain.ErrAtResult, r.ID)
}
