package runtime

import (
	"context"
	"fmt"
	"maps"
	"slices"

	"github.com/aretw0/diastole/pkg/domain"
)

// Replay rebuilds a state from transported history. Only user answers are
// replayed; evaluator entries are regenerated by the engine, so a client can
// never inject writes it did not earn.
func (e *Engine) Replay(ctx context.Context, algorithmID, modeID string, history []domain.HistoryEntry) (*domain.State, error) {
	state, err := e.Start(ctx, algorithmID, modeID)
	if err != nil {
		return nil, err
	}
	for i, h := range history {
		if h.IsEvaluation() {
			continue
		}
		if h.NodeID != state.CurrentNodeID {
			return nil, fmt.Errorf("%w: history step %d answers %q but the session is at %q",
				domain.ErrSerialization, i, h.NodeID, state.CurrentNodeID)
		}
		state, err = e.Submit(ctx, state, h.Answer)
		if err != nil {
			return nil, fmt.Errorf("%w: history step %d: %w", domain.ErrSerialization, i, err)
		}
	}
	return state, nil
}

// ValidateState checks that a deserialized state is consistent with its algorithm.
// Every failure wraps domain.ErrSerialization.
func (e *Engine) ValidateState(state *domain.State) error {
	if state == nil {
		return fmt.Errorf("%w: empty state", domain.ErrSerialization)
	}
	alg, err := e.source.Get(state.AlgorithmID)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrSerialization, err)
	}
	if _, err := alg.Node(state.CurrentNodeID); err != nil {
		return fmt.Errorf("%w: current node: %w", domain.ErrSerialization, err)
	}
	if state.Answers == nil {
		return fmt.Errorf("%w: answers are missing", domain.ErrSerialization)
	}
	for i, h := range state.History {
		node, err := alg.Node(h.NodeID)
		if err != nil {
			return fmt.Errorf("%w: history step %d: %w", domain.ErrSerialization, i, err)
		}
		isEval := node.Type() == domain.NodeTypeEvaluator
		if isEval != h.IsEvaluation() {
			return fmt.Errorf("%w: history step %d: answer %q does not fit %s %q",
				domain.ErrSerialization, i, h.Answer, node.Type(), h.NodeID)
		}
		if node.Type() == domain.NodeTypeResult {
			return fmt.Errorf("%w: history step %d: result %q cannot be answered", domain.ErrSerialization, i, h.NodeID)
		}
		for _, w := range h.Writes {
			if w.Key == "" {
				return fmt.Errorf("%w: history step %d: write without key", domain.ErrSerialization, i)
			}
		}
	}
	return nil
}

// Restore rebuilds a deserialized snapshot by replaying its user answers, so
// the answer set and the undo records come from the engine rather than from
// the blob. The snapshot must agree with the rebuilt state on the current
// node and the answers. Evaluator entries are optional; when present they must
// match the regenerated ones. Every failure wraps domain.ErrSerialization.
func (e *Engine) Restore(ctx context.Context, snapshot *domain.State) (*domain.State, error) {
	if err := e.ValidateState(snapshot); err != nil {
		return nil, err
	}
	state, err := e.Replay(ctx, snapshot.AlgorithmID, snapshot.ModeID, snapshot.Decisions())
	if err != nil {
		return nil, err
	}

	// A single-entry step back leaves a session resting on an evaluator.
	for state.CurrentNodeID != snapshot.CurrentNodeID {
		last, ok := state.LastEntry()
		if !ok || !last.IsEvaluation() {
			break
		}
		stepBack(state)
	}

	switch {
	case state.CurrentNodeID != snapshot.CurrentNodeID:
		return nil, fmt.Errorf("%w: snapshot rests on %q but its history leads to %q",
			domain.ErrSerialization, snapshot.CurrentNodeID, state.CurrentNodeID)
	case !maps.Equal(state.Answers, snapshot.Answers):
		return nil, fmt.Errorf("%w: answers do not match the history", domain.ErrSerialization)
	case len(snapshot.History) != len(snapshot.Decisions()) && !sameSteps(state.History, snapshot.History):
		return nil, fmt.Errorf("%w: evaluator entries do not match the history", domain.ErrSerialization)
	}
	return state, nil
}

func sameSteps(a, b []domain.HistoryEntry) bool {
	return slices.EqualFunc(a, b, func(x, y domain.HistoryEntry) bool {
		return x.NodeID == y.NodeID && x.Answer == y.Answer
	})
}

// At positions a fresh state on an arbitrary node, resolving it first if it is
// an evaluator. Evaluators see an empty answer set, so they route to their
// insufficient-information branches.
func (e *Engine) At(ctx context.Context, algorithmID, modeID, nodeID string) (*domain.State, error) {
	alg, err := e.source.Get(algorithmID)
	if err != nil {
		return nil, err
	}
	if _, err := alg.Node(nodeID); err != nil {
		return nil, err
	}
	state := domain.NewState(alg.ID(), modeID, nodeID)
	if err := e.settle(ctx, alg, state); err != nil {
		return nil, err
	}
	return state, nil
}
