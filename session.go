package diastole

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"slices"

	"github.com/aretw0/diastole/pkg/domain"
)

// Session is the stateful navigator for one user. It is not safe for
// concurrent use; network adapters create one per request.
type Session struct {
	engine *Engine
	state  *domain.State
	// last algorithm and mode started, used by Restart
	algorithmID string
	modeID      string
}

// NewSession creates an uninitialized session.
func (e *Engine) NewSession() *Session {
	return &Session{engine: e}
}

// StartAlgorithm resets the session to the entry node of an algorithm mode.
// An unknown mode falls back to the default entry.
func (s *Session) StartAlgorithm(ctx context.Context, algorithmID, modeID string) error {
	state, err := s.engine.Start(ctx, algorithmID, modeID)
	if err != nil {
		return err
	}
	s.commit(state)
	return nil
}

// SubmitAnswer answers the current node. On error the session is unchanged.
func (s *Session) SubmitAnswer(ctx context.Context, value string) error {
	if s.state == nil {
		return domain.ErrNoActiveAlgorithm
	}
	state, err := s.engine.Submit(ctx, s.state, value)
	if err != nil {
		return err
	}
	s.state = state
	return nil
}

// GoBack returns to the previous question, skipping evaluator steps.
func (s *Session) GoBack(ctx context.Context) error {
	if s.state == nil {
		return domain.ErrNoActiveAlgorithm
	}
	state, err := s.engine.Back(ctx, s.state)
	if err != nil {
		return err
	}
	s.state = state
	return nil
}

// StepBack pops a single history entry. The session may then rest on an
// evaluator; SubmitAnswer re-runs it.
func (s *Session) StepBack(ctx context.Context) error {
	if s.state == nil {
		return domain.ErrNoActiveAlgorithm
	}
	state, err := s.engine.StepBack(ctx, s.state)
	if err != nil {
		return err
	}
	s.state = state
	return nil
}

// Restart starts the last algorithm and mode again.
func (s *Session) Restart(ctx context.Context) error {
	if s.algorithmID == "" {
		return domain.ErrNoActiveAlgorithm
	}
	return s.StartAlgorithm(ctx, s.algorithmID, s.modeID)
}

// CurrentNode renders the node the session rests on.
func (s *Session) CurrentNode() (*domain.NodeView, error) {
	return s.engine.Render(s.state)
}

// Status reports the session phase.
func (s *Session) Status() domain.Phase {
	return s.engine.Phase(s.state)
}

// IsAtResult reports whether the session reached a terminal node.
func (s *Session) IsAtResult() bool {
	return s.Status() == domain.PhaseAtResult
}

// Result returns the catalog entry of the current result, or nil.
func (s *Session) Result() *domain.Outcome {
	if !s.IsAtResult() {
		return nil
	}
	view, err := s.CurrentNode()
	if err != nil {
		return nil
	}
	return view.Result
}

// Answers returns a copy of the answer set.
func (s *Session) Answers() map[string]string {
	if s.state == nil {
		return map[string]string{}
	}
	return maps.Clone(s.state.Answers)
}

// History returns a copy of the traversal history, oldest first.
func (s *Session) History() []domain.HistoryEntry {
	if s.state == nil {
		return nil
	}
	return s.state.Clone().History
}

// CanGoBack reports whether GoBack would succeed.
func (s *Session) CanGoBack() bool {
	return s.state != nil && slices.ContainsFunc(s.state.History, func(h domain.HistoryEntry) bool {
		return !h.IsEvaluation()
	})
}

// Citation returns the source of the active algorithm.
func (s *Session) Citation() (domain.Citation, bool) {
	if s.state == nil {
		return domain.Citation{}, false
	}
	alg, err := s.engine.Algorithm(s.state.AlgorithmID)
	if err != nil {
		return domain.Citation{}, false
	}
	return alg.Citation(), true
}

// State returns a copy of the underlying snapshot, or nil before a start.
func (s *Session) State() *domain.State {
	return s.state.Clone()
}

// Serialize encodes the session as a JSON snapshot.
func (s *Session) Serialize() ([]byte, error) {
	if s.state == nil {
		return nil, domain.ErrNoActiveAlgorithm
	}
	return json.Marshal(s.state)
}

// Deserialize restores a snapshot produced by Serialize. The state is rebuilt
// by replaying the recorded answers; entries may omit their writes. Malformed
// or inconsistent input fails with domain.ErrSerialization and leaves the
// session untouched.
func (s *Session) Deserialize(blob []byte) error {
	dec := json.NewDecoder(bytes.NewReader(blob))
	dec.DisallowUnknownFields()

	var state domain.State
	if err := dec.Decode(&state); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrSerialization, err)
	}
	if dec.More() {
		return fmt.Errorf("%w: trailing data after snapshot", domain.ErrSerialization)
	}
	if state.History == nil {
		state.History = []domain.HistoryEntry{}
	}
	restored, err := s.engine.Restore(context.Background(), &state)
	if err != nil {
		return err
	}
	s.commit(restored)
	return nil
}

func (s *Session) commit(state *domain.State) {
	s.state = state
	s.algorithmID = state.AlgorithmID
	s.modeID = state.ModeID
}
