package domain

import "maps"

// AutoEvaluation is the synthetic answer recorded for evaluator history entries.
const AutoEvaluation = "auto-evaluation"

// Write records one answer-set mutation so it can be undone exactly.
type Write struct {
	Key     string `json:"key"`
	Prev    string `json:"prev,omitempty"`
	HadPrev bool   `json:"hadPrev,omitempty"`
}

// HistoryEntry is one traversal step, oldest first in State.History.
type HistoryEntry struct {
	NodeID string  `json:"nodeId"`
	Answer string  `json:"answer"`
	Writes []Write `json:"writes,omitempty"`
}

// IsEvaluation reports whether the entry was produced by an evaluator.
func (h HistoryEntry) IsEvaluation() bool { return h.Answer == AutoEvaluation }

// Phase is the externally visible engine state.
type Phase string

const (
	PhaseUninitialized Phase = "uninitialized"
	PhaseAtDecision    Phase = "at_decision"
	PhaseAtResult      Phase = "at_result"
	// PhaseAtEvaluator is only reachable through a single-entry step back.
	PhaseAtEvaluator Phase = "at_evaluator"
)

// State is the complete, serializable snapshot of a navigation session.
type State struct {
	AlgorithmID   string            `json:"algorithmId"`
	ModeID        string            `json:"modeId,omitempty"`
	CurrentNodeID string            `json:"currentNodeId"`
	History       []HistoryEntry    `json:"history"`
	Answers       map[string]string `json:"answers"`
}

// NewState creates a clean state positioned at entry.
func NewState(algorithmID, modeID, entry string) *State {
	return &State{
		AlgorithmID:   algorithmID,
		ModeID:        modeID,
		CurrentNodeID: entry,
		History:       []HistoryEntry{},
		Answers:       map[string]string{},
	}
}

// Clone returns a deep copy.
func (s *State) Clone() *State {
	if s == nil {
		return nil
	}
	c := *s
	c.History = make([]HistoryEntry, len(s.History))
	for i, h := range s.History {
		h.Writes = append([]Write(nil), h.Writes...)
		c.History[i] = h
	}
	c.Answers = maps.Clone(s.Answers)
	if c.Answers == nil {
		c.Answers = map[string]string{}
	}
	return &c
}

// Set writes an answer and returns the undo record.
func (s *State) Set(key, value string) Write {
	prev, had := s.Answers[key]
	s.Answers[key] = value
	return Write{Key: key, Prev: prev, HadPrev: had}
}

// Undo reverts writes in reverse order.
func (s *State) Undo(writes []Write) {
	for i := len(writes) - 1; i >= 0; i-- {
		w := writes[i]
		if w.HadPrev {
			s.Answers[w.Key] = w.Prev
		} else {
			delete(s.Answers, w.Key)
		}
	}
}

// LastEntry returns the most recent history entry.
func (s *State) LastEntry() (HistoryEntry, bool) {
	if len(s.History) == 0 {
		return HistoryEntry{}, false
	}
	return s.History[len(s.History)-1], true
}

// Decisions returns the user-supplied answers in chronological order, skipping evaluator entries.
func (s *State) Decisions() []HistoryEntry {
	out := make([]HistoryEntry, 0, len(s.History))
	for _, h := range s.History {
		if !h.IsEvaluation() {
			out = append(out, HistoryEntry{NodeID: h.NodeID, Answer: h.Answer})
		}
	}
	return out
}
