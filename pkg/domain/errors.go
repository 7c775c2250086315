package domain

import (
	"errors"
	"fmt"
)

// ErrAlgorithmNotFound is returned when an algorithm id is not registered.
var ErrAlgorithmNotFound = errors.New("algorithm not found")

// ErrNodeNotFound signals a graph consistency violation. A validated algorithm never produces it.
var ErrNodeNotFound = errors.New("node not found")

// ErrInvalidAnswer is returned when an answer has no Next-Map resolution.
var ErrInvalidAnswer = errors.New("invalid answer")

// ErrSerialization is returned when a session blob is malformed or inconsistent.
var ErrSerialization = errors.New("serialization error")

// ErrNoActiveAlgorithm is returned by session operations before an algorithm is started.
var ErrNoActiveAlgorithm = errors.New("no active algorithm")

// ErrAtResult is returned when an answer is submitted at a terminal node.
var ErrAtResult = errors.New("session is at a result")

// ErrHistoryEmpty is returned when going back with no history.
var ErrHistoryEmpty = errors.New("history is empty")

// ErrEvaluatorCycle is returned when evaluator auto-resolution revisits a node.
var ErrEvaluatorCycle = errors.New("evaluator cycle detected")

// ErrChainTooDeep is returned when evaluator auto-resolution exceeds its step budget.
var ErrChainTooDeep = errors.New("evaluator chain too deep")

// ErrInvalidDefinition is returned when an algorithm definition fails validation.
var ErrInvalidDefinition = errors.New("invalid algorithm definition")

// ErrUnsupportedNode is returned when a visitor has no case for a node.
var ErrUnsupportedNode = errors.New("unsupported node")

// AnswerError describes a rejected answer.
type AnswerError struct {
	NodeID string
	Value  string
}

func (e *AnswerError) Error() string {
	return fmt.Sprintf("node %q: value %q has no successor", e.NodeID, e.Value)
}

func (e *AnswerError) Unwrap() error { return ErrInvalidAnswer }

// DefinitionError collects the problems found while validating an algorithm.
type DefinitionError struct {
	AlgorithmID string
	Problems    []string
}

func (e *DefinitionError) Error() string {
	if len(e.Problems) == 1 {
		return fmt.Sprintf("algorithm %q: %s", e.AlgorithmID, e.Problems[0])
	}
	return fmt.Sprintf("algorithm %q: %d problems, first: %s", e.AlgorithmID, len(e.Problems), e.Problems[0])
}

func (e *DefinitionError) Unwrap() error { return ErrInvalidDefinition }

func unsupported(n Node) error {
	return fmt.Errorf("%w: %s %q", ErrUnsupportedNode, n.Type(), n.NodeID())
}
