package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventNodeEnter EventType = "node_enter"
	EventNodeLeave EventType = "node_leave"
	EventEvaluate  EventType = "evaluate"
)

// NodeEvent represents entry or exit from a node.
type NodeEvent struct {
	Timestamp   time.Time `json:"timestamp"`
	Type        EventType `json:"type"`
	AlgorithmID string    `json:"algorithm_id"`
	NodeID      string    `json:"node_id"`
	NodeType    NodeType  `json:"node_type"`
	Answer      string    `json:"answer,omitempty"`
}

// EvaluateEvent reports an evaluator resolution.
type EvaluateEvent struct {
	Timestamp   time.Time `json:"timestamp"`
	AlgorithmID string    `json:"algorithm_id"`
	NodeID      string    `json:"node_id"`
	Next        string    `json:"next"`
	Writes      []Write   `json:"writes,omitempty"`
}

// LifecycleHooks defines callbacks for engine observability.
// Hooks run synchronously and must not mutate the events.
type LifecycleHooks struct {
	OnNodeEnter func(context.Context, *NodeEvent)
	OnNodeLeave func(context.Context, *NodeEvent)
	OnEvaluate  func(context.Context, *EvaluateEvent)
}
