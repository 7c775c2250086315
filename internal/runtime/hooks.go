package runtime

import (
	"context"

	"github.com/aretw0/diastole/pkg/domain"
)

func (e *Engine) emitEnter(ctx context.Context, alg *domain.Algorithm, nodeID string) {
	if e.hooks.OnNodeEnter == nil {
		return
	}
	node, err := alg.Node(nodeID)
	if err != nil {
		return
	}
	e.emit(ctx, e.hooks.OnNodeEnter, domain.EventNodeEnter, alg, nodeID, node.Type(), "")
}

func (e *Engine) emit(ctx context.Context, hook func(context.Context, *domain.NodeEvent), kind domain.EventType, alg *domain.Algorithm, nodeID string, nodeType domain.NodeType, answer string) {
	if hook == nil {
		return
	}
	hook(ctx, &domain.NodeEvent{
		Timestamp:   e.now(),
		Type:        kind,
		AlgorithmID: alg.ID(),
		NodeID:      nodeID,
		NodeType:    nodeType,
		Answer:      answer,
	})
}
