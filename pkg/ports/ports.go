package ports

import (
	"context"

	"github.com/aretw0/diastole/pkg/domain"
)

// AlgorithmSource resolves algorithm definitions by id.
type AlgorithmSource interface {
	// Get returns the algorithm or an error wrapping domain.ErrAlgorithmNotFound.
	Get(id string) (*domain.Algorithm, error)

	// List returns the metadata of every algorithm, ordered by id. Nodes are never included.
	List() []domain.Metadata
}

// ResultCatalog maps result keys to display text.
// The engine only resolves keys; authoring the text is the catalog's concern.
type ResultCatalog interface {
	Lookup(key domain.ResultKey) (domain.Outcome, bool)
}

// StatelessEngine is a navigation core that keeps no session state between calls.
// Every operation takes a state and returns a new one; the input is never modified.
// This is the interface used by adapters (HTTP, MCP) that transport state per request.
type StatelessEngine interface {
	// Start creates a state at the resolved entry node of an algorithm and mode.
	Start(ctx context.Context, algorithmID, modeID string) (*domain.State, error)

	// Submit answers the current node and auto-resolves any chained evaluators.
	Submit(ctx context.Context, state *domain.State, answer string) (*domain.State, error)

	// StepBack undoes exactly one history entry.
	StepBack(ctx context.Context, state *domain.State) (*domain.State, error)

	// Back undoes history until the current node is user-displayable.
	Back(ctx context.Context, state *domain.State) (*domain.State, error)

	// Current returns the node the state points at.
	Current(state *domain.State) (domain.Node, error)
}
