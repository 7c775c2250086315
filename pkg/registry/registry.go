package registry

import (
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/aretw0/diastole/pkg/domain"
)

// Registry manages the available algorithms.
// Algorithms are immutable, so only the index itself needs locking.
type Registry struct {
	mu         sync.RWMutex
	algorithms map[string]*domain.Algorithm
}

// NewRegistry creates a registry holding algs.
func NewRegistry(algs ...*domain.Algorithm) (*Registry, error) {
	r := &Registry{
		algorithms: make(map[string]*domain.Algorithm, len(algs)),
	}
	for _, a := range algs {
		if err := r.Register(a); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register adds an algorithm. Ids must be unique.
func (r *Registry) Register(a *domain.Algorithm) error {
	if a == nil {
		return fmt.Errorf("register: nil algorithm")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.algorithms[a.ID()]; exists {
		return fmt.Errorf("register: algorithm %q already registered", a.ID())
	}
	r.algorithms[a.ID()] = a
	return nil
}

// Get looks up an algorithm by id.
func (r *Registry) Get(id string) (*domain.Algorithm, error) {
	r.mu.RLock()
	a, ok := r.algorithms[id]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrAlgorithmNotFound, id)
	}
	return a, nil
}

// IDs returns the registered ids in sorted order.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Sorted(maps.Keys(r.algorithms))
}

// List returns the metadata of every algorithm, sorted by id.
func (r *Registry) List() []domain.Metadata {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Metadata, 0, len(r.algorithms))
	for _, id := range slices.Sorted(maps.Keys(r.algorithms)) {
		out = append(out, r.algorithms[id].Metadata())
	}
	return out
}
