// Package algorithms holds the built-in diastolic function guidelines.
//
// Each algorithm is built once, on first use, and shared read-only afterwards.
package algorithms

import (
	"github.com/aretw0/diastole/pkg/domain"
	"github.com/aretw0/diastole/pkg/registry"
)

// All returns every built-in algorithm.
func All() []*domain.Algorithm {
	return []*domain.Algorithm{ASE2016(), BSE2024(), Mayo2025()}
}

// Registry returns a new registry preloaded with the built-in algorithms.
func Registry() *registry.Registry {
	r, err := registry.NewRegistry(All()...)
	if err != nil {
		// Built-in ids are distinct constants.
		panic(err)
	}
	return r
}
