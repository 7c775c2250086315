package domain_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/diastole/pkg/domain"
)

func sampleNodes() []domain.Node {
	return []domain.Node{
		&domain.Decision{
			ID:       "q1",
			Question: "First?",
			Options:  []domain.Option{{Value: "yes", Text: "Yes"}, {Value: "no", Text: "No"}},
			Next:     domain.NextMap{"yes": "done", domain.Wildcard: "q2"},
		},
		&domain.Decision{
			ID:       "q2",
			Question: "Second?",
			Options:  []domain.Option{{Value: "a", Text: "A"}},
			Next:     domain.NextMap{"a": "eval"},
		},
		&domain.Evaluator{
			ID:      "eval",
			Targets: []string{"done"},
			Route:   func(*domain.EvalContext) string { return "done" },
		},
		&domain.Result{ID: "done", ResultKey: "normal"},
	}
}

func TestNewAlgorithm(t *testing.T) {
	meta := domain.Metadata{
		ID:          "sample",
		Name:        "Sample",
		StartNodeID: "q1",
		Modes:       []domain.Mode{{ID: "short", Name: "Short", StartNodeID: "q2"}},
	}

	t.Run("valid definition", func(t *testing.T) {
		alg, err := domain.NewAlgorithm(meta, sampleNodes()...)
		require.NoError(t, err)
		assert.Equal(t, "sample", alg.ID())
		assert.Equal(t, []string{"q1", "q2", "eval", "done"}, alg.NodeIDs())
		assert.Equal(t, 4, alg.Len())
	})

	t.Run("entry node falls back for unknown modes", func(t *testing.T) {
		alg, err := domain.NewAlgorithm(meta, sampleNodes()...)
		require.NoError(t, err)
		assert.Equal(t, "q2", alg.EntryNodeID("short"))
		assert.Equal(t, "q1", alg.EntryNodeID(""))
		assert.Equal(t, "q1", alg.EntryNodeID("no-such-mode"))
	})

	t.Run("node lookup", func(t *testing.T) {
		alg, err := domain.NewAlgorithm(meta, sampleNodes()...)
		require.NoError(t, err)

		n, err := alg.Node("eval")
		require.NoError(t, err)
		assert.Equal(t, domain.NodeTypeEvaluator, n.Type())

		_, err = alg.Node("ghost")
		assert.ErrorIs(t, err, domain.ErrNodeNotFound)
	})

	t.Run("metadata is a copy", func(t *testing.T) {
		alg, err := domain.NewAlgorithm(meta, sampleNodes()...)
		require.NoError(t, err)
		m := alg.Metadata()
		m.Modes[0].StartNodeID = "mutated"
		assert.Equal(t, "q2", alg.EntryNodeID("short"))
	})

	t.Run("nodes are copied", func(t *testing.T) {
		nodes := sampleNodes()
		alg, err := domain.NewAlgorithm(meta, nodes...)
		require.NoError(t, err)

		q1 := nodes[0].(*domain.Decision)
		q1.Next["yes"] = "ghost"
		q1.Options[0].Value = "maybe"
		nodes[2].(*domain.Evaluator).Targets[0] = "ghost"

		n, err := alg.Node("q1")
		require.NoError(t, err)
		next, err := n.(*domain.Decision).Resolve("yes")
		require.NoError(t, err)
		assert.Equal(t, "done", next)
		assert.True(t, n.(*domain.Decision).HasOption("yes"))

		ev, err := alg.Node("eval")
		require.NoError(t, err)
		assert.Equal(t, []string{"done"}, ev.(*domain.Evaluator).Targets)
	})
}

func TestNewAlgorithm_Rejects(t *testing.T) {
	base := domain.Metadata{ID: "bad", Name: "Bad", StartNodeID: "q1"}

	tests := []struct {
		name    string
		meta    domain.Metadata
		nodes   []domain.Node
		problem string
	}{
		{
			name:    "missing start",
			meta:    domain.Metadata{ID: "bad", Name: "Bad", StartNodeID: "nowhere"},
			nodes:   sampleNodes(),
			problem: `start node "nowhere"`,
		},
		{
			name: "dangling next",
			meta: base,
			nodes: []domain.Node{
				&domain.Decision{ID: "q1", Options: []domain.Option{{Value: "x"}}, Next: domain.NextMap{"x": "ghost"}},
			},
			problem: `missing node "ghost"`,
		},
		{
			name: "unresolved option",
			meta: base,
			nodes: []domain.Node{
				&domain.Decision{ID: "q1", Options: []domain.Option{{Value: "x"}, {Value: "y"}}, Next: domain.NextMap{"x": "r"}},
				&domain.Result{ID: "r", ResultKey: "normal"},
			},
			problem: `option "y" does not resolve`,
		},
		{
			name: "evaluator without targets",
			meta: base,
			nodes: []domain.Node{
				&domain.Evaluator{ID: "q1", Route: func(*domain.EvalContext) string { return "q1" }},
			},
			problem: "declares no targets",
		},
		{
			name: "duplicate ids",
			meta: base,
			nodes: []domain.Node{
				&domain.Result{ID: "q1", ResultKey: "normal"},
				&domain.Result{ID: "q1", ResultKey: "grade-1"},
			},
			problem: `duplicate node id "q1"`,
		},
		{
			name: "remap writes a foreign value",
			meta: base,
			nodes: []domain.Node{
				&domain.Evaluator{
					ID:      "q1",
					Remaps:  []domain.Remap{{From: "src", To: "dst", Values: map[string]string{"a": "zzz"}}},
					Route:   func(*domain.EvalContext) string { return "dst" },
					Targets: []string{"dst"},
				},
				&domain.Decision{ID: "dst", Options: []domain.Option{{Value: "a"}}, Next: domain.NextMap{"*": "r"}},
				&domain.Result{ID: "r", ResultKey: "normal"},
			},
			problem: `value "zzz"`,
		},
		{
			name: "result without key",
			meta: base,
			nodes: []domain.Node{
				&domain.Result{ID: "q1"},
			},
			problem: "no result key",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := domain.NewAlgorithm(tt.meta, tt.nodes...)
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrInvalidDefinition)

			var defErr *domain.DefinitionError
			require.True(t, errors.As(err, &defErr))
			found := false
			for _, p := range defErr.Problems {
				if strings.Contains(p, tt.problem) {
					found = true
				}
			}
			assert.True(t, found, "expected a problem containing %q, got %v", tt.problem, defErr.Problems)
		})
	}
}
