package graph_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/diastole/internal/presentation/graph"
	"github.com/aretw0/diastole/pkg/algorithms"
	"github.com/aretw0/diastole/pkg/domain"
	"github.com/aretw0/diastole/pkg/dsl"
)

func TestGenerateMermaid(t *testing.T) {
	b := dsl.New("shapes", "Shapes").Start("start")
	b.Decision("start").Option("yes", `Say "yes"`, "check").Option(`a"b`, "Quoted", "done").Otherwise("check")
	b.Evaluator("check").Route(func(*domain.EvalContext) string { return "done" }, "done", "hyphen-ated")
	b.Result("done", "normal")
	b.Result("hyphen-ated", "grade-1")
	alg, err := b.Build()
	require.NoError(t, err)

	got := graph.GenerateMermaid(alg, nil)

	tests := []struct {
		name string
		want string
	}{
		{"entry shape", `start(("start"))`},
		{"evaluator shape", `check[["check"]]`},
		{"result shape", `done(["done <br/> normal"])`},
		{"id sanitization", `hyphen_ated(["hyphen-ated <br/> grade-1"])`},
		{"answer edge", `start -- "yes" --> check`},
		{"quote escaping", `start -- "a'b" --> done`},
		{"wildcard edge", `start -- "any" --> check`},
		{"evaluator edge", `check -.-> hyphen_ated`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Contains(t, got, tt.want)
		})
	}
	assert.NotContains(t, got, "classDef")
}

func TestGenerateMermaid_Overlay(t *testing.T) {
	state := &domain.State{
		AlgorithmID:   algorithms.ASE2016ID,
		CurrentNodeID: "dysfunctionStart",
		History: []domain.HistoryEntry{
			{NodeID: "initialAssessment", Answer: "reduced"},
			{NodeID: "initialAssessment", Answer: "reduced"},
		},
	}
	got := graph.GenerateMermaid(algorithms.ASE2016(), graph.OverlayFromState(state))

	assert.Contains(t, got, "classDef visited")
	assert.Contains(t, got, "class initialAssessment visited;")
	assert.Contains(t, got, "class dysfunctionStart current;")
	assert.Equal(t, 1, strings.Count(got, "class initialAssessment visited;"))
	assert.Nil(t, graph.OverlayFromState(nil))
}

