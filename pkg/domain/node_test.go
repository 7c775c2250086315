package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/diastole/pkg/domain"
)

func TestNextMap_Resolve(t *testing.T) {
	next := domain.NextMap{"gte2": "grade3", domain.Wildcard: "other"}

	got, ok := next.Resolve("gte2")
	assert.True(t, ok)
	assert.Equal(t, "grade3", got, "specific entry must win over the wildcard")

	got, ok = next.Resolve("anything")
	assert.True(t, ok)
	assert.Equal(t, "other", got)

	_, ok = domain.NextMap{"a": "b"}.Resolve("c")
	assert.False(t, ok)
}

func TestDecision_Resolve(t *testing.T) {
	d := &domain.Decision{ID: "q", Next: domain.NextMap{"a": "next"}}

	got, err := d.Resolve("a")
	require.NoError(t, err)
	assert.Equal(t, "next", got)

	_, err = d.Resolve("b")
	assert.ErrorIs(t, err, domain.ErrInvalidAnswer)
	var ae *domain.AnswerError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, "q", ae.NodeID)
	assert.Equal(t, "b", ae.Value)
}

func TestRemap_Apply(t *testing.T) {
	answers := map[string]string{"src": "positive_septal"}

	identity := domain.Remap{From: "src", To: "dst"}
	v, ok := identity.Apply(answers)
	assert.True(t, ok)
	assert.Equal(t, "positive_septal", v)

	table := domain.Remap{From: "src", To: "dst", Values: map[string]string{"positive_septal": "positive"}}
	v, ok = table.Apply(answers)
	assert.True(t, ok)
	assert.Equal(t, "positive", v)

	_, ok = domain.Remap{From: "missing", To: "dst"}.Apply(answers)
	assert.False(t, ok, "absent sources are never written")

	_, ok = domain.Remap{From: "src", To: "dst", Values: map[string]string{"x": "y"}}.Apply(answers)
	assert.False(t, ok, "values outside the table are skipped")
}

func TestVisitorFuncs(t *testing.T) {
	var seen []domain.NodeType
	v := domain.VisitorFuncs{
		Decision: func(d *domain.Decision) error { seen = append(seen, d.Type()); return nil },
		Result:   func(r *domain.Result) error { seen = append(seen, r.Type()); return nil },
	}

	require.NoError(t, (&domain.Decision{ID: "d"}).Accept(v))
	require.NoError(t, (&domain.Result{ID: "r"}).Accept(v))
	err := (&domain.Evaluator{ID: "e"}).Accept(v)
	assert.ErrorIs(t, err, domain.ErrUnsupportedNode)
	assert.Equal(t, []domain.NodeType{domain.NodeTypeDecision, domain.NodeTypeResult}, seen)
}

func TestState_SetAndUndo(t *testing.T) {
	s := domain.NewState("alg", "", "start")
	s.Answers["kept"] = "old"

	w1 := s.Set("kept", "new")
	w2 := s.Set("fresh", "x")
	assert.Equal(t, domain.Write{Key: "kept", Prev: "old", HadPrev: true}, w1)
	assert.Equal(t, domain.Write{Key: "fresh"}, w2)

	s.Undo([]domain.Write{w1, w2})
	assert.Equal(t, map[string]string{"kept": "old"}, s.Answers)
}

func TestState_Clone(t *testing.T) {
	s := domain.NewState("alg", "m", "start")
	s.History = append(s.History, domain.HistoryEntry{NodeID: "start", Answer: "a", Writes: []domain.Write{{Key: "start"}}})
	s.Answers["start"] = "a"

	c := s.Clone()
	c.History[0].Writes[0].Key = "changed"
	c.Answers["start"] = "b"

	assert.Equal(t, "start", s.History[0].Writes[0].Key)
	assert.Equal(t, "a", s.Answers["start"])
}

func TestState_Decisions(t *testing.T) {
	s := domain.NewState("alg", "", "q1")
	s.History = []domain.HistoryEntry{
		{NodeID: "q1", Answer: "x", Writes: []domain.Write{{Key: "q1"}}},
		{NodeID: "eval", Answer: domain.AutoEvaluation},
		{NodeID: "q2", Answer: "y"},
	}
	assert.Equal(t, []domain.HistoryEntry{{NodeID: "q1", Answer: "x"}, {NodeID: "q2", Answer: "y"}}, s.Decisions())
}
