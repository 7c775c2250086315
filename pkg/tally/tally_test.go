package tally_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/aretw0/diastole/pkg/domain"
	"github.com/aretw0/diastole/pkg/tally"
)

func TestCount(t *testing.T) {
	tests := []struct {
		name      string
		answers   map[string]string
		want      tally.Counts
		available int
		posMaj    bool
		negMaj    bool
	}{
		{
			name:      "empty answer set counts every parameter as unavailable",
			answers:   map[string]string{},
			want:      tally.Counts{Unavailable: 3},
			available: 0,
		},
		{
			name:      "two positives and one unavailable is a 2 of 2 majority",
			answers:   map[string]string{"a": "positive", "b": "positive", "c": "unavailable"},
			want:      tally.Counts{Positive: 2, Unavailable: 1},
			available: 2,
			posMaj:    true,
		},
		{
			name:      "split vote",
			answers:   map[string]string{"a": "positive", "b": "negative", "c": "unavailable"},
			want:      tally.Counts{Positive: 1, Negative: 1, Unavailable: 1},
			available: 2,
		},
		{
			name:      "unknown values are neutral",
			answers:   map[string]string{"a": "negative", "b": "negative", "c": "intermediate"},
			want:      tally.Counts{Negative: 2, Neutral: 1},
			available: 3,
			negMaj:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := domain.NewEvalContext("alg", "", tt.answers)
			got := tally.Count(ctx, tally.Binaries("a", "b", "c")...)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, 3, got.Total())
			assert.Equal(t, tt.available, got.Available())
			assert.Equal(t, tt.posMaj, got.PositiveMajority())
			assert.Equal(t, tt.negMaj, got.NegativeMajority())
		})
	}
}

func TestParam_CustomVocabulary(t *testing.T) {
	p := tally.Param{NodeID: "la", Positive: []string{"abnormal"}, Negative: []string{"normal"}}

	assert.Equal(t, tally.Positive, p.Classify("abnormal", true))
	assert.Equal(t, tally.Negative, p.Classify("normal", true))
	assert.Equal(t, tally.Unavailable, p.Classify("", false))
	assert.Equal(t, tally.Unavailable, p.Classify("unavailable", true))
}

func TestOf(t *testing.T) {
	c := tally.Of(tally.Positive, tally.Negative, tally.Negative, tally.Unavailable)
	assert.Equal(t, 3, c.Available())
	assert.True(t, c.NegativeMajority())
	assert.Equal(t, "neutral", tally.Neutral.String())
}
