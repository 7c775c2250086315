package ports

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/diastole/pkg/domain"
)

// maxExploreDepth bounds the exhaustive walk in RunEngineContract.
const maxExploreDepth = 64

// RunEngineContract explores every option of every reachable decision of every
// algorithm and mode in source, verifying that:
//   - every declared option resolves (no ErrInvalidAnswer),
//   - the engine never rests on an evaluator after Start or Submit,
//   - Back is the strict inverse of Submit,
//   - every path ends at a result whose key the catalog knows.
func RunEngineContract(t *testing.T, engine StatelessEngine, source AlgorithmSource, catalog ResultCatalog) {
	ctx := context.Background()

	for _, meta := range source.List() {
		modes := []string{""}
		for _, m := range meta.Modes {
			modes = append(modes, m.ID)
		}
		for _, mode := range modes {
			t.Run(fmt.Sprintf("%s/%s", meta.ID, modeLabel(mode)), func(t *testing.T) {
				state, err := engine.Start(ctx, meta.ID, mode)
				require.NoError(t, err)
				paths := explore(t, ctx, engine, catalog, state, 0)
				assert.Positive(t, paths, "at least one path must reach a result")
			})
		}
	}

	t.Run("unknown algorithm", func(t *testing.T) {
		_, err := engine.Start(ctx, "no-such-algorithm", "")
		assert.ErrorIs(t, err, domain.ErrAlgorithmNotFound)
	})
}

func explore(t *testing.T, ctx context.Context, engine StatelessEngine, catalog ResultCatalog, state *domain.State, depth int) int {
	t.Helper()
	require.Less(t, depth, maxExploreDepth, "path too long at %q", state.CurrentNodeID)

	node, err := engine.Current(state)
	require.NoError(t, err)

	switch n := node.(type) {
	case *domain.Result:
		_, ok := catalog.Lookup(n.ResultKey)
		assert.True(t, ok, "result %q has unknown key %q", n.ID, n.ResultKey)
		_, err := engine.Submit(ctx, state, "anything")
		assert.ErrorIs(t, err, domain.ErrAtResult)
		return 1
	case *domain.Evaluator:
		t.Fatalf("engine rests on evaluator %q", n.ID)
		return 0
	case *domain.Decision:
		paths := 0
		for _, opt := range n.Options {
			before := state.Clone()
			next, err := engine.Submit(ctx, state, opt.Value)
			require.NoError(t, err, "option %q of %q must resolve", opt.Value, n.ID)
			assert.Equal(t, before, state, "submit must not modify its input")

			back, err := engine.Back(ctx, next)
			require.NoError(t, err)
			assert.Equal(t, before.CurrentNodeID, back.CurrentNodeID, "back after %s=%s", n.ID, opt.Value)
			assert.Equal(t, before.Answers, back.Answers, "back after %s=%s", n.ID, opt.Value)
			assert.Equal(t, before.History, back.History, "back after %s=%s", n.ID, opt.Value)

			paths += explore(t, ctx, engine, catalog, next, depth+1)
		}
		return paths
	default:
		t.Fatalf("unexpected node type %T", node)
		return 0
	}
}

func modeLabel(mode string) string {
	if mode == "" {
		return "default"
	}
	return mode
}

// RunResultCatalogContract checks that every key resolves to a complete outcome.
func RunResultCatalogContract(t *testing.T, catalog ResultCatalog, keys []domain.ResultKey) {
	for _, key := range keys {
		t.Run(string(key), func(t *testing.T) {
			out, ok := catalog.Lookup(key)
			require.True(t, ok, "missing key %q", key)
			assert.Equal(t, key, out.Key)
			assert.NotEmpty(t, out.Message)
			assert.NotEmpty(t, out.Class)
		})
	}

	t.Run("unknown key", func(t *testing.T) {
		_, ok := catalog.Lookup("definitely-not-a-key")
		assert.False(t, ok)
	})
}
