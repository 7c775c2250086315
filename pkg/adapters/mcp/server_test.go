package mcp

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/diastole"
	"github.com/aretw0/diastole/pkg/domain"
)

func newServer() *Server { return NewServer(diastole.New()) }

func TestNavigationTools(t *testing.T) {
	s := newServer()
	ctx := context.Background()
	req := mcp.CallToolRequest{}

	step, err := s.handleStart(ctx, req, map[string]any{"algorithm_id": "bse2024", "mode": "afib"})
	require.NoError(t, err)
	assert.Equal(t, "afibStart", step.CurrentNode.ID)
	assert.False(t, step.CanGoBack)

	for _, a := range []string{"positive", "positive", "positive"} {
		step, err = s.handleSubmit(ctx, req, map[string]any{"state": step.State, "answer": a})
		require.NoError(t, err)
	}
	assert.Equal(t, "septalEToERatio", step.CurrentNode.ID)

	step, err = s.handleSubmit(ctx, req, map[string]any{"state": step.State, "answer": " negative "})
	require.NoError(t, err)
	assert.True(t, step.Terminal)
	assert.Equal(t, "resultImpairedElevated", step.CurrentNode.ID)

	back, err := s.handleBack(ctx, req, map[string]any{"state": step.State})
	require.NoError(t, err)
	assert.Equal(t, "septalEToERatio", back.CurrentNode.ID)
	assert.True(t, back.CanGoBack)
}

func TestNavigationTools_Errors(t *testing.T) {
	s := newServer()
	ctx := context.Background()
	req := mcp.CallToolRequest{}

	_, err := s.handleStart(ctx, req, map[string]any{"algorithm_id": "nope"})
	assert.ErrorIs(t, err, domain.ErrAlgorithmNotFound)

	_, err = s.handleStart(ctx, req, map[string]any{"algorithm_id": 42})
	assert.Error(t, err)

	step, err := s.handleStart(ctx, req, map[string]any{"algorithm_id": "mayo2025"})
	require.NoError(t, err)

	_, err = s.handleSubmit(ctx, req, map[string]any{"state": "{broken", "answer": "normal"})
	assert.ErrorIs(t, err, domain.ErrSerialization)

	_, err = s.handleBack(ctx, req, map[string]any{"state": step.State})
	assert.ErrorIs(t, err, domain.ErrHistoryEmpty)

	step, err = s.handleSubmit(ctx, req, map[string]any{"state": step.State, "answer": "normal"})
	require.NoError(t, err)
	for range 3 {
		step, err = s.handleSubmit(ctx, req, map[string]any{"state": step.State, "answer": "normal"})
		require.NoError(t, err)
	}
	_, err = s.handleSubmit(ctx, req, map[string]any{"state": step.State, "answer": "sideways"})
	assert.ErrorIs(t, err, domain.ErrInvalidAnswer)
}

func TestListAndGraph(t *testing.T) {
	s := newServer()
	ctx := context.Background()

	res, err := s.handleListAlgorithms(ctx, mcp.CallToolRequest{})
	require.NoError(t, err)
	require.False(t, res.IsError)
	text := res.Content[0].(mcp.TextContent).Text
	var algs []domain.Metadata
	require.NoError(t, json.Unmarshal([]byte(text), &algs))
	assert.Len(t, algs, 3)

	req := mcp.CallToolRequest{}
	req.Params.Arguments = map[string]any{"algorithm_id": "ase2016"}
	res, err = s.handleGraph(ctx, req)
	require.NoError(t, err)
	assert.Contains(t, res.Content[0].(mcp.TextContent).Text, "graph TD")

	req.Params.Arguments = map[string]any{"algorithm_id": "nope"}
	res, err = s.handleGraph(ctx, req)
	require.NoError(t, err)
	assert.True(t, res.IsError)
}
