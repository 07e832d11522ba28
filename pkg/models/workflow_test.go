package models

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validWorkflow() *Workflow {
	return &Workflow{
		Name: "test",
		Nodes: []*Node{
			{ID: "a", Kind: "literal", Config: map[string]any{"value": 1}},
			{ID: "b", Kind: "echo", Config: map[string]any{"text": "{{a}}"}},
		},
		Edges: []*Edge{
			{Source: "a", Target: "b"},
		},
	}
}

func TestWorkflow_Validate_OK(t *testing.T) {
	require.NoError(t, validWorkflow().Validate())
}

func TestWorkflow_Validate_Structural(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(w *Workflow)
		reason  GraphReason
		wantErr string
	}{
		{
			name:    "missing name",
			mutate:  func(w *Workflow) { w.Name = "" },
			wantErr: "name",
		},
		{
			name:    "no nodes",
			mutate:  func(w *Workflow) { w.Nodes = nil; w.Edges = nil },
			wantErr: "nodes",
		},
		{
			name:    "empty node id",
			mutate:  func(w *Workflow) { w.Nodes[0].ID = "" },
			wantErr: "id",
		},
		{
			name:    "empty kind",
			mutate:  func(w *Workflow) { w.Nodes[1].Kind = "" },
			wantErr: "kind",
		},
		{
			name: "duplicate node id",
			mutate: func(w *Workflow) {
				w.Nodes = append(w.Nodes, &Node{ID: "a", Kind: "literal", Config: map[string]any{"value": 2}})
			},
			reason: GraphReasonDuplicateID,
		},
		{
			name: "unknown edge source",
			mutate: func(w *Workflow) {
				w.Edges = append(w.Edges, &Edge{Source: "ghost", Target: "b"})
			},
			reason: GraphReasonUnknownNode,
		},
		{
			name: "unknown edge target",
			mutate: func(w *Workflow) {
				w.Edges = append(w.Edges, &Edge{Source: "a", Target: "ghost"})
			},
			reason: GraphReasonUnknownNode,
		},
		{
			name: "self loop",
			mutate: func(w *Workflow) {
				w.Edges = append(w.Edges, &Edge{Source: "b", Target: "b"})
			},
			reason: GraphReasonSelfLoop,
		},
		{
			name: "duplicate edge",
			mutate: func(w *Workflow) {
				w.Edges = append(w.Edges, &Edge{Source: "a", Target: "b"})
			},
			reason: GraphReasonDuplicateEdge,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := validWorkflow()
			tt.mutate(w)

			err := w.Validate()
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidWorkflow)

			if tt.reason != "" {
				var graphErr *GraphError
				require.True(t, errors.As(err, &graphErr))
				assert.Equal(t, tt.reason, graphErr.Reason)
			}
			if tt.wantErr != "" {
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestWorkflow_Clone_Independent(t *testing.T) {
	w := validWorkflow()
	w.ID = "wf-1"

	clone, err := w.Clone()
	require.NoError(t, err)
	require.Equal(t, w.ID, clone.ID)
	require.Len(t, clone.Nodes, 2)

	clone.Nodes[0].Config["value"] = 99
	assert.Equal(t, 1, w.Nodes[0].Config["value"])
}

func TestWorkflow_GetNode(t *testing.T) {
	w := validWorkflow()

	node, err := w.GetNode("a")
	require.NoError(t, err)
	assert.Equal(t, "literal", node.Kind)

	_, err = w.GetNode("ghost")
	assert.ErrorIs(t, err, ErrNodeNotFound)
}
