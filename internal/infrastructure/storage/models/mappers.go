package models

import (
	"sort"

	"github.com/google/uuid"

	domain "github.com/dagflow-io/dagflow/pkg/models"
)

// WorkflowToModel converts a domain workflow to its storage models.
func WorkflowToModel(w *domain.Workflow) (*WorkflowModel, error) {
	id, err := uuid.Parse(w.ID)
	if err != nil {
		return nil, err
	}

	model := &WorkflowModel{
		ID:          id,
		Name:        w.Name,
		Description: w.Description,
		Version:     w.Version,
		Metadata:    JSONBMap(w.Metadata),
		CreatedAt:   w.CreatedAt,
		UpdatedAt:   w.UpdatedAt,
	}

	for _, node := range w.Nodes {
		model.Nodes = append(model.Nodes, &NodeModel{
			ID:         uuid.New(),
			WorkflowID: id,
			NodeID:     node.ID,
			Kind:       node.Kind,
			Config:     JSONBMap(node.Config),
		})
	}

	for i, edge := range w.Edges {
		model.Edges = append(model.Edges, &EdgeModel{
			ID:         uuid.New(),
			WorkflowID: id,
			Source:     edge.Source,
			Target:     edge.Target,
			Position:   i,
		})
	}

	return model, nil
}

// WorkflowToDomain converts storage models back to the domain workflow.
func WorkflowToDomain(m *WorkflowModel) *domain.Workflow {
	w := &domain.Workflow{
		ID:          m.ID.String(),
		Name:        m.Name,
		Description: m.Description,
		Version:     m.Version,
		Metadata:    m.Metadata,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}

	for _, node := range m.Nodes {
		w.Nodes = append(w.Nodes, &domain.Node{
			ID:     node.NodeID,
			Kind:   node.Kind,
			Config: node.Config,
		})
	}

	edges := append([]*EdgeModel(nil), m.Edges...)
	sort.Slice(edges, func(i, j int) bool { return edges[i].Position < edges[j].Position })

	for _, edge := range edges {
		w.Edges = append(w.Edges, &domain.Edge{
			Source: edge.Source,
			Target: edge.Target,
		})
	}

	return w
}

// ExecutionToModel converts a domain execution to its storage model.
func ExecutionToModel(e *domain.Execution) (*ExecutionModel, error) {
	id, err := uuid.Parse(e.ID)
	if err != nil {
		return nil, err
	}

	workflowID, err := uuid.Parse(e.WorkflowID)
	if err != nil {
		return nil, err
	}

	return &ExecutionModel{
		ID:          id,
		WorkflowID:  workflowID,
		Status:      string(e.Status),
		Input:       JSONBMap(e.Input),
		Output:      JSONBValue{V: e.Output},
		Error:       e.Error,
		NodeResults: JSONBNodeResults(e.NodeResults),
		UseCache:    e.UseCache,
		StartedAt:   e.StartedAt,
		CompletedAt: e.CompletedAt,
		Duration:    e.Duration,
		Metadata:    JSONBMap(e.Metadata),
	}, nil
}

// ExecutionToDomain converts a storage model back to the domain execution.
func ExecutionToDomain(m *ExecutionModel) *domain.Execution {
	return &domain.Execution{
		ID:          m.ID.String(),
		WorkflowID:  m.WorkflowID.String(),
		Status:      domain.ExecutionStatus(m.Status),
		Input:       m.Input,
		Output:      m.Output.V,
		Error:       m.Error,
		NodeResults: m.NodeResults,
		UseCache:    m.UseCache,
		StartedAt:   m.StartedAt,
		CompletedAt: m.CompletedAt,
		Duration:    m.Duration,
		Metadata:    m.Metadata,
	}
}
