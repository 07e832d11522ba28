package engine

import (
	"context"

	"github.com/dagflow-io/dagflow/internal/domain/repository"
	"github.com/dagflow-io/dagflow/pkg/engine"
	"github.com/dagflow-io/dagflow/pkg/executor"
	"github.com/dagflow-io/dagflow/pkg/models"
)

// WorkflowService owns workflow CRUD. Every definition is fully validated
// against the registry before it reaches storage, so stored workflows are
// always executable (modulo registry changes across restarts).
type WorkflowService struct {
	store    repository.WorkflowRepository
	registry *executor.Registry
}

// NewWorkflowService creates a new workflow service.
func NewWorkflowService(store repository.WorkflowRepository, registry *executor.Registry) *WorkflowService {
	return &WorkflowService{
		store:    store,
		registry: registry,
	}
}

// Create validates and stores a new workflow, returning its id.
func (s *WorkflowService) Create(ctx context.Context, workflow *models.Workflow) (string, error) {
	if err := engine.Validate(workflow, s.registry); err != nil {
		return "", err
	}

	return s.store.CreateWorkflow(ctx, workflow)
}

// Get returns a workflow by id.
func (s *WorkflowService) Get(ctx context.Context, id string) (*models.Workflow, error) {
	return s.store.GetWorkflow(ctx, id)
}

// List returns all stored workflows.
func (s *WorkflowService) List(ctx context.Context) ([]*models.Workflow, error) {
	return s.store.ListWorkflows(ctx)
}

// Update validates and replaces a workflow definition. The caller's version
// must match the stored one.
func (s *WorkflowService) Update(ctx context.Context, id string, workflow *models.Workflow) error {
	if err := engine.Validate(workflow, s.registry); err != nil {
		return err
	}

	return s.store.UpdateWorkflow(ctx, id, workflow)
}

// Delete removes a workflow.
func (s *WorkflowService) Delete(ctx context.Context, id string) error {
	return s.store.DeleteWorkflow(ctx, id)
}
