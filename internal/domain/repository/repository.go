// Package repository defines the storage interfaces consumed by the engine.
// Each call is an atomic unit; the engine makes no assumptions about
// atomicity across calls.
package repository

import (
	"context"

	"github.com/dagflow-io/dagflow/pkg/models"
)

// WorkflowRepository persists workflow definitions.
type WorkflowRepository interface {
	// CreateWorkflow stores a new workflow and returns its id.
	CreateWorkflow(ctx context.Context, workflow *models.Workflow) (string, error)

	// GetWorkflow returns a workflow or models.ErrWorkflowNotFound.
	GetWorkflow(ctx context.Context, id string) (*models.Workflow, error)

	// ListWorkflows returns all stored workflows.
	ListWorkflows(ctx context.Context) ([]*models.Workflow, error)

	// UpdateWorkflow replaces a workflow definition. The caller's Version
	// must match the stored one; the stored version is bumped on success.
	// Returns models.ErrWorkflowNotFound or models.ErrVersionConflict.
	UpdateWorkflow(ctx context.Context, id string, workflow *models.Workflow) error

	// DeleteWorkflow removes a workflow or returns models.ErrWorkflowNotFound.
	DeleteWorkflow(ctx context.Context, id string) error
}

// ExecutionRepository persists execution records.
type ExecutionRepository interface {
	// CreateExecution stores a new execution record and returns its id.
	CreateExecution(ctx context.Context, execution *models.Execution) (string, error)

	// UpdateExecution replaces an execution record or returns
	// models.ErrExecutionNotFound.
	UpdateExecution(ctx context.Context, id string, execution *models.Execution) error

	// GetExecution returns an execution or models.ErrExecutionNotFound.
	GetExecution(ctx context.Context, id string) (*models.Execution, error)

	// ListExecutions returns the executions of one workflow; an empty
	// workflowID lists all executions.
	ListExecutions(ctx context.Context, workflowID string) ([]*models.Execution, error)
}

// Store bundles the repositories an engine deployment needs.
type Store interface {
	WorkflowRepository
	ExecutionRepository
}
