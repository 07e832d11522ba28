package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/dagflow-io/dagflow/internal/domain/repository"
	storagemodels "github.com/dagflow-io/dagflow/internal/infrastructure/storage/models"
	"github.com/dagflow-io/dagflow/pkg/models"
)

// PostgresStore implements the storage interfaces on Postgres via bun.
type PostgresStore struct {
	db *bun.DB
}

var _ repository.Store = (*PostgresStore)(nil)

// NewPostgresStore creates a new Postgres-backed store.
func NewPostgresStore(db *bun.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// CreateWorkflow stores a new workflow with its nodes and edges.
func (s *PostgresStore) CreateWorkflow(ctx context.Context, workflow *models.Workflow) (string, error) {
	if workflow.ID == "" {
		workflow.ID = uuid.New().String()
	}
	if workflow.Version == 0 {
		workflow.Version = 1
	}
	now := time.Now()
	workflow.CreatedAt = now
	workflow.UpdatedAt = now

	model, err := storagemodels.WorkflowToModel(workflow)
	if err != nil {
		return "", fmt.Errorf("invalid workflow ID: %w", err)
	}

	err = s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewInsert().Model(model).Exec(ctx); err != nil {
			return fmt.Errorf("failed to create workflow: %w", err)
		}

		if len(model.Nodes) > 0 {
			if _, err := tx.NewInsert().Model(&model.Nodes).Exec(ctx); err != nil {
				return fmt.Errorf("failed to create nodes: %w", err)
			}
		}

		if len(model.Edges) > 0 {
			if _, err := tx.NewInsert().Model(&model.Edges).Exec(ctx); err != nil {
				return fmt.Errorf("failed to create edges: %w", err)
			}
		}

		return nil
	})
	if err != nil {
		return "", err
	}

	return workflow.ID, nil
}

// GetWorkflow loads a workflow with its nodes and edges.
func (s *PostgresStore) GetWorkflow(ctx context.Context, id string) (*models.Workflow, error) {
	workflowID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", models.ErrWorkflowNotFound, id)
	}

	model := new(storagemodels.WorkflowModel)
	err = s.db.NewSelect().
		Model(model).
		Relation("Nodes").
		Relation("Edges").
		Where("w.id = ?", workflowID).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", models.ErrWorkflowNotFound, id)
		}
		return nil, fmt.Errorf("failed to load workflow: %w", err)
	}

	return storagemodels.WorkflowToDomain(model), nil
}

// ListWorkflows returns all workflows with their nodes and edges.
func (s *PostgresStore) ListWorkflows(ctx context.Context) ([]*models.Workflow, error) {
	var workflowModels []*storagemodels.WorkflowModel
	err := s.db.NewSelect().
		Model(&workflowModels).
		Relation("Nodes").
		Relation("Edges").
		Order("created_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list workflows: %w", err)
	}

	workflows := make([]*models.Workflow, 0, len(workflowModels))
	for _, model := range workflowModels {
		workflows = append(workflows, storagemodels.WorkflowToDomain(model))
	}

	return workflows, nil
}

// UpdateWorkflow replaces a workflow definition under optimistic version
// checking: the caller's version must match the stored one, and the stored
// version is bumped. Nodes and edges are replaced wholesale.
func (s *PostgresStore) UpdateWorkflow(ctx context.Context, id string, workflow *models.Workflow) error {
	workflowID, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("%w: %s", models.ErrWorkflowNotFound, id)
	}

	workflow.ID = id
	model, err := storagemodels.WorkflowToModel(workflow)
	if err != nil {
		return fmt.Errorf("invalid workflow: %w", err)
	}

	return s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		existing := new(storagemodels.WorkflowModel)
		err := tx.NewSelect().
			Model(existing).
			Column("id", "version", "created_at").
			Where("w.id = ?", workflowID).
			For("UPDATE").
			Scan(ctx)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return fmt.Errorf("%w: %s", models.ErrWorkflowNotFound, id)
			}
			return fmt.Errorf("failed to load workflow: %w", err)
		}

		if workflow.Version != existing.Version {
			return fmt.Errorf("%w: have %d, got %d", models.ErrVersionConflict, existing.Version, workflow.Version)
		}

		model.Version = existing.Version + 1
		model.CreatedAt = existing.CreatedAt
		model.UpdatedAt = time.Now()

		if _, err := tx.NewUpdate().
			Model(model).
			Column("name", "description", "version", "metadata", "updated_at").
			Where("id = ?", workflowID).
			Exec(ctx); err != nil {
			return fmt.Errorf("failed to update workflow: %w", err)
		}

		if _, err := tx.NewDelete().
			Model((*storagemodels.NodeModel)(nil)).
			Where("workflow_id = ?", workflowID).
			Exec(ctx); err != nil {
			return fmt.Errorf("failed to delete old nodes: %w", err)
		}

		if _, err := tx.NewDelete().
			Model((*storagemodels.EdgeModel)(nil)).
			Where("workflow_id = ?", workflowID).
			Exec(ctx); err != nil {
			return fmt.Errorf("failed to delete old edges: %w", err)
		}

		if len(model.Nodes) > 0 {
			if _, err := tx.NewInsert().Model(&model.Nodes).Exec(ctx); err != nil {
				return fmt.Errorf("failed to insert nodes: %w", err)
			}
		}

		if len(model.Edges) > 0 {
			if _, err := tx.NewInsert().Model(&model.Edges).Exec(ctx); err != nil {
				return fmt.Errorf("failed to insert edges: %w", err)
			}
		}

		workflow.Version = model.Version
		return nil
	})
}

// DeleteWorkflow removes a workflow and its nodes and edges.
func (s *PostgresStore) DeleteWorkflow(ctx context.Context, id string) error {
	workflowID, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("%w: %s", models.ErrWorkflowNotFound, id)
	}

	return s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().
			Model((*storagemodels.NodeModel)(nil)).
			Where("workflow_id = ?", workflowID).
			Exec(ctx); err != nil {
			return fmt.Errorf("failed to delete nodes: %w", err)
		}

		if _, err := tx.NewDelete().
			Model((*storagemodels.EdgeModel)(nil)).
			Where("workflow_id = ?", workflowID).
			Exec(ctx); err != nil {
			return fmt.Errorf("failed to delete edges: %w", err)
		}

		res, err := tx.NewDelete().
			Model((*storagemodels.WorkflowModel)(nil)).
			Where("id = ?", workflowID).
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to delete workflow: %w", err)
		}

		if rows, _ := res.RowsAffected(); rows == 0 {
			return fmt.Errorf("%w: %s", models.ErrWorkflowNotFound, id)
		}

		return nil
	})
}

// CreateExecution stores a new execution record.
func (s *PostgresStore) CreateExecution(ctx context.Context, execution *models.Execution) (string, error) {
	if execution.ID == "" {
		execution.ID = uuid.New().String()
	}

	model, err := storagemodels.ExecutionToModel(execution)
	if err != nil {
		return "", fmt.Errorf("invalid execution: %w", err)
	}

	if _, err := s.db.NewInsert().Model(model).Exec(ctx); err != nil {
		return "", fmt.Errorf("failed to create execution: %w", err)
	}

	return execution.ID, nil
}

// UpdateExecution replaces an execution record.
func (s *PostgresStore) UpdateExecution(ctx context.Context, id string, execution *models.Execution) error {
	executionID, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("%w: %s", models.ErrExecutionNotFound, id)
	}

	execution.ID = id
	model, err := storagemodels.ExecutionToModel(execution)
	if err != nil {
		return fmt.Errorf("invalid execution: %w", err)
	}

	res, err := s.db.NewUpdate().
		Model(model).
		Column("status", "output", "error", "node_results", "completed_at", "duration_ms", "metadata").
		Where("id = ?", executionID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to update execution: %w", err)
	}

	if rows, _ := res.RowsAffected(); rows == 0 {
		return fmt.Errorf("%w: %s", models.ErrExecutionNotFound, id)
	}

	return nil
}

// GetExecution loads an execution record.
func (s *PostgresStore) GetExecution(ctx context.Context, id string) (*models.Execution, error) {
	executionID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", models.ErrExecutionNotFound, id)
	}

	model := new(storagemodels.ExecutionModel)
	err = s.db.NewSelect().
		Model(model).
		Where("ex.id = ?", executionID).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", models.ErrExecutionNotFound, id)
		}
		return nil, fmt.Errorf("failed to load execution: %w", err)
	}

	return storagemodels.ExecutionToDomain(model), nil
}

// ListExecutions returns the executions of a workflow, newest first. An
// empty workflowID lists all executions.
func (s *PostgresStore) ListExecutions(ctx context.Context, workflowID string) ([]*models.Execution, error) {
	var executionModels []*storagemodels.ExecutionModel
	query := s.db.NewSelect().
		Model(&executionModels).
		Order("started_at DESC")

	if workflowID != "" {
		id, err := uuid.Parse(workflowID)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", models.ErrWorkflowNotFound, workflowID)
		}
		query = query.Where("ex.workflow_id = ?", id)
	}

	if err := query.Scan(ctx); err != nil {
		return nil, fmt.Errorf("failed to list executions: %w", err)
	}

	executions := make([]*models.Execution, 0, len(executionModels))
	for _, model := range executionModels {
		executions = append(executions, storagemodels.ExecutionToDomain(model))
	}

	return executions, nil
}
