// Package storage provides the storage-interface implementations: an
// in-memory store for tests and single-process deployments, and a
// Postgres-backed store built on bun.
package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dagflow-io/dagflow/internal/domain/repository"
	"github.com/dagflow-io/dagflow/pkg/models"
)

// MemoryStore is a thread-safe in-memory implementation of the storage
// interfaces. Values are deep-copied on the way in and out so callers can
// never alias stored state.
type MemoryStore struct {
	mu         sync.RWMutex
	workflows  map[string]*models.Workflow
	executions map[string]*models.Execution
}

var _ repository.Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		workflows:  make(map[string]*models.Workflow),
		executions: make(map[string]*models.Execution),
	}
}

// CreateWorkflow stores a new workflow and returns its id.
func (s *MemoryStore) CreateWorkflow(ctx context.Context, workflow *models.Workflow) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if workflow.ID == "" {
		workflow.ID = uuid.New().String()
	}
	if _, exists := s.workflows[workflow.ID]; exists {
		return "", fmt.Errorf("%w: %s", models.ErrWorkflowExists, workflow.ID)
	}

	if workflow.Version == 0 {
		workflow.Version = 1
	}
	now := time.Now()
	workflow.CreatedAt = now
	workflow.UpdatedAt = now

	clone, err := cloneWorkflow(workflow)
	if err != nil {
		return "", err
	}
	s.workflows[workflow.ID] = clone

	return workflow.ID, nil
}

// GetWorkflow returns a copy of the stored workflow.
func (s *MemoryStore) GetWorkflow(ctx context.Context, id string) (*models.Workflow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	workflow, ok := s.workflows[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", models.ErrWorkflowNotFound, id)
	}

	return cloneWorkflow(workflow)
}

// ListWorkflows returns copies of all stored workflows, newest first.
func (s *MemoryStore) ListWorkflows(ctx context.Context) ([]*models.Workflow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*models.Workflow, 0, len(s.workflows))
	for _, workflow := range s.workflows {
		clone, err := cloneWorkflow(workflow)
		if err != nil {
			return nil, err
		}
		out = append(out, clone)
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})

	return out, nil
}

// UpdateWorkflow replaces a workflow definition, enforcing optimistic
// version checking and bumping the version counter.
func (s *MemoryStore) UpdateWorkflow(ctx context.Context, id string, workflow *models.Workflow) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.workflows[id]
	if !ok {
		return fmt.Errorf("%w: %s", models.ErrWorkflowNotFound, id)
	}

	if workflow.Version != existing.Version {
		return fmt.Errorf("%w: have %d, got %d", models.ErrVersionConflict, existing.Version, workflow.Version)
	}

	clone, err := cloneWorkflow(workflow)
	if err != nil {
		return err
	}

	clone.ID = id
	clone.Version = existing.Version + 1
	clone.CreatedAt = existing.CreatedAt
	clone.UpdatedAt = time.Now()
	s.workflows[id] = clone

	workflow.Version = clone.Version
	workflow.UpdatedAt = clone.UpdatedAt

	return nil
}

// DeleteWorkflow removes a workflow.
func (s *MemoryStore) DeleteWorkflow(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.workflows[id]; !ok {
		return fmt.Errorf("%w: %s", models.ErrWorkflowNotFound, id)
	}

	delete(s.workflows, id)
	return nil
}

// CreateExecution stores a new execution record and returns its id.
func (s *MemoryStore) CreateExecution(ctx context.Context, execution *models.Execution) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if execution.ID == "" {
		execution.ID = uuid.New().String()
	}

	clone, err := cloneExecution(execution)
	if err != nil {
		return "", err
	}
	s.executions[execution.ID] = clone

	return execution.ID, nil
}

// UpdateExecution replaces an execution record.
func (s *MemoryStore) UpdateExecution(ctx context.Context, id string, execution *models.Execution) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.executions[id]; !ok {
		return fmt.Errorf("%w: %s", models.ErrExecutionNotFound, id)
	}

	clone, err := cloneExecution(execution)
	if err != nil {
		return err
	}
	clone.ID = id
	s.executions[id] = clone

	return nil
}

// GetExecution returns a copy of the stored execution.
func (s *MemoryStore) GetExecution(ctx context.Context, id string) (*models.Execution, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	execution, ok := s.executions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", models.ErrExecutionNotFound, id)
	}

	return cloneExecution(execution)
}

// ListExecutions returns the executions of one workflow, newest first. An
// empty workflowID lists all executions.
func (s *MemoryStore) ListExecutions(ctx context.Context, workflowID string) ([]*models.Execution, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*models.Execution, 0, len(s.executions))
	for _, execution := range s.executions {
		if workflowID != "" && execution.WorkflowID != workflowID {
			continue
		}
		clone, err := cloneExecution(execution)
		if err != nil {
			return nil, err
		}
		out = append(out, clone)
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].StartedAt.After(out[j].StartedAt)
	})

	return out, nil
}

func cloneWorkflow(w *models.Workflow) (*models.Workflow, error) {
	return w.Clone()
}

func cloneExecution(e *models.Execution) (*models.Execution, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return nil, err
	}

	var clone models.Execution
	if err := json.Unmarshal(data, &clone); err != nil {
		return nil, err
	}

	return &clone, nil
}
