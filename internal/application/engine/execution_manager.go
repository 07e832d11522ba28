// Package engine wires the DAG executor to storage: it owns the
// submit/poll/cancel lifecycle of executions and the workflow CRUD
// validation path.
package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dagflow-io/dagflow/internal/domain/repository"
	"github.com/dagflow-io/dagflow/internal/infrastructure/logger"
	"github.com/dagflow-io/dagflow/pkg/cache"
	"github.com/dagflow-io/dagflow/pkg/engine"
	"github.com/dagflow-io/dagflow/pkg/executor"
	"github.com/dagflow-io/dagflow/pkg/models"
)

// ExecutionManager manages the workflow execution lifecycle. Submit creates
// a pending execution record and schedules the run on a background
// goroutine; callers observe progress by polling. Executions are
// independent and run in parallel.
type ExecutionManager struct {
	store       repository.Store
	registry    *executor.Registry
	dagExecutor *engine.DAGExecutor
	standalone  *engine.StandaloneExecutor
	options     *engine.Options
	logger      *logger.Logger

	mu      sync.Mutex
	cancels map[string]context.CancelFunc
	running sync.WaitGroup
}

// NewExecutionManager creates a new execution manager. resultCache may be
// nil to disable memoization; notifier may be nil.
func NewExecutionManager(
	store repository.Store,
	registry *executor.Registry,
	resultCache cache.ResultCache,
	notifier engine.Notifier,
	opts *engine.Options,
	log *logger.Logger,
) *ExecutionManager {
	if opts == nil {
		opts = engine.DefaultOptions()
	}
	if log == nil {
		log = logger.Default()
	}

	nodeExecutor := engine.NewNodeExecutor(registry, resultCache)

	return &ExecutionManager{
		store:       store,
		registry:    registry,
		dagExecutor: engine.NewDAGExecutor(nodeExecutor, registry, notifier),
		standalone:  engine.NewStandaloneExecutor(registry, resultCache, notifier),
		options:     opts,
		logger:      log,
		cancels:     make(map[string]context.CancelFunc),
	}
}

// SubmitOptions carries per-execution overrides.
type SubmitOptions struct {
	// UseCache requests result memoization; the engine-level master switch
	// still applies.
	UseCache bool

	// Timeout overrides the engine's default execution deadline. Zero keeps
	// the default; expiry behaves like a cancel request.
	Timeout time.Duration
}

// Submit validates the workflow, creates a pending execution record and
// schedules the run. It returns the execution id immediately. The workflow
// definition is snapshotted here: edits after submit are not observed.
func (em *ExecutionManager) Submit(ctx context.Context, workflowID string, input map[string]any, opts SubmitOptions) (string, error) {
	workflow, err := em.store.GetWorkflow(ctx, workflowID)
	if err != nil {
		return "", err
	}

	// Defense in depth: the definition was validated at create/update time,
	// but the registry may have changed across restarts.
	if err := engine.Validate(workflow, em.registry); err != nil {
		return "", err
	}

	execution := &models.Execution{
		ID:         uuid.New().String(),
		WorkflowID: workflow.ID,
		Status:     models.ExecutionStatusPending,
		Input:      input,
		UseCache:   opts.UseCache,
		StartedAt:  time.Now(),
	}

	if _, err := em.store.CreateExecution(ctx, execution); err != nil {
		return "", fmt.Errorf("failed to create execution: %w", err)
	}

	runCtx, cancel := context.WithCancel(context.Background())
	em.mu.Lock()
	em.cancels[execution.ID] = cancel
	em.mu.Unlock()

	em.running.Add(1)
	go func() {
		defer em.running.Done()
		defer func() {
			em.mu.Lock()
			delete(em.cancels, execution.ID)
			em.mu.Unlock()
			cancel()
		}()

		em.run(runCtx, execution, workflow, opts)
	}()

	return execution.ID, nil
}

// run drives one execution from pending to a terminal state.
func (em *ExecutionManager) run(ctx context.Context, execution *models.Execution, workflow *models.Workflow, opts SubmitOptions) {
	timeout := opts.Timeout
	if timeout == 0 {
		timeout = em.options.ExecutionTimeout
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	execution.Status = models.ExecutionStatusRunning
	execution.StartedAt = time.Now()
	if err := em.persistExecution(execution); err != nil {
		em.logger.Error("failed to mark execution running", "execution_id", execution.ID, "error", err)
		return
	}

	graph := engine.NewGraph(workflow)
	plan, err := engine.BuildPlan(graph)
	if err != nil {
		em.finalize(execution, nil, nil, err)
		return
	}

	state := engine.NewExecutionState(execution.ID, workflow, execution.Input, execution.UseCache)

	execErr := em.dagExecutor.Execute(ctx, state, plan, em.options)

	em.finalize(execution, state, graph, execErr)
}

// finalize records the terminal state and flushes it to storage.
func (em *ExecutionManager) finalize(execution *models.Execution, state *engine.ExecutionState, graph *engine.Graph, execErr error) {
	now := time.Now()
	execution.CompletedAt = &now
	execution.Duration = execution.CalculateDuration()
	if state != nil {
		execution.NodeResults = state.Results()
	}

	switch {
	case execErr == nil:
		execution.Status = models.ExecutionStatusSuccess
		execution.Output = em.dagExecutor.FinalOutput(state, graph)
	case errors.Is(execErr, models.ErrCancelled):
		execution.Status = models.ExecutionStatusCancelled
		execution.Error = execErr.Error()
	default:
		execution.Status = models.ExecutionStatusFailed
		execution.Error = execErr.Error()
	}

	if err := em.persistExecution(execution); err != nil {
		em.logger.Error("failed to persist terminal execution state",
			"execution_id", execution.ID, "status", execution.Status, "error", err)
	}
}

// persistExecution updates the execution record, retrying once on storage
// failure. A second failure marks the execution failed with an internal
// reason, as far as the in-memory record is concerned.
func (em *ExecutionManager) persistExecution(execution *models.Execution) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	err := em.store.UpdateExecution(ctx, execution.ID, execution)
	if err == nil {
		return nil
	}

	em.logger.Warn("execution update failed, retrying once", "execution_id", execution.ID, "error", err)

	if err = em.store.UpdateExecution(ctx, execution.ID, execution); err == nil {
		return nil
	}

	execution.Status = models.ExecutionStatusFailed
	execution.Error = fmt.Sprintf("%v: %v", models.ErrInternal, err)
	return err
}

// Status returns the current execution record.
func (em *ExecutionManager) Status(ctx context.Context, executionID string) (*models.Execution, error) {
	return em.store.GetExecution(ctx, executionID)
}

// ListExecutions returns the executions of a workflow.
func (em *ExecutionManager) ListExecutions(ctx context.Context, workflowID string) ([]*models.Execution, error) {
	return em.store.ListExecutions(ctx, workflowID)
}

// Cancel requests cancellation of a running execution. The executor checks
// the signal between levels; nodes that ignore it run to completion, after
// which the execution still lands on cancelled.
func (em *ExecutionManager) Cancel(ctx context.Context, executionID string) error {
	em.mu.Lock()
	cancel, ok := em.cancels[executionID]
	em.mu.Unlock()

	if ok {
		cancel()
		return nil
	}

	execution, err := em.store.GetExecution(ctx, executionID)
	if err != nil {
		return err
	}

	if execution.Status.IsTerminal() {
		return fmt.Errorf("%w: %s", models.ErrExecutionFinished, executionID)
	}

	return nil
}

// PreviewNode runs a single node kind in isolation, bypassing persistence.
func (em *ExecutionManager) PreviewNode(ctx context.Context, kind string, config map[string]any, inputs map[string]any, contextValues map[string]any) (*models.NodeResult, error) {
	return em.standalone.PreviewNode(ctx, kind, config, inputs, contextValues)
}

// Recover marks executions that were in flight when the process stopped as
// failed. In-flight state is not durable across restarts.
func (em *ExecutionManager) Recover(ctx context.Context) error {
	executions, err := em.store.ListExecutions(ctx, "")
	if err != nil {
		return err
	}

	for _, execution := range executions {
		if execution.Status != models.ExecutionStatusRunning && execution.Status != models.ExecutionStatusPending {
			continue
		}

		now := time.Now()
		execution.Status = models.ExecutionStatusFailed
		execution.Error = "execution interrupted by process restart"
		execution.CompletedAt = &now
		execution.Duration = execution.CalculateDuration()

		if err := em.store.UpdateExecution(ctx, execution.ID, execution); err != nil {
			em.logger.Error("failed to mark interrupted execution failed",
				"execution_id", execution.ID, "error", err)
		}
	}

	return nil
}

// Wait blocks until all in-flight executions finish. For shutdown and tests.
func (em *ExecutionManager) Wait() {
	em.running.Wait()
}
