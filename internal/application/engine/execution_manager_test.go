package engine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dagflow-io/dagflow/internal/infrastructure/storage"
	"github.com/dagflow-io/dagflow/pkg/cache"
	"github.com/dagflow-io/dagflow/pkg/engine"
	"github.com/dagflow-io/dagflow/pkg/executor"
	"github.com/dagflow-io/dagflow/pkg/executor/builtin"
	"github.com/dagflow-io/dagflow/pkg/models"
)

type managerFixture struct {
	store    *storage.MemoryStore
	registry *executor.Registry
	manager  *ExecutionManager
	service  *WorkflowService
}

func newManagerFixture(t *testing.T, opts *engine.Options) *managerFixture {
	t.Helper()

	store := storage.NewMemoryStore()
	registry := executor.NewRegistry()
	builtin.MustRegisterBuiltins(registry)

	if opts == nil {
		opts = engine.DefaultOptions()
	}

	manager := NewExecutionManager(store, registry, cache.NewMemoryCache(100), nil, opts, nil)

	return &managerFixture{
		store:    store,
		registry: registry,
		manager:  manager,
		service:  NewWorkflowService(store, registry),
	}
}

func linearWorkflow() *models.Workflow {
	return &models.Workflow{
		Name: "linear",
		Nodes: []*models.Node{
			{ID: "A", Kind: "literal", Config: map[string]any{"value": "hi"}},
			{ID: "B", Kind: "echo", Config: map[string]any{"prefix": "X-", "text": "{{A}}"}},
		},
		Edges: []*models.Edge{{Source: "A", Target: "B"}},
	}
}

func (f *managerFixture) awaitTerminal(t *testing.T, executionID string) *models.Execution {
	t.Helper()

	var execution *models.Execution
	require.Eventually(t, func() bool {
		var err error
		execution, err = f.manager.Status(context.Background(), executionID)
		return err == nil && execution.Status.IsTerminal()
	}, 5*time.Second, 5*time.Millisecond)

	return execution
}

func TestSubmit_SuccessfulExecution(t *testing.T) {
	f := newManagerFixture(t, nil)
	ctx := context.Background()

	workflowID, err := f.service.Create(ctx, linearWorkflow())
	require.NoError(t, err)

	executionID, err := f.manager.Submit(ctx, workflowID, map[string]any{}, SubmitOptions{})
	require.NoError(t, err)
	require.NotEmpty(t, executionID)

	execution := f.awaitTerminal(t, executionID)

	assert.Equal(t, models.ExecutionStatusSuccess, execution.Status)
	assert.Equal(t, "X-hi", execution.Output)
	assert.Empty(t, execution.Error)
	require.Len(t, execution.NodeResults, 2)
	for id, result := range execution.NodeResults {
		assert.True(t, result.Success, "node %s", id)
	}
	assert.NotNil(t, execution.CompletedAt)
	assert.GreaterOrEqual(t, execution.Duration, int64(0))
}

func TestSubmit_UnknownWorkflow(t *testing.T) {
	f := newManagerFixture(t, nil)

	_, err := f.manager.Submit(context.Background(), "ghost", nil, SubmitOptions{})
	assert.ErrorIs(t, err, models.ErrWorkflowNotFound)
}

func TestSubmit_SnapshotsWorkflowDefinition(t *testing.T) {
	f := newManagerFixture(t, nil)
	ctx := context.Background()

	w := &models.Workflow{
		Name: "slowish",
		Nodes: []*models.Node{
			{ID: "D", Kind: "delay", Config: map[string]any{"duration_ms": float64(100)}},
			{ID: "B", Kind: "echo", Config: map[string]any{"text": "v1"}},
		},
		Edges: []*models.Edge{{Source: "D", Target: "B"}},
	}

	workflowID, err := f.service.Create(ctx, w)
	require.NoError(t, err)

	executionID, err := f.manager.Submit(ctx, workflowID, nil, SubmitOptions{})
	require.NoError(t, err)

	// Edit the stored definition while the execution is in flight.
	updated, err := f.service.Get(ctx, workflowID)
	require.NoError(t, err)
	for _, node := range updated.Nodes {
		if node.ID == "B" {
			node.Config["text"] = "v2"
		}
	}
	require.NoError(t, f.service.Update(ctx, workflowID, updated))

	execution := f.awaitTerminal(t, executionID)
	assert.Equal(t, models.ExecutionStatusSuccess, execution.Status)
	assert.Equal(t, "v1", execution.Output, "running execution must not see the edit")
}

func TestSubmit_CacheHitOnSecondRun(t *testing.T) {
	f := newManagerFixture(t, nil)
	ctx := context.Background()

	workflowID, err := f.service.Create(ctx, linearWorkflow())
	require.NoError(t, err)

	firstID, err := f.manager.Submit(ctx, workflowID, map[string]any{}, SubmitOptions{UseCache: true})
	require.NoError(t, err)
	first := f.awaitTerminal(t, firstID)
	require.Equal(t, models.ExecutionStatusSuccess, first.Status)
	assert.False(t, first.NodeResults["B"].Cached)

	secondID, err := f.manager.Submit(ctx, workflowID, map[string]any{}, SubmitOptions{UseCache: true})
	require.NoError(t, err)
	second := f.awaitTerminal(t, secondID)
	require.Equal(t, models.ExecutionStatusSuccess, second.Status)

	assert.True(t, second.NodeResults["B"].Cached)
	assert.LessOrEqual(t, second.NodeResults["B"].Duration, first.NodeResults["B"].Duration)
	assert.Equal(t, first.Output, second.Output)
}

func TestSubmit_FailFastRecordsOffendingNode(t *testing.T) {
	f := newManagerFixture(t, nil)
	ctx := context.Background()

	w := &models.Workflow{
		Name: "failing",
		Nodes: []*models.Node{
			{ID: "A", Kind: "literal", Config: map[string]any{"value": 1}},
			{ID: "B", Kind: "transform", Config: map[string]any{"type": "jq", "filter": "(((("}},
			{ID: "C", Kind: "echo", Config: map[string]any{"text": "{{B}}"}},
		},
		Edges: []*models.Edge{
			{Source: "A", Target: "B"},
			{Source: "B", Target: "C"},
		},
	}

	workflowID, err := f.service.Create(ctx, w)
	require.NoError(t, err)

	executionID, err := f.manager.Submit(ctx, workflowID, nil, SubmitOptions{})
	require.NoError(t, err)

	execution := f.awaitTerminal(t, executionID)

	assert.Equal(t, models.ExecutionStatusFailed, execution.Status)
	assert.Contains(t, execution.Error, "B")
	assert.Nil(t, execution.Output)
	assert.NotContains(t, execution.NodeResults, "C")
}

func TestCancel_RunningExecution(t *testing.T) {
	f := newManagerFixture(t, nil)
	ctx := context.Background()

	w := &models.Workflow{
		Name: "slow",
		Nodes: []*models.Node{
			{ID: "D", Kind: "delay", Config: map[string]any{"duration_ms": float64(10000)}},
		},
	}

	workflowID, err := f.service.Create(ctx, w)
	require.NoError(t, err)

	executionID, err := f.manager.Submit(ctx, workflowID, nil, SubmitOptions{})
	require.NoError(t, err)

	require.NoError(t, f.manager.Cancel(ctx, executionID))

	execution := f.awaitTerminal(t, executionID)
	assert.Equal(t, models.ExecutionStatusCancelled, execution.Status)
}

func TestCancel_FinishedExecution(t *testing.T) {
	f := newManagerFixture(t, nil)
	ctx := context.Background()

	workflowID, err := f.service.Create(ctx, linearWorkflow())
	require.NoError(t, err)

	executionID, err := f.manager.Submit(ctx, workflowID, nil, SubmitOptions{})
	require.NoError(t, err)
	f.awaitTerminal(t, executionID)
	f.manager.Wait()

	err = f.manager.Cancel(ctx, executionID)
	assert.ErrorIs(t, err, models.ErrExecutionFinished)
}

func TestSubmit_TimeoutCancelsExecution(t *testing.T) {
	f := newManagerFixture(t, nil)
	ctx := context.Background()

	w := &models.Workflow{
		Name: "deadline",
		Nodes: []*models.Node{
			{ID: "D", Kind: "delay", Config: map[string]any{"duration_ms": float64(10000)}},
		},
	}

	workflowID, err := f.service.Create(ctx, w)
	require.NoError(t, err)

	executionID, err := f.manager.Submit(ctx, workflowID, nil, SubmitOptions{Timeout: 30 * time.Millisecond})
	require.NoError(t, err)

	execution := f.awaitTerminal(t, executionID)
	assert.Equal(t, models.ExecutionStatusCancelled, execution.Status)
}

func TestRecover_MarksInterruptedExecutionsFailed(t *testing.T) {
	f := newManagerFixture(t, nil)
	ctx := context.Background()

	stale := &models.Execution{
		WorkflowID: "wf-1",
		Status:     models.ExecutionStatusRunning,
		StartedAt:  time.Now().Add(-time.Hour),
	}
	staleID, err := f.store.CreateExecution(ctx, stale)
	require.NoError(t, err)

	done := &models.Execution{
		WorkflowID: "wf-1",
		Status:     models.ExecutionStatusSuccess,
		StartedAt:  time.Now().Add(-time.Hour),
	}
	doneID, err := f.store.CreateExecution(ctx, done)
	require.NoError(t, err)

	require.NoError(t, f.manager.Recover(ctx))

	recovered, err := f.store.GetExecution(ctx, staleID)
	require.NoError(t, err)
	assert.Equal(t, models.ExecutionStatusFailed, recovered.Status)
	assert.Contains(t, recovered.Error, "interrupted")

	untouched, err := f.store.GetExecution(ctx, doneID)
	require.NoError(t, err)
	assert.Equal(t, models.ExecutionStatusSuccess, untouched.Status)
}

func TestWorkflowService_CreateRejectsCycle(t *testing.T) {
	f := newManagerFixture(t, nil)

	w := &models.Workflow{
		Name: "cyclic",
		Nodes: []*models.Node{
			{ID: "A", Kind: "literal", Config: map[string]any{"value": 1}},
			{ID: "B", Kind: "literal", Config: map[string]any{"value": 2}},
		},
		Edges: []*models.Edge{
			{Source: "A", Target: "B"},
			{Source: "B", Target: "A"},
		},
	}

	_, err := f.service.Create(context.Background(), w)
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrInvalidWorkflow)
}

func TestWorkflowService_UpdateVersionConflict(t *testing.T) {
	f := newManagerFixture(t, nil)
	ctx := context.Background()

	workflowID, err := f.service.Create(ctx, linearWorkflow())
	require.NoError(t, err)

	stored, err := f.service.Get(ctx, workflowID)
	require.NoError(t, err)
	require.Equal(t, 1, stored.Version)

	require.NoError(t, f.service.Update(ctx, workflowID, stored))
	assert.Equal(t, 2, stored.Version)

	// Updating with the stale version fails.
	stale := linearWorkflow()
	stale.ID = workflowID
	stale.Version = 1
	err = f.service.Update(ctx, workflowID, stale)
	assert.ErrorIs(t, err, models.ErrVersionConflict)
}

func TestExecutionsRunInParallel(t *testing.T) {
	f := newManagerFixture(t, nil)
	ctx := context.Background()

	w := &models.Workflow{
		Name: "parallel",
		Nodes: []*models.Node{
			{ID: "D", Kind: "delay", Config: map[string]any{"duration_ms": float64(150)}},
		},
	}

	workflowID, err := f.service.Create(ctx, w)
	require.NoError(t, err)

	start := time.Now()
	var ids []string
	for i := 0; i < 4; i++ {
		id, err := f.manager.Submit(ctx, workflowID, nil, SubmitOptions{})
		require.NoError(t, err)
		ids = append(ids, id)
	}

	for _, id := range ids {
		execution := f.awaitTerminal(t, id)
		assert.Equal(t, models.ExecutionStatusSuccess, execution.Status)
	}

	assert.Less(t, time.Since(start), 500*time.Millisecond,
		"four 150ms executions should overlap")
}
