package trigger

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appengine "github.com/dagflow-io/dagflow/internal/application/engine"
	"github.com/dagflow-io/dagflow/internal/infrastructure/storage"
	"github.com/dagflow-io/dagflow/pkg/cache"
	"github.com/dagflow-io/dagflow/pkg/engine"
	"github.com/dagflow-io/dagflow/pkg/executor"
	"github.com/dagflow-io/dagflow/pkg/executor/builtin"
	"github.com/dagflow-io/dagflow/pkg/models"
)

func schedulerFixture(t *testing.T) (*CronScheduler, *appengine.ExecutionManager, string) {
	t.Helper()

	store := storage.NewMemoryStore()
	registry := executor.NewRegistry()
	builtin.MustRegisterBuiltins(registry)

	manager := appengine.NewExecutionManager(store, registry, cache.NewMemoryCache(10), nil, engine.DefaultOptions(), nil)
	service := appengine.NewWorkflowService(store, registry)

	workflowID, err := service.Create(context.Background(), &models.Workflow{
		Name: "scheduled",
		Nodes: []*models.Node{
			{ID: "a", Kind: "literal", Config: map[string]any{"value": "tick"}},
		},
	})
	require.NoError(t, err)

	return NewCronScheduler(manager, nil), manager, workflowID
}

func TestCronScheduler_AddRemove(t *testing.T) {
	scheduler, _, workflowID := schedulerFixture(t)

	id, err := scheduler.Add(CronTrigger{
		WorkflowID: workflowID,
		Spec:       "@hourly",
	})
	require.NoError(t, err)
	require.NotEmpty(t, id)
	assert.Equal(t, 1, scheduler.Count())

	scheduler.Remove(id)
	assert.Equal(t, 0, scheduler.Count())
}

func TestCronScheduler_RejectsBadSpec(t *testing.T) {
	scheduler, _, workflowID := schedulerFixture(t)

	_, err := scheduler.Add(CronTrigger{
		WorkflowID: workflowID,
		Spec:       "not-a-spec",
	})
	assert.Error(t, err)
}

func TestCronScheduler_FiresSubmission(t *testing.T) {
	scheduler, manager, workflowID := schedulerFixture(t)

	_, err := scheduler.Add(CronTrigger{
		WorkflowID: workflowID,
		Spec:       "@every 50ms",
	})
	require.NoError(t, err)

	scheduler.Start()
	defer scheduler.Stop()

	require.Eventually(t, func() bool {
		executions, err := manager.ListExecutions(context.Background(), workflowID)
		return err == nil && len(executions) > 0
	}, 3*time.Second, 20*time.Millisecond)
}
