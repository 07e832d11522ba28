package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dagflow-io/dagflow/internal/application/template"
	"github.com/dagflow-io/dagflow/pkg/cache"
	"github.com/dagflow-io/dagflow/pkg/executor"
	"github.com/dagflow-io/dagflow/pkg/models"
)

// StandaloneExecutor runs workflows synchronously and in-memory, without
// persistence. Used for tests, embedding and the node preview endpoint.
type StandaloneExecutor struct {
	registry    *executor.Registry
	dagExecutor *DAGExecutor
}

// NewStandaloneExecutor creates a standalone executor. resultCache may be
// nil to disable memoization.
func NewStandaloneExecutor(registry *executor.Registry, resultCache cache.ResultCache, notifier Notifier) *StandaloneExecutor {
	nodeExecutor := NewNodeExecutor(registry, resultCache)
	return &StandaloneExecutor{
		registry:    registry,
		dagExecutor: NewDAGExecutor(nodeExecutor, registry, notifier),
	}
}

// ExecuteStandalone validates and executes a workflow, returning the
// completed execution record. The record is not persisted anywhere.
func (e *StandaloneExecutor) ExecuteStandalone(ctx context.Context, workflow *models.Workflow, input map[string]any, useCache bool, opts *Options) (*models.Execution, error) {
	if workflow == nil {
		return nil, fmt.Errorf("workflow is required")
	}

	if opts == nil {
		opts = DefaultOptions()
	}

	if workflow.ID == "" {
		workflow.ID = uuid.New().String()
	}

	if err := Validate(workflow, e.registry); err != nil {
		return nil, err
	}

	execution := &models.Execution{
		ID:         uuid.New().String(),
		WorkflowID: workflow.ID,
		Status:     models.ExecutionStatusRunning,
		Input:      input,
		UseCache:   useCache,
		StartedAt:  time.Now(),
	}

	if opts.ExecutionTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.ExecutionTimeout)
		defer cancel()
	}

	graph := NewGraph(workflow)
	plan, err := BuildPlan(graph)
	if err != nil {
		return nil, err
	}

	state := NewExecutionState(execution.ID, workflow, input, useCache)

	execErr := e.dagExecutor.Execute(ctx, state, plan, opts)

	now := time.Now()
	execution.CompletedAt = &now
	execution.Duration = execution.CalculateDuration()
	execution.NodeResults = state.Results()

	switch {
	case execErr == nil:
		execution.Status = models.ExecutionStatusSuccess
		execution.Output = e.dagExecutor.FinalOutput(state, graph)
	case errors.Is(execErr, models.ErrCancelled):
		execution.Status = models.ExecutionStatusCancelled
		execution.Error = execErr.Error()
	default:
		execution.Status = models.ExecutionStatusFailed
		execution.Error = execErr.Error()
	}

	return execution, execErr
}

// PreviewNode runs one node kind in isolation against a caller-provided
// context, bypassing persistence. Template references resolve against the
// given context with the usual passthrough rule.
func (e *StandaloneExecutor) PreviewNode(ctx context.Context, kind string, config map[string]any, inputs map[string]any, contextValues map[string]any) (*models.NodeResult, error) {
	desc, err := e.registry.Get(kind)
	if err != nil {
		return nil, err
	}

	if err := e.registry.ValidateConfig(kind, config); err != nil {
		return nil, err
	}

	varCtx := template.NewVariableContext()
	for k, v := range contextValues {
		varCtx.NodeOutputs[k] = v
	}
	for k, v := range inputs {
		varCtx.NodeOutputs[k] = v
	}

	tmplEngine := template.NewEngineWithDefaults(varCtx)
	resolvedConfig, err := tmplEngine.ResolveConfig(config)
	if err != nil {
		return nil, err
	}

	rc := &executor.RunContext{
		NodeID:       "preview",
		CallerInputs: contextValues,
	}

	start := time.Now()
	output, execErr := invoke(ctx, desc.Executor(), resolvedConfig, inputs, rc)
	duration := time.Since(start).Milliseconds()

	result := &models.NodeResult{
		Success:  execErr == nil,
		Output:   output,
		Duration: duration,
	}
	if execErr != nil {
		result.Error = execErr.Error()
		result.Output = nil
	}

	return result, nil
}
