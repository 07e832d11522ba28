package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/dagflow-io/dagflow/internal/application/template"
	"github.com/dagflow-io/dagflow/pkg/cache"
	"github.com/dagflow-io/dagflow/pkg/executor"
	"github.com/dagflow-io/dagflow/pkg/models"
)

// NodeExecutor runs a single node: it builds the node's inputs from its
// predecessors, resolves templates in the configuration, consults the
// result cache, and folds the invocation into a NodeResult.
type NodeExecutor struct {
	registry *executor.Registry
	cache    cache.ResultCache
}

// NewNodeExecutor creates a new node executor. cache may be nil to disable
// memoization entirely.
func NewNodeExecutor(registry *executor.Registry, resultCache cache.ResultCache) *NodeExecutor {
	return &NodeExecutor{
		registry: registry,
		cache:    resultCache,
	}
}

// Execute runs one node and always returns a NodeResult; invocation errors
// and panics are converted into failed results, never propagated.
func (ne *NodeExecutor) Execute(ctx context.Context, state *ExecutionState, node *models.Node, preds []string, opts *Options) *models.NodeResult {
	desc, err := ne.registry.Get(node.Kind)
	if err != nil {
		return &models.NodeResult{Success: false, Error: err.Error()}
	}

	inputs := make(map[string]any, len(preds))
	for _, pred := range preds {
		if output, ok := state.GetOutput(pred); ok {
			inputs[pred] = output
		}
	}

	tmplEngine := template.NewEngine(state.TemplateContext(), template.Options{
		StrictMode: opts.StrictTemplates,
	})

	resolvedConfig, err := tmplEngine.ResolveConfig(node.Config)
	if err != nil {
		return &models.NodeResult{Success: false, Error: fmt.Sprintf("template resolution failed: %v", err)}
	}

	useCache := ne.cache != nil && opts.CacheEnabled && state.UseCache && desc.Metadata.Cacheable

	var key string
	if useCache {
		key, err = cache.Fingerprint(node.Kind, resolvedConfig, inputs)
		if err != nil {
			useCache = false
		} else if cached, ok := ne.cache.Get(ctx, key); ok {
			cached.Cached = true
			cached.Duration = 0
			return cached
		}
	}

	rc := &executor.RunContext{
		ExecutionID:  state.ExecutionID,
		WorkflowID:   state.WorkflowID,
		NodeID:       node.ID,
		CallerInputs: state.Input,
	}

	start := time.Now()
	output, err := invoke(ctx, desc.Executor(), resolvedConfig, inputs, rc)
	duration := time.Since(start).Milliseconds()

	result := &models.NodeResult{
		Success:  err == nil,
		Output:   output,
		Duration: duration,
	}
	if err != nil {
		result.Error = err.Error()
		result.Output = nil
	}

	if useCache && result.Success {
		ne.cache.Put(ctx, key, result, opts.CacheTTL)
	}

	return result
}

// invoke calls the executor, converting panics into errors.
func invoke(ctx context.Context, exec executor.Executor, config map[string]any, inputs map[string]any, rc *executor.RunContext) (output any, err error) {
	defer func() {
		if r := recover(); r != nil {
			output = nil
			err = fmt.Errorf("node panicked: %v", r)
		}
	}()

	return exec.Execute(ctx, config, inputs, rc)
}
