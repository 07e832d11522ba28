package engine

import (
	"sync"

	"github.com/dagflow-io/dagflow/internal/application/template"
	"github.com/dagflow-io/dagflow/pkg/models"
)

// ExecutionState tracks the runtime state of one execution: the per-node
// result map and the template context (caller inputs plus completed node
// outputs). Thread-safe; the level barrier guarantees readers only see
// predecessor outputs that are fully written.
type ExecutionState struct {
	ExecutionID string
	WorkflowID  string
	Workflow    *models.Workflow
	Input       map[string]any
	UseCache    bool

	mu      sync.RWMutex
	results map[string]*models.NodeResult
	outputs map[string]any
}

// NewExecutionState creates a new execution state seeded with the caller's
// input map.
func NewExecutionState(executionID string, workflow *models.Workflow, input map[string]any, useCache bool) *ExecutionState {
	if input == nil {
		input = make(map[string]any)
	}

	return &ExecutionState{
		ExecutionID: executionID,
		WorkflowID:  workflow.ID,
		Workflow:    workflow,
		Input:       input,
		UseCache:    useCache,
		results:     make(map[string]*models.NodeResult),
		outputs:     make(map[string]any),
	}
}

// SetResult records a node's result. Successful results also publish the
// node's output into the template context under its id.
func (s *ExecutionState) SetResult(nodeID string, result *models.NodeResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results[nodeID] = result
	if result.Success {
		s.outputs[nodeID] = result.Output
	}
}

// SetNullOutput publishes a null output for a failed node so downstream
// references resolve to null (continue-on-error policy).
func (s *ExecutionState) SetNullOutput(nodeID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.outputs[nodeID] = nil
}

// GetResult returns a node's recorded result.
func (s *ExecutionState) GetResult(nodeID string) (*models.NodeResult, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result, ok := s.results[nodeID]
	return result, ok
}

// GetOutput returns a node's published output. ok is true for failed nodes
// under continue-on-error (with a nil value).
func (s *ExecutionState) GetOutput(nodeID string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	output, ok := s.outputs[nodeID]
	return output, ok
}

// Results returns a copy of the per-node result map.
func (s *ExecutionState) Results() map[string]*models.NodeResult {
	s.mu.RLock()
	defer s.mu.RUnlock()

	results := make(map[string]*models.NodeResult, len(s.results))
	for id, result := range s.results {
		results[id] = result
	}
	return results
}

// TemplateContext builds the variable context for template resolution: a
// snapshot of published node outputs over the caller's input map.
func (s *ExecutionState) TemplateContext() *template.VariableContext {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := template.NewVariableContext()
	for k, v := range s.Input {
		ctx.Inputs[k] = v
	}
	for k, v := range s.outputs {
		ctx.NodeOutputs[k] = v
	}
	return ctx
}
