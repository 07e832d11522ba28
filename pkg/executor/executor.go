// Package executor provides the node contract and the kind registry.
//
// Each node kind registers a Descriptor carrying a factory, its JSON-schema
// config descriptor and metadata. The engine resolves templates in the node
// configuration before invoking Execute, so executors always see fully
// materialized config and inputs.
package executor

import (
	"context"
	"fmt"
)

// Executor is the interface every node kind implements.
//
// config is the already-template-resolved configuration for the node. inputs
// maps predecessor node ids to their recorded outputs. The context carries
// the cancellation signal; executors performing I/O should honor it.
// Executors must not mutate inputs or the run context.
type Executor interface {
	Execute(ctx context.Context, config map[string]any, inputs map[string]any, rc *RunContext) (any, error)
}

// RunContext identifies the surrounding execution and exposes the caller's
// original input map, read-only.
type RunContext struct {
	ExecutionID  string
	WorkflowID   string
	NodeID       string
	CallerInputs map[string]any
}

// ExecutorFunc adapts an ordinary function to the Executor interface.
type ExecutorFunc func(ctx context.Context, config map[string]any, inputs map[string]any, rc *RunContext) (any, error)

// Execute calls the wrapped function.
func (f ExecutorFunc) Execute(ctx context.Context, config map[string]any, inputs map[string]any, rc *RunContext) (any, error) {
	return f(ctx, config, inputs, rc)
}

// BaseExecutor provides common config accessors for executors.
type BaseExecutor struct {
	Kind string
}

// NewBaseExecutor creates a new BaseExecutor.
func NewBaseExecutor(kind string) *BaseExecutor {
	return &BaseExecutor{Kind: kind}
}

// GetString safely retrieves a string value from config.
func (b *BaseExecutor) GetString(config map[string]any, key string) (string, error) {
	val, ok := config[key]
	if !ok {
		return "", fmt.Errorf("field not found: %s", key)
	}

	str, ok := val.(string)
	if !ok {
		return "", fmt.Errorf("field %s is not a string", key)
	}

	return str, nil
}

// GetStringDefault safely retrieves a string value from config with a default.
func (b *BaseExecutor) GetStringDefault(config map[string]any, key, defaultValue string) string {
	val, ok := config[key]
	if !ok {
		return defaultValue
	}

	str, ok := val.(string)
	if !ok {
		return defaultValue
	}

	return str
}

// GetInt safely retrieves an int value from config.
// Handles both float64 (from JSON) and int.
func (b *BaseExecutor) GetInt(config map[string]any, key string) (int, error) {
	val, ok := config[key]
	if !ok {
		return 0, fmt.Errorf("field not found: %s", key)
	}

	switch v := val.(type) {
	case float64:
		return int(v), nil
	case int:
		return v, nil
	default:
		return 0, fmt.Errorf("field %s is not a number", key)
	}
}

// GetIntDefault safely retrieves an int value from config with a default.
func (b *BaseExecutor) GetIntDefault(config map[string]any, key string, defaultValue int) int {
	val, ok := config[key]
	if !ok {
		return defaultValue
	}

	switch v := val.(type) {
	case float64:
		return int(v)
	case int:
		return v
	default:
		return defaultValue
	}
}

// GetBoolDefault safely retrieves a bool value from config with a default.
func (b *BaseExecutor) GetBoolDefault(config map[string]any, key string, defaultValue bool) bool {
	val, ok := config[key]
	if !ok {
		return defaultValue
	}

	boolVal, ok := val.(bool)
	if !ok {
		return defaultValue
	}

	return boolVal
}

// GetMap safely retrieves a map value from config.
func (b *BaseExecutor) GetMap(config map[string]any, key string) (map[string]any, error) {
	val, ok := config[key]
	if !ok {
		return nil, fmt.Errorf("field not found: %s", key)
	}

	m, ok := val.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("field %s is not a map", key)
	}

	return m, nil
}
