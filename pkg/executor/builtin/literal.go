// Package builtin provides the built-in node kinds.
package builtin

import (
	"context"
	"fmt"

	"github.com/dagflow-io/dagflow/pkg/executor"
)

// LiteralExecutor emits a constant value. Useful as a workflow source node.
type LiteralExecutor struct {
	*executor.BaseExecutor
}

// NewLiteralExecutor creates a new literal executor.
func NewLiteralExecutor() *LiteralExecutor {
	return &LiteralExecutor{
		BaseExecutor: executor.NewBaseExecutor("literal"),
	}
}

// Execute returns the configured value.
func (e *LiteralExecutor) Execute(ctx context.Context, config map[string]any, inputs map[string]any, rc *executor.RunContext) (any, error) {
	value, ok := config["value"]
	if !ok {
		return nil, fmt.Errorf("field not found: value")
	}
	return value, nil
}

func literalDescriptor() executor.Descriptor {
	return executor.Descriptor{
		Kind: "literal",
		New:  func() executor.Executor { return NewLiteralExecutor() },
		ConfigSchema: map[string]any{
			"type":     "object",
			"required": []any{"value"},
			"properties": map[string]any{
				"value": map[string]any{},
			},
		},
		OutputSchema: map[string]any{},
		Metadata: executor.Metadata{
			Description: "Emits a constant value",
			Cacheable:   true,
		},
	}
}
