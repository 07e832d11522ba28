package builtin

import (
	"context"
	"fmt"

	"github.com/expr-lang/expr"

	"github.com/dagflow-io/dagflow/pkg/executor"
)

// ConditionalExecutor evaluates a boolean expression over its inputs.
type ConditionalExecutor struct {
	*executor.BaseExecutor
	programs *programCache
}

// NewConditionalExecutor creates a new conditional executor.
func NewConditionalExecutor() *ConditionalExecutor {
	return &ConditionalExecutor{
		BaseExecutor: executor.NewBaseExecutor("conditional"),
		programs:     newProgramCache(100),
	}
}

// Execute evaluates the condition and returns the boolean result.
func (e *ConditionalExecutor) Execute(ctx context.Context, config map[string]any, inputs map[string]any, rc *executor.RunContext) (any, error) {
	exprStr, err := e.GetString(config, "condition")
	if err != nil {
		return nil, err
	}

	env := map[string]any{
		"inputs": inputs,
		"input":  passthroughInputs(inputs),
	}

	program, err := e.programs.compile(exprStr, env)
	if err != nil {
		return nil, fmt.Errorf("failed to compile condition: %w", err)
	}

	output, err := expr.Run(program, env)
	if err != nil {
		return nil, fmt.Errorf("failed to evaluate condition: %w", err)
	}

	result, ok := output.(bool)
	if !ok {
		return nil, fmt.Errorf("condition must return boolean, got: %T", output)
	}

	return result, nil
}

func conditionalDescriptor() executor.Descriptor {
	return executor.Descriptor{
		Kind: "conditional",
		New:  func() executor.Executor { return NewConditionalExecutor() },
		ConfigSchema: map[string]any{
			"type":     "object",
			"required": []any{"condition"},
			"properties": map[string]any{
				"condition": map[string]any{"type": "string"},
			},
		},
		OutputSchema: map[string]any{"type": "boolean"},
		Metadata: executor.Metadata{
			Description: "Evaluates a boolean expression over inputs",
			Cacheable:   true,
		},
	}
}
