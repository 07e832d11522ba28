package builtin

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/itchyny/gojq"

	"github.com/dagflow-io/dagflow/pkg/executor"
)

// TransformExecutor transforms its inputs using an expression or a jq filter.
type TransformExecutor struct {
	*executor.BaseExecutor
	programs *programCache
}

// NewTransformExecutor creates a new transform executor.
func NewTransformExecutor() *TransformExecutor {
	return &TransformExecutor{
		BaseExecutor: executor.NewBaseExecutor("transform"),
		programs:     newProgramCache(100),
	}
}

// Execute executes a data transformation.
func (e *TransformExecutor) Execute(ctx context.Context, config map[string]any, inputs map[string]any, rc *executor.RunContext) (any, error) {
	transformType := e.GetStringDefault(config, "type", "passthrough")

	switch transformType {
	case "passthrough":
		return passthroughInputs(inputs), nil

	case "expression":
		exprStr, err := e.GetString(config, "expression")
		if err != nil {
			return nil, err
		}

		env := map[string]any{
			"inputs": inputs,
			"input":  passthroughInputs(inputs),
		}

		program, err := e.programs.compile(exprStr, env)
		if err != nil {
			return nil, fmt.Errorf("failed to compile expression: %w", err)
		}

		output, err := expr.Run(program, env)
		if err != nil {
			return nil, fmt.Errorf("failed to execute expression: %w", err)
		}

		return output, nil

	case "jq":
		filterStr, err := e.GetString(config, "filter")
		if err != nil {
			return nil, err
		}

		query, err := gojq.Parse(filterStr)
		if err != nil {
			return nil, fmt.Errorf("failed to parse jq filter: %w", err)
		}

		code, err := gojq.Compile(query)
		if err != nil {
			return nil, fmt.Errorf("failed to compile jq filter: %w", err)
		}

		iter := code.RunWithContext(ctx, normalizeJQInput(passthroughInputs(inputs)))
		v, ok := iter.Next()
		if !ok {
			return nil, fmt.Errorf("jq filter produced no output")
		}

		if err, ok := v.(error); ok {
			return nil, fmt.Errorf("jq filter execution error: %w", err)
		}

		return v, nil

	default:
		return nil, fmt.Errorf("unknown transformation type: %s", transformType)
	}
}

// passthroughInputs unwraps a single-predecessor input map to the bare
// output, matching how downstream templates see a lone parent.
func passthroughInputs(inputs map[string]any) any {
	if len(inputs) == 1 {
		for _, v := range inputs {
			return v
		}
	}
	if len(inputs) == 0 {
		return nil
	}
	return inputs
}

// normalizeJQInput coerces arbitrary values into gojq-compatible shapes.
func normalizeJQInput(input any) any {
	switch v := input.(type) {
	case string:
		var parsed any
		if err := json.Unmarshal([]byte(v), &parsed); err == nil {
			return parsed
		}
		return v
	case []byte:
		var parsed any
		if err := json.Unmarshal(v, &parsed); err == nil {
			return parsed
		}
		return string(v)
	case nil, bool, float64, int, map[string]any, []any:
		return v
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return v
		}
		var generic any
		if err := json.Unmarshal(data, &generic); err != nil {
			return v
		}
		return generic
	}
}

func transformDescriptor() executor.Descriptor {
	return executor.Descriptor{
		Kind: "transform",
		New:  func() executor.Executor { return NewTransformExecutor() },
		ConfigSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"type":       map[string]any{"type": "string", "enum": []any{"passthrough", "expression", "jq"}},
				"expression": map[string]any{"type": "string"},
				"filter":     map[string]any{"type": "string"},
			},
		},
		Metadata: executor.Metadata{
			Description: "Transforms inputs with an expression or jq filter",
			Cacheable:   true,
		},
	}
}
