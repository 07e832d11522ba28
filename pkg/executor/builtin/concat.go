package builtin

import (
	"context"
	"fmt"
	"strings"

	"github.com/dagflow-io/dagflow/pkg/executor"
)

// ConcatExecutor joins text. With a "text" field it returns the resolved
// text as-is; with a "values" list it joins the stringified elements with
// the configured separator.
type ConcatExecutor struct {
	*executor.BaseExecutor
}

// NewConcatExecutor creates a new concat executor.
func NewConcatExecutor() *ConcatExecutor {
	return &ConcatExecutor{
		BaseExecutor: executor.NewBaseExecutor("concat"),
	}
}

// Execute joins the configured parts.
func (e *ConcatExecutor) Execute(ctx context.Context, config map[string]any, inputs map[string]any, rc *executor.RunContext) (any, error) {
	if text, err := e.GetString(config, "text"); err == nil {
		return text, nil
	}

	values, ok := config["values"].([]any)
	if !ok {
		return nil, fmt.Errorf("either text or values is required")
	}

	separator := e.GetStringDefault(config, "separator", "")

	parts := make([]string, 0, len(values))
	for _, v := range values {
		parts = append(parts, fmt.Sprintf("%v", v))
	}

	return strings.Join(parts, separator), nil
}

func concatDescriptor() executor.Descriptor {
	return executor.Descriptor{
		Kind: "concat",
		New:  func() executor.Executor { return NewConcatExecutor() },
		ConfigSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"text":      map[string]any{"type": "string"},
				"separator": map[string]any{"type": "string"},
				"values":    map[string]any{"type": "array"},
			},
		},
		OutputSchema: map[string]any{"type": "string"},
		Metadata: executor.Metadata{
			Description: "Concatenates text or a list of values",
			Cacheable:   true,
		},
	}
}
