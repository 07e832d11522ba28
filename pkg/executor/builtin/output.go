package builtin

import (
	"context"

	"github.com/dagflow-io/dagflow/pkg/executor"
)

// OutputExecutor is the designated sink kind. Its result feeds the
// execution's final output: a configured value if present, otherwise its
// single predecessor's output, otherwise the map of predecessor outputs.
type OutputExecutor struct {
	*executor.BaseExecutor
}

// NewOutputExecutor creates a new output executor.
func NewOutputExecutor() *OutputExecutor {
	return &OutputExecutor{
		BaseExecutor: executor.NewBaseExecutor("output"),
	}
}

// Execute collects the node's inputs.
func (e *OutputExecutor) Execute(ctx context.Context, config map[string]any, inputs map[string]any, rc *executor.RunContext) (any, error) {
	if value, ok := config["value"]; ok {
		return value, nil
	}

	if len(inputs) == 1 {
		for _, v := range inputs {
			return v, nil
		}
	}

	if len(inputs) == 0 {
		return nil, nil
	}

	collected := make(map[string]any, len(inputs))
	for k, v := range inputs {
		collected[k] = v
	}
	return collected, nil
}

func outputDescriptor() executor.Descriptor {
	return executor.Descriptor{
		Kind: "output",
		New:  func() executor.Executor { return NewOutputExecutor() },
		ConfigSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"value": map[string]any{},
			},
		},
		Metadata: executor.Metadata{
			Description: "Collects predecessor outputs into the execution output",
			Cacheable:   true,
			Sink:        true,
		},
	}
}
