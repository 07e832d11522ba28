package builtin

import (
	"context"
	"fmt"

	"github.com/dagflow-io/dagflow/pkg/executor"
)

// MergeExecutor combines outputs from multiple predecessor nodes.
type MergeExecutor struct {
	*executor.BaseExecutor
}

// NewMergeExecutor creates a new merge executor.
func NewMergeExecutor() *MergeExecutor {
	return &MergeExecutor{
		BaseExecutor: executor.NewBaseExecutor("merge"),
	}
}

// Execute executes the merge logic.
func (e *MergeExecutor) Execute(ctx context.Context, config map[string]any, inputs map[string]any, rc *executor.RunContext) (any, error) {
	strategy := e.GetStringDefault(config, "strategy", "namespaced")

	switch strategy {
	case "namespaced":
		// Keep each predecessor's output under its node id.
		collected := make(map[string]any, len(inputs))
		for k, v := range inputs {
			collected[k] = v
		}
		return collected, nil

	case "flatten":
		// Shallow-merge map outputs; later keys win in predecessor order is
		// not defined, so flatten is only suitable for disjoint outputs.
		merged := make(map[string]any)
		for id, v := range inputs {
			if m, ok := v.(map[string]any); ok {
				for k, val := range m {
					merged[k] = val
				}
			} else {
				merged[id] = v
			}
		}
		return merged, nil

	default:
		return nil, fmt.Errorf("unknown merge strategy: %s", strategy)
	}
}

func mergeDescriptor() executor.Descriptor {
	return executor.Descriptor{
		Kind: "merge",
		New:  func() executor.Executor { return NewMergeExecutor() },
		ConfigSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"strategy": map[string]any{"type": "string", "enum": []any{"namespaced", "flatten"}},
			},
		},
		Metadata: executor.Metadata{
			Description: "Combines predecessor outputs",
			Cacheable:   true,
		},
	}
}
