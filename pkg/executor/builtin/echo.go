package builtin

import (
	"context"

	"github.com/dagflow-io/dagflow/pkg/executor"
)

// EchoExecutor returns its text field, optionally prefixed. The text usually
// carries template references that the engine resolves before execution.
type EchoExecutor struct {
	*executor.BaseExecutor
}

// NewEchoExecutor creates a new echo executor.
func NewEchoExecutor() *EchoExecutor {
	return &EchoExecutor{
		BaseExecutor: executor.NewBaseExecutor("echo"),
	}
}

// Execute returns prefix + text.
func (e *EchoExecutor) Execute(ctx context.Context, config map[string]any, inputs map[string]any, rc *executor.RunContext) (any, error) {
	text, err := e.GetString(config, "text")
	if err != nil {
		return nil, err
	}

	prefix := e.GetStringDefault(config, "prefix", "")
	return prefix + text, nil
}

func echoDescriptor() executor.Descriptor {
	return executor.Descriptor{
		Kind: "echo",
		New:  func() executor.Executor { return NewEchoExecutor() },
		ConfigSchema: map[string]any{
			"type":     "object",
			"required": []any{"text"},
			"properties": map[string]any{
				"text":   map[string]any{"type": "string"},
				"prefix": map[string]any{"type": "string"},
			},
		},
		OutputSchema: map[string]any{"type": "string"},
		Metadata: executor.Metadata{
			Description: "Returns its text, optionally prefixed",
			Cacheable:   true,
		},
	}
}
