package builtin

import (
	"context"
	"time"

	"github.com/dagflow-io/dagflow/pkg/executor"
)

// DelayExecutor sleeps for a configured duration, passing its inputs
// through. Honors cancellation.
type DelayExecutor struct {
	*executor.BaseExecutor
}

// NewDelayExecutor creates a new delay executor.
func NewDelayExecutor() *DelayExecutor {
	return &DelayExecutor{
		BaseExecutor: executor.NewBaseExecutor("delay"),
	}
}

// Execute sleeps then passes inputs through.
func (e *DelayExecutor) Execute(ctx context.Context, config map[string]any, inputs map[string]any, rc *executor.RunContext) (any, error) {
	durationMS := e.GetIntDefault(config, "duration_ms", 0)

	if durationMS > 0 {
		select {
		case <-time.After(time.Duration(durationMS) * time.Millisecond):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	return passthroughInputs(inputs), nil
}

func delayDescriptor() executor.Descriptor {
	return executor.Descriptor{
		Kind: "delay",
		New:  func() executor.Executor { return NewDelayExecutor() },
		ConfigSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"duration_ms": map[string]any{"type": "integer", "minimum": 0},
			},
		},
		Metadata: executor.Metadata{
			Description: "Sleeps for a duration, passing inputs through",
			Cacheable:   false,
		},
	}
}
