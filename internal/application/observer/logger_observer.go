package observer

import (
	"github.com/dagflow-io/dagflow/internal/infrastructure/logger"
	"github.com/dagflow-io/dagflow/pkg/engine"
)

// LoggerObserver logs execution events through the structured logger.
type LoggerObserver struct {
	logger *logger.Logger
}

// NewLoggerObserver creates a new logger observer.
func NewLoggerObserver(log *logger.Logger) *LoggerObserver {
	if log == nil {
		log = logger.Default()
	}

	return &LoggerObserver{logger: log}
}

// Name returns the observer identifier.
func (o *LoggerObserver) Name() string {
	return "logger"
}

// OnEvent logs the event at a level matching its type.
func (o *LoggerObserver) OnEvent(event engine.ExecutionEvent) error {
	args := []any{
		"execution_id", event.ExecutionID,
		"workflow_id", event.WorkflowID,
		"status", event.Status,
	}

	if event.NodeID != "" {
		args = append(args, "node_id", event.NodeID, "node_kind", event.NodeKind)
	}
	if event.DurationMs > 0 {
		args = append(args, "duration_ms", event.DurationMs)
	}
	if event.Cached {
		args = append(args, "cached", true)
	}
	if event.Message != "" {
		args = append(args, "message", event.Message)
	}
	if event.Error != nil {
		args = append(args, "error", event.Error)
	}

	switch event.Type {
	case engine.EventTypeExecutionFailed, engine.EventTypeNodeFailed:
		o.logger.Error(event.Type, args...)
	case engine.EventTypeLevelStarted, engine.EventTypeLevelCompleted, engine.EventTypeNodeStarted:
		o.logger.Debug(event.Type, args...)
	default:
		o.logger.Info(event.Type, args...)
	}

	return nil
}
