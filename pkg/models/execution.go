package models

import (
	"time"
)

// Execution represents a single workflow execution instance.
type Execution struct {
	ID          string                 `json:"id"`
	WorkflowID  string                 `json:"workflow_id"`
	Status      ExecutionStatus        `json:"status"`
	Input       map[string]any         `json:"input,omitempty"`
	Output      any                    `json:"output,omitempty"`
	Error       string                 `json:"error,omitempty"`
	NodeResults map[string]*NodeResult `json:"node_results,omitempty"`
	UseCache    bool                   `json:"use_cache"`
	StartedAt   time.Time              `json:"started_at"`
	CompletedAt *time.Time             `json:"completed_at,omitempty"`
	Duration    int64                  `json:"duration,omitempty"` // milliseconds
	Metadata    map[string]any         `json:"metadata,omitempty"`
}

// ExecutionStatus represents the status of an execution.
type ExecutionStatus string

const (
	ExecutionStatusPending   ExecutionStatus = "pending"
	ExecutionStatusRunning   ExecutionStatus = "running"
	ExecutionStatusSuccess   ExecutionStatus = "success"
	ExecutionStatusFailed    ExecutionStatus = "failed"
	ExecutionStatusCancelled ExecutionStatus = "cancelled"
)

// IsTerminal returns true if the execution status is terminal.
func (s ExecutionStatus) IsTerminal() bool {
	return s == ExecutionStatusSuccess ||
		s == ExecutionStatusFailed ||
		s == ExecutionStatusCancelled
}

// NodeResult records the outcome of one node within one execution. Output is
// the payload downstream nodes reference via templates.
type NodeResult struct {
	Success  bool           `json:"success"`
	Output   any            `json:"output,omitempty"`
	Error    string         `json:"error,omitempty"`
	Duration int64          `json:"duration_ms"`
	Cached   bool           `json:"cached"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// CalculateDuration calculates the execution duration in milliseconds.
func (e *Execution) CalculateDuration() int64 {
	if e.CompletedAt == nil {
		return time.Since(e.StartedAt).Milliseconds()
	}
	return e.CompletedAt.Sub(e.StartedAt).Milliseconds()
}

// FailedNodes returns the ids of nodes whose result is a failure.
func (e *Execution) FailedNodes() []string {
	var failed []string
	for id, res := range e.NodeResults {
		if !res.Success {
			failed = append(failed, id)
		}
	}
	return failed
}
