package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestExecutionStatus_IsTerminal(t *testing.T) {
	assert.False(t, ExecutionStatusPending.IsTerminal())
	assert.False(t, ExecutionStatusRunning.IsTerminal())
	assert.True(t, ExecutionStatusSuccess.IsTerminal())
	assert.True(t, ExecutionStatusFailed.IsTerminal())
	assert.True(t, ExecutionStatusCancelled.IsTerminal())
}

func TestExecution_CalculateDuration(t *testing.T) {
	started := time.Now().Add(-2 * time.Second)
	completed := started.Add(1500 * time.Millisecond)

	e := &Execution{StartedAt: started, CompletedAt: &completed}
	assert.Equal(t, int64(1500), e.CalculateDuration())

	running := &Execution{StartedAt: started}
	assert.GreaterOrEqual(t, running.CalculateDuration(), int64(2000))
}

func TestExecution_FailedNodes(t *testing.T) {
	e := &Execution{
		NodeResults: map[string]*NodeResult{
			"a": {Success: true},
			"b": {Success: false, Error: "boom"},
		},
	}

	assert.Equal(t, []string{"b"}, e.FailedNodes())
}
