package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dagflow-io/dagflow/pkg/executor"
	"github.com/dagflow-io/dagflow/pkg/models"
)

// DAGExecutor drives a plan level by level. Nodes within a level run in
// parallel, bounded by the worker count; a barrier awaits the whole level
// before the next one starts, so context reads never race context writes.
type DAGExecutor struct {
	nodeExecutor *NodeExecutor
	registry     *executor.Registry
	notifier     Notifier
}

// NewDAGExecutor creates a new DAG executor.
func NewDAGExecutor(nodeExecutor *NodeExecutor, registry *executor.Registry, notifier Notifier) *DAGExecutor {
	if notifier == nil {
		notifier = NoopNotifier{}
	}

	return &DAGExecutor{
		nodeExecutor: nodeExecutor,
		registry:     registry,
		notifier:     notifier,
	}
}

// Execute runs the plan to completion, fail-fast by default. The first
// failed node still lets its level siblings finish, then the execution
// stops; with ContinueOnError the failed node's output becomes null and
// execution proceeds. A cancelled context stops the run between levels.
func (de *DAGExecutor) Execute(ctx context.Context, state *ExecutionState, plan *Plan, opts *Options) error {
	for levelIdx, level := range plan.Levels {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("%w: %v", models.ErrCancelled, err)
		}

		if err := de.executeLevel(ctx, state, plan, level, levelIdx, opts); err != nil {
			return err
		}
	}

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %v", models.ErrCancelled, err)
	}

	return nil
}

// executeLevel runs all nodes of one level concurrently and awaits them.
func (de *DAGExecutor) executeLevel(ctx context.Context, state *ExecutionState, plan *Plan, level []string, levelIdx int, opts *Options) error {
	levelStart := time.Now()

	de.safeNotify(ExecutionEvent{
		Type:        EventTypeLevelStarted,
		ExecutionID: state.ExecutionID,
		WorkflowID:  state.WorkflowID,
		Timestamp:   levelStart,
		Status:      "running",
		LevelIndex:  levelIdx,
		NodeCount:   len(level),
	})

	workers := opts.WorkerCount
	if workers <= 0 {
		workers = len(level)
	}
	semaphore := make(chan struct{}, workers)

	nodes := make([]*models.Node, 0, len(level))
	for _, nodeID := range level {
		node, err := state.Workflow.GetNode(nodeID)
		if err != nil {
			return fmt.Errorf("%w: plan references unknown node %s", models.ErrInternal, nodeID)
		}
		nodes = append(nodes, node)
	}

	var wg sync.WaitGroup
	var mu sync.Mutex
	var firstErr error

	for _, node := range nodes {
		wg.Add(1)
		go func(n *models.Node) {
			defer wg.Done()

			// A cancel request mid-level skips nodes that have not started;
			// running siblings are awaited below either way.
			select {
			case <-ctx.Done():
				return
			default:
			}

			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			de.safeNotify(ExecutionEvent{
				Type:        EventTypeNodeStarted,
				ExecutionID: state.ExecutionID,
				WorkflowID:  state.WorkflowID,
				Timestamp:   time.Now(),
				Status:      "running",
				NodeID:      n.ID,
				NodeKind:    n.Kind,
			})

			result := de.nodeExecutor.Execute(ctx, state, n, plan.Predecessors[n.ID], opts)
			state.SetResult(n.ID, result)

			if result.Success {
				de.safeNotify(ExecutionEvent{
					Type:        EventTypeNodeCompleted,
					ExecutionID: state.ExecutionID,
					WorkflowID:  state.WorkflowID,
					Timestamp:   time.Now(),
					Status:      "success",
					NodeID:      n.ID,
					NodeKind:    n.Kind,
					DurationMs:  result.Duration,
					Cached:      result.Cached,
				})
				return
			}

			de.safeNotify(ExecutionEvent{
				Type:        EventTypeNodeFailed,
				ExecutionID: state.ExecutionID,
				WorkflowID:  state.WorkflowID,
				Timestamp:   time.Now(),
				Status:      "failed",
				NodeID:      n.ID,
				NodeKind:    n.Kind,
				DurationMs:  result.Duration,
				Message:     result.Error,
			})

			if opts.ContinueOnError {
				state.SetNullOutput(n.ID)
				return
			}

			mu.Lock()
			if firstErr == nil {
				firstErr = &models.ExecutionError{
					ExecutionID: state.ExecutionID,
					NodeID:      n.ID,
					Err:         fmt.Errorf("node %s failed: %s", n.ID, result.Error),
				}
			}
			mu.Unlock()
		}(node)
	}

	wg.Wait()

	// A cancel or deadline that lands mid-level wins over sibling failures:
	// the execution is reported cancelled once everything has returned.
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %v", models.ErrCancelled, err)
	}

	de.safeNotify(ExecutionEvent{
		Type:        EventTypeLevelCompleted,
		ExecutionID: state.ExecutionID,
		WorkflowID:  state.WorkflowID,
		Timestamp:   time.Now(),
		Status:      "completed",
		LevelIndex:  levelIdx,
		DurationMs:  time.Since(levelStart).Milliseconds(),
	})

	return firstErr
}

// FinalOutput extracts the execution's aggregate output. Nodes of sink
// kinds are preferred; without any, leaf nodes stand in. A single
// contributing node yields its output directly, several yield a map keyed
// by node id.
func (de *DAGExecutor) FinalOutput(state *ExecutionState, graph *Graph) any {
	var contributors []string
	for id, node := range graph.Nodes {
		if desc, err := de.registry.Get(node.Kind); err == nil && desc.Metadata.Sink {
			contributors = append(contributors, id)
		}
	}

	if len(contributors) == 0 {
		contributors = graph.Leaves()
	}

	if len(contributors) == 1 {
		if output, ok := state.GetOutput(contributors[0]); ok {
			return output
		}
		return nil
	}

	merged := make(map[string]any, len(contributors))
	for _, id := range contributors {
		if output, ok := state.GetOutput(id); ok {
			merged[id] = output
		}
	}
	return merged
}

// safeNotify wraps notification with panic recovery; a broken observer must
// never take an execution down.
func (de *DAGExecutor) safeNotify(event ExecutionEvent) {
	defer func() {
		_ = recover()
	}()

	de.notifier.Notify(event)
}
