// Package engine executes workflow DAGs: it validates graphs, plans them
// into parallel levels, and drives node execution with a level barrier.
package engine

import (
	"fmt"

	"github.com/dagflow-io/dagflow/pkg/executor"
	"github.com/dagflow-io/dagflow/pkg/models"
)

// Graph is a workflow's DAG with indexed lookups. Predecessor lists keep
// edge-insertion order; successor lists likewise.
type Graph struct {
	Nodes map[string]*models.Node

	preds    map[string][]string
	succs    map[string][]string
	inDegree map[string]int
}

// NewGraph builds the index for a workflow. The workflow is assumed to have
// passed structural validation; unknown edge endpoints are ignored here.
func NewGraph(workflow *models.Workflow) *Graph {
	g := &Graph{
		Nodes:    make(map[string]*models.Node, len(workflow.Nodes)),
		preds:    make(map[string][]string, len(workflow.Nodes)),
		succs:    make(map[string][]string, len(workflow.Nodes)),
		inDegree: make(map[string]int, len(workflow.Nodes)),
	}

	for _, node := range workflow.Nodes {
		g.Nodes[node.ID] = node
		g.inDegree[node.ID] = 0
	}

	for _, edge := range workflow.Edges {
		if _, ok := g.Nodes[edge.Source]; !ok {
			continue
		}
		if _, ok := g.Nodes[edge.Target]; !ok {
			continue
		}
		g.preds[edge.Target] = append(g.preds[edge.Target], edge.Source)
		g.succs[edge.Source] = append(g.succs[edge.Source], edge.Target)
		g.inDegree[edge.Target]++
	}

	return g
}

// Predecessors returns the sources of a node's incoming edges in
// edge-insertion order.
func (g *Graph) Predecessors(nodeID string) []string {
	return g.preds[nodeID]
}

// Successors returns the targets of a node's outgoing edges in
// edge-insertion order.
func (g *Graph) Successors(nodeID string) []string {
	return g.succs[nodeID]
}

// Leaves returns the ids of nodes with no outgoing edges.
func (g *Graph) Leaves() []string {
	var leaves []string
	for id := range g.Nodes {
		if len(g.succs[id]) == 0 {
			leaves = append(leaves, id)
		}
	}
	return leaves
}

// Validate checks a workflow against the full rule set, in order: node ids
// non-empty and unique; edge endpoints exist; no self-loops; no duplicate
// edges; every kind registered; every config valid against its kind's
// schema; graph acyclic.
func Validate(workflow *models.Workflow, registry *executor.Registry) error {
	if err := workflow.Validate(); err != nil {
		return err
	}

	for _, node := range workflow.Nodes {
		if !registry.Has(node.Kind) {
			return &models.GraphError{
				Reason:  models.GraphReasonUnknownKind,
				NodeID:  node.ID,
				Message: fmt.Sprintf("node %s has unregistered kind %q", node.ID, node.Kind),
			}
		}
	}

	for _, node := range workflow.Nodes {
		if err := registry.ValidateConfig(node.Kind, node.Config); err != nil {
			return &models.GraphError{
				Reason:  models.GraphReasonBadConfig,
				NodeID:  node.ID,
				Message: fmt.Sprintf("node %s: %v", node.ID, err),
			}
		}
	}

	if _, err := BuildPlan(NewGraph(workflow)); err != nil {
		return err
	}

	return nil
}
