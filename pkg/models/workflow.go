package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// Workflow represents a complete workflow definition with its DAG structure.
type Workflow struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Version     int            `json:"version"`
	Nodes       []*Node        `json:"nodes"`
	Edges       []*Edge        `json:"edges"`
	Metadata    map[string]any `json:"metadata,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// Node represents a single node in the workflow DAG. Kind selects the
// registered node implementation; Config is its raw, template-bearing
// configuration.
type Node struct {
	ID     string         `json:"id"`
	Kind   string         `json:"kind"`
	Config map[string]any `json:"config"`
}

// Edge represents a directed dependency between two nodes in the DAG.
type Edge struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

// Validate performs the structural checks that need no registry: ids present
// and unique, edge endpoints valid, no self-loops, no duplicate edges.
// Kind registration, config schemas and acyclicity are checked by the engine,
// which has access to the node registry.
func (w *Workflow) Validate() error {
	if w.Name == "" {
		return &ValidationError{Field: "name", Message: "name is required"}
	}

	if len(w.Nodes) == 0 {
		return &ValidationError{Field: "nodes", Message: "at least one node is required"}
	}

	nodeIDs := make(map[string]bool, len(w.Nodes))
	for _, node := range w.Nodes {
		if err := node.Validate(); err != nil {
			return err
		}
		if nodeIDs[node.ID] {
			return &GraphError{Reason: GraphReasonDuplicateID, NodeID: node.ID, Message: fmt.Sprintf("duplicate node ID: %s", node.ID)}
		}
		nodeIDs[node.ID] = true
	}

	// Edge checks run as separate passes so the first violation reported
	// follows the order: endpoints exist, no self-loops, no duplicate edges.
	for _, edge := range w.Edges {
		if edge.Source != "" && !nodeIDs[edge.Source] {
			return &GraphError{Reason: GraphReasonUnknownNode, NodeID: edge.Source, Message: fmt.Sprintf("edge references non-existent source node: %s", edge.Source)}
		}
		if edge.Target != "" && !nodeIDs[edge.Target] {
			return &GraphError{Reason: GraphReasonUnknownNode, NodeID: edge.Target, Message: fmt.Sprintf("edge references non-existent target node: %s", edge.Target)}
		}
	}
	for _, edge := range w.Edges {
		if err := edge.Validate(); err != nil {
			return err
		}
	}
	seenEdges := make(map[Edge]bool, len(w.Edges))
	for _, edge := range w.Edges {
		if seenEdges[*edge] {
			return &GraphError{Reason: GraphReasonDuplicateEdge, Message: fmt.Sprintf("duplicate edge: %s -> %s", edge.Source, edge.Target)}
		}
		seenEdges[*edge] = true
	}

	return nil
}

// Validate validates the node structure.
func (n *Node) Validate() error {
	if n.ID == "" {
		return &ValidationError{Field: "id", Message: "node ID is required"}
	}
	if n.Kind == "" {
		return &ValidationError{Field: "kind", Message: "node kind is required"}
	}
	return nil
}

// Validate validates the edge structure.
func (e *Edge) Validate() error {
	if e.Source == "" {
		return &ValidationError{Field: "source", Message: "edge source is required"}
	}
	if e.Target == "" {
		return &ValidationError{Field: "target", Message: "edge target is required"}
	}
	if e.Source == e.Target {
		return &GraphError{Reason: GraphReasonSelfLoop, NodeID: e.Source, Message: fmt.Sprintf("self-loop edge on node: %s", e.Source)}
	}
	return nil
}

// GetNode returns a node by ID.
func (w *Workflow) GetNode(nodeID string) (*Node, error) {
	for _, node := range w.Nodes {
		if node.ID == nodeID {
			return node, nil
		}
	}
	return nil, ErrNodeNotFound
}

// Clone creates a deep copy of the workflow. Executions snapshot their
// workflow at submit time, so later edits are never observed mid-run.
func (w *Workflow) Clone() (*Workflow, error) {
	data, err := json.Marshal(w)
	if err != nil {
		return nil, err
	}

	var clone Workflow
	if err := json.Unmarshal(data, &clone); err != nil {
		return nil, err
	}

	return &clone, nil
}
