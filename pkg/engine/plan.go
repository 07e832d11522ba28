package engine

import (
	"sort"

	"github.com/dagflow-io/dagflow/pkg/models"
)

// Plan is an ordered partition of a workflow's nodes into levels. Nodes
// within a level have no edges between them and may run in parallel; levels
// are totally ordered. Predecessors records, for each node, the sources of
// its incoming edges in edge-insertion order.
type Plan struct {
	Levels       [][]string          `json:"levels"`
	Predecessors map[string][]string `json:"predecessors"`
}

// BuildPlan runs Kahn's algorithm over the graph and groups nodes into
// levels. Node ids within a level are sorted lexicographically so plans are
// deterministic. Nodes left over when the frontier drains indicate a cycle.
func BuildPlan(g *Graph) (*Plan, error) {
	inDegree := make(map[string]int, len(g.inDegree))
	for id, degree := range g.inDegree {
		inDegree[id] = degree
	}

	plan := &Plan{
		Predecessors: make(map[string][]string, len(g.Nodes)),
	}
	for id := range g.Nodes {
		preds := g.Predecessors(id)
		plan.Predecessors[id] = append([]string(nil), preds...)
	}

	processed := 0
	for processed < len(g.Nodes) {
		var level []string
		for id, degree := range inDegree {
			if degree == 0 {
				level = append(level, id)
			}
		}

		if len(level) == 0 {
			return nil, &models.GraphError{
				Reason:  models.GraphReasonCycle,
				Message: "cycle detected in workflow graph",
			}
		}

		sort.Strings(level)

		for _, id := range level {
			delete(inDegree, id)
			processed++

			for _, succ := range g.Successors(id) {
				if _, ok := inDegree[succ]; ok {
					inDegree[succ]--
				}
			}
		}

		plan.Levels = append(plan.Levels, level)
	}

	return plan, nil
}

// NodeCount returns the total number of nodes across all levels.
func (p *Plan) NodeCount() int {
	count := 0
	for _, level := range p.Levels {
		count += len(level)
	}
	return count
}

// MaxParallelism returns the size of the largest level.
func (p *Plan) MaxParallelism() int {
	max := 0
	for _, level := range p.Levels {
		if len(level) > max {
			max = len(level)
		}
	}
	return max
}
