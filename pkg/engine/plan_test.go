package engine

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dagflow-io/dagflow/pkg/models"
)

func workflowFixture(nodes []string, edges [][2]string) *models.Workflow {
	w := &models.Workflow{Name: "fixture"}
	for _, id := range nodes {
		w.Nodes = append(w.Nodes, &models.Node{ID: id, Kind: "literal", Config: map[string]any{"value": id}})
	}
	for _, e := range edges {
		w.Edges = append(w.Edges, &models.Edge{Source: e[0], Target: e[1]})
	}
	return w
}

func TestBuildPlan_Linear(t *testing.T) {
	w := workflowFixture([]string{"A", "B"}, [][2]string{{"A", "B"}})

	plan, err := BuildPlan(NewGraph(w))
	require.NoError(t, err)

	assert.Equal(t, [][]string{{"A"}, {"B"}}, plan.Levels)
	assert.Equal(t, []string{"A"}, plan.Predecessors["B"])
	assert.Empty(t, plan.Predecessors["A"])
}

func TestBuildPlan_FanOutFanIn(t *testing.T) {
	w := workflowFixture(
		[]string{"R", "L", "U", "J"},
		[][2]string{{"R", "L"}, {"R", "U"}, {"L", "J"}, {"U", "J"}},
	)

	plan, err := BuildPlan(NewGraph(w))
	require.NoError(t, err)

	assert.Equal(t, [][]string{{"R"}, {"L", "U"}, {"J"}}, plan.Levels)
	assert.Equal(t, []string{"L", "U"}, plan.Predecessors["J"], "predecessors keep edge-insertion order")
}

func TestBuildPlan_DeterministicWithinLevel(t *testing.T) {
	w := workflowFixture([]string{"c", "a", "b"}, nil)

	for i := 0; i < 10; i++ {
		plan, err := BuildPlan(NewGraph(w))
		require.NoError(t, err)
		assert.Equal(t, [][]string{{"a", "b", "c"}}, plan.Levels)
	}
}

func TestBuildPlan_Cycle(t *testing.T) {
	w := workflowFixture([]string{"A", "B"}, [][2]string{{"A", "B"}, {"B", "A"}})

	_, err := BuildPlan(NewGraph(w))
	require.Error(t, err)

	var graphErr *models.GraphError
	require.True(t, errors.As(err, &graphErr))
	assert.Equal(t, models.GraphReasonCycle, graphErr.Reason)
}

// Every node appears in exactly one level, and no level contains two nodes
// connected by an edge.
func TestBuildPlan_CoversEveryNodeOnce(t *testing.T) {
	w := workflowFixture(
		[]string{"a", "b", "c", "d", "e", "f"},
		[][2]string{{"a", "c"}, {"b", "c"}, {"c", "d"}, {"c", "e"}, {"d", "f"}, {"e", "f"}},
	)

	plan, err := BuildPlan(NewGraph(w))
	require.NoError(t, err)

	seen := make(map[string]int)
	for _, level := range plan.Levels {
		inLevel := make(map[string]bool)
		for _, id := range level {
			seen[id]++
			inLevel[id] = true
		}
		for _, edge := range w.Edges {
			assert.False(t, inLevel[edge.Source] && inLevel[edge.Target],
				"edge %s->%s inside one level", edge.Source, edge.Target)
		}
	}

	require.Len(t, seen, len(w.Nodes))
	for id, count := range seen {
		assert.Equal(t, 1, count, "node %s appears once", id)
	}
}

func TestPlan_Metrics(t *testing.T) {
	w := workflowFixture(
		[]string{"R", "L", "U", "J"},
		[][2]string{{"R", "L"}, {"R", "U"}, {"L", "J"}, {"U", "J"}},
	)

	plan, err := BuildPlan(NewGraph(w))
	require.NoError(t, err)

	assert.Equal(t, 4, plan.NodeCount())
	assert.Equal(t, 2, plan.MaxParallelism())
}

func TestGraph_Lookups(t *testing.T) {
	w := workflowFixture(
		[]string{"a", "b", "c"},
		[][2]string{{"a", "b"}, {"a", "c"}, {"b", "c"}},
	)

	g := NewGraph(w)

	assert.Equal(t, []string{"b", "c"}, g.Successors("a"))
	assert.Equal(t, []string{"a", "b"}, g.Predecessors("c"))
	assert.Empty(t, g.Predecessors("a"))
	assert.Equal(t, []string{"c"}, g.Leaves())
}
