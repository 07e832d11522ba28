// Package importer handles importing and exporting YAML workflow
// definitions.
package importer

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/dagflow-io/dagflow/pkg/executor"
	"github.com/dagflow-io/dagflow/pkg/models"
)

// YAMLWorkflow represents the top-level YAML workflow document.
type YAMLWorkflow struct {
	Metadata YAMLMetadata `yaml:"metadata"`
	Nodes    []YAMLNode   `yaml:"nodes"`
	Edges    []YAMLEdge   `yaml:"edges,omitempty"`
}

// YAMLMetadata represents workflow metadata in YAML.
type YAMLMetadata struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description,omitempty"`
}

// YAMLNode represents a node in YAML format.
type YAMLNode struct {
	ID     string         `yaml:"id"`
	Kind   string         `yaml:"kind"`
	Config map[string]any `yaml:"config,omitempty"`
}

// YAMLEdge represents an edge in YAML format.
type YAMLEdge struct {
	Source string `yaml:"source"`
	Target string `yaml:"target"`
}

// ImportResult contains the result of importing a YAML workflow.
type ImportResult struct {
	Workflow   *models.Workflow
	NodesCount int
	EdgesCount int
}

// YAMLImporter converts between YAML documents and workflow definitions.
type YAMLImporter struct {
	registry *executor.Registry
}

// NewYAMLImporter creates a new YAML importer. registry may be nil to skip
// kind checking at import time.
func NewYAMLImporter(registry *executor.Registry) *YAMLImporter {
	return &YAMLImporter{registry: registry}
}

// Import parses a YAML document into a workflow definition.
func (i *YAMLImporter) Import(data []byte) (*ImportResult, error) {
	var doc YAMLWorkflow
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if strings.TrimSpace(doc.Metadata.Name) == "" {
		return nil, &models.ValidationError{Field: "metadata.name", Message: "workflow name is required"}
	}

	if len(doc.Nodes) == 0 {
		return nil, &models.ValidationError{Field: "nodes", Message: "at least one node is required"}
	}

	workflow := &models.Workflow{
		Name:        doc.Metadata.Name,
		Description: doc.Metadata.Description,
	}

	for _, node := range doc.Nodes {
		if i.registry != nil && !i.registry.Has(node.Kind) {
			return nil, &models.GraphError{
				Reason:  models.GraphReasonUnknownKind,
				NodeID:  node.ID,
				Message: fmt.Sprintf("node %s has unregistered kind %q", node.ID, node.Kind),
			}
		}

		workflow.Nodes = append(workflow.Nodes, &models.Node{
			ID:     node.ID,
			Kind:   node.Kind,
			Config: normalizeYAMLMap(node.Config),
		})
	}

	for _, edge := range doc.Edges {
		workflow.Edges = append(workflow.Edges, &models.Edge{
			Source: edge.Source,
			Target: edge.Target,
		})
	}

	if err := workflow.Validate(); err != nil {
		return nil, err
	}

	return &ImportResult{
		Workflow:   workflow,
		NodesCount: len(workflow.Nodes),
		EdgesCount: len(workflow.Edges),
	}, nil
}

// Export renders a workflow definition as a YAML document.
func (i *YAMLImporter) Export(workflow *models.Workflow) ([]byte, error) {
	doc := YAMLWorkflow{
		Metadata: YAMLMetadata{
			Name:        workflow.Name,
			Description: workflow.Description,
		},
	}

	for _, node := range workflow.Nodes {
		doc.Nodes = append(doc.Nodes, YAMLNode{
			ID:     node.ID,
			Kind:   node.Kind,
			Config: node.Config,
		})
	}

	for _, edge := range workflow.Edges {
		doc.Edges = append(doc.Edges, YAMLEdge{
			Source: edge.Source,
			Target: edge.Target,
		})
	}

	return yaml.Marshal(doc)
}

// normalizeYAMLMap converts yaml.v3's map[any]any shapes into the JSON-style
// map[string]any the engine works with.
func normalizeYAMLMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}

	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = normalizeYAMLValue(v)
	}
	return out
}

func normalizeYAMLValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		return normalizeYAMLMap(val)
	case map[any]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[fmt.Sprintf("%v", k)] = normalizeYAMLValue(item)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = normalizeYAMLValue(item)
		}
		return out
	default:
		return v
	}
}
