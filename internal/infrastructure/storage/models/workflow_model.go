package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// WorkflowModel represents a workflow definition in the database.
type WorkflowModel struct {
	bun.BaseModel `bun:"table:workflows,alias:w"`

	ID          uuid.UUID `bun:"id,pk,type:uuid" json:"id"`
	Name        string    `bun:"name,notnull" json:"name"`
	Description string    `bun:"description" json:"description,omitempty"`
	Version     int       `bun:"version,notnull,default:1" json:"version"`
	Metadata    JSONBMap  `bun:"metadata,type:jsonb,default:'{}'" json:"metadata,omitempty"`
	CreatedAt   time.Time `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt   time.Time `bun:"updated_at,notnull,default:current_timestamp" json:"updated_at"`

	Nodes []*NodeModel `bun:"rel:has-many,join:id=workflow_id" json:"nodes,omitempty"`
	Edges []*EdgeModel `bun:"rel:has-many,join:id=workflow_id" json:"edges,omitempty"`
}

// NodeModel represents a workflow node row.
type NodeModel struct {
	bun.BaseModel `bun:"table:workflow_nodes,alias:n"`

	ID         uuid.UUID `bun:"id,pk,type:uuid" json:"id"`
	WorkflowID uuid.UUID `bun:"workflow_id,notnull,type:uuid" json:"workflow_id"`
	NodeID     string    `bun:"node_id,notnull" json:"node_id"`
	Kind       string    `bun:"kind,notnull" json:"kind"`
	Config     JSONBMap  `bun:"config,type:jsonb,default:'{}'" json:"config,omitempty"`
}

// EdgeModel represents a workflow edge row. Position keeps the
// edge-insertion order that predecessor lists rely on.
type EdgeModel struct {
	bun.BaseModel `bun:"table:workflow_edges,alias:e"`

	ID         uuid.UUID `bun:"id,pk,type:uuid" json:"id"`
	WorkflowID uuid.UUID `bun:"workflow_id,notnull,type:uuid" json:"workflow_id"`
	Source     string    `bun:"source,notnull" json:"source"`
	Target     string    `bun:"target,notnull" json:"target"`
	Position   int       `bun:"position,notnull,default:0" json:"position"`
}
