package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// ExecutionModel represents a workflow execution instance in the database.
type ExecutionModel struct {
	bun.BaseModel `bun:"table:executions,alias:ex"`

	ID          uuid.UUID        `bun:"id,pk,type:uuid" json:"id"`
	WorkflowID  uuid.UUID        `bun:"workflow_id,notnull,type:uuid" json:"workflow_id"`
	Status      string           `bun:"status,notnull,default:'pending'" json:"status"`
	Input       JSONBMap         `bun:"input,type:jsonb,default:'{}'" json:"input,omitempty"`
	Output      JSONBValue       `bun:"output,type:jsonb" json:"output,omitempty"`
	Error       string           `bun:"error" json:"error,omitempty"`
	NodeResults JSONBNodeResults `bun:"node_results,type:jsonb" json:"node_results,omitempty"`
	UseCache    bool             `bun:"use_cache,default:false" json:"use_cache"`
	StartedAt   time.Time        `bun:"started_at,notnull" json:"started_at"`
	CompletedAt *time.Time       `bun:"completed_at" json:"completed_at,omitempty"`
	Duration    int64            `bun:"duration_ms" json:"duration_ms,omitempty"`
	Metadata    JSONBMap         `bun:"metadata,type:jsonb,default:'{}'" json:"metadata,omitempty"`

	Workflow *WorkflowModel `bun:"rel:belongs-to,join:workflow_id=id" json:"workflow,omitempty"`
}
