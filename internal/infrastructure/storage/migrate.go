package storage

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"

	"github.com/dagflow-io/dagflow/internal/infrastructure/storage/models"
)

// Migrate creates the tables the Postgres store needs.
func Migrate(ctx context.Context, db *bun.DB) error {
	tables := []any{
		(*models.WorkflowModel)(nil),
		(*models.NodeModel)(nil),
		(*models.EdgeModel)(nil),
		(*models.ExecutionModel)(nil),
	}

	for _, table := range tables {
		if _, err := db.NewCreateTable().
			Model(table).
			IfNotExists().
			Exec(ctx); err != nil {
			return fmt.Errorf("failed to create table for %T: %w", table, err)
		}
	}

	indexes := []struct {
		name    string
		model   any
		columns string
	}{
		{"idx_workflow_nodes_workflow_id", (*models.NodeModel)(nil), "workflow_id"},
		{"idx_workflow_edges_workflow_id", (*models.EdgeModel)(nil), "workflow_id"},
		{"idx_executions_workflow_id", (*models.ExecutionModel)(nil), "workflow_id"},
		{"idx_executions_status", (*models.ExecutionModel)(nil), "status"},
	}

	for _, idx := range indexes {
		if _, err := db.NewCreateIndex().
			Model(idx.model).
			Index(idx.name).
			Column(idx.columns).
			IfNotExists().
			Exec(ctx); err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}
	}

	return nil
}
