package rest

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	appengine "github.com/dagflow-io/dagflow/internal/application/engine"
	"github.com/dagflow-io/dagflow/internal/application/importer"
	"github.com/dagflow-io/dagflow/internal/infrastructure/logger"
)

// ImportHandlers provides HTTP handlers for YAML workflow import/export.
type ImportHandlers struct {
	workflows *appengine.WorkflowService
	importer  *importer.YAMLImporter
	logger    *logger.Logger
}

// NewImportHandlers creates a new ImportHandlers instance.
func NewImportHandlers(workflows *appengine.WorkflowService, imp *importer.YAMLImporter, log *logger.Logger) *ImportHandlers {
	return &ImportHandlers{
		workflows: workflows,
		importer:  imp,
		logger:    log,
	}
}

// HandleImportWorkflow handles POST /api/v1/workflows/import with a YAML
// document body.
func (h *ImportHandlers) HandleImportWorkflow(c *gin.Context) {
	data, err := io.ReadAll(io.LimitReader(c.Request.Body, 1<<20))
	if err != nil {
		respondAPIError(c, NewAPIError("BAD_REQUEST", "failed to read body", http.StatusBadRequest))
		return
	}

	result, err := h.importer.Import(data)
	if err != nil {
		respondAPIError(c, TranslateError(err))
		return
	}

	id, err := h.workflows.Create(c.Request.Context(), result.Workflow)
	if err != nil {
		respondAPIError(c, TranslateError(err))
		return
	}

	result.Workflow.ID = id
	respondJSON(c, http.StatusCreated, gin.H{
		"workflow": result.Workflow,
		"nodes":    result.NodesCount,
		"edges":    result.EdgesCount,
	})
}

// HandleExportWorkflow handles GET /api/v1/workflows/:workflow_id/export.
func (h *ImportHandlers) HandleExportWorkflow(c *gin.Context) {
	workflow, err := h.workflows.Get(c.Request.Context(), c.Param("workflow_id"))
	if err != nil {
		respondAPIError(c, TranslateError(err))
		return
	}

	data, err := h.importer.Export(workflow)
	if err != nil {
		respondAPIError(c, NewAPIError("INTERNAL_ERROR", "export failed", http.StatusInternalServerError))
		return
	}

	c.Data(http.StatusOK, "application/yaml", data)
}
