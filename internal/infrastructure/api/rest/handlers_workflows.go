package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"

	appengine "github.com/dagflow-io/dagflow/internal/application/engine"
	"github.com/dagflow-io/dagflow/internal/infrastructure/logger"
	"github.com/dagflow-io/dagflow/pkg/models"
)

// WorkflowHandlers provides HTTP handlers for workflow endpoints.
type WorkflowHandlers struct {
	workflows  *appengine.WorkflowService
	executions *appengine.ExecutionManager
	logger     *logger.Logger
}

// NewWorkflowHandlers creates a new WorkflowHandlers instance.
func NewWorkflowHandlers(workflows *appengine.WorkflowService, executions *appengine.ExecutionManager, log *logger.Logger) *WorkflowHandlers {
	return &WorkflowHandlers{
		workflows:  workflows,
		executions: executions,
		logger:     log,
	}
}

type workflowRequest struct {
	Name        string         `json:"name" binding:"required"`
	Description string         `json:"description,omitempty"`
	Version     int            `json:"version,omitempty"`
	Nodes       []*models.Node `json:"nodes" binding:"required"`
	Edges       []*models.Edge `json:"edges"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

// HandleCreateWorkflow handles POST /api/v1/workflows.
func (h *WorkflowHandlers) HandleCreateWorkflow(c *gin.Context) {
	var req workflowRequest
	if err := bindJSON(c, &req); err != nil {
		return
	}

	workflow := &models.Workflow{
		Name:        req.Name,
		Description: req.Description,
		Nodes:       req.Nodes,
		Edges:       req.Edges,
		Metadata:    req.Metadata,
	}

	id, err := h.workflows.Create(c.Request.Context(), workflow)
	if err != nil {
		h.logger.Warn("failed to create workflow", "workflow_name", req.Name, "error", err)
		respondAPIError(c, TranslateError(err))
		return
	}

	workflow.ID = id
	respondJSON(c, http.StatusCreated, workflow)
}

// HandleGetWorkflow handles GET /api/v1/workflows/:workflow_id.
func (h *WorkflowHandlers) HandleGetWorkflow(c *gin.Context) {
	workflow, err := h.workflows.Get(c.Request.Context(), c.Param("workflow_id"))
	if err != nil {
		respondAPIError(c, TranslateError(err))
		return
	}

	respondJSON(c, http.StatusOK, workflow)
}

// HandleListWorkflows handles GET /api/v1/workflows.
func (h *WorkflowHandlers) HandleListWorkflows(c *gin.Context) {
	workflows, err := h.workflows.List(c.Request.Context())
	if err != nil {
		respondAPIError(c, TranslateError(err))
		return
	}

	respondJSON(c, http.StatusOK, gin.H{"workflows": workflows})
}

// HandleUpdateWorkflow handles PUT /api/v1/workflows/:workflow_id.
func (h *WorkflowHandlers) HandleUpdateWorkflow(c *gin.Context) {
	var req workflowRequest
	if err := bindJSON(c, &req); err != nil {
		return
	}

	workflowID := c.Param("workflow_id")
	workflow := &models.Workflow{
		ID:          workflowID,
		Name:        req.Name,
		Description: req.Description,
		Version:     req.Version,
		Nodes:       req.Nodes,
		Edges:       req.Edges,
		Metadata:    req.Metadata,
	}

	if err := h.workflows.Update(c.Request.Context(), workflowID, workflow); err != nil {
		respondAPIError(c, TranslateError(err))
		return
	}

	respondJSON(c, http.StatusOK, workflow)
}

// HandleDeleteWorkflow handles DELETE /api/v1/workflows/:workflow_id.
func (h *WorkflowHandlers) HandleDeleteWorkflow(c *gin.Context) {
	if err := h.workflows.Delete(c.Request.Context(), c.Param("workflow_id")); err != nil {
		respondAPIError(c, TranslateError(err))
		return
	}

	c.Status(http.StatusNoContent)
}

// HandleExecuteWorkflow handles POST /api/v1/workflows/:workflow_id/execute.
// The execution id is returned synchronously; progress is observed by
// polling the executions endpoint.
func (h *WorkflowHandlers) HandleExecuteWorkflow(c *gin.Context) {
	var req struct {
		Input    map[string]any `json:"input,omitempty"`
		UseCache bool           `json:"use_cache,omitempty"`
		Timeout  string         `json:"timeout,omitempty"`
	}

	if err := bindJSON(c, &req); err != nil {
		return
	}

	opts := appengine.SubmitOptions{UseCache: req.UseCache}
	if req.Timeout != "" {
		timeout, err := parseDuration(req.Timeout)
		if err != nil {
			respondAPIError(c, NewAPIError("BAD_REQUEST", "invalid timeout: "+err.Error(), http.StatusBadRequest))
			return
		}
		opts.Timeout = timeout
	}

	executionID, err := h.executions.Submit(c.Request.Context(), c.Param("workflow_id"), req.Input, opts)
	if err != nil {
		respondAPIError(c, TranslateError(err))
		return
	}

	respondJSON(c, http.StatusAccepted, gin.H{"execution_id": executionID})
}
