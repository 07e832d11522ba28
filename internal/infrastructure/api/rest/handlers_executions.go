package rest

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	appengine "github.com/dagflow-io/dagflow/internal/application/engine"
	"github.com/dagflow-io/dagflow/internal/infrastructure/logger"
)

// ExecutionHandlers provides HTTP handlers for execution endpoints.
type ExecutionHandlers struct {
	executions *appengine.ExecutionManager
	logger     *logger.Logger
}

// NewExecutionHandlers creates a new ExecutionHandlers instance.
func NewExecutionHandlers(executions *appengine.ExecutionManager, log *logger.Logger) *ExecutionHandlers {
	return &ExecutionHandlers{
		executions: executions,
		logger:     log,
	}
}

// HandleGetExecution handles GET /api/v1/executions/:execution_id.
func (h *ExecutionHandlers) HandleGetExecution(c *gin.Context) {
	execution, err := h.executions.Status(c.Request.Context(), c.Param("execution_id"))
	if err != nil {
		respondAPIError(c, TranslateError(err))
		return
	}

	respondJSON(c, http.StatusOK, execution)
}

// HandleListExecutions handles GET /api/v1/executions?workflow_id=...
func (h *ExecutionHandlers) HandleListExecutions(c *gin.Context) {
	executions, err := h.executions.ListExecutions(c.Request.Context(), c.Query("workflow_id"))
	if err != nil {
		respondAPIError(c, TranslateError(err))
		return
	}

	respondJSON(c, http.StatusOK, gin.H{"executions": executions})
}

// HandleCancelExecution handles POST /api/v1/executions/:execution_id/cancel.
func (h *ExecutionHandlers) HandleCancelExecution(c *gin.Context) {
	if err := h.executions.Cancel(c.Request.Context(), c.Param("execution_id")); err != nil {
		respondAPIError(c, TranslateError(err))
		return
	}

	respondJSON(c, http.StatusAccepted, gin.H{"status": "cancelling"})
}

// parseDuration parses request durations like "30s" or "5m".
func parseDuration(s string) (time.Duration, error) {
	return time.ParseDuration(s)
}
