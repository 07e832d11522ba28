package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"

	appengine "github.com/dagflow-io/dagflow/internal/application/engine"
	"github.com/dagflow-io/dagflow/internal/infrastructure/logger"
	"github.com/dagflow-io/dagflow/pkg/executor"
)

// NodeHandlers provides HTTP handlers for node-kind endpoints.
type NodeHandlers struct {
	registry   *executor.Registry
	executions *appengine.ExecutionManager
	logger     *logger.Logger
}

// NewNodeHandlers creates a new NodeHandlers instance.
func NewNodeHandlers(registry *executor.Registry, executions *appengine.ExecutionManager, log *logger.Logger) *NodeHandlers {
	return &NodeHandlers{
		registry:   registry,
		executions: executions,
		logger:     log,
	}
}

// HandleListKinds handles GET /api/v1/nodes. It lists the registered node
// kinds with their schemas, in registration order.
func (h *NodeHandlers) HandleListKinds(c *gin.Context) {
	respondJSON(c, http.StatusOK, gin.H{"kinds": h.registry.List()})
}

// HandlePreviewNode handles POST /api/v1/nodes/preview. It runs one node
// kind against the provided inputs and context in isolation, bypassing
// persistence.
func (h *NodeHandlers) HandlePreviewNode(c *gin.Context) {
	var req struct {
		Kind    string         `json:"kind" binding:"required"`
		Config  map[string]any `json:"config,omitempty"`
		Inputs  map[string]any `json:"inputs,omitempty"`
		Context map[string]any `json:"context,omitempty"`
	}

	if err := bindJSON(c, &req); err != nil {
		return
	}

	result, err := h.executions.PreviewNode(c.Request.Context(), req.Kind, req.Config, req.Inputs, req.Context)
	if err != nil {
		respondAPIError(c, TranslateError(err))
		return
	}

	respondJSON(c, http.StatusOK, result)
}
