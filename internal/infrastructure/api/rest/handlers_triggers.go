package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dagflow-io/dagflow/internal/application/trigger"
	"github.com/dagflow-io/dagflow/internal/infrastructure/logger"
)

// TriggerHandlers provides HTTP handlers for cron trigger endpoints.
type TriggerHandlers struct {
	scheduler *trigger.CronScheduler
	logger    *logger.Logger
}

// NewTriggerHandlers creates a new TriggerHandlers instance.
func NewTriggerHandlers(scheduler *trigger.CronScheduler, log *logger.Logger) *TriggerHandlers {
	return &TriggerHandlers{
		scheduler: scheduler,
		logger:    log,
	}
}

// HandleCreateTrigger handles POST /api/v1/triggers.
func (h *TriggerHandlers) HandleCreateTrigger(c *gin.Context) {
	var req struct {
		WorkflowID string         `json:"workflow_id" binding:"required"`
		Spec       string         `json:"spec" binding:"required"`
		Input      map[string]any `json:"input,omitempty"`
		UseCache   bool           `json:"use_cache,omitempty"`
	}

	if err := bindJSON(c, &req); err != nil {
		return
	}

	id, err := h.scheduler.Add(trigger.CronTrigger{
		WorkflowID: req.WorkflowID,
		Spec:       req.Spec,
		Input:      req.Input,
		UseCache:   req.UseCache,
	})
	if err != nil {
		respondAPIError(c, NewAPIError("BAD_CRON_SPEC", err.Error(), http.StatusBadRequest))
		return
	}

	respondJSON(c, http.StatusCreated, gin.H{"trigger_id": id})
}

// HandleDeleteTrigger handles DELETE /api/v1/triggers/:trigger_id.
func (h *TriggerHandlers) HandleDeleteTrigger(c *gin.Context) {
	h.scheduler.Remove(c.Param("trigger_id"))
	c.Status(http.StatusNoContent)
}
