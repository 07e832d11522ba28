package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"

	appengine "github.com/dagflow-io/dagflow/internal/application/engine"
	"github.com/dagflow-io/dagflow/internal/application/importer"
	"github.com/dagflow-io/dagflow/internal/application/trigger"
	"github.com/dagflow-io/dagflow/internal/infrastructure/logger"
	"github.com/dagflow-io/dagflow/pkg/executor"
)

// RouterConfig bundles the services the router exposes. Scheduler may be
// nil to disable the trigger endpoints.
type RouterConfig struct {
	Workflows  *appengine.WorkflowService
	Executions *appengine.ExecutionManager
	Registry   *executor.Registry
	Scheduler  *trigger.CronScheduler
	Logger     *logger.Logger
}

// NewRouter builds the gin engine with all routes and middleware.
func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	log := cfg.Logger
	if log == nil {
		log = logger.Default()
	}

	router := gin.New()
	router.Use(RecoveryMiddleware(log))
	router.Use(LoggingMiddleware(log))

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	workflowHandlers := NewWorkflowHandlers(cfg.Workflows, cfg.Executions, log)
	executionHandlers := NewExecutionHandlers(cfg.Executions, log)
	nodeHandlers := NewNodeHandlers(cfg.Registry, cfg.Executions, log)
	importHandlers := NewImportHandlers(cfg.Workflows, importer.NewYAMLImporter(cfg.Registry), log)

	v1 := router.Group("/api/v1")
	{
		v1.POST("/workflows", workflowHandlers.HandleCreateWorkflow)
		v1.GET("/workflows", workflowHandlers.HandleListWorkflows)
		v1.POST("/workflows/import", importHandlers.HandleImportWorkflow)
		v1.GET("/workflows/:workflow_id", workflowHandlers.HandleGetWorkflow)
		v1.PUT("/workflows/:workflow_id", workflowHandlers.HandleUpdateWorkflow)
		v1.DELETE("/workflows/:workflow_id", workflowHandlers.HandleDeleteWorkflow)
		v1.POST("/workflows/:workflow_id/execute", workflowHandlers.HandleExecuteWorkflow)
		v1.GET("/workflows/:workflow_id/export", importHandlers.HandleExportWorkflow)

		v1.GET("/executions", executionHandlers.HandleListExecutions)
		v1.GET("/executions/:execution_id", executionHandlers.HandleGetExecution)
		v1.POST("/executions/:execution_id/cancel", executionHandlers.HandleCancelExecution)

		v1.GET("/nodes", nodeHandlers.HandleListKinds)
		v1.POST("/nodes/preview", nodeHandlers.HandlePreviewNode)

		if cfg.Scheduler != nil {
			triggerHandlers := NewTriggerHandlers(cfg.Scheduler, log)
			v1.POST("/triggers", triggerHandlers.HandleCreateTrigger)
			v1.DELETE("/triggers/:trigger_id", triggerHandlers.HandleDeleteTrigger)
		}
	}

	return router
}
