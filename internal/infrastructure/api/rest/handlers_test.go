package rest

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appengine "github.com/dagflow-io/dagflow/internal/application/engine"
	"github.com/dagflow-io/dagflow/internal/application/trigger"
	"github.com/dagflow-io/dagflow/internal/infrastructure/logger"
	"github.com/dagflow-io/dagflow/internal/infrastructure/storage"
	"github.com/dagflow-io/dagflow/pkg/cache"
	"github.com/dagflow-io/dagflow/pkg/engine"
	"github.com/dagflow-io/dagflow/pkg/executor"
	"github.com/dagflow-io/dagflow/pkg/executor/builtin"
)

func routerFixture(t *testing.T) *gin.Engine {
	t.Helper()

	store := storage.NewMemoryStore()
	registry := executor.NewRegistry()
	builtin.MustRegisterBuiltins(registry)

	log := logger.New(logger.Config{Level: "error", Format: "text"})
	manager := appengine.NewExecutionManager(store, registry, cache.NewMemoryCache(100), nil, engine.DefaultOptions(), log)
	service := appengine.NewWorkflowService(store, registry)

	return NewRouter(RouterConfig{
		Workflows:  service,
		Executions: manager,
		Registry:   registry,
		Scheduler:  trigger.NewCronScheduler(manager, log),
		Logger:     log,
	})
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func linearWorkflowRequest() map[string]any {
	return map[string]any{
		"name": "linear",
		"nodes": []map[string]any{
			{"id": "A", "kind": "literal", "config": map[string]any{"value": "hi"}},
			{"id": "B", "kind": "echo", "config": map[string]any{"prefix": "X-", "text": "{{A}}"}},
		},
		"edges": []map[string]any{
			{"source": "A", "target": "B"},
		},
	}
}

func TestAPI_WorkflowLifecycle(t *testing.T) {
	router := routerFixture(t)

	rec := doJSON(t, router, http.MethodPost, "/api/v1/workflows", linearWorkflowRequest())
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	workflowID := decode(t, rec)["id"].(string)
	require.NotEmpty(t, workflowID)

	rec = doJSON(t, router, http.MethodGet, "/api/v1/workflows/"+workflowID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "linear", decode(t, rec)["name"])

	rec = doJSON(t, router, http.MethodGet, "/api/v1/workflows", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodDelete, "/api/v1/workflows/"+workflowID, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/api/v1/workflows/"+workflowID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAPI_CreateWorkflow_CycleRejected(t *testing.T) {
	router := routerFixture(t)

	body := map[string]any{
		"name": "cyclic",
		"nodes": []map[string]any{
			{"id": "A", "kind": "literal", "config": map[string]any{"value": 1}},
			{"id": "B", "kind": "literal", "config": map[string]any{"value": 2}},
		},
		"edges": []map[string]any{
			{"source": "A", "target": "B"},
			{"source": "B", "target": "A"},
		},
	}

	rec := doJSON(t, router, http.MethodPost, "/api/v1/workflows", body)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), "cycle")
}

func TestAPI_ExecuteAndPoll(t *testing.T) {
	router := routerFixture(t)

	rec := doJSON(t, router, http.MethodPost, "/api/v1/workflows", linearWorkflowRequest())
	require.Equal(t, http.StatusCreated, rec.Code)
	workflowID := decode(t, rec)["id"].(string)

	rec = doJSON(t, router, http.MethodPost, "/api/v1/workflows/"+workflowID+"/execute",
		map[string]any{"input": map[string]any{}, "use_cache": false})
	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())
	executionID := decode(t, rec)["execution_id"].(string)
	require.NotEmpty(t, executionID)

	var execution map[string]any
	require.Eventually(t, func() bool {
		rec := doJSON(t, router, http.MethodGet, "/api/v1/executions/"+executionID, nil)
		if rec.Code != http.StatusOK {
			return false
		}
		execution = decode(t, rec)
		status := execution["status"].(string)
		return status == "success" || status == "failed" || status == "cancelled"
	}, 5*time.Second, 10*time.Millisecond)

	assert.Equal(t, "success", execution["status"])
	assert.Equal(t, "X-hi", execution["output"])

	nodeResults := execution["node_results"].(map[string]any)
	assert.Len(t, nodeResults, 2)
}

func TestAPI_ExecuteUnknownWorkflow(t *testing.T) {
	router := routerFixture(t)

	rec := doJSON(t, router, http.MethodPost, "/api/v1/workflows/ghost/execute", map[string]any{})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAPI_ListKinds(t *testing.T) {
	router := routerFixture(t)

	rec := doJSON(t, router, http.MethodGet, "/api/v1/nodes", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	kinds := decode(t, rec)["kinds"].([]any)
	assert.NotEmpty(t, kinds)
}

func TestAPI_PreviewNode(t *testing.T) {
	router := routerFixture(t)

	rec := doJSON(t, router, http.MethodPost, "/api/v1/nodes/preview", map[string]any{
		"kind":    "echo",
		"config":  map[string]any{"prefix": "p:", "text": "{{src}}"},
		"context": map[string]any{"src": "ctx"},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	result := decode(t, rec)
	assert.Equal(t, true, result["success"])
	assert.Equal(t, "p:ctx", result["output"])
}

func TestAPI_PreviewNode_UnknownKind(t *testing.T) {
	router := routerFixture(t)

	rec := doJSON(t, router, http.MethodPost, "/api/v1/nodes/preview", map[string]any{
		"kind": "teleport",
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAPI_ImportExportRoundtrip(t *testing.T) {
	router := routerFixture(t)

	doc := `
metadata:
  name: imported
nodes:
  - id: a
    kind: literal
    config:
      value: hello
`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/workflows/import", bytes.NewReader([]byte(doc)))
	req.Header.Set("Content-Type", "application/yaml")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	workflow := decode(t, rec)["workflow"].(map[string]any)
	workflowID := workflow["id"].(string)

	rec2 := doJSON(t, router, http.MethodGet, "/api/v1/workflows/"+workflowID+"/export", nil)
	require.Equal(t, http.StatusOK, rec2.Code)
	assert.Contains(t, rec2.Body.String(), "imported")
	assert.Contains(t, rec2.Body.String(), "literal")
}

func TestAPI_Triggers(t *testing.T) {
	router := routerFixture(t)

	rec := doJSON(t, router, http.MethodPost, "/api/v1/workflows", linearWorkflowRequest())
	require.Equal(t, http.StatusCreated, rec.Code)
	workflowID := decode(t, rec)["id"].(string)

	rec = doJSON(t, router, http.MethodPost, "/api/v1/triggers", map[string]any{
		"workflow_id": workflowID,
		"spec":        "@hourly",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	triggerID := decode(t, rec)["trigger_id"].(string)

	rec = doJSON(t, router, http.MethodDelete, "/api/v1/triggers/"+triggerID, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/api/v1/triggers", map[string]any{
		"workflow_id": workflowID,
		"spec":        "not-a-spec",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAPI_Healthz(t *testing.T) {
	router := routerFixture(t)

	rec := doJSON(t, router, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}
