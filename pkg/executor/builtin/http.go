package builtin

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/dagflow-io/dagflow/pkg/executor"
)

// HTTPExecutor performs HTTP requests. Effectful, so never cached.
type HTTPExecutor struct {
	*executor.BaseExecutor
	client *http.Client
}

// NewHTTPExecutor creates a new HTTP executor.
func NewHTTPExecutor() *HTTPExecutor {
	return &HTTPExecutor{
		BaseExecutor: executor.NewBaseExecutor("http"),
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Execute executes an HTTP request.
func (e *HTTPExecutor) Execute(ctx context.Context, config map[string]any, inputs map[string]any, rc *executor.RunContext) (any, error) {
	method := e.GetStringDefault(config, "method", http.MethodGet)

	url, err := e.GetString(config, "url")
	if err != nil {
		return nil, err
	}

	var body io.Reader
	if config["body"] != nil {
		var bodyData []byte

		switch v := config["body"].(type) {
		case string:
			bodyData = []byte(v)
		case []byte:
			bodyData = v
		default:
			bodyData, err = json.Marshal(v)
			if err != nil {
				return nil, fmt.Errorf("failed to marshal request body: %w", err)
			}
		}
		body = bytes.NewReader(bodyData)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if headers, err := e.GetMap(config, "headers"); err == nil {
		for key, value := range headers {
			if strVal, ok := value.(string); ok {
				req.Header.Set(key, strVal)
			}
		}
	}

	if req.Header.Get("Content-Type") == "" && body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(respBody))
	}

	var parsedBody any
	if len(respBody) > 0 {
		if err := json.Unmarshal(respBody, &parsedBody); err != nil {
			parsedBody = string(respBody)
		}
	}

	return map[string]any{
		"status":       resp.StatusCode,
		"content_type": resp.Header.Get("Content-Type"),
		"body":         parsedBody,
	}, nil
}

func httpDescriptor() executor.Descriptor {
	return executor.Descriptor{
		Kind: "http",
		New:  func() executor.Executor { return NewHTTPExecutor() },
		ConfigSchema: map[string]any{
			"type":     "object",
			"required": []any{"url"},
			"properties": map[string]any{
				"url":     map[string]any{"type": "string"},
				"method":  map[string]any{"type": "string"},
				"headers": map[string]any{"type": "object"},
				"body":    map[string]any{},
			},
		},
		OutputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"status":       map[string]any{"type": "integer"},
				"content_type": map[string]any{"type": "string"},
				"body":         map[string]any{},
			},
		},
		Metadata: executor.Metadata{
			Description: "Performs an HTTP request",
			Cacheable:   false,
		},
	}
}
