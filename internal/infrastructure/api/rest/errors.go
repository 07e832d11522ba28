package rest

import (
	"errors"
	"net/http"

	"github.com/dagflow-io/dagflow/pkg/models"
)

// APIError is the wire shape of an error response.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"-"`
}

// NewAPIError creates a new API error.
func NewAPIError(code, message string, status int) *APIError {
	return &APIError{Code: code, Message: message, Status: status}
}

// TranslateError maps domain errors onto API errors.
func TranslateError(err error) *APIError {
	var graphErr *models.GraphError
	if errors.As(err, &graphErr) {
		return NewAPIError("INVALID_GRAPH", graphErr.Error(), http.StatusUnprocessableEntity)
	}

	var validationErr *models.ValidationError
	if errors.As(err, &validationErr) {
		return NewAPIError("VALIDATION_FAILED", validationErr.Error(), http.StatusBadRequest)
	}

	switch {
	case errors.Is(err, models.ErrWorkflowNotFound):
		return NewAPIError("WORKFLOW_NOT_FOUND", err.Error(), http.StatusNotFound)
	case errors.Is(err, models.ErrExecutionNotFound):
		return NewAPIError("EXECUTION_NOT_FOUND", err.Error(), http.StatusNotFound)
	case errors.Is(err, models.ErrExecutorNotFound):
		return NewAPIError("UNKNOWN_KIND", err.Error(), http.StatusNotFound)
	case errors.Is(err, models.ErrVersionConflict):
		return NewAPIError("VERSION_CONFLICT", err.Error(), http.StatusConflict)
	case errors.Is(err, models.ErrWorkflowExists):
		return NewAPIError("WORKFLOW_EXISTS", err.Error(), http.StatusConflict)
	case errors.Is(err, models.ErrExecutionFinished):
		return NewAPIError("EXECUTION_FINISHED", err.Error(), http.StatusConflict)
	case errors.Is(err, models.ErrInvalidConfig):
		return NewAPIError("INVALID_CONFIG", err.Error(), http.StatusBadRequest)
	case errors.Is(err, models.ErrInvalidWorkflow):
		return NewAPIError("INVALID_WORKFLOW", err.Error(), http.StatusBadRequest)
	default:
		return NewAPIError("INTERNAL_ERROR", "internal error", http.StatusInternalServerError)
	}
}
