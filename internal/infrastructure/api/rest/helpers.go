// Package rest is the HTTP transport adapter over the engine.
package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// bindJSON binds the request body, responding with a 400 on failure.
func bindJSON(c *gin.Context, obj any) error {
	if err := c.ShouldBindJSON(obj); err != nil {
		respondAPIError(c, NewAPIError("BAD_REQUEST", "invalid request body: "+err.Error(), http.StatusBadRequest))
		return err
	}
	return nil
}

// respondJSON writes a JSON response.
func respondJSON(c *gin.Context, status int, obj any) {
	c.JSON(status, obj)
}

// respondAPIError writes an error response.
func respondAPIError(c *gin.Context, apiErr *APIError) {
	c.AbortWithStatusJSON(apiErr.Status, gin.H{"error": apiErr})
}
