package rest

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dagflow-io/dagflow/internal/infrastructure/logger"
)

// LoggingMiddleware logs each request with method, path, status and latency.
func LoggingMiddleware(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		log.Info("http request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency_ms", time.Since(start).Milliseconds(),
		)
	}
}

// RecoveryMiddleware converts panics into 500 responses.
func RecoveryMiddleware(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.Error("handler panicked", "path", c.Request.URL.Path, "panic", r)
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"error": NewAPIError("INTERNAL_ERROR", "internal error", http.StatusInternalServerError),
				})
			}
		}()

		c.Next()
	}
}
