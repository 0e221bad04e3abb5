package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/OldStager01/sdn-telemetry/internal/logger"
	"github.com/OldStager01/sdn-telemetry/internal/resilience"
	"github.com/OldStager01/sdn-telemetry/pkg/validation"
)

// respondError maps service errors onto status codes. Data store details are
// logged, never returned to the client.
func respondError(c *gin.Context, op string, err error) {
	ctx := c.Request.Context()

	switch {
	case errors.Is(err, validation.ErrInvalidRange), errors.Is(err, validation.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, resilience.ErrCircuitOpen):
		logger.WarnCtxf(ctx, "%s rejected: data store circuit open", op)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "data store unavailable"})
	case errors.Is(err, context.DeadlineExceeded):
		logger.ErrorCtxf(ctx, "%s timed out: %v", op, err)
		c.JSON(http.StatusGatewayTimeout, gin.H{"error": "data store timeout"})
	default:
		logger.ErrorCtxf(ctx, "%s failed: %v", op, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
	_ = c.Error(err)
}
