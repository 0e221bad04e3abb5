package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/OldStager01/sdn-telemetry/api/middleware"
	"github.com/OldStager01/sdn-telemetry/internal/logger"
	"github.com/OldStager01/sdn-telemetry/pkg/models"
	"github.com/OldStager01/sdn-telemetry/pkg/validation"
)

// IntentHandler acknowledges operator intents. Nothing is applied to the
// network; the controller acts on its own forecasts.
type IntentHandler struct{}

func NewIntentHandler() *IntentHandler {
	return &IntentHandler{}
}

// Submit handles POST /api/forecast/generate-intent and POST /forecast/intent.
// The body is optional.
func (h *IntentHandler) Submit(c *gin.Context) {
	var req models.IntentRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	req.Target = validation.SanitizeString(req.Target)
	req.Reason = validation.SanitizeString(req.Reason)
	if err := validation.ValidateTarget(req.Target); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	logger.WithFields(map[string]interface{}{
		"trace_id": middleware.GetTraceID(c),
		"subject":  middleware.GetSubject(c),
		"action":   req.Action,
		"target":   req.Target,
		"reason":   req.Reason,
	}).Info("intent simulated")

	c.JSON(http.StatusOK, models.IntentResponse{Message: "Intent Simulated", Count: 1})
}
