package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/OldStager01/sdn-telemetry/internal/logger"
	"github.com/OldStager01/sdn-telemetry/internal/resilience"
	"github.com/OldStager01/sdn-telemetry/pkg/models"
	"github.com/OldStager01/sdn-telemetry/pkg/validation"
)

type ForecastBuilder interface {
	Build(ctx context.Context, window time.Duration) (*models.ForecastView, error)
}

type ForecastHandler struct {
	builder      ForecastBuilder
	breaker      *resilience.CircuitBreaker
	defaultRange string
}

func NewForecastHandler(builder ForecastBuilder, breaker *resilience.CircuitBreaker, defaultRange string) *ForecastHandler {
	return &ForecastHandler{builder: builder, breaker: breaker, defaultRange: defaultRange}
}

// Data handles GET /api/forecast/data?range=10s|1m|5m|15m|30m|1h.
func (h *ForecastHandler) Data(c *gin.Context) {
	window, err := validation.ParseRange(c.Query("range"), h.defaultRange)
	if err != nil {
		respondError(c, "forecast data", err)
		return
	}

	view, err := resilience.Guard(c.Request.Context(), h.breaker, func(ctx context.Context) (*models.ForecastView, error) {
		return h.builder.Build(ctx, window)
	})
	if err != nil {
		respondError(c, "forecast data", err)
		return
	}

	logger.WithFields(map[string]interface{}{
		"trace_id": logger.TraceIDFromContext(c.Request.Context()),
		"range":    window.String(),
		"points":   len(view.Data),
	}).Debug("forecast chart built")

	c.JSON(http.StatusOK, view)
}
