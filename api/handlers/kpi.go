package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/OldStager01/sdn-telemetry/internal/resilience"
	"github.com/OldStager01/sdn-telemetry/pkg/models"
	"github.com/OldStager01/sdn-telemetry/pkg/validation"
)

type KPIService interface {
	StatsByCategory(ctx context.Context) ([]models.CategoryStats, error)
	FilterOptions(ctx context.Context) (*models.FilterOptions, error)
	RawSamples(ctx context.Context, limit int) ([]models.RawFlowPoint, error)
}

type KPIHandler struct {
	service  KPIService
	breaker  *resilience.CircuitBreaker
	rawLimit int
}

func NewKPIHandler(service KPIService, breaker *resilience.CircuitBreaker, rawLimit int) *KPIHandler {
	return &KPIHandler{service: service, breaker: breaker, rawLimit: rawLimit}
}

// StatsByCategory handles GET /api/kpi/stats-by-category.
func (h *KPIHandler) StatsByCategory(c *gin.Context) {
	stats, err := resilience.Guard(c.Request.Context(), h.breaker, h.service.StatsByCategory)
	if err != nil {
		respondError(c, "stats by category", err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// FilterOptions handles GET /api/filter-options.
func (h *KPIHandler) FilterOptions(c *gin.Context) {
	opts, err := resilience.Guard(c.Request.Context(), h.breaker, h.service.FilterOptions)
	if err != nil {
		respondError(c, "filter options", err)
		return
	}
	c.JSON(http.StatusOK, opts)
}

// FlowStats handles GET /flowstats, a raw listing for debugging collectors.
func (h *KPIHandler) FlowStats(c *gin.Context) {
	limit := h.rawLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be an integer"})
			return
		}
		limit = validation.ClampLimit(n, h.rawLimit, 10*h.rawLimit)
	}

	rows, err := resilience.Guard(c.Request.Context(), h.breaker, func(ctx context.Context) ([]models.RawFlowPoint, error) {
		return h.service.RawSamples(ctx, limit)
	})
	if err != nil {
		respondError(c, "flow stats", err)
		return
	}
	c.JSON(http.StatusOK, rows)
}
