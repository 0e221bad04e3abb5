package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/OldStager01/sdn-telemetry/internal/metrics"
)

// HTTPMetrics records request counts and latency per route template.
func HTTPMetrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		metrics.Get().ObserveRequest(c.Request.Method, path, c.Writer.Status(), time.Since(start))
	}
}
