package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/bravo68web/shipyard/internal/observability"
)

// MetricsMiddleware records request counts and latency labelled by route template
func MetricsMiddleware(metrics *observability.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metrics.ObserveRequest(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}
