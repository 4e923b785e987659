package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/shravanbharathiv-jpg/decisionclarity-ai-sub000/internal/observability"
)

// Metrics records request counts and latency by route template.
func Metrics(m *observability.HTTPMetrics) gin.HandlerFunc {
	if m == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return func(c *gin.Context) {
		start := time.Now()
		ctx := c.Request.Context()
		m.InflightAdd(ctx, 1)
		defer m.InflightAdd(ctx, -1)

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unknown"
		}
		m.ObserveRequest(ctx, c.Request.Method, route, strconv.Itoa(c.Writer.Status()), time.Since(start))
	}
}
