package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hortifruti/backend/internal/infrastructure/telemetry"
)

// HTTPMetrics records request count, latency and in-flight requests.
// Requests that match no route are labelled "unmatched" to keep the path
// label bounded.
func HTTPMetrics(m *telemetry.Metrics) gin.HandlerFunc {
	if m == nil {
		return func(c *gin.Context) { c.Next() }
	}

	return func(c *gin.Context) {
		start := time.Now()
		m.IncInFlight()
		defer m.DecInFlight()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.RecordHTTPRequest(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}
