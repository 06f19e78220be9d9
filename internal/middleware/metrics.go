package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"timetabler/internal/metrics"
)

// Metrics records request counts and latency per matched route.
func Metrics(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		m.RecordHTTP(c.Request.Method, c.FullPath(), c.Writer.Status(), time.Since(start))
	}
}
