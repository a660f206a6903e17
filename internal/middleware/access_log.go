package middleware

import (
	"strconv"
	"time"

	"github.com/carecompanion/carecompanion-api/internal/metrics"
	"github.com/carecompanion/carecompanion-api/internal/system/correlation"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// AccessLog logs every request and observes its latency. Routes are labelled
// by their pattern so that ids do not inflate metric cardinality.
func AccessLog(logger *logrus.Logger, m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()
		m.RequestLatency.WithLabelValues(c.Request.Method, route, strconv.Itoa(status)).Observe(latency.Seconds())

		entry := logger.WithFields(logrus.Fields{
			"method":         c.Request.Method,
			"path":           route,
			"status":         status,
			"latency_ms":     latency.Milliseconds(),
			"correlation_id": c.GetString(correlation.GinKey),
		})

		switch {
		case status >= 500:
			entry.Error("Request failed")
		case status >= 400:
			entry.Warn("Request rejected")
		default:
			entry.Info("Request handled")
		}
	}
}
