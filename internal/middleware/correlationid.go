package middleware

import (
	"github.com/carecompanion/carecompanion-api/internal/system/correlation"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

var correlationHeaders = []string{correlation.HeaderName, "X-Request-ID", "X-Trace-ID"}

// CorrelationID reads the caller's correlation id or creates one. The id is
// echoed in the response and carried on the request context, so outbound
// notification calls propagate it.
func CorrelationID() gin.HandlerFunc {
	return func(c *gin.Context) {
		correlationID := extractCorrelationID(c)
		if correlationID == "" {
			correlationID = uuid.New().String()
		}
		c.Set(correlation.GinKey, correlationID)
		c.Header(correlation.HeaderName, correlationID)
		c.Request = c.Request.WithContext(correlation.WithID(c.Request.Context(), correlationID))
		c.Next()
	}
}

func extractCorrelationID(c *gin.Context) string {
	for _, header := range correlationHeaders {
		if id := c.GetHeader(header); id != "" {
			return id
		}
	}
	return ""
}
