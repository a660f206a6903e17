package middleware

import (
	"github.com/carecompanion/carecompanion-api/internal/utils"
	"github.com/gin-gonic/gin"
)

// UserIDHeader carries the user id asserted by the upstream gateway
const UserIDHeader = "X-User-ID"

// UserIdentity requires the X-User-ID header and stores it on the context
func UserIdentity() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetHeader(UserIDHeader)
		if userID == "" {
			utils.SendUnauthorizedError(c, "missing X-User-ID header")
			c.Abort()
			return
		}
		c.Set(utils.UserIDKey, userID)
		c.Next()
	}
}
