package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// userIDKey is the key used to store the requesting user's ID in the Gin context.
const userIDKey = contextKey("userID")

// UserIdentityMiddleware reads the caller identity from the X-User-ID header
// and stores it in the context. Every data route requires it; there is no
// authentication layer in front of this service.
func UserIdentityMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetHeader("X-User-ID")
		if userID == "" {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "X-User-ID header is required"})
			return
		}
		c.Set(string(userIDKey), userID)
		c.Next()
	}
}

// GetUserIDFromContext retrieves the requesting user ID from the Gin context.
// It returns the user ID and a boolean indicating if it was found.
func GetUserIDFromContext(c *gin.Context) (string, bool) {
	userIDVal, exists := c.Get(string(userIDKey))
	if !exists {
		userIDVal = c.Request.Context().Value(userIDKey)
		if userIDVal == nil {
			return "", false
		}
	}

	userID, ok := userIDVal.(string)
	if !ok {
		return "", false
	}
	return userID, true
}
