// api/util/http_util.go
package util

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	logger "github.com/fintrack-app/api/logging"
)

// RespondWithError writes the standard denial body {"message": ..., "errors"?: ...}
// and logs the underlying cause.
func RespondWithError(c *gin.Context, code int, message string, err error) {
	logger.Error(message,
		zap.Error(err),
		zap.String("path", c.Request.URL.Path),
		zap.String("method", c.Request.Method))
	c.JSON(code, gin.H{"message": message})
}

// RespondWithDetails is RespondWithError with a structured errors object
// attached, e.g. field-level validation failures or the required permission.
func RespondWithDetails(c *gin.Context, code int, message string, details map[string]interface{}) {
	c.JSON(code, gin.H{"message": message, "errors": details})
}

// GetUserIDFromContext returns the authenticated user ID placed in the gin
// context by the governor, or "" when unauthenticated.
func GetUserIDFromContext(c *gin.Context) string {
	userID, exists := c.Get("userID")
	if !exists {
		return ""
	}
	id, _ := userID.(string)
	return id
}
