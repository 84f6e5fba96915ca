// api/middleware/rate_limiter.go

package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/fintrack-app/api/ratelimit"
)

// RateLimiter applies a limiter class outside the governed pipeline, keyed
// by client IP. Used for unauthenticated routes such as the token endpoint,
// where no identity exists yet.
func RateLimiter(limiter *ratelimit.Limiter, class ratelimit.Class) gin.HandlerFunc {
	class = ratelimit.Configured(class)
	return func(c *gin.Context) {
		result := limiter.Check(c.Request.Context(), c.ClientIP(), class)

		c.Header("X-RateLimit-Limit", strconv.Itoa(result.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
		c.Header("X-RateLimit-Reset", result.ResetAt.UTC().Format(time.RFC3339))

		if !result.Allowed {
			c.JSON(http.StatusTooManyRequests, gin.H{"message": "too many requests, slow down"})
			c.Abort()
			return
		}
		c.Next()
	}
}
