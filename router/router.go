// api/router/router.go

package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fintrack-app/api/controller"
	"github.com/fintrack-app/api/governor"
	"github.com/fintrack-app/api/metrics"
	"github.com/fintrack-app/api/middleware"
	"github.com/fintrack-app/api/ratelimit"
)

func SetupRouter(
	controllers *controller.Controllers,
	gov *governor.Governor,
	limiter *ratelimit.Limiter,
) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.ResponseTime())
	router.Use(middleware.Logger())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", metrics.Handler())

	// Token issuance has no identity yet, so it sits behind the IP-keyed
	// auth limiter class instead of the governed pipeline.
	authGroup := router.Group("/auth")
	authGroup.Use(middleware.RateLimiter(limiter, ratelimit.AuthClass))
	controllers.Auth.RegisterRoutes(authGroup)

	api := router.Group("/api/v1")

	controllers.Categories.RegisterRoutes(api, gov, "categories")
	controllers.Accounts.RegisterRoutes(api, gov, "accounts")
	controllers.CreditCards.RegisterRoutes(api, gov, "credit-cards")
	controllers.Entries.RegisterRoutes(api, gov, "entries")
	controllers.Users.RegisterRoutes(api, gov)
	controllers.Reports.RegisterRoutes(api, gov)

	return router
}
