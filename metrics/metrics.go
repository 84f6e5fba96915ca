// api/metrics/metrics.go
package metrics

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	CacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fintrack_cache_lookups_total",
		Help: "Response cache lookups by namespace and outcome (hit/miss).",
	}, []string{"namespace", "outcome"})

	RateLimitRejections = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fintrack_ratelimit_rejections_total",
		Help: "Requests rejected by the rate limiter, by class.",
	}, []string{"class"})

	PermissionDenials = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fintrack_permission_denials_total",
		Help: "Requests denied by the ability check, by subject.",
	}, []string{"subject"})

	QuotaRejections = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fintrack_quota_rejections_total",
		Help: "Creates rejected by plan quota, by resource.",
	}, []string{"resource"})
)

// Handler serves the prometheus scrape endpoint.
func Handler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
