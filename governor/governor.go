// api/governor/governor.go
package governor

import (
	"bytes"
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/fintrack-app/api/ability"
	"github.com/fintrack-app/api/audit"
	"github.com/fintrack-app/api/cache"
	"github.com/fintrack-app/api/quota"
	"github.com/fintrack-app/api/ratelimit"
	"github.com/fintrack-app/api/util"
)

// TokenVerifier abstracts the bearer-token check of the Authenticate stage.
type TokenVerifier interface {
	Verify(authorization string) (string, error)
}

// Governor composes authentication, ability resolution, ownership, caching,
// rate limiting, and quota enforcement into one ordered pipeline per route.
// It is constructed once at process start; nothing here is reached through
// ambient globals.
type Governor struct {
	tokens     TokenVerifier
	identities IdentityStore
	instances  InstanceLoader
	counter    quota.Counter
	cache      *cache.Gateway
	limiter    *ratelimit.Limiter
	bus        *util.EventBus
}

func New(
	tokens TokenVerifier,
	identities IdentityStore,
	instances InstanceLoader,
	counter quota.Counter,
	cacheGateway *cache.Gateway,
	limiter *ratelimit.Limiter,
	bus *util.EventBus,
) *Governor {
	return &Governor{
		tokens:     tokens,
		identities: identities,
		instances:  instances,
		counter:    counter,
		cache:      cacheGateway,
		limiter:    limiter,
		bus:        bus,
	}
}

// pipeline assembles the ordered stage list for a route. The order is the
// contract: Authenticate, LoadAbilities, RequirePermission, RequireOwnership
// (/:id routes), CacheLookup (cacheable GETs), RateLimit, QuotaCheck (gated
// creates). The domain handler and PostSuccess follow in Govern.
func (g *Governor) pipeline(spec RouteSpec) []Stage {
	stages := []Stage{
		{Name: "Authenticate", Run: g.authenticate},
		{Name: "LoadAbilities", Run: g.loadAbilities},
		{Name: "RequirePermission", Run: g.requirePermission},
	}
	if spec.Ownership {
		stages = append(stages, Stage{Name: "RequireOwnership", Run: g.requireOwnership})
	}
	if spec.CacheNamespace != "" {
		stages = append(stages, Stage{Name: "CacheLookup", Run: g.cacheLookup})
	}
	stages = append(stages, Stage{Name: "RateLimit", Run: g.rateLimit})
	if spec.Action == ability.ActionCreate && spec.Resource.Gated() {
		stages = append(stages, Stage{Name: "QuotaCheck", Run: g.quotaCheck})
	}
	return stages
}

// Govern returns the gin handler that runs the pipeline in front of the
// route's domain handler. A short-circuiting stage writes the final response
// and nothing after it executes.
func (g *Governor) Govern(spec RouteSpec) gin.HandlerFunc {
	stages := g.pipeline(spec)
	return func(c *gin.Context) {
		rc := &RequestContext{C: c, Spec: spec}

		for _, stage := range stages {
			out := stage.Run(rc)
			if !out.halt {
				continue
			}
			g.finish(rc, out)
			return
		}

		var capture *bodyCapture
		if rc.CacheKey != "" {
			capture = newBodyCapture(c.Writer)
			c.Writer = capture
		}

		c.Next()

		status := c.Writer.Status()
		if status >= 200 && status < 300 {
			g.postSuccess(rc, capture)
		}
	}
}

// finish writes a short-circuit response and records the decision.
func (g *Governor) finish(rc *RequestContext, out Outcome) {
	if out.payload != "" {
		rc.C.Data(http.StatusOK, "application/json; charset=utf-8", []byte(out.payload))
		rc.C.Abort()
		return
	}

	body := gin.H{"message": out.message}
	if len(out.details) > 0 {
		body["errors"] = out.details
	}
	rc.C.JSON(out.status, body)
	rc.C.Abort()

	if out.outcome != "" {
		g.publishDecision(rc, out.outcome, out.message)
	}
}

// postSuccess runs after a 2xx from the domain handler: populate the cache
// entry recorded on the miss path, and invalidate on mutation.
func (g *Governor) postSuccess(rc *RequestContext, capture *bodyCapture) {
	// The client may already be gone; cache maintenance still has to happen.
	ctx := context.Background()

	if rc.CacheKey != "" && capture != nil && capture.body.Len() > 0 {
		g.cache.Store(ctx, rc.Spec.CacheNamespace, rc.CacheKey, capture.body.String())
	}

	if isMutating(rc.C.Request.Method) && rc.Spec.Resource != "" {
		g.cache.Invalidate(ctx, rc.Spec.Resource, rc.UserID)
		g.publishDecision(rc, audit.OutcomeMutated, "")
	}
}

func (g *Governor) publishDecision(rc *RequestContext, outcome, reason string) {
	if g.bus == nil {
		return
	}
	g.bus.Publish(context.Background(), eventFor(outcome), audit.DecisionLog{
		Timestamp: time.Now(),
		RequestID: rc.C.Writer.Header().Get("X-Request-ID"),
		UserID:    rc.UserID,
		Method:    rc.C.Request.Method,
		Path:      rc.C.Request.URL.Path,
		Action:    string(rc.Spec.Action),
		Subject:   string(rc.Spec.Subject),
		Outcome:   outcome,
		Reason:    reason,
	})
}

func eventFor(outcome string) string {
	switch outcome {
	case audit.OutcomeQuota:
		return util.EventQuotaRejected
	case audit.OutcomeRateLimited:
		return util.EventRateLimitTripped
	case audit.OutcomeMutated:
		return util.EventResourceMutated
	default:
		return util.EventRequestDenied
	}
}

func isMutating(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}

// bodyCapture tees the response body so a cache-miss GET can be stored after
// the handler writes it.
type bodyCapture struct {
	gin.ResponseWriter
	body bytes.Buffer
}

func newBodyCapture(w gin.ResponseWriter) *bodyCapture {
	return &bodyCapture{ResponseWriter: w}
}

func (w *bodyCapture) Write(data []byte) (int, error) {
	w.body.Write(data)
	return w.ResponseWriter.Write(data)
}

func (w *bodyCapture) WriteString(data string) (int, error) {
	w.body.WriteString(data)
	return w.ResponseWriter.WriteString(data)
}
