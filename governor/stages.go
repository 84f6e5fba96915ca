// api/governor/stages.go
package governor

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/fintrack-app/api/ability"
	"github.com/fintrack-app/api/audit"
	fintrack_errors "github.com/fintrack-app/api/errors"
	logger "github.com/fintrack-app/api/logging"
	"github.com/fintrack-app/api/metrics"
	"github.com/fintrack-app/api/model"
	"github.com/fintrack-app/api/quota"
	"github.com/fintrack-app/api/ratelimit"
)

// Stage is one step of the governed pipeline. Stages run strictly in order;
// the first short-circuit ends the request.
type Stage struct {
	Name string
	Run  func(rc *RequestContext) Outcome
}

// authenticate verifies the bearer token and records the caller's user ID.
func (g *Governor) authenticate(rc *RequestContext) Outcome {
	userID, err := g.tokens.Verify(rc.C.GetHeader("Authorization"))
	if err != nil {
		// Token errors are surfaced verbatim: missing, invalid, expired.
		return ShortCircuit(http.StatusUnauthorized, err.Error())
	}
	rc.UserID = userID
	rc.C.Set("userID", userID)
	return Continue()
}

// loadAbilities fetches identity and plan from the authoritative store and
// builds the capability set.
func (g *Governor) loadAbilities(rc *RequestContext) Outcome {
	if rc.UserID == "" {
		// Defensive: authenticate always runs first.
		return ShortCircuit(http.StatusUnauthorized, fintrack_errors.ErrMissingToken.Error())
	}
	identity, plan, err := g.identities.GetIdentity(rc.C.Request.Context(), rc.UserID)
	if err != nil {
		if errors.Is(err, fintrack_errors.ErrUserNotFound) {
			return ShortCircuit(http.StatusNotFound, fintrack_errors.ErrUserNotFound.Error())
		}
		logger.Error("Failed to load identity",
			zap.String("stage", "LoadAbilities"),
			zap.String("userID", rc.UserID),
			zap.Error(err))
		// Backend failure: generic message, details stay in the log.
		return ShortCircuit(http.StatusInternalServerError, "internal server error")
	}
	rc.Identity = identity
	rc.Plan = plan
	rc.Ability = ability.Build(identity, plan)
	return Continue()
}

// requirePermission runs the class-level ability check for the route.
func (g *Governor) requirePermission(rc *RequestContext) Outcome {
	if rc.Ability.Can(rc.Spec.Action, rc.Spec.Subject) {
		return Continue()
	}
	metrics.PermissionDenials.WithLabelValues(string(rc.Spec.Subject)).Inc()
	// The body names the required permission and the caller's own role and
	// tier, never another user's data.
	details := map[string]interface{}{
		"required": map[string]string{
			"action":  string(rc.Spec.Action),
			"subject": string(rc.Spec.Subject),
		},
		"role": string(rc.Identity.Role),
	}
	if rc.Plan != nil {
		details["plan"] = rc.Plan.Tier
	}
	return ShortCircuitDetails(http.StatusForbidden, "you are not allowed to perform this action", details).
		withAudit(audit.OutcomeDenied)
}

// requireOwnership loads the /:id target and verifies the caller may touch
// this particular instance.
func (g *Governor) requireOwnership(rc *RequestContext) Outcome {
	id := rc.C.Param("id")
	instance, err := g.instances.LoadOwned(rc.C.Request.Context(), rc.Spec.Resource, id)
	if err != nil {
		if errors.Is(err, fintrack_errors.ErrResourceNotFound) {
			return ShortCircuit(http.StatusNotFound, fintrack_errors.ErrResourceNotFound.Error())
		}
		logger.Error("Failed to load resource instance",
			zap.String("stage", "RequireOwnership"),
			zap.String("resource", string(rc.Spec.Resource)),
			zap.String("id", id),
			zap.Error(err))
		return ShortCircuit(http.StatusInternalServerError, "internal server error")
	}
	if !rc.Ability.CanInstance(rc.Spec.Action, rc.Spec.Subject, instance.OwnerID) {
		metrics.PermissionDenials.WithLabelValues(string(rc.Spec.Subject)).Inc()
		return ShortCircuit(http.StatusForbidden, "you are not allowed to access this resource").
			withAudit(audit.OutcomeDenied)
	}
	rc.Instance = instance
	rc.C.Set("instance", instance)
	return Continue()
}

// cacheLookup serves GETs from the response cache when possible; on a miss
// it records the key so postSuccess can populate the entry.
func (g *Governor) cacheLookup(rc *RequestContext) Outcome {
	ns := rc.Spec.CacheNamespace
	key := g.cache.Key(ns, rc.C.Request.Method, rc.C.Request.URL.Path, rc.C.Request.URL.Query(), rc.UserID)
	rc.C.Header("X-Cache-Key", key)

	if payload, hit := g.cache.Lookup(rc.C.Request.Context(), key); hit {
		metrics.CacheLookups.WithLabelValues(string(ns), "hit").Inc()
		rc.C.Header("X-Cache", "HIT")
		return ServePayload(payload)
	}
	metrics.CacheLookups.WithLabelValues(string(ns), "miss").Inc()
	rc.C.Header("X-Cache", "MISS")
	rc.CacheKey = key
	return Continue()
}

// rateLimit checks the route's budget and the authenticated per-user budget.
// The rate headers go out on every response, allowed or not.
func (g *Governor) rateLimit(rc *RequestContext) Outcome {
	class := rc.Spec.LimiterClass
	if class.Name == "" {
		class = ratelimit.DefaultClass
	}
	class = ratelimit.Configured(class)

	result := g.limiter.Check(rc.C.Request.Context(), rc.UserID, class)
	setRateHeaders(rc, result)
	if !result.Allowed {
		metrics.RateLimitRejections.WithLabelValues(class.Name).Inc()
		return ShortCircuit(http.StatusTooManyRequests, "too many requests, slow down").
			withAudit(audit.OutcomeRateLimited)
	}

	perUser := ratelimit.Configured(ratelimit.PerUserClass)
	userResult := g.limiter.Check(rc.C.Request.Context(), rc.UserID, perUser)
	if !userResult.Allowed {
		setRateHeaders(rc, userResult)
		metrics.RateLimitRejections.WithLabelValues(perUser.Name).Inc()
		return ShortCircuit(http.StatusTooManyRequests, "too many requests, slow down").
			withAudit(audit.OutcomeRateLimited)
	}
	return Continue()
}

func setRateHeaders(rc *RequestContext, result ratelimit.Result) {
	rc.C.Header("X-RateLimit-Limit", strconv.Itoa(result.Limit))
	rc.C.Header("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
	rc.C.Header("X-RateLimit-Reset", result.ResetAt.UTC().Format(time.RFC3339))
}

// quotaCheck blocks a create that would exceed the plan ceiling. The count
// comes fresh from the authoritative store on every call; the check and the
// subsequent create are still two operations, so the ceiling is soft under
// concurrent creates.
func (g *Governor) quotaCheck(rc *RequestContext) Outcome {
	if rc.Identity.IsAdmin() {
		return Continue()
	}
	count, err := g.counter.CountOwnedBy(rc.C.Request.Context(), rc.UserID, rc.Spec.Resource)
	if err != nil {
		logger.Error("Failed to count owned resources",
			zap.String("stage", "QuotaCheck"),
			zap.String("resource", string(rc.Spec.Resource)),
			zap.Error(err))
		return ShortCircuit(http.StatusInternalServerError, "internal server error")
	}
	if quota.CanCreate(rc.Identity, rc.Plan, rc.Spec.Resource, count) {
		return Continue()
	}
	metrics.QuotaRejections.WithLabelValues(string(rc.Spec.Resource)).Inc()
	details := map[string]interface{}{"resource": string(rc.Spec.Resource)}
	if limit := rc.Plan.Limit(rc.Spec.Resource); limit.Kind == model.LimitLimited {
		details["max"] = limit.Max
	}
	return ShortCircuitDetails(http.StatusBadRequest, quota.ExceededMessage(rc.Plan, rc.Spec.Resource), details).
		withAudit(audit.OutcomeQuota)
}
