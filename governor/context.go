// api/governor/context.go
package governor

import (
	"github.com/gin-gonic/gin"

	"github.com/fintrack-app/api/ability"
	"github.com/fintrack-app/api/cache"
	"github.com/fintrack-app/api/model"
	"github.com/fintrack-app/api/ratelimit"
)

// RouteSpec declares what a governed route requires. The zero value of a
// field means "not applicable": no resource, no ownership check, no cache,
// default limiter class.
type RouteSpec struct {
	Action         ability.Action
	Subject        ability.Subject
	Resource       model.Resource  // resource the route reads or mutates
	Ownership      bool            // /:id routes: load the instance, verify owner
	CacheNamespace cache.Namespace // GET routes only; "" disables caching
	LimiterClass   ratelimit.Class // zero value falls back to the default class
}

// RequestContext is the shared value the pipeline stages read and write.
// Each stage fills in what the later stages depend on.
type RequestContext struct {
	C    *gin.Context
	Spec RouteSpec

	UserID   string
	Identity model.Identity
	Plan     *model.Plan
	Ability  *ability.Ability
	Instance *model.OwnedRecord
	CacheKey string
}

// Outcome is a stage's verdict: continue down the pipeline, or short-circuit
// with a final response. No stage after a short-circuit executes.
type Outcome struct {
	halt    bool
	status  int
	message string
	details map[string]interface{}
	payload string // raw JSON served verbatim (cache hit)
	outcome string // audit outcome label, "" for plain denials
}

// Continue lets the pipeline advance to the next stage.
func Continue() Outcome {
	return Outcome{}
}

// ShortCircuit ends the pipeline with a denial response.
func ShortCircuit(status int, message string) Outcome {
	return Outcome{halt: true, status: status, message: message}
}

// ShortCircuitDetails attaches a structured errors object to the denial.
func ShortCircuitDetails(status int, message string, details map[string]interface{}) Outcome {
	return Outcome{halt: true, status: status, message: message, details: details}
}

// ServePayload ends the pipeline by serving a stored response body.
func ServePayload(payload string) Outcome {
	return Outcome{halt: true, status: 200, payload: payload}
}

func (o Outcome) withAudit(outcome string) Outcome {
	o.outcome = outcome
	return o
}
