// api/quota/enforcer.go
package quota

import (
	"context"
	"fmt"

	"github.com/fintrack-app/api/model"
)

// Counter exposes the authoritative per-user resource count. Implementations
// must hit the store on every call; the enforcer never memoizes counts.
type Counter interface {
	CountOwnedBy(ctx context.Context, userID string, resource model.Resource) (uint, error)
}

// CanCreate decides whether one more instance of a resource may be created
// under the identity's plan. The count must have been fetched from the
// authoritative store immediately before this call.
//
// The check and the subsequent create are two separate store operations, so
// N concurrent creates can all pass before any commits and overshoot the
// ceiling by up to N-1. The limit is soft; see the repository design notes.
func CanCreate(identity model.Identity, plan *model.Plan, resource model.Resource, currentCount uint) bool {
	if identity.IsAdmin() {
		return true
	}
	switch limit := plan.Limit(resource); limit.Kind {
	case model.LimitUnlimited:
		return true
	case model.LimitLimited:
		return currentCount < limit.Max
	default:
		return false
	}
}

// ExceededMessage is the client-facing text for a rejected create; it names
// the resource and its plan ceiling and nothing else.
func ExceededMessage(plan *model.Plan, resource model.Resource) string {
	limit := plan.Limit(resource)
	if limit.Kind == model.LimitLimited {
		return fmt.Sprintf("plan limit reached: at most %d %s allowed", limit.Max, resource)
	}
	return fmt.Sprintf("your plan does not include %s", resource)
}
