// api/governor/store.go
package governor

import (
	"context"

	"github.com/fintrack-app/api/model"
)

// IdentityStore is the authoritative identity/plan lookup. Implementations
// return errors.ErrUserNotFound when the verified user ID has no record.
type IdentityStore interface {
	GetIdentity(ctx context.Context, userID string) (model.Identity, *model.Plan, error)
}

// InstanceLoader fetches the target of a /resource/:id route so ownership
// can be verified before the handler runs. Implementations return
// errors.ErrResourceNotFound when the instance is absent.
type InstanceLoader interface {
	LoadOwned(ctx context.Context, resource model.Resource, id string) (*model.OwnedRecord, error)
}
