// api/dao/identity_dao.go
package dao

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	fintrack_errors "github.com/fintrack-app/api/errors"
	"github.com/fintrack-app/api/model"
)

// IdentityDAO is the authoritative read side the governance layer depends
// on: identity+plan lookup, per-user resource counts, and ownership probes.
// It implements governor.IdentityStore, governor.InstanceLoader and
// quota.Counter.
type IdentityDAO struct {
	db *sqlx.DB
}

func NewIdentityDAO(db *sqlx.DB) *IdentityDAO {
	return &IdentityDAO{db: db}
}

type identityRow struct {
	UserID   string `db:"user_id"`
	Role     string `db:"role"`
	PlanID   string `db:"plan_id"`
	PlanTier string `db:"plan_tier"`
	Features []byte `db:"features"`
}

// GetIdentity loads the user's role and plan and parses the plan's feature
// blob exactly once. A user without a plan row gets a nil plan, which the
// ability builder treats as everything-disabled.
func (d *IdentityDAO) GetIdentity(ctx context.Context, userID string) (model.Identity, *model.Plan, error) {
	const query = `
		SELECT u.id AS user_id, u.role, COALESCE(u.plan_id, '') AS plan_id,
		       COALESCE(p.tier, '') AS plan_tier, COALESCE(p.features, '{}') AS features
		FROM users u
		LEFT JOIN plans p ON p.id = u.plan_id
		WHERE u.id = $1`

	var row identityRow
	if err := d.db.GetContext(ctx, &row, query, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Identity{}, nil, fintrack_errors.ErrUserNotFound
		}
		return model.Identity{}, nil, fmt.Errorf("failed to load identity %s: %w", userID, err)
	}

	identity := model.Identity{
		UserID: row.UserID,
		Role:   model.Role(row.Role),
		PlanID: row.PlanID,
	}
	if row.PlanID == "" {
		return identity, nil, nil
	}

	features, reports, err := model.ParsePlanFeatures(row.Features)
	if err != nil {
		return model.Identity{}, nil, fmt.Errorf("plan %s: %w", row.PlanID, err)
	}
	plan := &model.Plan{
		ID:       row.PlanID,
		Tier:     row.PlanTier,
		Features: features,
		Reports:  reports,
	}
	return identity, plan, nil
}

// CountOwnedBy returns the live number of rows the user owns for a resource.
// Called immediately before every quota check; never cached.
func (d *IdentityDAO) CountOwnedBy(ctx context.Context, userID string, resource model.Resource) (uint, error) {
	table, err := tableFor(resource)
	if err != nil {
		return 0, err
	}
	var count uint
	query := fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE owner_id = $1", table)
	if err := d.db.GetContext(ctx, &count, query, userID); err != nil {
		return 0, fmt.Errorf("failed to count %s for %s: %w", resource, userID, err)
	}
	return count, nil
}

// LoadOwned fetches the governance projection of a /:id target.
func (d *IdentityDAO) LoadOwned(ctx context.Context, resource model.Resource, id string) (*model.OwnedRecord, error) {
	table, err := tableFor(resource)
	if err != nil {
		return nil, err
	}
	var record model.OwnedRecord
	query := fmt.Sprintf(
		"SELECT id, owner_id, name, data, created_at, updated_at FROM %s WHERE id = $1", table)
	if err := d.db.GetContext(ctx, &record, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fintrack_errors.ErrResourceNotFound
		}
		return nil, fmt.Errorf("failed to load %s %s: %w", resource, id, err)
	}
	return &record, nil
}

// GetUser loads the full profile row for /users/me.
func (d *IdentityDAO) GetUser(ctx context.Context, userID string) (*model.User, error) {
	const query = `
		SELECT id, name, email, role, COALESCE(plan_id, '') AS plan_id, created_at, updated_at
		FROM users WHERE id = $1`
	var user model.User
	if err := d.db.GetContext(ctx, &user, query, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fintrack_errors.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to load user %s: %w", userID, err)
	}
	return &user, nil
}

// LookupByEmail resolves a login email to a user ID and password hash for
// the token endpoint. Hash comparison happens in the auth layer.
func (d *IdentityDAO) LookupByEmail(ctx context.Context, email string) (string, string, error) {
	var row struct {
		ID           string `db:"id"`
		PasswordHash string `db:"password_hash"`
	}
	const query = `SELECT id, password_hash FROM users WHERE email = $1`
	if err := d.db.GetContext(ctx, &row, query, email); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", "", fintrack_errors.ErrInvalidCredential
		}
		return "", "", fmt.Errorf("failed to look up %s: %w", email, err)
	}
	return row.ID, row.PasswordHash, nil
}

// tableFor whitelists the tables the DAO will touch. Resource names come
// from route specs, never from request input.
func tableFor(resource model.Resource) (string, error) {
	switch resource {
	case model.ResourceCategories:
		return "categories", nil
	case model.ResourceAccounts:
		return "accounts", nil
	case model.ResourceCreditCards:
		return "credit_cards", nil
	case model.ResourceEntries:
		return "entries", nil
	}
	return "", fintrack_errors.ErrInvalidResource
}
