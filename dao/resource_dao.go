// api/dao/resource_dao.go
package dao

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	fintrack_errors "github.com/fintrack-app/api/errors"
	"github.com/fintrack-app/api/model"
)

// ResourceDAO is the thin CRUD store behind the governed routes. The
// governance layer never looks inside these rows beyond id and owner.
type ResourceDAO struct {
	db *sqlx.DB
}

func NewResourceDAO(db *sqlx.DB) *ResourceDAO {
	return &ResourceDAO{db: db}
}

func (d *ResourceDAO) List(ctx context.Context, resource model.Resource, ownerID string) ([]model.OwnedRecord, error) {
	table, err := tableFor(resource)
	if err != nil {
		return nil, err
	}
	records := []model.OwnedRecord{}
	query := fmt.Sprintf(
		"SELECT id, owner_id, name, data, created_at, updated_at FROM %s WHERE owner_id = $1 ORDER BY created_at", table)
	if err := d.db.SelectContext(ctx, &records, query, ownerID); err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", resource, err)
	}
	return records, nil
}

func (d *ResourceDAO) Create(ctx context.Context, resource model.Resource, record model.OwnedRecord) (*model.OwnedRecord, error) {
	table, err := tableFor(resource)
	if err != nil {
		return nil, err
	}
	record.ID = uuid.NewString()
	now := time.Now().UTC()
	record.CreatedAt = now
	record.UpdatedAt = now
	if record.Data == nil {
		record.Data = []byte("{}")
	}
	query := fmt.Sprintf(
		"INSERT INTO %s (id, owner_id, name, data, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6)", table)
	if _, err := d.db.ExecContext(ctx, query,
		record.ID, record.OwnerID, record.Name, record.Data, record.CreatedAt, record.UpdatedAt); err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", resource, err)
	}
	return &record, nil
}

func (d *ResourceDAO) Update(ctx context.Context, resource model.Resource, record model.OwnedRecord) (*model.OwnedRecord, error) {
	table, err := tableFor(resource)
	if err != nil {
		return nil, err
	}
	record.UpdatedAt = time.Now().UTC()
	query := fmt.Sprintf(
		"UPDATE %s SET name = $1, data = $2, updated_at = $3 WHERE id = $4", table)
	result, err := d.db.ExecContext(ctx, query, record.Name, record.Data, record.UpdatedAt, record.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to update %s %s: %w", resource, record.ID, err)
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return nil, fintrack_errors.ErrResourceNotFound
	}
	return &record, nil
}

func (d *ResourceDAO) Delete(ctx context.Context, resource model.Resource, id string) error {
	table, err := tableFor(resource)
	if err != nil {
		return err
	}
	query := fmt.Sprintf("DELETE FROM %s WHERE id = $1", table)
	result, err := d.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete %s %s: %w", resource, id, err)
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return fintrack_errors.ErrResourceNotFound
	}
	return nil
}

// Balance sums the entry amounts attached to an account.
func (d *ResourceDAO) Balance(ctx context.Context, accountID string) (float64, error) {
	var balance sql.NullFloat64
	const query = `SELECT SUM((data->>'amount')::numeric) FROM entries WHERE data->>'account_id' = $1`
	if err := d.db.GetContext(ctx, &balance, query, accountID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to compute balance for %s: %w", accountID, err)
	}
	return balance.Float64, nil
}
