package store

import (
	"context"
	"fmt"
	"time"

	"compliancehq/internal/utils"
	"compliancehq/pkg/types"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgxpool"
)

const subcontractorTableName = "compliancehq.subcontractors"

var subcontractorColumns = utils.StructTagValues(types.Subcontractor{})

type SubcontractorRepository struct {
	pool *pgxpool.Pool
}

func NewSubcontractorRepository(pool *pgxpool.Pool) *SubcontractorRepository {
	return &SubcontractorRepository{pool: pool}
}

// Subcontractor retrieves a single row scoped by tenant.
func (r *SubcontractorRepository) Subcontractor(ctx context.Context, tenantID, id string) (*types.Subcontractor, error) {

	query, args, err := psql().Select(subcontractorColumns...).From(subcontractorTableName).
		Where(sq.Eq{"id": id, "tenant_id": tenantID}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate subcontractor query: %w", err)
	}

	var sub = new(types.Subcontractor)
	err = pgxscan.Get(ctx, r.pool, sub, query, args...)
	if err != nil && !pgxscan.NotFound(err) {
		return nil, err
	}

	if err != nil {
		return nil, types.ErrSubcontractorNotFound
	}

	return sub, nil
}

// SubcontractorsByTenant lists every row for the tenant, ordered by name.
func (r *SubcontractorRepository) SubcontractorsByTenant(ctx context.Context, tenantID string) ([]*types.Subcontractor, error) {

	query, args, err := psql().Select(subcontractorColumns...).From(subcontractorTableName).
		Where(sq.Eq{"tenant_id": tenantID}).
		OrderBy("name asc").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate subcontractor list query: %w", err)
	}

	var subs = make([]*types.Subcontractor, 0)
	err = pgxscan.Select(ctx, r.pool, &subs, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list subcontractors: %w", err)
	}

	return subs, nil
}

// NamesByTenant returns just the names for the tenant. The import loop
// uses this for its duplicate check.
func (r *SubcontractorRepository) NamesByTenant(ctx context.Context, tenantID string) ([]string, error) {

	query, args, err := psql().Select("name").From(subcontractorTableName).
		Where(sq.Eq{"tenant_id": tenantID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate names query: %w", err)
	}

	var names = make([]string, 0)
	err = pgxscan.Select(ctx, r.pool, &names, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list subcontractor names: %w", err)
	}

	return names, nil
}

func (r *SubcontractorRepository) CreateSubcontractor(ctx context.Context, sub *types.Subcontractor) error {

	now := time.Now()
	sub.ID = utils.NanoID()
	sub.CreatedAt = now
	sub.UpdatedAt = now

	subMap := utils.StructToMap(sub)

	query, args, err := psql().Insert(subcontractorTableName).SetMap(subMap).ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate insert subcontractor query: %w", err)
	}

	_, err = r.pool.Exec(ctx, query, args...)
	return utils.ErrorWrapOrNil(err, "failed to create subcontractor")

}

func (r *SubcontractorRepository) UpdateSubcontractor(ctx context.Context, sub *types.Subcontractor) error {

	sub.UpdatedAt = time.Now()

	subMap := utils.StructToMap(sub)

	query, args, err := psql().Update(subcontractorTableName).SetMap(subMap).
		Where(sq.Eq{"id": sub.ID, "tenant_id": sub.TenantID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate update subcontractor query for %s: %w", sub.ID, err)
	}

	_, err = r.pool.Exec(ctx, query, args...)

	return utils.ErrorWrapOrNil(err, "failed to update subcontractor")

}

func (r *SubcontractorRepository) DeleteSubcontractor(ctx context.Context, tenantID, id string) error {

	query, args, err := psql().Delete(subcontractorTableName).
		Where(sq.Eq{"id": id, "tenant_id": tenantID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate delete subcontractor query for %s: %w", id, err)
	}

	_, err = r.pool.Exec(ctx, query, args...)

	return utils.ErrorWrapOrNil(err, "failed to delete subcontractor")

}
