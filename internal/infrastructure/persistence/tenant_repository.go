package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/fleetops/backend/internal/domain/fleet"
	"github.com/fleetops/backend/internal/domain/identity"
	"github.com/fleetops/backend/internal/domain/shared"
)

// tenantRepository implements identity.TenantRepository using GORM.
// The tenants table is not itself tenant-filtered; access control for it
// happens at the unit-of-work layer (platform scope only for mutation).
type tenantRepository struct {
	db *gorm.DB
}

func newTenantRepository(db *gorm.DB) identity.TenantRepository {
	return &tenantRepository{db: db}
}

func (r *tenantRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.Tenant, error) {
	var tenant identity.Tenant
	err := r.db.WithContext(ctx).First(&tenant, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError("Tenant not found")
		}
		return nil, err
	}
	return &tenant, nil
}

func (r *tenantRepository) FindByCode(ctx context.Context, code string) (*identity.Tenant, error) {
	var tenant identity.Tenant
	err := r.db.WithContext(ctx).First(&tenant, "code = ?", code).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError("Tenant not found")
		}
		return nil, err
	}
	return &tenant, nil
}

func (r *tenantRepository) FindAll(ctx context.Context, filter shared.Filter) ([]identity.Tenant, error) {
	var tenants []identity.Tenant
	err := r.db.WithContext(ctx).
		Order(filter.OrderClause("created_at DESC")).
		Offset(filter.Offset()).
		Limit(filter.Limit()).
		Find(&tenants).Error
	if err != nil {
		return nil, err
	}
	return tenants, nil
}

func (r *tenantRepository) FindAllActiveIDs(ctx context.Context) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&identity.Tenant{}).
		Where("status = ?", identity.TenantStatusActive).
		Order("created_at ASC").
		Pluck("id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *tenantRepository) Save(ctx context.Context, tenant *identity.Tenant) error {
	return r.db.WithContext(ctx).Save(tenant).Error
}

func (r *tenantRepository) CountDependents(ctx context.Context, id uuid.UUID) (identity.DependentCounts, error) {
	var counts identity.DependentCounts

	err := r.db.WithContext(ctx).
		Model(&fleet.Driver{}).
		Where("tenant_id = ?", id).
		Count(&counts.Drivers).Error
	if err != nil {
		return counts, err
	}

	err = r.db.WithContext(ctx).
		Model(&fleet.Vehicle{}).
		Where("tenant_id = ?", id).
		Count(&counts.Vehicles).Error
	if err != nil {
		return counts, err
	}

	return counts, nil
}

func (r *tenantRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&identity.Tenant{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewNotFoundError("Tenant not found")
	}
	return nil
}
