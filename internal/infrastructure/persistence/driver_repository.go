package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/fleetops/backend/internal/domain/fleet"
	"github.com/fleetops/backend/internal/domain/shared"
)

// driverRepository implements fleet.DriverRepository using GORM. Tenant
// filtering is applied by the tenantctx callbacks and the store's row
// policies; queries here never name a tenant.
type driverRepository struct {
	db *gorm.DB
}

func newDriverRepository(db *gorm.DB) fleet.DriverRepository {
	return &driverRepository{db: db}
}

func (r *driverRepository) FindByID(ctx context.Context, id uuid.UUID) (*fleet.Driver, error) {
	var driver fleet.Driver
	err := r.db.WithContext(ctx).First(&driver, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError("Driver not found")
		}
		return nil, err
	}
	return &driver, nil
}

func (r *driverRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*fleet.Driver, error) {
	tx := r.db.WithContext(ctx)
	// SQLite has no row locks; its writers serialize on the database.
	if r.db.Dialector.Name() == "postgres" {
		tx = tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var driver fleet.Driver
	err := tx.First(&driver, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError("Driver not found")
		}
		return nil, err
	}
	return &driver, nil
}

func (r *driverRepository) FindAll(ctx context.Context, filter shared.Filter) ([]fleet.Driver, error) {
	var drivers []fleet.Driver
	err := r.db.WithContext(ctx).
		Order(filter.OrderClause("created_at DESC")).
		Offset(filter.Offset()).
		Limit(filter.Limit()).
		Find(&drivers).Error
	if err != nil {
		return nil, err
	}
	return drivers, nil
}

func (r *driverRepository) Save(ctx context.Context, driver *fleet.Driver) error {
	return r.db.WithContext(ctx).Save(driver).Error
}

func (r *driverRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&fleet.Driver{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewNotFoundError("Driver not found")
	}
	return nil
}

func (r *driverRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&fleet.Driver{}).Count(&count).Error
	return count, err
}
