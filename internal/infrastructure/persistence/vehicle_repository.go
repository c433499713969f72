package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/fleetops/backend/internal/domain/fleet"
	"github.com/fleetops/backend/internal/domain/shared"
)

type vehicleRepository struct {
	db *gorm.DB
}

func newVehicleRepository(db *gorm.DB) fleet.VehicleRepository {
	return &vehicleRepository{db: db}
}

func (r *vehicleRepository) FindByID(ctx context.Context, id uuid.UUID) (*fleet.Vehicle, error) {
	var vehicle fleet.Vehicle
	err := r.db.WithContext(ctx).First(&vehicle, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError("Vehicle not found")
		}
		return nil, err
	}
	return &vehicle, nil
}

func (r *vehicleRepository) FindByRegistration(ctx context.Context, registration string) (*fleet.Vehicle, error) {
	var vehicle fleet.Vehicle
	err := r.db.WithContext(ctx).First(&vehicle, "registration = ?", registration).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError("Vehicle not found")
		}
		return nil, err
	}
	return &vehicle, nil
}

func (r *vehicleRepository) FindAll(ctx context.Context, filter shared.Filter) ([]fleet.Vehicle, error) {
	var vehicles []fleet.Vehicle
	err := r.db.WithContext(ctx).
		Order(filter.OrderClause("created_at DESC")).
		Offset(filter.Offset()).
		Limit(filter.Limit()).
		Find(&vehicles).Error
	if err != nil {
		return nil, err
	}
	return vehicles, nil
}

func (r *vehicleRepository) Save(ctx context.Context, vehicle *fleet.Vehicle) error {
	return r.db.WithContext(ctx).Save(vehicle).Error
}

func (r *vehicleRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&fleet.Vehicle{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewNotFoundError("Vehicle not found")
	}
	return nil
}

func (r *vehicleRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&fleet.Vehicle{}).Count(&count).Error
	return count, err
}
