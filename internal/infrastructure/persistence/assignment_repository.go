package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/fleetops/backend/internal/domain/fleet"
	"github.com/fleetops/backend/internal/domain/shared"
)

type assignmentRepository struct {
	db *gorm.DB
}

func newAssignmentRepository(db *gorm.DB) fleet.AssignmentRepository {
	return &assignmentRepository{db: db}
}

func (r *assignmentRepository) FindByID(ctx context.Context, id uuid.UUID) (*fleet.Assignment, error) {
	var assignment fleet.Assignment
	err := r.db.WithContext(ctx).First(&assignment, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError("Assignment not found")
		}
		return nil, err
	}
	return &assignment, nil
}

func (r *assignmentRepository) FindOpenByVehicle(ctx context.Context, vehicleID uuid.UUID) (*fleet.Assignment, error) {
	var assignment fleet.Assignment
	err := r.db.WithContext(ctx).
		Where("vehicle_id = ? AND end_date IS NULL", vehicleID).
		First(&assignment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError("Vehicle has no current assignment")
		}
		return nil, err
	}
	return &assignment, nil
}

func (r *assignmentRepository) FindOpenPrimaryByDriver(ctx context.Context, driverID uuid.UUID) (*fleet.Assignment, error) {
	var assignment fleet.Assignment
	err := r.db.WithContext(ctx).
		Where("driver_id = ? AND is_primary AND end_date IS NULL", driverID).
		First(&assignment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError("Driver has no current primary assignment")
		}
		return nil, err
	}
	return &assignment, nil
}

func (r *assignmentRepository) FindByDriver(ctx context.Context, driverID uuid.UUID) ([]fleet.Assignment, error) {
	var assignments []fleet.Assignment
	err := r.db.WithContext(ctx).
		Where("driver_id = ?", driverID).
		Order("start_date DESC").
		Find(&assignments).Error
	if err != nil {
		return nil, err
	}
	return assignments, nil
}

func (r *assignmentRepository) Save(ctx context.Context, assignment *fleet.Assignment) error {
	return r.db.WithContext(ctx).Save(assignment).Error
}
