package fleet

import (
	"time"

	"github.com/fleetops/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Assignment links one driver to one vehicle over an open-ended interval.
// Invariants, enforced by the roster service and backed by partial unique
// indexes: at most one open assignment per vehicle, and at most one open
// primary assignment per driver.
type Assignment struct {
	shared.TenantAggregateRoot
	DriverID  uuid.UUID `gorm:"type:uuid;not null;index"`
	VehicleID uuid.UUID `gorm:"type:uuid;not null;index"`
	StartDate time.Time `gorm:"not null"`
	EndDate   *time.Time
	IsPrimary bool `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (Assignment) TableName() string {
	return "driver_vehicle_assignments"
}

// NewAssignment creates a new open assignment starting at startDate
func NewAssignment(tenantID, driverID, vehicleID uuid.UUID, startDate time.Time, isPrimary bool) (*Assignment, error) {
	if driverID == uuid.Nil {
		return nil, shared.NewValidationError("Driver ID is required")
	}
	if vehicleID == uuid.Nil {
		return nil, shared.NewValidationError("Vehicle ID is required")
	}
	if startDate.IsZero() {
		return nil, shared.NewValidationError("Start date is required")
	}

	return &Assignment{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		DriverID:            driverID,
		VehicleID:           vehicleID,
		StartDate:           startDate,
		IsPrimary:           isPrimary,
	}, nil
}

// IsOpen returns true if the assignment has no end date
func (a *Assignment) IsOpen() bool {
	return a.EndDate == nil
}

// End closes the assignment as of endDate
func (a *Assignment) End(endDate time.Time) error {
	if a.EndDate != nil {
		return shared.NewConflictError("Assignment is already ended")
	}
	if endDate.Before(a.StartDate) {
		return shared.NewValidationError("End date cannot be before start date")
	}

	a.EndDate = &endDate
	a.Touch()
	a.IncrementVersion()

	return nil
}
