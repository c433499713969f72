package fleet

import (
	"context"

	"github.com/google/uuid"
)

// AssignmentRepository defines the interface for driver-vehicle assignment
// persistence, bound to a tenant scope at construction time.
type AssignmentRepository interface {
	// FindByID finds an assignment by ID within the bound scope
	FindByID(ctx context.Context, id uuid.UUID) (*Assignment, error)

	// FindOpenByVehicle returns the vehicle's current open assignment, or
	// shared.ErrNotFound if the vehicle has no current driver
	FindOpenByVehicle(ctx context.Context, vehicleID uuid.UUID) (*Assignment, error)

	// FindOpenPrimaryByDriver returns the driver's current primary assignment
	FindOpenPrimaryByDriver(ctx context.Context, driverID uuid.UUID) (*Assignment, error)

	// FindByDriver lists all assignments for a driver, newest first
	FindByDriver(ctx context.Context, driverID uuid.UUID) ([]Assignment, error)

	// Save creates or updates an assignment
	Save(ctx context.Context, assignment *Assignment) error
}
