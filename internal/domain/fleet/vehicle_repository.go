package fleet

import (
	"context"

	"github.com/fleetops/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// VehicleRepository defines the interface for vehicle persistence,
// bound to a tenant scope at construction time.
type VehicleRepository interface {
	// FindByID finds a vehicle by ID within the bound scope
	FindByID(ctx context.Context, id uuid.UUID) (*Vehicle, error)

	// FindByRegistration finds a vehicle by its registration plate
	FindByRegistration(ctx context.Context, registration string) (*Vehicle, error)

	// FindAll lists vehicles matching the filter
	FindAll(ctx context.Context, filter shared.Filter) ([]Vehicle, error)

	// Save creates or updates a vehicle
	Save(ctx context.Context, vehicle *Vehicle) error

	// Delete deletes a vehicle
	Delete(ctx context.Context, id uuid.UUID) error

	// Count counts vehicles in the bound scope
	Count(ctx context.Context) (int64, error)
}
