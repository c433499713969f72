package fleet

import (
	"context"

	"github.com/fleetops/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// DriverRepository defines the interface for driver persistence.
// Implementations are bound to a tenant scope at construction time; no
// method takes a tenant ID.
type DriverRepository interface {
	// FindByID finds a driver by ID within the bound scope
	FindByID(ctx context.Context, id uuid.UUID) (*Driver, error)

	// FindByIDForUpdate finds a driver and takes a row-level write lock on it
	// for the remainder of the current transaction. Balance mutations must go
	// through this so concurrent adjustments serialize instead of losing updates.
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*Driver, error)

	// FindAll lists drivers matching the filter
	FindAll(ctx context.Context, filter shared.Filter) ([]Driver, error)

	// Save creates or updates a driver
	Save(ctx context.Context, driver *Driver) error

	// Delete deletes a driver
	Delete(ctx context.Context, id uuid.UUID) error

	// Count counts drivers in the bound scope
	Count(ctx context.Context) (int64, error)
}
