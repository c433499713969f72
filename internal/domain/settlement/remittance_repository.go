package settlement

import (
	"context"
	"time"

	"github.com/fleetops/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RemittanceRepository defines the interface for remittance persistence,
// bound to a tenant scope at construction time.
type RemittanceRepository interface {
	// FindByID finds a remittance by ID within the bound scope
	FindByID(ctx context.Context, id uuid.UUID) (*Remittance, error)

	// FindByDriver lists remittances for a driver, newest first
	FindByDriver(ctx context.Context, driverID uuid.UUID, filter shared.Filter) ([]Remittance, error)

	// SumApprovedInPeriod sums approved remittance amounts for a driver in [from, to)
	SumApprovedInPeriod(ctx context.Context, driverID uuid.UUID, from, to time.Time) (decimal.Decimal, error)

	// Save creates or updates a remittance
	Save(ctx context.Context, remittance *Remittance) error

	// SaveWithLock updates a remittance with an optimistic version check.
	// Returns a conflict error if the stored version no longer matches,
	// meaning another transaction changed the row since it was read.
	SaveWithLock(ctx context.Context, remittance *Remittance) error

	// Delete hard-deletes a remittance
	Delete(ctx context.Context, id uuid.UUID) error
}
