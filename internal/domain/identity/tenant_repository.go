package identity

import (
	"context"

	"github.com/fleetops/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// DependentCounts holds the number of tenant-owned records that block deletion
type DependentCounts struct {
	Drivers  int64
	Vehicles int64
}

// Total returns the total number of dependent records
func (c DependentCounts) Total() int64 {
	return c.Drivers + c.Vehicles
}

// TenantRepository defines the interface for tenant persistence.
// Implementations are platform-scoped: tenant rows are not themselves
// subject to row-level tenant filtering.
type TenantRepository interface {
	// FindByID finds a tenant by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Tenant, error)

	// FindByCode finds a tenant by its unique code
	FindByCode(ctx context.Context, code string) (*Tenant, error)

	// FindAll lists tenants matching the filter
	FindAll(ctx context.Context, filter shared.Filter) ([]Tenant, error)

	// FindAllActiveIDs returns the IDs of all active tenants, for batch jobs
	FindAllActiveIDs(ctx context.Context) ([]uuid.UUID, error)

	// Save creates or updates a tenant
	Save(ctx context.Context, tenant *Tenant) error

	// CountDependents counts tenant-owned records that block hard deletion
	CountDependents(ctx context.Context, id uuid.UUID) (DependentCounts, error)

	// Delete hard-deletes a tenant. Callers must verify zero dependents first.
	Delete(ctx context.Context, id uuid.UUID) error
}
