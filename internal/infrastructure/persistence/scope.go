package persistence

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/fleetops/backend/internal/domain/fleet"
	"github.com/fleetops/backend/internal/domain/identity"
	"github.com/fleetops/backend/internal/domain/settlement"
)

// Scope is a data accessor bound to a single activated tenant context
// for the lifetime of one transaction. Repositories obtained from a
// scope never take tenant identifiers per call; the binding happens
// once, at construction, inside the unit-of-work runner.
type Scope struct {
	tx       *gorm.DB
	tenantID uuid.UUID
	platform bool
}

// NewTenantScope binds a scope to one tenant's data
func NewTenantScope(tx *gorm.DB, tenantID uuid.UUID) *Scope {
	return &Scope{tx: tx, tenantID: tenantID}
}

// NewPlatformScope binds a scope that crosses tenant boundaries. Only
// the unit-of-work runner constructs these, after verifying the caller
// is a platform operator.
func NewPlatformScope(tx *gorm.DB) *Scope {
	return &Scope{tx: tx, platform: true}
}

// TenantID returns the tenant this scope is bound to, or uuid.Nil for
// a platform scope.
func (s *Scope) TenantID() uuid.UUID {
	return s.tenantID
}

// IsPlatform reports whether this scope crosses tenant boundaries
func (s *Scope) IsPlatform() bool {
	return s.platform
}

// DB exposes the underlying transaction for migrations and tests
func (s *Scope) DB() *gorm.DB {
	return s.tx
}

// Tenants returns the tenant directory repository
func (s *Scope) Tenants() identity.TenantRepository {
	return newTenantRepository(s.tx)
}

// Drivers returns the driver repository bound to this scope
func (s *Scope) Drivers() fleet.DriverRepository {
	return newDriverRepository(s.tx)
}

// Vehicles returns the vehicle repository bound to this scope
func (s *Scope) Vehicles() fleet.VehicleRepository {
	return newVehicleRepository(s.tx)
}

// Assignments returns the assignment repository bound to this scope
func (s *Scope) Assignments() fleet.AssignmentRepository {
	return newAssignmentRepository(s.tx)
}

// Remittances returns the remittance repository bound to this scope
func (s *Scope) Remittances() settlement.RemittanceRepository {
	return newRemittanceRepository(s.tx)
}

// WeeklyTargets returns the weekly target repository bound to this scope
func (s *Scope) WeeklyTargets() settlement.WeeklyTargetRepository {
	return newWeeklyTargetRepository(s.tx)
}
