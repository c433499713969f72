package fleet

import (
	"strings"

	"github.com/fleetops/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DriverStatus represents the employment status of a driver
type DriverStatus string

const (
	DriverStatusActive   DriverStatus = "active"
	DriverStatusInactive DriverStatus = "inactive"
)

// Driver represents a driver employed by a tenant. DebtBalance is the signed
// running total of money the driver owes the fleet; it is mutated only by
// the settlement ledger, never directly by callers.
type Driver struct {
	shared.TenantAggregateRoot
	Name          string          `gorm:"type:varchar(200);not null"`
	Phone         string          `gorm:"type:varchar(50)"`
	LicenceNumber string          `gorm:"type:varchar(50);not null;uniqueIndex:idx_driver_tenant_licence,priority:2"`
	Status        DriverStatus    `gorm:"type:varchar(20);not null;default:'active'"`
	DebtBalance   decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
}

// TableName returns the table name for GORM
func (Driver) TableName() string {
	return "drivers"
}

// NewDriver creates a new driver for a tenant
func NewDriver(tenantID uuid.UUID, name, licenceNumber string) (*Driver, error) {
	name = strings.TrimSpace(name)
	licenceNumber = strings.ToUpper(strings.TrimSpace(licenceNumber))
	if name == "" {
		return nil, shared.NewValidationError("Driver name cannot be empty")
	}
	if len(name) > 200 {
		return nil, shared.NewValidationError("Driver name cannot exceed 200 characters")
	}
	if licenceNumber == "" {
		return nil, shared.NewValidationError("Driver licence number cannot be empty")
	}

	return &Driver{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Name:                name,
		LicenceNumber:       licenceNumber,
		Status:              DriverStatusActive,
		DebtBalance:         decimal.Zero,
	}, nil
}

// ApplyCollection reduces the driver's debt by a collected remittance amount.
// Called when a remittance transitions into APPROVED.
func (d *Driver) ApplyCollection(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return shared.NewValidationError("Collection amount must be positive")
	}

	d.DebtBalance = d.DebtBalance.Sub(amount)
	d.Touch()
	d.IncrementVersion()

	return nil
}

// ReverseCollection restores debt previously reduced by an approved
// remittance. Called when a remittance leaves APPROVED or is deleted while
// approved. Symmetric with ApplyCollection so approve/reverse cycles
// cannot drift the balance.
func (d *Driver) ReverseCollection(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return shared.NewValidationError("Reversal amount must be positive")
	}

	d.DebtBalance = d.DebtBalance.Add(amount)
	d.Touch()
	d.IncrementVersion()

	return nil
}

// CarryOverShortfall adds an unmet weekly shortfall to the driver's debt.
// Called by the weekly close.
func (d *Driver) CarryOverShortfall(amount decimal.Decimal) error {
	if amount.IsNegative() {
		return shared.NewValidationError("Shortfall cannot be negative")
	}
	if amount.IsZero() {
		return nil
	}

	d.DebtBalance = d.DebtBalance.Add(amount)
	d.Touch()
	d.IncrementVersion()

	return nil
}

// Deactivate marks the driver as no longer employed
func (d *Driver) Deactivate() error {
	if d.Status == DriverStatusInactive {
		return shared.NewConflictError("Driver is already inactive")
	}

	d.Status = DriverStatusInactive
	d.Touch()
	d.IncrementVersion()

	return nil
}

// IsActive returns true if the driver is active
func (d *Driver) IsActive() bool {
	return d.Status == DriverStatusActive
}
