package fleet

import (
	"strings"

	"github.com/fleetops/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// VehicleStatus represents the operational status of a vehicle
type VehicleStatus string

const (
	VehicleStatusActive      VehicleStatus = "active"
	VehicleStatusMaintenance VehicleStatus = "maintenance"
	VehicleStatusRetired     VehicleStatus = "retired"
)

// Vehicle represents a fleet vehicle. It belongs to exactly one tenant and
// carries the payment configuration that drives its assigned driver's
// weekly collection target.
type Vehicle struct {
	shared.TenantAggregateRoot
	Registration  string        `gorm:"type:varchar(20);not null;uniqueIndex:idx_vehicle_tenant_reg,priority:2"`
	Make          string        `gorm:"type:varchar(50)"`
	Model         string        `gorm:"type:varchar(50)"`
	Capacity      int           `gorm:"not null;default:14"`
	Status        VehicleStatus `gorm:"type:varchar(20);not null;default:'active'"`
	PaymentConfig PaymentConfig `gorm:"embedded;embeddedPrefix:payment_"`
}

// TableName returns the table name for GORM
func (Vehicle) TableName() string {
	return "vehicles"
}

// NewVehicle creates a new vehicle for a tenant
func NewVehicle(tenantID uuid.UUID, registration string, cfg PaymentConfig) (*Vehicle, error) {
	registration = strings.ToUpper(strings.TrimSpace(registration))
	if registration == "" {
		return nil, shared.NewValidationError("Vehicle registration cannot be empty")
	}
	if len(registration) > 20 {
		return nil, shared.NewValidationError("Vehicle registration cannot exceed 20 characters")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &Vehicle{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Registration:        registration,
		Status:              VehicleStatusActive,
		PaymentConfig:       cfg,
	}, nil
}

// UpdatePaymentConfig replaces the vehicle's payment configuration.
// Takes effect for weekly targets created after the change; already
// materialized weeks keep their original target.
func (v *Vehicle) UpdatePaymentConfig(cfg PaymentConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	v.PaymentConfig = cfg
	v.Touch()
	v.IncrementVersion()

	return nil
}

// SetStatus moves the vehicle to a new operational status
func (v *Vehicle) SetStatus(status VehicleStatus) error {
	switch status {
	case VehicleStatusActive, VehicleStatusMaintenance, VehicleStatusRetired:
	default:
		return shared.NewValidationError("Invalid vehicle status")
	}
	if v.Status == VehicleStatusRetired && status != VehicleStatusRetired {
		return shared.NewConflictError("Retired vehicles cannot return to service")
	}

	v.Status = status
	v.Touch()
	v.IncrementVersion()

	return nil
}

// IsActive returns true if the vehicle is in active service
func (v *Vehicle) IsActive() bool {
	return v.Status == VehicleStatusActive
}
