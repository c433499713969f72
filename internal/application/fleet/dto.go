package fleet

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/fleetops/backend/internal/domain/fleet"
)

// CreateDriverInput carries the fields for registering a driver
type CreateDriverInput struct {
	Name          string
	Phone         string
	LicenceNumber string
}

// DriverDTO is the external representation of a driver
type DriverDTO struct {
	ID            uuid.UUID          `json:"id"`
	Name          string             `json:"name"`
	Phone         string             `json:"phone,omitempty"`
	LicenceNumber string             `json:"licence_number"`
	Status        fleet.DriverStatus `json:"status"`
	DebtBalance   decimal.Decimal    `json:"debt_balance"`
}

func toDriverDTO(d *fleet.Driver) *DriverDTO {
	return &DriverDTO{
		ID:            d.ID,
		Name:          d.Name,
		Phone:         d.Phone,
		LicenceNumber: d.LicenceNumber,
		Status:        d.Status,
		DebtBalance:   d.DebtBalance,
	}
}

// CreateVehicleInput carries the fields for registering a vehicle
type CreateVehicleInput struct {
	Registration  string
	PaymentConfig fleet.PaymentConfig
}

// VehicleDTO is the external representation of a vehicle
type VehicleDTO struct {
	ID            uuid.UUID           `json:"id"`
	Registration  string              `json:"registration"`
	Status        fleet.VehicleStatus `json:"status"`
	PaymentConfig fleet.PaymentConfig `json:"payment_config"`
}

func toVehicleDTO(v *fleet.Vehicle) *VehicleDTO {
	return &VehicleDTO{
		ID:            v.ID,
		Registration:  v.Registration,
		Status:        v.Status,
		PaymentConfig: v.PaymentConfig,
	}
}

// AssignDriverInput carries the fields for opening an assignment
type AssignDriverInput struct {
	DriverID  uuid.UUID
	VehicleID uuid.UUID
	StartDate time.Time
	IsPrimary bool
}

// AssignmentDTO is the external representation of an assignment
type AssignmentDTO struct {
	ID        uuid.UUID  `json:"id"`
	DriverID  uuid.UUID  `json:"driver_id"`
	VehicleID uuid.UUID  `json:"vehicle_id"`
	StartDate time.Time  `json:"start_date"`
	EndDate   *time.Time `json:"end_date,omitempty"`
	IsPrimary bool       `json:"is_primary"`
}

func toAssignmentDTO(a *fleet.Assignment) *AssignmentDTO {
	return &AssignmentDTO{
		ID:        a.ID,
		DriverID:  a.DriverID,
		VehicleID: a.VehicleID,
		StartDate: a.StartDate,
		EndDate:   a.EndDate,
		IsPrimary: a.IsPrimary,
	}
}
