package settlement

import (
	"time"

	"github.com/fleetops/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RemittanceStatus represents the approval state of a remittance.
// PENDING -> {APPROVED, REJECTED}; APPROVED may later be reversed back to
// a non-approved state. Entering or leaving APPROVED is the sole trigger
// for driver debt-balance mutation.
type RemittanceStatus string

const (
	RemittanceStatusPending  RemittanceStatus = "pending"
	RemittanceStatusApproved RemittanceStatus = "approved"
	RemittanceStatusRejected RemittanceStatus = "rejected"
)

// ValidRemittanceStatus reports whether s is a known status
func ValidRemittanceStatus(s RemittanceStatus) bool {
	switch s {
	case RemittanceStatusPending, RemittanceStatusApproved, RemittanceStatusRejected:
		return true
	}
	return false
}

// Remittance records a driver's cash payment toward their debt
type Remittance struct {
	shared.TenantAggregateRoot
	DriverID   uuid.UUID        `gorm:"type:uuid;not null;index"`
	VehicleID  uuid.UUID        `gorm:"type:uuid;not null;index"`
	Amount     decimal.Decimal  `gorm:"type:decimal(18,4);not null"`
	Date       time.Time        `gorm:"not null;index"`
	Status     RemittanceStatus `gorm:"type:varchar(20);not null;default:'pending'"`
	ApprovedBy *uuid.UUID       `gorm:"type:uuid"`
	ApprovedAt *time.Time
	Note       string `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (Remittance) TableName() string {
	return "remittances"
}

// NewRemittance creates a PENDING remittance. Creation never touches the
// driver's debt balance; only approval does.
func NewRemittance(tenantID, driverID, vehicleID uuid.UUID, amount decimal.Decimal, date time.Time) (*Remittance, error) {
	if driverID == uuid.Nil {
		return nil, shared.NewValidationError("Driver ID is required")
	}
	if vehicleID == uuid.Nil {
		return nil, shared.NewValidationError("Vehicle ID is required")
	}
	if !amount.IsPositive() {
		return nil, shared.NewValidationError("Remittance amount must be positive")
	}
	if date.IsZero() {
		return nil, shared.NewValidationError("Remittance date is required")
	}

	return &Remittance{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		DriverID:            driverID,
		VehicleID:           vehicleID,
		Amount:              amount,
		Date:                date,
		Status:              RemittanceStatusPending,
	}, nil
}

// IsApproved returns true if the remittance is currently approved
func (r *Remittance) IsApproved() bool {
	return r.Status == RemittanceStatusApproved
}

// TransitionTo moves the remittance to newStatus and stamps approval fields.
// It returns whether the transition entered or left the APPROVED state, so
// the caller can apply the matching balance adjustment in the same
// transaction. Transitioning to the current status is a no-op.
func (r *Remittance) TransitionTo(newStatus RemittanceStatus, approvedBy *uuid.UUID) (entered, left bool, err error) {
	if !ValidRemittanceStatus(newStatus) {
		return false, false, shared.NewValidationError("Unknown remittance status")
	}
	if r.Status == newStatus {
		return false, false, nil
	}

	entered = newStatus == RemittanceStatusApproved
	left = r.Status == RemittanceStatusApproved

	r.Status = newStatus
	if entered {
		now := time.Now()
		r.ApprovedAt = &now
		r.ApprovedBy = approvedBy
	} else {
		r.ApprovedAt = nil
		r.ApprovedBy = nil
	}
	r.Touch()
	r.IncrementVersion()

	return entered, left, nil
}
