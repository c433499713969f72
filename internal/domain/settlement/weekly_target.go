package settlement

import (
	"time"

	"github.com/fleetops/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// WeeklyTargetStatus represents the lifecycle of a weekly target row.
// OPEN -> CLOSED; CLOSED is terminal.
type WeeklyTargetStatus string

const (
	WeeklyTargetStatusOpen   WeeklyTargetStatus = "open"
	WeeklyTargetStatusClosed WeeklyTargetStatus = "closed"
)

// WeeklyTarget is the expected collection amount for one driver over one
// ISO week. One row exists per (driver, ISO week), created lazily on the
// first remittance or summary query of the week and closed by the weekly
// close with carry-over of any shortfall.
type WeeklyTarget struct {
	shared.TenantAggregateRoot
	DriverID        uuid.UUID          `gorm:"type:uuid;not null;uniqueIndex:idx_target_driver_week,priority:1"`
	ISOYear         int                `gorm:"not null;uniqueIndex:idx_target_driver_week,priority:2"`
	ISOWeek         int                `gorm:"not null;uniqueIndex:idx_target_driver_week,priority:3"`
	PeriodStart     time.Time          `gorm:"not null"`
	PeriodEnd       time.Time          `gorm:"not null;index"`
	TargetAmount    decimal.Decimal    `gorm:"type:decimal(18,4);not null"`
	CollectedAmount decimal.Decimal    `gorm:"type:decimal(18,4);not null;default:0"`
	CarriedOverDebt decimal.Decimal    `gorm:"type:decimal(18,4);not null;default:0"`
	Status          WeeklyTargetStatus `gorm:"type:varchar(20);not null;default:'open'"`
}

// TableName returns the table name for GORM
func (WeeklyTarget) TableName() string {
	return "weekly_targets"
}

// NewWeeklyTarget creates an OPEN target for the ISO week containing at
func NewWeeklyTarget(tenantID, driverID uuid.UUID, at time.Time, targetAmount decimal.Decimal) (*WeeklyTarget, error) {
	if driverID == uuid.Nil {
		return nil, shared.NewValidationError("Driver ID is required")
	}
	if targetAmount.IsNegative() {
		return nil, shared.NewValidationError("Target amount cannot be negative")
	}

	week := WeekOf(at)
	start, end := PeriodOf(at)

	return &WeeklyTarget{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		DriverID:            driverID,
		ISOYear:             week.Year,
		ISOWeek:             week.Week,
		PeriodStart:         start,
		PeriodEnd:           end,
		TargetAmount:        targetAmount,
		CollectedAmount:     decimal.Zero,
		CarriedOverDebt:     decimal.Zero,
		Status:              WeeklyTargetStatusOpen,
	}, nil
}

// IsOpen returns true if the target has not been closed
func (t *WeeklyTarget) IsOpen() bool {
	return t.Status == WeeklyTargetStatusOpen
}

// Shortfall returns max(0, target - collected)
func (t *WeeklyTarget) Shortfall() decimal.Decimal {
	shortfall := t.TargetAmount.Sub(t.CollectedAmount)
	if shortfall.IsNegative() {
		return decimal.Zero
	}
	return shortfall
}

// AddCollected adds an approved remittance amount to the week's collections
func (t *WeeklyTarget) AddCollected(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return shared.NewValidationError("Collected amount must be positive")
	}
	if !t.IsOpen() {
		return shared.NewConflictError("Cannot record collections against a closed week")
	}

	t.CollectedAmount = t.CollectedAmount.Add(amount)
	t.Touch()
	t.IncrementVersion()

	return nil
}

// RemoveCollected reverses a previously added collection, when an approved
// remittance is reversed or deleted
func (t *WeeklyTarget) RemoveCollected(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return shared.NewValidationError("Reversed amount must be positive")
	}
	if !t.IsOpen() {
		return shared.NewConflictError("Cannot reverse collections against a closed week")
	}

	t.CollectedAmount = t.CollectedAmount.Sub(amount)
	if t.CollectedAmount.IsNegative() {
		t.CollectedAmount = decimal.Zero
	}
	t.Touch()
	t.IncrementVersion()

	return nil
}

// Close finalizes the week, recording the carried-over shortfall.
// Surplus collection above the target is discarded, not banked forward.
// Closing an already closed target is a conflict.
func (t *WeeklyTarget) Close() (carriedOver decimal.Decimal, err error) {
	if !t.IsOpen() {
		return decimal.Zero, shared.NewConflictError("Weekly target is already closed")
	}

	carriedOver = t.Shortfall()
	t.CarriedOverDebt = carriedOver
	t.Status = WeeklyTargetStatusClosed
	t.Touch()
	t.IncrementVersion()

	return carriedOver, nil
}
