package settlement

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/fleetops/backend/internal/domain/settlement"
)

// RecordRemittanceInput carries the fields for recording a cash collection
type RecordRemittanceInput struct {
	DriverID  uuid.UUID
	VehicleID uuid.UUID
	Amount    decimal.Decimal
	Date      time.Time
	Note      string
}

// RemittanceDTO is the external representation of a remittance
type RemittanceDTO struct {
	ID         uuid.UUID                   `json:"id"`
	DriverID   uuid.UUID                   `json:"driver_id"`
	VehicleID  uuid.UUID                   `json:"vehicle_id"`
	Amount     decimal.Decimal             `json:"amount"`
	Date       time.Time                   `json:"date"`
	Status     settlement.RemittanceStatus `json:"status"`
	ApprovedBy *uuid.UUID                  `json:"approved_by,omitempty"`
	ApprovedAt *time.Time                  `json:"approved_at,omitempty"`
	Note       string                      `json:"note,omitempty"`
}

func toRemittanceDTO(r *settlement.Remittance) *RemittanceDTO {
	return &RemittanceDTO{
		ID:         r.ID,
		DriverID:   r.DriverID,
		VehicleID:  r.VehicleID,
		Amount:     r.Amount,
		Date:       r.Date,
		Status:     r.Status,
		ApprovedBy: r.ApprovedBy,
		ApprovedAt: r.ApprovedAt,
		Note:       r.Note,
	}
}

// DriverWeekSummary is the settlement position of one driver for one ISO week
type DriverWeekSummary struct {
	DriverID        uuid.UUID                     `json:"driver_id"`
	ISOYear         int                           `json:"iso_year"`
	ISOWeek         int                           `json:"iso_week"`
	PeriodStart     time.Time                     `json:"period_start"`
	PeriodEnd       time.Time                     `json:"period_end"`
	TargetAmount    decimal.Decimal               `json:"target_amount"`
	CollectedAmount decimal.Decimal               `json:"collected_amount"`
	Shortfall       decimal.Decimal               `json:"shortfall"`
	Status          settlement.WeeklyTargetStatus `json:"status"`
	DebtBalance     decimal.Decimal               `json:"debt_balance"`
}

// ClosedWeekDTO is one closed settlement week in a driver's history
type ClosedWeekDTO struct {
	ISOYear         int             `json:"iso_year"`
	ISOWeek         int             `json:"iso_week"`
	PeriodStart     time.Time       `json:"period_start"`
	PeriodEnd       time.Time       `json:"period_end"`
	TargetAmount    decimal.Decimal `json:"target_amount"`
	CollectedAmount decimal.Decimal `json:"collected_amount"`
	CarriedOverDebt decimal.Decimal `json:"carried_over_debt"`
}

// DriverHistory is a driver's recent closed weeks plus their current balance
type DriverHistory struct {
	DriverID    uuid.UUID       `json:"driver_id"`
	DebtBalance decimal.Decimal `json:"debt_balance"`
	Weeks       []ClosedWeekDTO `json:"weeks"`
}

// CloseWeekReport summarizes one run of the weekly close across all tenants
type CloseWeekReport struct {
	AsOf             time.Time          `json:"as_of"`
	TenantsProcessed int                `json:"tenants_processed"`
	TargetsClosed    int                `json:"targets_closed"`
	TotalCarriedOver decimal.Decimal    `json:"total_carried_over"`
	Failures         []CloseWeekFailure `json:"failures,omitempty"`
}

// CloseWeekFailure records a tenant whose close failed; other tenants
// are unaffected.
type CloseWeekFailure struct {
	TenantID uuid.UUID `json:"tenant_id"`
	Error    string    `json:"error"`
}
