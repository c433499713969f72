package fleet

import (
	"github.com/fleetops/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// PaymentModel identifies how a vehicle's weekly collection target is derived.
// The set is closed: target derivation switches exhaustively over it.
type PaymentModel string

const (
	// PaymentModelFixed charges a fixed daily amount over the working days of a week
	PaymentModelFixed PaymentModel = "fixed"
	// PaymentModelPercentage charges a percentage of the vehicle's estimated weekly takings
	PaymentModelPercentage PaymentModel = "percentage"
)

// PaymentConfig describes how the weekly target for a vehicle's assigned
// driver is computed. Which fields are meaningful depends on Model.
type PaymentConfig struct {
	Model PaymentModel `gorm:"type:varchar(20);not null;default:'fixed'" json:"model"`

	// Fixed model: DailyAmount collected per working day
	DailyAmount decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"daily_amount"`
	WorkingDays int             `gorm:"not null;default:6" json:"working_days"`

	// Percentage model: Rate applied to the estimated weekly takings
	Rate                   decimal.Decimal `gorm:"type:decimal(8,6);not null;default:0" json:"rate"`
	EstimatedWeeklyTakings decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"estimated_weekly_takings"`
}

// Validate checks the configuration for the declared model
func (c PaymentConfig) Validate() error {
	switch c.Model {
	case PaymentModelFixed:
		if !c.DailyAmount.IsPositive() {
			return shared.NewValidationError("Daily amount must be positive for fixed payment model")
		}
		if c.WorkingDays < 1 || c.WorkingDays > 7 {
			return shared.NewValidationError("Working days must be between 1 and 7")
		}
		return nil
	case PaymentModelPercentage:
		if !c.Rate.IsPositive() || c.Rate.GreaterThan(decimal.NewFromInt(1)) {
			return shared.NewValidationError("Rate must be in (0, 1] for percentage payment model")
		}
		if !c.EstimatedWeeklyTakings.IsPositive() {
			return shared.NewValidationError("Estimated weekly takings must be positive for percentage payment model")
		}
		return nil
	default:
		return shared.NewValidationError("Unknown payment model")
	}
}

// WeeklyTargetAmount derives the expected collection for one ISO week
func (c PaymentConfig) WeeklyTargetAmount() decimal.Decimal {
	switch c.Model {
	case PaymentModelFixed:
		return c.DailyAmount.Mul(decimal.NewFromInt(int64(c.WorkingDays)))
	case PaymentModelPercentage:
		return c.EstimatedWeeklyTakings.Mul(c.Rate).Round(4)
	default:
		return decimal.Zero
	}
}

// FixedPaymentConfig builds a fixed-daily-amount configuration
func FixedPaymentConfig(dailyAmount decimal.Decimal, workingDays int) PaymentConfig {
	return PaymentConfig{
		Model:       PaymentModelFixed,
		DailyAmount: dailyAmount,
		WorkingDays: workingDays,
	}
}

// PercentagePaymentConfig builds a percentage-of-takings configuration
func PercentagePaymentConfig(rate, estimatedWeeklyTakings decimal.Decimal) PaymentConfig {
	return PaymentConfig{
		Model:                  PaymentModelPercentage,
		Rate:                   rate,
		EstimatedWeeklyTakings: estimatedWeeklyTakings,
	}
}
