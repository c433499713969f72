package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/fleetops/backend/internal/domain/settlement"
	"github.com/fleetops/backend/internal/domain/shared"
)

type remittanceRepository struct {
	db *gorm.DB
}

func newRemittanceRepository(db *gorm.DB) settlement.RemittanceRepository {
	return &remittanceRepository{db: db}
}

func (r *remittanceRepository) FindByID(ctx context.Context, id uuid.UUID) (*settlement.Remittance, error) {
	var remittance settlement.Remittance
	err := r.db.WithContext(ctx).First(&remittance, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError("Remittance not found")
		}
		return nil, err
	}
	return &remittance, nil
}

func (r *remittanceRepository) FindByDriver(ctx context.Context, driverID uuid.UUID, filter shared.Filter) ([]settlement.Remittance, error) {
	var remittances []settlement.Remittance
	err := r.db.WithContext(ctx).
		Where("driver_id = ?", driverID).
		Order(filter.OrderClause("date DESC")).
		Offset(filter.Offset()).
		Limit(filter.Limit()).
		Find(&remittances).Error
	if err != nil {
		return nil, err
	}
	return remittances, nil
}

func (r *remittanceRepository) SumApprovedInPeriod(ctx context.Context, driverID uuid.UUID, from, to time.Time) (decimal.Decimal, error) {
	var sum decimal.NullDecimal
	err := r.db.WithContext(ctx).
		Model(&settlement.Remittance{}).
		Select("SUM(amount)").
		Where("driver_id = ? AND status = ? AND date >= ? AND date < ?",
			driverID, settlement.RemittanceStatusApproved, from, to).
		Scan(&sum).Error
	if err != nil {
		return decimal.Zero, err
	}
	if !sum.Valid {
		return decimal.Zero, nil
	}
	return sum.Decimal, nil
}

func (r *remittanceRepository) Save(ctx context.Context, remittance *settlement.Remittance) error {
	return r.db.WithContext(ctx).Save(remittance).Error
}

// SaveWithLock updates the row only if its stored version is the one the
// caller read. Select("*") forces zero-valued fields into the update so a
// reversal clears the approval stamp instead of skipping it.
func (r *remittanceRepository) SaveWithLock(ctx context.Context, remittance *settlement.Remittance) error {
	result := r.db.WithContext(ctx).
		Model(&settlement.Remittance{}).
		Where("id = ? AND version = ?", remittance.ID, remittance.Version-1).
		Select("*").
		Omit("id", "tenant_id", "created_at").
		Updates(remittance)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewConflictError("Remittance was modified by another transaction")
	}
	return nil
}

func (r *remittanceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&settlement.Remittance{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewNotFoundError("Remittance not found")
	}
	return nil
}
