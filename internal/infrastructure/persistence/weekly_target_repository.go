package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/fleetops/backend/internal/domain/settlement"
	"github.com/fleetops/backend/internal/domain/shared"
)

type weeklyTargetRepository struct {
	db *gorm.DB
}

func newWeeklyTargetRepository(db *gorm.DB) settlement.WeeklyTargetRepository {
	return &weeklyTargetRepository{db: db}
}

func (r *weeklyTargetRepository) FindByID(ctx context.Context, id uuid.UUID) (*settlement.WeeklyTarget, error) {
	var target settlement.WeeklyTarget
	err := r.db.WithContext(ctx).First(&target, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError("Weekly target not found")
		}
		return nil, err
	}
	return &target, nil
}

func (r *weeklyTargetRepository) FindByDriverWeek(ctx context.Context, driverID uuid.UUID, week settlement.Week) (*settlement.WeeklyTarget, error) {
	var target settlement.WeeklyTarget
	err := r.db.WithContext(ctx).
		Where("driver_id = ? AND iso_year = ? AND iso_week = ?", driverID, week.Year, week.Week).
		First(&target).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError("Weekly target not found")
		}
		return nil, err
	}
	return &target, nil
}

// CreateIfAbsent resolves the materialization race on the week's unique
// index: the insert does nothing on conflict and the winning row is read
// back afterwards either way.
func (r *weeklyTargetRepository) CreateIfAbsent(ctx context.Context, target *settlement.WeeklyTarget) (*settlement.WeeklyTarget, error) {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "driver_id"}, {Name: "iso_year"}, {Name: "iso_week"}},
			DoNothing: true,
		}).
		Create(target).Error
	if err != nil {
		return nil, err
	}

	return r.FindByDriverWeek(ctx, target.DriverID, settlement.Week{Year: target.ISOYear, Week: target.ISOWeek})
}

func (r *weeklyTargetRepository) FindOpenEndedBefore(ctx context.Context, cutoff time.Time) ([]settlement.WeeklyTarget, error) {
	var targets []settlement.WeeklyTarget
	err := r.db.WithContext(ctx).
		Where("status = ? AND period_end <= ?", settlement.WeeklyTargetStatusOpen, cutoff).
		Order("period_end ASC").
		Find(&targets).Error
	if err != nil {
		return nil, err
	}
	return targets, nil
}

func (r *weeklyTargetRepository) FindClosedByDriver(ctx context.Context, driverID uuid.UUID, limit int) ([]settlement.WeeklyTarget, error) {
	if limit < 1 {
		limit = 12
	}
	var targets []settlement.WeeklyTarget
	err := r.db.WithContext(ctx).
		Where("driver_id = ? AND status = ?", driverID, settlement.WeeklyTargetStatusClosed).
		Order("iso_year DESC, iso_week DESC").
		Limit(limit).
		Find(&targets).Error
	if err != nil {
		return nil, err
	}
	return targets, nil
}

func (r *weeklyTargetRepository) Save(ctx context.Context, target *settlement.WeeklyTarget) error {
	return r.db.WithContext(ctx).Save(target).Error
}
