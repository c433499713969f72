// Package settlement implements the settlement ledger: the money flow
// between drivers and the fleets that employ them. Remittances move
// through an approval workflow, weekly collection targets are derived
// from vehicle payment configuration, and unmet targets carry over into
// driver debt at the weekly close. Every balance mutation here happens
// inside a single unit of work alongside the state change that caused
// it.
package settlement

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/fleetops/backend/internal/domain/settlement"
	"github.com/fleetops/backend/internal/domain/shared"
	"github.com/fleetops/backend/internal/infrastructure/auth"
	"github.com/fleetops/backend/internal/infrastructure/logger"
	"github.com/fleetops/backend/internal/infrastructure/persistence"
	"github.com/fleetops/backend/internal/infrastructure/telemetry"
)

// LedgerService coordinates remittances, weekly targets, and driver debt
type LedgerService struct {
	runner *persistence.Runner
}

// NewLedgerService creates a new LedgerService
func NewLedgerService(runner *persistence.Runner) *LedgerService {
	return &LedgerService{runner: runner}
}

// RecordRemittance records a PENDING remittance for a driver. Recording
// never touches the driver's balance; approval does. The driver's weekly
// target row for the remittance date is materialized here so summaries
// and the weekly close always find it.
func (s *LedgerService) RecordRemittance(ctx context.Context, tenantID uuid.UUID, input RecordRemittanceInput) (*RemittanceDTO, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "settlement", "record_remittance")
	defer span.End()
	telemetry.SetAttributes(span,
		"driver_id", input.DriverID,
		"amount", input.Amount,
	)

	var dto *RemittanceDTO
	err := s.runner.Run(ctx, tenantID, "settlement.record_remittance", func(ctx context.Context, scope *persistence.Scope) error {
		driver, err := scope.Drivers().FindByID(ctx, input.DriverID)
		if err != nil {
			return err
		}
		if !driver.IsActive() {
			return shared.NewConflictError("Cannot record remittances for an inactive driver")
		}

		vehicle, err := scope.Vehicles().FindByID(ctx, input.VehicleID)
		if err != nil {
			return err
		}

		remittance, err := settlement.NewRemittance(tenantID, driver.ID, vehicle.ID, input.Amount, input.Date)
		if err != nil {
			return err
		}
		remittance.Note = input.Note

		if _, err := s.ensureWeeklyTarget(ctx, scope, tenantID, driver.ID, input.Date); err != nil {
			return err
		}

		if err := scope.Remittances().Save(ctx, remittance); err != nil {
			return err
		}

		dto = toRemittanceDTO(remittance)
		return nil
	}, zap.String("driver_id", input.DriverID.String()))
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	return dto, nil
}

// SetRemittanceStatus transitions a remittance through the approval
// workflow. Entering APPROVED reduces the driver's debt by the remittance
// amount and counts it toward the week's collections; leaving APPROVED
// reverses both. The driver row is write-locked first so concurrent
// adjustments serialize, and the balance change commits or rolls back
// with the status change.
func (s *LedgerService) SetRemittanceStatus(ctx context.Context, tenantID, remittanceID uuid.UUID, newStatus settlement.RemittanceStatus, approvedBy *uuid.UUID) (*RemittanceDTO, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "settlement", "set_remittance_status")
	defer span.End()
	telemetry.SetAttributes(span,
		"remittance_id", remittanceID,
		"new_status", string(newStatus),
	)

	var dto *RemittanceDTO
	err := s.runner.Run(ctx, tenantID, "settlement.set_remittance_status", func(ctx context.Context, scope *persistence.Scope) error {
		remittance, err := scope.Remittances().FindByID(ctx, remittanceID)
		if err != nil {
			return err
		}

		driver, err := scope.Drivers().FindByIDForUpdate(ctx, remittance.DriverID)
		if err != nil {
			return err
		}

		// The first read happened before the driver lock was held, so a
		// concurrent transition could already have been applied. Re-read
		// under the lock and act on the current status only.
		remittance, err = scope.Remittances().FindByID(ctx, remittanceID)
		if err != nil {
			return err
		}
		if remittance.Status == newStatus {
			dto = toRemittanceDTO(remittance)
			return nil
		}

		entered, left, err := remittance.TransitionTo(newStatus, approvedBy)
		if err != nil {
			return err
		}

		if entered {
			if err := driver.ApplyCollection(remittance.Amount); err != nil {
				return err
			}
			if err := s.adjustWeekCollections(ctx, scope, tenantID, remittance, remittance.Amount); err != nil {
				return err
			}
		} else if left {
			if err := driver.ReverseCollection(remittance.Amount); err != nil {
				return err
			}
			if err := s.adjustWeekCollections(ctx, scope, tenantID, remittance, remittance.Amount.Neg()); err != nil {
				return err
			}
		}

		if entered || left {
			if err := scope.Drivers().Save(ctx, driver); err != nil {
				return err
			}
		}
		if err := scope.Remittances().SaveWithLock(ctx, remittance); err != nil {
			return err
		}

		dto = toRemittanceDTO(remittance)
		return nil
	}, zap.String("remittance_id", remittanceID.String()), zap.String("new_status", string(newStatus)))
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	return dto, nil
}

// DeleteRemittance hard-deletes a remittance. Deleting one that is
// currently approved first reverses its balance effect, in the same
// transaction, so no collection can vanish while still counted.
func (s *LedgerService) DeleteRemittance(ctx context.Context, tenantID, remittanceID uuid.UUID) error {
	ctx, span := telemetry.StartServiceSpan(ctx, "settlement", "delete_remittance")
	defer span.End()
	telemetry.SetAttributes(span, "remittance_id", remittanceID)

	err := s.runner.Run(ctx, tenantID, "settlement.delete_remittance", func(ctx context.Context, scope *persistence.Scope) error {
		remittance, err := scope.Remittances().FindByID(ctx, remittanceID)
		if err != nil {
			return err
		}

		// Lock the driver before inspecting the status: a transition
		// committing between the read and the delete would otherwise
		// leave a reversed (or never-applied) collection behind.
		driver, err := scope.Drivers().FindByIDForUpdate(ctx, remittance.DriverID)
		if err != nil {
			return err
		}
		remittance, err = scope.Remittances().FindByID(ctx, remittanceID)
		if err != nil {
			return err
		}

		if remittance.IsApproved() {
			if err := driver.ReverseCollection(remittance.Amount); err != nil {
				return err
			}
			if err := s.adjustWeekCollections(ctx, scope, tenantID, remittance, remittance.Amount.Neg()); err != nil {
				return err
			}
			if err := scope.Drivers().Save(ctx, driver); err != nil {
				return err
			}
		}

		return scope.Remittances().Delete(ctx, remittance.ID)
	}, zap.String("remittance_id", remittanceID.String()))
	if err != nil {
		telemetry.RecordError(span, err)
	}
	return err
}

// GetRemittances lists a driver's remittances, newest first
func (s *LedgerService) GetRemittances(ctx context.Context, tenantID, driverID uuid.UUID, filter shared.Filter) ([]RemittanceDTO, error) {
	var dtos []RemittanceDTO
	err := s.runner.Run(ctx, tenantID, "settlement.get_remittances", func(ctx context.Context, scope *persistence.Scope) error {
		remittances, err := scope.Remittances().FindByDriver(ctx, driverID, filter)
		if err != nil {
			return err
		}
		dtos = make([]RemittanceDTO, 0, len(remittances))
		for i := range remittances {
			dtos = append(dtos, *toRemittanceDTO(&remittances[i]))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dtos, nil
}

// GetDriverWeekSummary returns the driver's settlement position for the
// ISO week containing at, materializing the week's target row if this is
// the first time anything touched that week.
func (s *LedgerService) GetDriverWeekSummary(ctx context.Context, tenantID, driverID uuid.UUID, at time.Time) (*DriverWeekSummary, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "settlement", "get_driver_week_summary")
	defer span.End()
	telemetry.SetAttributes(span, "driver_id", driverID)

	var summary *DriverWeekSummary
	err := s.runner.Run(ctx, tenantID, "settlement.get_driver_week_summary", func(ctx context.Context, scope *persistence.Scope) error {
		driver, err := scope.Drivers().FindByID(ctx, driverID)
		if err != nil {
			return err
		}

		target, err := s.ensureWeeklyTarget(ctx, scope, tenantID, driverID, at)
		if err != nil {
			return err
		}

		summary = &DriverWeekSummary{
			DriverID:        driverID,
			ISOYear:         target.ISOYear,
			ISOWeek:         target.ISOWeek,
			PeriodStart:     target.PeriodStart,
			PeriodEnd:       target.PeriodEnd,
			TargetAmount:    target.TargetAmount,
			CollectedAmount: target.CollectedAmount,
			Shortfall:       target.Shortfall(),
			Status:          target.Status,
			DebtBalance:     driver.DebtBalance,
		}
		return nil
	}, zap.String("driver_id", driverID.String()))
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	return summary, nil
}

// GetDriverHistory returns the driver's most recent closed weeks and
// their current debt balance
func (s *LedgerService) GetDriverHistory(ctx context.Context, tenantID, driverID uuid.UUID, limit int) (*DriverHistory, error) {
	var history *DriverHistory
	err := s.runner.Run(ctx, tenantID, "settlement.get_driver_history", func(ctx context.Context, scope *persistence.Scope) error {
		driver, err := scope.Drivers().FindByID(ctx, driverID)
		if err != nil {
			return err
		}

		closed, err := scope.WeeklyTargets().FindClosedByDriver(ctx, driverID, limit)
		if err != nil {
			return err
		}

		weeks := make([]ClosedWeekDTO, 0, len(closed))
		for _, t := range closed {
			weeks = append(weeks, ClosedWeekDTO{
				ISOYear:         t.ISOYear,
				ISOWeek:         t.ISOWeek,
				PeriodStart:     t.PeriodStart,
				PeriodEnd:       t.PeriodEnd,
				TargetAmount:    t.TargetAmount,
				CollectedAmount: t.CollectedAmount,
				CarriedOverDebt: t.CarriedOverDebt,
			})
		}

		history = &DriverHistory{
			DriverID:    driverID,
			DebtBalance: driver.DebtBalance,
			Weeks:       weeks,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return history, nil
}

// CloseWeek finalizes every open weekly target whose period has ended as
// of asOf, across all active tenants. Each tenant closes in its own
// transaction under that tenant's context, so one tenant's failure never
// rolls back another's close. The caller must be a platform operator.
func (s *LedgerService) CloseWeek(ctx context.Context, principal auth.Principal, asOf time.Time) (*CloseWeekReport, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "settlement", "close_week")
	defer span.End()

	var tenantIDs []uuid.UUID
	err := s.runner.RunPlatform(ctx, principal, "settlement.list_tenants_for_close", func(ctx context.Context, scope *persistence.Scope) error {
		ids, err := scope.Tenants().FindAllActiveIDs(ctx)
		if err != nil {
			return err
		}
		tenantIDs = ids
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	report := &CloseWeekReport{
		AsOf:             asOf,
		TotalCarriedOver: decimal.Zero,
	}

	for _, tenantID := range tenantIDs {
		closed, carried, err := s.closeTenantWeek(ctx, tenantID, asOf)
		if err != nil {
			report.Failures = append(report.Failures, CloseWeekFailure{
				TenantID: tenantID,
				Error:    err.Error(),
			})
			continue
		}
		report.TenantsProcessed++
		report.TargetsClosed += closed
		report.TotalCarriedOver = report.TotalCarriedOver.Add(carried)
	}

	telemetry.SetAttributes(span,
		"tenants_processed", report.TenantsProcessed,
		"targets_closed", report.TargetsClosed,
		"failures", len(report.Failures),
	)
	logger.L(ctx).Info("weekly close completed",
		zap.Int("tenants_processed", report.TenantsProcessed),
		zap.Int("targets_closed", report.TargetsClosed),
		zap.String("total_carried_over", report.TotalCarriedOver.String()),
		zap.Int("failures", len(report.Failures)),
	)

	return report, nil
}

func (s *LedgerService) closeTenantWeek(ctx context.Context, tenantID uuid.UUID, asOf time.Time) (closed int, carried decimal.Decimal, err error) {
	carried = decimal.Zero
	err = s.runner.Run(ctx, tenantID, "settlement.close_tenant_week", func(ctx context.Context, scope *persistence.Scope) error {
		targets, err := scope.WeeklyTargets().FindOpenEndedBefore(ctx, asOf)
		if err != nil {
			return err
		}

		for i := range targets {
			carriedOver, wasClosed, err := s.closeTargetLocked(ctx, scope, &targets[i])
			if err != nil {
				return err
			}
			if wasClosed {
				closed++
				carried = carried.Add(carriedOver)
			}
		}
		return nil
	}, zap.Time("as_of", asOf))
	if err != nil {
		return 0, decimal.Zero, err
	}
	return closed, carried, nil
}

// closeTargetLocked closes one weekly target. The listing that produced
// snapshot ran before any lock was held, so the shortfall is computed from
// a fresh read taken after the driver row lock: every approval locks the
// driver before touching collections, which makes the lock the
// serialization point between approvals and the close. A target another
// transaction closed in the meantime is skipped.
func (s *LedgerService) closeTargetLocked(ctx context.Context, scope *persistence.Scope, snapshot *settlement.WeeklyTarget) (decimal.Decimal, bool, error) {
	driver, err := scope.Drivers().FindByIDForUpdate(ctx, snapshot.DriverID)
	if err != nil {
		return decimal.Zero, false, err
	}

	target, err := scope.WeeklyTargets().FindByID(ctx, snapshot.ID)
	if err != nil {
		if isNotFound(err) {
			return decimal.Zero, false, nil
		}
		return decimal.Zero, false, err
	}
	if !target.IsOpen() {
		return decimal.Zero, false, nil
	}

	carriedOver, err := target.Close()
	if err != nil {
		return decimal.Zero, false, err
	}
	if err := driver.CarryOverShortfall(carriedOver); err != nil {
		return decimal.Zero, false, err
	}

	if err := scope.WeeklyTargets().Save(ctx, target); err != nil {
		return decimal.Zero, false, err
	}
	if err := scope.Drivers().Save(ctx, driver); err != nil {
		return decimal.Zero, false, err
	}
	return carriedOver, true, nil
}

// ensureWeeklyTarget materializes the target row for the driver's ISO week
// containing at. The target amount comes from the payment configuration of
// the vehicle on the driver's current primary assignment; a driver with no
// open assignment gets a zero target for the week.
func (s *LedgerService) ensureWeeklyTarget(ctx context.Context, scope *persistence.Scope, tenantID, driverID uuid.UUID, at time.Time) (*settlement.WeeklyTarget, error) {
	week := settlement.WeekOf(at)
	if existing, err := scope.WeeklyTargets().FindByDriverWeek(ctx, driverID, week); err == nil {
		return existing, nil
	} else if !isNotFound(err) {
		return nil, err
	}

	targetAmount := decimal.Zero
	assignment, err := scope.Assignments().FindOpenPrimaryByDriver(ctx, driverID)
	switch {
	case err == nil:
		vehicle, err := scope.Vehicles().FindByID(ctx, assignment.VehicleID)
		if err != nil {
			return nil, err
		}
		targetAmount = vehicle.PaymentConfig.WeeklyTargetAmount()
	case isNotFound(err):
		// no current assignment, week settles against a zero target
	default:
		return nil, err
	}

	target, err := settlement.NewWeeklyTarget(tenantID, driverID, at, targetAmount)
	if err != nil {
		return nil, err
	}
	return scope.WeeklyTargets().CreateIfAbsent(ctx, target)
}

// adjustWeekCollections applies delta to the collected amount of the week
// containing the remittance date. A closed week is left untouched: the
// carry-over already settled it, and the balance adjustment on the driver
// still applies in full.
func (s *LedgerService) adjustWeekCollections(ctx context.Context, scope *persistence.Scope, tenantID uuid.UUID, remittance *settlement.Remittance, delta decimal.Decimal) error {
	target, err := s.ensureWeeklyTarget(ctx, scope, tenantID, remittance.DriverID, remittance.Date)
	if err != nil {
		return err
	}
	if !target.IsOpen() {
		logger.L(ctx).Warn("remittance adjustment against closed week, collections unchanged",
			zap.String("remittance_id", remittance.ID.String()),
			zap.Int("iso_year", target.ISOYear),
			zap.Int("iso_week", target.ISOWeek),
		)
		return nil
	}

	if delta.IsPositive() {
		if err := target.AddCollected(delta); err != nil {
			return err
		}
	} else if delta.IsNegative() {
		if err := target.RemoveCollected(delta.Neg()); err != nil {
			return err
		}
	}
	return scope.WeeklyTargets().Save(ctx, target)
}

func isNotFound(err error) bool {
	return errors.Is(err, shared.ErrNotFound)
}
