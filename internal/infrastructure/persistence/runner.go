package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/fleetops/backend/internal/domain/shared"
	"github.com/fleetops/backend/internal/infrastructure/auth"
	"github.com/fleetops/backend/internal/infrastructure/logger"
	"github.com/fleetops/backend/internal/infrastructure/persistence/tenantctx"
)

// Runner executes units of work. Every business operation in the system
// goes through Run or RunPlatform: one transaction, tenant context
// activated as the first statement, cleared on the way out, and all
// errors translated to the domain taxonomy before they escape.
type Runner struct {
	db     *Database
	logger *zap.Logger
}

// NewRunner creates a unit-of-work runner
func NewRunner(db *Database, log *zap.Logger) *Runner {
	return &Runner{db: db, logger: log}
}

// Run executes fn inside a transaction scoped to tenantID. The operation
// name and extra fields go onto every log entry the unit of work emits.
// A non-nil error from fn rolls the whole transaction back.
func (r *Runner) Run(ctx context.Context, tenantID uuid.UUID, operation string, fn func(ctx context.Context, scope *Scope) error, fields ...zap.Field) error {
	if tenantID == uuid.Nil {
		return shared.ErrTenantIsolation
	}

	ctx, _ = logger.WithTenantID(ctx, r.logger, tenantID.String())
	ctx, _ = logger.WithOperation(ctx, logger.FromContext(ctx), operation)

	return r.execute(ctx, operation, fields, func(tx *gorm.DB) (*Scope, error) {
		if err := tenantctx.Activate(tx, tenantID, false); err != nil {
			return nil, err
		}
		return NewTenantScope(tx, tenantID), nil
	}, fn)
}

// RunPlatform executes fn inside a transaction that crosses tenant
// boundaries. The caller must present a super-admin principal; anything
// else is rejected and logged as a security event before a transaction
// is even opened.
func (r *Runner) RunPlatform(ctx context.Context, principal auth.Principal, operation string, fn func(ctx context.Context, scope *Scope) error, fields ...zap.Field) error {
	ctx, _ = logger.WithOperation(ctx, r.logger, operation)

	if !principal.SuperAdmin {
		logger.L(ctx).SecurityEvent("platform scope denied",
			append(fields, zap.String("subject", principal.Subject))...)
		return shared.ErrTenantIsolation
	}

	ctx = tenantctx.WithPlatformScope(ctx)

	return r.execute(ctx, operation, fields, func(tx *gorm.DB) (*Scope, error) {
		if err := tenantctx.Activate(tx, uuid.Nil, true); err != nil {
			return nil, err
		}
		return NewPlatformScope(tx), nil
	}, fn)
}

func (r *Runner) execute(ctx context.Context, operation string, fields []zap.Field, bind func(tx *gorm.DB) (*Scope, error), fn func(ctx context.Context, scope *Scope) error) error {
	start := time.Now()

	err := r.db.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		scope, err := bind(tx)
		if err != nil {
			return err
		}
		defer func() {
			// Best effort; is_local already scopes the settings to
			// this transaction.
			_ = tenantctx.Deactivate(tx)
		}()
		return fn(ctx, scope)
	})

	elapsed := zap.Duration("elapsed", time.Since(start))
	if err != nil {
		translated := TranslateError(err)
		if errors.Is(translated, shared.ErrTenantIsolation) {
			logger.L(ctx).SecurityEvent("unit of work rejected",
				append(fields, elapsed, zap.Error(err))...)
		} else {
			logger.L(ctx).Error("unit of work failed",
				append(fields, elapsed, zap.Error(translated))...)
		}
		return translated
	}

	logger.L(ctx).Info("unit of work committed", append(fields, elapsed)...)
	return nil
}
