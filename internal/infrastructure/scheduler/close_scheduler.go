// Package scheduler runs the periodic settlement close. The schedule
// fires daily; the close itself only touches weeks whose period has
// already ended, so a missed run is caught up by the next one.
package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	appsettlement "github.com/fleetops/backend/internal/application/settlement"
	"github.com/fleetops/backend/internal/infrastructure/auth"
	"github.com/fleetops/backend/internal/infrastructure/cache"
	"github.com/fleetops/backend/internal/infrastructure/config"
	"github.com/fleetops/backend/internal/infrastructure/logger"
)

const closeLockName = "settlement:close-week"

// CloseScheduler triggers the weekly settlement close on a cron schedule,
// holding a distributed lock so only one replica runs it.
type CloseScheduler struct {
	cron   *cron.Cron
	ledger *appsettlement.LedgerService
	lock   *cache.RedisLock
	cfg    config.SchedulerConfig
	logger *zap.Logger
}

// NewCloseScheduler creates the scheduler. Call Start to begin running.
func NewCloseScheduler(ledger *appsettlement.LedgerService, lock *cache.RedisLock, cfg config.SchedulerConfig, log *zap.Logger) *CloseScheduler {
	return &CloseScheduler{
		cron:   cron.New(),
		ledger: ledger,
		lock:   lock,
		cfg:    cfg,
		logger: log,
	}
}

// Start registers the close job and starts the cron loop
func (s *CloseScheduler) Start() error {
	if !s.cfg.Enabled {
		s.logger.Info("settlement close scheduler disabled")
		return nil
	}

	_, err := s.cron.AddFunc(s.cfg.CronSchedule, s.runOnce)
	if err != nil {
		return err
	}

	s.cron.Start()
	s.logger.Info("settlement close scheduler started", zap.String("schedule", s.cfg.CronSchedule))
	return nil
}

// Stop stops the cron loop and waits for a running job to finish
func (s *CloseScheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("settlement close scheduler stopped")
}

func (s *CloseScheduler) runOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.JobTimeout)
	defer cancel()
	ctx = logger.WithContext(ctx, s.logger)

	lease, acquired, err := s.lock.Acquire(ctx, closeLockName, s.cfg.LockTTL)
	if err != nil {
		s.logger.Error("failed to acquire close lock", zap.Error(err))
		return
	}
	if !acquired {
		s.logger.Info("close already running on another replica")
		return
	}
	defer func() {
		if err := lease.Release(context.Background()); err != nil {
			s.logger.Warn("failed to release close lock", zap.Error(err))
		}
	}()

	report, err := s.ledger.CloseWeek(ctx, auth.SystemPrincipal("scheduler"), time.Now())
	if err != nil {
		s.logger.Error("scheduled close failed", zap.Error(err))
		return
	}

	s.logger.Info("scheduled close finished",
		zap.Int("tenants_processed", report.TenantsProcessed),
		zap.Int("targets_closed", report.TargetsClosed),
		zap.Int("failures", len(report.Failures)),
	)
}
