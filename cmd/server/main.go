package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	appidentity "github.com/fleetops/backend/internal/application/identity"
	appsettlement "github.com/fleetops/backend/internal/application/settlement"
	"github.com/fleetops/backend/internal/infrastructure/auth"
	"github.com/fleetops/backend/internal/infrastructure/cache"
	"github.com/fleetops/backend/internal/infrastructure/config"
	"github.com/fleetops/backend/internal/infrastructure/logger"
	"github.com/fleetops/backend/internal/infrastructure/persistence"
	"github.com/fleetops/backend/internal/infrastructure/scheduler"
	httpiface "github.com/fleetops/backend/internal/interfaces/http"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logCfg := logger.DefaultConfig()
	if cfg.App.Env == "production" {
		logCfg = logger.ProductionConfig()
	}
	if cfg.Log.Level != "" {
		logCfg.Level = cfg.Log.Level
	}
	if cfg.Log.Format != "" {
		logCfg.Format = cfg.Log.Format
	}
	if cfg.Log.Output != "" {
		logCfg.Output = cfg.Log.Output
	}

	log, err := logger.New(logCfg)
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	defer log.Sync() //nolint:errcheck

	log.Info("starting fleetops core",
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	db, err := persistence.NewDatabase(&cfg.Database)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	defer db.Close() //nolint:errcheck

	redisClient, err := cache.NewRedisClient(cfg.Redis)
	if err != nil {
		log.Fatal("failed to connect to redis", zap.Error(err))
	}
	defer redisClient.Close() //nolint:errcheck

	runner := persistence.NewRunner(db, log)
	ledger := appsettlement.NewLedgerService(runner)
	tenants := appidentity.NewTenantService(runner)

	verifier := auth.NewTokenVerifier(cfg.JWT.Secret, cfg.JWT.Issuer)

	lock := cache.NewRedisLock(redisClient, "fleetops")
	closeScheduler := scheduler.NewCloseScheduler(ledger, lock, cfg.Scheduler, log)
	if err := closeScheduler.Start(); err != nil {
		log.Fatal("failed to start scheduler", zap.Error(err))
	}

	server := httpiface.NewServer(cfg, db, ledger, tenants, verifier, log)
	go func() {
		if err := server.Start(); err != nil {
			log.Fatal("ops server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")
	closeScheduler.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Error("shutdown did not complete cleanly", zap.Error(err))
	}
}
