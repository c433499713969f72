// Package http exposes the operational surface of the service: health
// probes and platform-operator endpoints. Tenant-facing CRUD lives in a
// separate edge service; this core only ships what operations needs.
package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/fleetops/backend/internal/application/identity"
	"github.com/fleetops/backend/internal/application/settlement"
	"github.com/fleetops/backend/internal/infrastructure/auth"
	"github.com/fleetops/backend/internal/infrastructure/config"
	"github.com/fleetops/backend/internal/infrastructure/persistence"
)

// Server is the ops HTTP server
type Server struct {
	httpServer *http.Server
	logger     *zap.Logger
}

// NewServer builds the ops server and its routes
func NewServer(cfg *config.Config, db *persistence.Database, ledger *settlement.LedgerService, tenants *identity.TenantService, verifier *auth.TokenVerifier, log *zap.Logger) *Server {
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(RequestContext(log))

	registerHealthRoutes(engine, db)

	ops := engine.Group("/ops", RequireSuperAdmin(verifier))
	registerOpsRoutes(ops, ledger)
	registerTenantRoutes(ops, tenants)

	return &Server{
		httpServer: &http.Server{
			Addr:         ":" + cfg.App.Port,
			Handler:      engine,
			ReadTimeout:  cfg.HTTP.ReadTimeout,
			WriteTimeout: cfg.HTTP.WriteTimeout,
			IdleTimeout:  cfg.HTTP.IdleTimeout,
		},
		logger: log,
	}
}

// Start serves until Shutdown is called
func (s *Server) Start() error {
	s.logger.Info("ops server listening", zap.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests and stops the server
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
