// Package identity implements tenant lifecycle administration. All
// operations here run under platform scope and require a super-admin
// principal; tenant-scoped code never sees another tenant's directory
// entry.
package identity

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fleetops/backend/internal/domain/identity"
	"github.com/fleetops/backend/internal/domain/shared"
	"github.com/fleetops/backend/internal/infrastructure/auth"
	"github.com/fleetops/backend/internal/infrastructure/persistence"
)

// TenantService administers the tenant directory
type TenantService struct {
	runner *persistence.Runner
}

// NewTenantService creates a new TenantService
func NewTenantService(runner *persistence.Runner) *TenantService {
	return &TenantService{runner: runner}
}

// RegisterTenantInput carries the fields for onboarding a tenant
type RegisterTenantInput struct {
	Code        string
	Name        string
	ContactName string
	Phone       string
	Email       string
	Plan        identity.TenantPlan
}

// TenantDTO is the external representation of a tenant
type TenantDTO struct {
	ID     uuid.UUID             `json:"id"`
	Code   string                `json:"code"`
	Name   string                `json:"name"`
	Status identity.TenantStatus `json:"status"`
	Plan   identity.TenantPlan   `json:"plan"`
}

func toTenantDTO(t *identity.Tenant) *TenantDTO {
	return &TenantDTO{
		ID:     t.ID,
		Code:   t.Code,
		Name:   t.Name,
		Status: t.Status,
		Plan:   t.Plan,
	}
}

// Register onboards a new tenant
func (s *TenantService) Register(ctx context.Context, principal auth.Principal, input RegisterTenantInput) (*TenantDTO, error) {
	var dto *TenantDTO
	err := s.runner.RunPlatform(ctx, principal, "identity.register_tenant", func(ctx context.Context, scope *persistence.Scope) error {
		tenant, err := identity.NewTenant(input.Code, input.Name)
		if err != nil {
			return err
		}
		if input.ContactName != "" || input.Phone != "" || input.Email != "" {
			if err := tenant.SetContact(input.ContactName, input.Phone, input.Email); err != nil {
				return err
			}
		}
		if input.Plan != "" {
			if err := tenant.SetPlan(input.Plan); err != nil {
				return err
			}
		}

		if err := scope.Tenants().Save(ctx, tenant); err != nil {
			return err
		}
		dto = toTenantDTO(tenant)
		return nil
	}, zap.String("tenant_code", input.Code))
	if err != nil {
		return nil, err
	}
	return dto, nil
}

// Get returns a tenant by ID
func (s *TenantService) Get(ctx context.Context, principal auth.Principal, tenantID uuid.UUID) (*TenantDTO, error) {
	var dto *TenantDTO
	err := s.runner.RunPlatform(ctx, principal, "identity.get_tenant", func(ctx context.Context, scope *persistence.Scope) error {
		tenant, err := scope.Tenants().FindByID(ctx, tenantID)
		if err != nil {
			return err
		}
		dto = toTenantDTO(tenant)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dto, nil
}

// List lists tenants matching the filter
func (s *TenantService) List(ctx context.Context, principal auth.Principal, filter shared.Filter) ([]TenantDTO, error) {
	var dtos []TenantDTO
	err := s.runner.RunPlatform(ctx, principal, "identity.list_tenants", func(ctx context.Context, scope *persistence.Scope) error {
		tenants, err := scope.Tenants().FindAll(ctx, filter)
		if err != nil {
			return err
		}
		dtos = make([]TenantDTO, 0, len(tenants))
		for i := range tenants {
			dtos = append(dtos, *toTenantDTO(&tenants[i]))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dtos, nil
}

// Suspend suspends a tenant. Suspended tenants keep their data but their
// scoped operations are refused at the interfaces layer.
func (s *TenantService) Suspend(ctx context.Context, principal auth.Principal, tenantID uuid.UUID) error {
	return s.lifecycle(ctx, principal, tenantID, "identity.suspend_tenant", (*identity.Tenant).Suspend)
}

// Reactivate returns a suspended tenant to active
func (s *TenantService) Reactivate(ctx context.Context, principal auth.Principal, tenantID uuid.UUID) error {
	return s.lifecycle(ctx, principal, tenantID, "identity.reactivate_tenant", (*identity.Tenant).Reactivate)
}

// Cancel terminates a tenant's subscription, retaining its data
func (s *TenantService) Cancel(ctx context.Context, principal auth.Principal, tenantID uuid.UUID) error {
	return s.lifecycle(ctx, principal, tenantID, "identity.cancel_tenant", (*identity.Tenant).Cancel)
}

func (s *TenantService) lifecycle(ctx context.Context, principal auth.Principal, tenantID uuid.UUID, operation string, transition func(*identity.Tenant) error) error {
	return s.runner.RunPlatform(ctx, principal, operation, func(ctx context.Context, scope *persistence.Scope) error {
		tenant, err := scope.Tenants().FindByID(ctx, tenantID)
		if err != nil {
			return err
		}
		if err := transition(tenant); err != nil {
			return err
		}
		return scope.Tenants().Save(ctx, tenant)
	}, zap.String("target_tenant_id", tenantID.String()))
}

// Delete hard-deletes a tenant. Refused while any tenant-owned records
// remain, so a mistyped ID cannot silently take fleet data with it.
func (s *TenantService) Delete(ctx context.Context, principal auth.Principal, tenantID uuid.UUID) error {
	return s.runner.RunPlatform(ctx, principal, "identity.delete_tenant", func(ctx context.Context, scope *persistence.Scope) error {
		tenant, err := scope.Tenants().FindByID(ctx, tenantID)
		if err != nil {
			return err
		}

		counts, err := scope.Tenants().CountDependents(ctx, tenant.ID)
		if err != nil {
			return err
		}
		if counts.Total() > 0 {
			return shared.NewConflictError(fmt.Sprintf(
				"Tenant still owns %d drivers and %d vehicles", counts.Drivers, counts.Vehicles))
		}

		return scope.Tenants().Delete(ctx, tenant.ID)
	}, zap.String("target_tenant_id", tenantID.String()))
}
