package identity

import (
	"strings"
	"time"

	"github.com/fleetops/backend/internal/domain/shared"
)

// TenantStatus represents the status of a tenant
type TenantStatus string

const (
	TenantStatusActive    TenantStatus = "active"
	TenantStatusSuspended TenantStatus = "suspended" // Suspended due to payment/violation issues
	TenantStatusCanceled  TenantStatus = "canceled"  // Subscription terminated, data retained
)

// TenantPlan represents the subscription plan of a tenant
type TenantPlan string

const (
	TenantPlanStarter    TenantPlan = "starter"
	TenantPlanFleet      TenantPlan = "fleet"
	TenantPlanEnterprise TenantPlan = "enterprise"
)

// Tenant represents a transport company in the multi-tenant system.
// It is the aggregate root for tenant lifecycle operations; every other
// domain entity is owned by exactly one tenant.
type Tenant struct {
	shared.BaseAggregateRoot
	Code         string       `gorm:"type:varchar(50);not null;uniqueIndex"`
	Name         string       `gorm:"type:varchar(200);not null"`
	Status       TenantStatus `gorm:"type:varchar(20);not null;default:'active'"`
	Plan         TenantPlan   `gorm:"type:varchar(20);not null;default:'starter'"`
	ContactName  string       `gorm:"type:varchar(100)"`
	ContactPhone string       `gorm:"type:varchar(50)"`
	ContactEmail string       `gorm:"type:varchar(200)"`
	CanceledAt   *time.Time
	Notes        string `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (Tenant) TableName() string {
	return "tenants"
}

// NewTenant creates a new active tenant with required fields
func NewTenant(code, name string) (*Tenant, error) {
	if err := validateTenantCode(code); err != nil {
		return nil, err
	}
	if err := validateTenantName(name); err != nil {
		return nil, err
	}

	return &Tenant{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Code:              strings.ToUpper(code),
		Name:              name,
		Status:            TenantStatusActive,
		Plan:              TenantPlanStarter,
	}, nil
}

// Update updates the tenant's basic information
func (t *Tenant) Update(name string) error {
	if err := validateTenantName(name); err != nil {
		return err
	}

	t.Name = name
	t.Touch()
	t.IncrementVersion()

	return nil
}

// SetContact sets the tenant's contact information
func (t *Tenant) SetContact(contactName, phone, email string) error {
	if contactName != "" && len(contactName) > 100 {
		return shared.NewValidationError("Contact name cannot exceed 100 characters")
	}
	if phone != "" && len(phone) > 50 {
		return shared.NewValidationError("Phone cannot exceed 50 characters")
	}
	if email != "" && len(email) > 200 {
		return shared.NewValidationError("Email cannot exceed 200 characters")
	}

	t.ContactName = contactName
	t.ContactPhone = phone
	t.ContactEmail = email
	t.Touch()
	t.IncrementVersion()

	return nil
}

// SetPlan sets the tenant's subscription plan
func (t *Tenant) SetPlan(plan TenantPlan) error {
	switch plan {
	case TenantPlanStarter, TenantPlanFleet, TenantPlanEnterprise:
	default:
		return shared.NewValidationError("Invalid tenant plan")
	}

	t.Plan = plan
	t.Touch()
	t.IncrementVersion()

	return nil
}

// Suspend suspends the tenant (e.g., due to payment issues)
func (t *Tenant) Suspend() error {
	if t.Status == TenantStatusSuspended {
		return shared.NewConflictError("Tenant is already suspended")
	}
	if t.Status == TenantStatusCanceled {
		return shared.NewConflictError("Cannot suspend a canceled tenant")
	}

	t.Status = TenantStatusSuspended
	t.Touch()
	t.IncrementVersion()

	return nil
}

// Reactivate returns a suspended tenant to active status
func (t *Tenant) Reactivate() error {
	if t.Status == TenantStatusActive {
		return shared.NewConflictError("Tenant is already active")
	}
	if t.Status == TenantStatusCanceled {
		return shared.NewConflictError("Cannot reactivate a canceled tenant")
	}

	t.Status = TenantStatusActive
	t.Touch()
	t.IncrementVersion()

	return nil
}

// Cancel terminates the tenant's subscription. Data is retained; hard
// deletion is a separate operation gated on zero dependents.
func (t *Tenant) Cancel() error {
	if t.Status == TenantStatusCanceled {
		return shared.NewConflictError("Tenant is already canceled")
	}

	now := time.Now()
	t.Status = TenantStatusCanceled
	t.CanceledAt = &now
	t.Touch()
	t.IncrementVersion()

	return nil
}

// IsActive returns true if the tenant is active
func (t *Tenant) IsActive() bool {
	return t.Status == TenantStatusActive
}

// IsSuspended returns true if the tenant is suspended
func (t *Tenant) IsSuspended() bool {
	return t.Status == TenantStatusSuspended
}

// IsCanceled returns true if the tenant is canceled
func (t *Tenant) IsCanceled() bool {
	return t.Status == TenantStatusCanceled
}

func validateTenantCode(code string) error {
	if code == "" {
		return shared.NewValidationError("Tenant code cannot be empty")
	}
	if len(code) > 50 {
		return shared.NewValidationError("Tenant code cannot exceed 50 characters")
	}
	for _, r := range code {
		if !((r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' || r == '-') {
			return shared.NewValidationError("Tenant code can only contain letters, numbers, underscores, and hyphens")
		}
	}
	return nil
}

func validateTenantName(name string) error {
	if name == "" {
		return shared.NewValidationError("Tenant name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewValidationError("Tenant name cannot exceed 200 characters")
	}
	return nil
}
