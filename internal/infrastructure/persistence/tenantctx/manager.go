// Package tenantctx manages the tenant context of a database transaction.
//
// Two mechanisms stack on top of each other:
//
//  1. Transaction-local session parameters (app.current_tenant and
//     app.super_admin), set via parameter-bound set_config calls. The
//     database's row-level-security policies read these on every statement,
//     so a transaction whose context was never activated sees no tenant rows
//     at all (fail closed).
//  2. GORM callbacks (callback.go) that add an explicit tenant_id predicate
//     from the request context to every statement touching a tenant-owned
//     table, as defense in depth above the store policy.
//
// Activation must be the first statement of every unit of work. Because the
// parameters are set with is_local=true they die with the transaction, so a
// pooled connection can never carry one tenant's context into another
// tenant's request; Deactivate exists as an explicit belt-and-braces reset
// on the same code path.
package tenantctx

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	// TenantSetting is the session parameter holding the active tenant ID
	TenantSetting = "app.current_tenant"
	// SuperAdminSetting is the session parameter holding the super-admin bypass flag
	SuperAdminSetting = "app.super_admin"
)

// ErrTenantRequired is returned when a tenant-scoped statement runs without
// an activated tenant context
var ErrTenantRequired = errors.New("tenant context is required but not activated")

// ErrInvalidTenantID is returned when the tenant identifier in context is malformed
var ErrInvalidTenantID = errors.New("invalid tenant identifier")

// Activate sets the tenant context on the current transaction. Values are
// parameter-bound, never interpolated, so a hostile identifier cannot inject
// into the statement. Pass superAdmin=true with a nil tenant ID for
// platform-scoped work.
func Activate(tx *gorm.DB, tenantID uuid.UUID, superAdmin bool) error {
	if tenantID == uuid.Nil && !superAdmin {
		return ErrTenantRequired
	}

	tenantValue := ""
	if tenantID != uuid.Nil {
		tenantValue = tenantID.String()
	}
	adminValue := "off"
	if superAdmin {
		adminValue = "on"
	}

	// Session parameters are a PostgreSQL mechanism. On other dialects
	// isolation rests on the statement-level filter callbacks alone.
	if tx.Dialector.Name() != "postgres" {
		return nil
	}

	return tx.Exec(
		"SELECT set_config(?, ?, true), set_config(?, ?, true)",
		TenantSetting, tenantValue, SuperAdminSetting, adminValue,
	).Error
}

// Current reads back the active tenant identifier from the transaction,
// for diagnostics and tests. Returns empty when no context is active.
func Current(tx *gorm.DB) (string, error) {
	var value string
	err := tx.Raw("SELECT COALESCE(current_setting(?, true), '')", TenantSetting).Scan(&value).Error
	if err != nil {
		return "", err
	}
	return value, nil
}

// Deactivate clears the tenant context on the current transaction. Called
// unconditionally when a unit of work ends; the is_local binding already
// guarantees the parameters cannot outlive the transaction, this makes the
// reset observable on the same connection.
func Deactivate(tx *gorm.DB) error {
	if tx.Dialector.Name() != "postgres" {
		return nil
	}
	return tx.Exec(
		"SELECT set_config(?, '', true), set_config(?, 'off', true)",
		TenantSetting, SuperAdminSetting,
	).Error
}

// platformScopeKey marks a context as platform-scoped so the tenant
// filtering callbacks stand down for it.
type platformScopeKey struct{}

// WithPlatformScope marks ctx as platform-scoped. Only privileged code
// paths that have already verified a super-admin principal may call this.
func WithPlatformScope(ctx context.Context) context.Context {
	return context.WithValue(ctx, platformScopeKey{}, true)
}

// IsPlatformScope reports whether ctx is platform-scoped
func IsPlatformScope(ctx context.Context) bool {
	v, ok := ctx.Value(platformScopeKey{}).(bool)
	return ok && v
}
