package persistence

import (
	"context"
	"database/sql/driver"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/fleetops/backend/internal/domain/shared"
	"github.com/fleetops/backend/internal/infrastructure/persistence/tenantctx"
)

// sqlStateError is implemented by both lib/pq and pgx driver errors,
// so translation works regardless of which driver opened the connection.
type sqlStateError interface {
	SQLState() string
}

// TranslateError maps storage-level failures onto the domain error
// taxonomy. Domain errors pass through untouched so services can return
// them from inside a unit of work without double wrapping.
func TranslateError(err error) error {
	if err == nil {
		return nil
	}

	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		return err
	}

	switch {
	case errors.Is(err, tenantctx.ErrTenantRequired),
		errors.Is(err, tenantctx.ErrInvalidTenantID):
		return shared.ErrTenantIsolation
	case errors.Is(err, gorm.ErrRecordNotFound):
		return shared.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return shared.ErrConflict
	case errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, driver.ErrBadConn):
		return &shared.DomainError{Code: shared.CodeStoreUnavailable, Message: err.Error()}
	}

	var stateErr sqlStateError
	if errors.As(err, &stateErr) {
		switch stateErr.SQLState() {
		case "42501": // insufficient_privilege, raised by row security policies
			return shared.ErrTenantIsolation
		case "23505": // unique_violation
			return shared.ErrConflict
		case "23503", "23514": // foreign_key_violation, check_violation
			return shared.NewValidationError(err.Error())
		case "40001", "40P01": // serialization_failure, deadlock_detected
			return shared.ErrConflict
		}
	}

	// pgx reports policy rejections on insert as a distinct message
	// without a dedicated sentinel type.
	if strings.Contains(err.Error(), "violates row-level security policy") {
		return shared.ErrTenantIsolation
	}

	return &shared.DomainError{Code: shared.CodeStoreUnavailable, Message: err.Error()}
}
