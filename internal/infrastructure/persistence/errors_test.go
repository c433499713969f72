package persistence

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"

	"github.com/fleetops/backend/internal/domain/shared"
	"github.com/fleetops/backend/internal/infrastructure/persistence/tenantctx"
)

// pgError mimics the SQLState interface shared by lib/pq and pgx errors
type pgError struct {
	code string
}

func (e *pgError) Error() string    { return "pq: error " + e.code }
func (e *pgError) SQLState() string { return e.code }

func TestTranslateError(t *testing.T) {
	tests := []struct {
		name string
		in   error
		want error
	}{
		{"nil stays nil", nil, nil},
		{"record not found", gorm.ErrRecordNotFound, shared.ErrNotFound},
		{"duplicated key", gorm.ErrDuplicatedKey, shared.ErrConflict},
		{"missing tenant context", tenantctx.ErrTenantRequired, shared.ErrTenantIsolation},
		{"invalid tenant id", tenantctx.ErrInvalidTenantID, shared.ErrTenantIsolation},
		{"insufficient privilege", &pgError{code: "42501"}, shared.ErrTenantIsolation},
		{"unique violation", &pgError{code: "23505"}, shared.ErrConflict},
		{"foreign key violation", &pgError{code: "23503"}, shared.ErrValidation},
		{"check violation", &pgError{code: "23514"}, shared.ErrValidation},
		{"serialization failure", &pgError{code: "40001"}, shared.ErrConflict},
		{"deadlock", &pgError{code: "40P01"}, shared.ErrConflict},
		{"context canceled", context.Canceled, shared.ErrStoreUnavailable},
		{"unknown state", &pgError{code: "58000"}, shared.ErrStoreUnavailable},
		{"plain error", errors.New("connection reset"), shared.ErrStoreUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TranslateError(tt.in)
			if tt.want == nil {
				assert.NoError(t, got)
				return
			}
			assert.True(t, errors.Is(got, tt.want), "got %v", got)
		})
	}

	t.Run("wrapped errors are unwrapped", func(t *testing.T) {
		err := fmt.Errorf("saving driver: %w", &pgError{code: "23505"})
		assert.True(t, errors.Is(TranslateError(err), shared.ErrConflict))
	})

	t.Run("domain errors pass through", func(t *testing.T) {
		in := shared.NewConflictError("already closed")
		assert.Equal(t, error(in), TranslateError(in))
	})

	t.Run("row security message without sqlstate", func(t *testing.T) {
		err := errors.New(`ERROR: new row violates row-level security policy for table "drivers"`)
		assert.True(t, errors.Is(TranslateError(err), shared.ErrTenantIsolation))
	})
}
