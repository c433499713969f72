package tenantctx

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func newPostgresMock(t *testing.T) (*gorm.DB, sqlmock.Sqlmock, *sql.DB) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	}), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)

	return gormDB, mock, mockDB
}

func TestActivate(t *testing.T) {
	t.Run("binds both session parameters locally", func(t *testing.T) {
		db, mock, mockDB := newPostgresMock(t)
		defer mockDB.Close()

		tenantID := uuid.New()
		mock.ExpectExec(`SELECT set_config\(\$1, \$2, true\), set_config\(\$3, \$4, true\)`).
			WithArgs(TenantSetting, tenantID.String(), SuperAdminSetting, "off").
			WillReturnResult(sqlmock.NewResult(0, 0))

		require.NoError(t, Activate(db, tenantID, false))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("super admin activates with empty tenant", func(t *testing.T) {
		db, mock, mockDB := newPostgresMock(t)
		defer mockDB.Close()

		mock.ExpectExec(`SELECT set_config\(\$1, \$2, true\), set_config\(\$3, \$4, true\)`).
			WithArgs(TenantSetting, "", SuperAdminSetting, "on").
			WillReturnResult(sqlmock.NewResult(0, 0))

		require.NoError(t, Activate(db, uuid.Nil, true))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("nil tenant without super admin fails closed", func(t *testing.T) {
		db, _, mockDB := newPostgresMock(t)
		defer mockDB.Close()

		err := Activate(db, uuid.Nil, false)
		assert.True(t, errors.Is(err, ErrTenantRequired))
	})
}

func TestDeactivate(t *testing.T) {
	db, mock, mockDB := newPostgresMock(t)
	defer mockDB.Close()

	mock.ExpectExec(`SELECT set_config\(\$1, '', true\), set_config\(\$2, 'off', true\)`).
		WithArgs(TenantSetting, SuperAdminSetting).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, Deactivate(db))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCurrent(t *testing.T) {
	db, mock, mockDB := newPostgresMock(t)
	defer mockDB.Close()

	tenantID := uuid.New().String()
	mock.ExpectQuery(`SELECT COALESCE\(current_setting\(\$1, true\), ''\)`).
		WithArgs(TenantSetting).
		WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow(tenantID))

	got, err := Current(db)
	require.NoError(t, err)
	assert.Equal(t, tenantID, got)
}

func TestPlatformScope(t *testing.T) {
	ctx := context.Background()
	assert.False(t, IsPlatformScope(ctx))
	assert.True(t, IsPlatformScope(WithPlatformScope(ctx)))
}
