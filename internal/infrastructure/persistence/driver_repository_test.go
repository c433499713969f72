package persistence

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/fleetops/backend/internal/domain/shared"
)

func newMockGorm(t *testing.T) (*gorm.DB, sqlmock.Sqlmock, *sql.DB) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return gormDB, mock, mockDB
}

func driverRows(id, tenantID uuid.UUID) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "tenant_id", "name", "phone", "licence_number", "status", "debt_balance"}).
		AddRow(id, tenantID, "Sam Okafor", "", "DL-99821", "active", decimal.NewFromInt(150))
}

func TestDriverRepository_FindByID(t *testing.T) {
	t.Run("finds existing driver", func(t *testing.T) {
		gormDB, mock, mockDB := newMockGorm(t)
		defer mockDB.Close()
		repo := newDriverRepository(gormDB)

		driverID := uuid.New()
		mock.ExpectQuery(`SELECT \* FROM "drivers" WHERE id = \$1 ORDER BY .* LIMIT .*`).
			WithArgs(driverID, 1).
			WillReturnRows(driverRows(driverID, uuid.New()))

		driver, err := repo.FindByID(context.Background(), driverID)

		require.NoError(t, err)
		assert.Equal(t, driverID, driver.ID)
		assert.True(t, driver.DebtBalance.Equal(decimal.NewFromInt(150)))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("maps missing row to not found", func(t *testing.T) {
		gormDB, mock, mockDB := newMockGorm(t)
		defer mockDB.Close()
		repo := newDriverRepository(gormDB)

		driverID := uuid.New()
		mock.ExpectQuery(`SELECT \* FROM "drivers" WHERE id = \$1 ORDER BY .* LIMIT .*`).
			WithArgs(driverID, 1).
			WillReturnError(gorm.ErrRecordNotFound)

		_, err := repo.FindByID(context.Background(), driverID)

		assert.True(t, errors.Is(err, shared.ErrNotFound))
	})
}

func TestDriverRepository_FindByIDForUpdate(t *testing.T) {
	t.Run("takes a row lock on postgres", func(t *testing.T) {
		gormDB, mock, mockDB := newMockGorm(t)
		defer mockDB.Close()
		repo := newDriverRepository(gormDB)

		driverID := uuid.New()
		mock.ExpectQuery(`SELECT \* FROM "drivers" WHERE id = \$1 ORDER BY .* LIMIT .* FOR UPDATE`).
			WithArgs(driverID, 1).
			WillReturnRows(driverRows(driverID, uuid.New()))

		driver, err := repo.FindByIDForUpdate(context.Background(), driverID)

		require.NoError(t, err)
		assert.Equal(t, driverID, driver.ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
