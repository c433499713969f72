package tenantctx

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/fleetops/backend/internal/infrastructure/logger"
)

type tenantRow struct {
	ID        string `gorm:"primaryKey"`
	TenantID  string `gorm:"index"`
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (tenantRow) TableName() string { return "tenant_rows" }

type globalRow struct {
	ID   string `gorm:"primaryKey"`
	Name string
}

func (globalRow) TableName() string { return "global_rows" }

func setupCallbackDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&tenantRow{}, &globalRow{}))
	RegisterCallbacks(db)
	return db
}

func tenantContext(tenantID string) context.Context {
	ctx, _ := logger.WithTenantID(context.Background(), zap.NewNop(), tenantID)
	return ctx
}

func TestTenantFilterCallback(t *testing.T) {
	tenantA := uuid.New().String()
	tenantB := uuid.New().String()

	seed := func(t *testing.T, db *gorm.DB) {
		// seeding bypasses the query callbacks; create is not filtered
		require.NoError(t, db.Create(&tenantRow{ID: "a1", TenantID: tenantA, Name: "alpha"}).Error)
		require.NoError(t, db.Create(&tenantRow{ID: "b1", TenantID: tenantB, Name: "beta"}).Error)
	}

	t.Run("query is filtered to the active tenant", func(t *testing.T) {
		db := setupCallbackDB(t)
		seed(t, db)

		var rows []tenantRow
		err := db.WithContext(tenantContext(tenantA)).Find(&rows).Error

		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, "a1", rows[0].ID)
	})

	t.Run("fails closed without a tenant in context", func(t *testing.T) {
		db := setupCallbackDB(t)
		seed(t, db)

		var rows []tenantRow
		err := db.WithContext(context.Background()).Find(&rows).Error

		assert.True(t, errors.Is(err, ErrTenantRequired))
	})

	t.Run("rejects a malformed tenant identifier", func(t *testing.T) {
		db := setupCallbackDB(t)
		seed(t, db)

		var rows []tenantRow
		err := db.WithContext(tenantContext("not-a-uuid")).Find(&rows).Error

		assert.True(t, errors.Is(err, ErrInvalidTenantID))
	})

	t.Run("platform scope sees every tenant", func(t *testing.T) {
		db := setupCallbackDB(t)
		seed(t, db)

		var rows []tenantRow
		err := db.WithContext(WithPlatformScope(context.Background())).Find(&rows).Error

		require.NoError(t, err)
		assert.Len(t, rows, 2)
	})

	t.Run("updates are scoped to the active tenant", func(t *testing.T) {
		db := setupCallbackDB(t)
		seed(t, db)

		err := db.WithContext(tenantContext(tenantA)).
			Model(&tenantRow{}).
			Where("name = ?", "beta").
			Update("name", "stolen").Error
		require.NoError(t, err)

		var row tenantRow
		require.NoError(t, db.WithContext(tenantContext(tenantB)).First(&row, "id = ?", "b1").Error)
		assert.Equal(t, "beta", row.Name, "tenant A must not reach tenant B's row")
	})

	t.Run("deletes are scoped to the active tenant", func(t *testing.T) {
		db := setupCallbackDB(t)
		seed(t, db)

		err := db.WithContext(tenantContext(tenantA)).Delete(&tenantRow{}, "id = ?", "b1").Error
		require.NoError(t, err)

		var count int64
		require.NoError(t, db.WithContext(WithPlatformScope(context.Background())).
			Model(&tenantRow{}).Count(&count).Error)
		assert.Equal(t, int64(2), count)
	})

	t.Run("tables without tenant_id are untouched", func(t *testing.T) {
		db := setupCallbackDB(t)
		require.NoError(t, db.Create(&globalRow{ID: "g1", Name: "global"}).Error)

		var rows []globalRow
		err := db.WithContext(context.Background()).Find(&rows).Error

		require.NoError(t, err)
		assert.Len(t, rows, 1)
	})
}

func TestHasTenantCondition(t *testing.T) {
	db := setupCallbackDB(t)
	tc := tenantCallback{}

	t.Run("recognizes an explicit string predicate", func(t *testing.T) {
		stmt := db.Model(&tenantRow{}).Where("tenant_id = ?", uuid.New().String())
		assert.True(t, tc.hasTenantCondition(stmt))
	})

	t.Run("recognizes the injected equality clause", func(t *testing.T) {
		stmt := db.Model(&tenantRow{}).Where(clause.Eq{
			Column: clause.Column{Table: clause.CurrentTable, Name: "tenant_id"},
			Value:  uuid.New().String(),
		})
		assert.True(t, tc.hasTenantCondition(stmt))
	})

	t.Run("a statement merely naming the column is not a predicate", func(t *testing.T) {
		stmt := db.Model(&tenantRow{}).Select("tenant_id").Where("name = ?", "alpha")
		stmt.Statement.SQL.WriteString("SELECT tenant_id FROM tenant_rows")

		assert.False(t, tc.hasTenantCondition(stmt))
	})
}
