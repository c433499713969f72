package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/fleetops/backend/internal/domain/settlement"
)

func setupWeeklyTargetTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(&settlement.WeeklyTarget{}))
	return db
}

func TestWeeklyTargetRepository_CreateIfAbsent(t *testing.T) {
	at := time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC)
	ctx := context.Background()

	t.Run("creates the week on first touch", func(t *testing.T) {
		repo := newWeeklyTargetRepository(setupWeeklyTargetTestDB(t))

		target, err := settlement.NewWeeklyTarget(uuid.New(), uuid.New(), at, decimal.NewFromInt(700))
		require.NoError(t, err)

		won, err := repo.CreateIfAbsent(ctx, target)

		require.NoError(t, err)
		assert.Equal(t, target.ID, won.ID)
		assert.Equal(t, 2026, won.ISOYear)
		assert.Equal(t, 10, won.ISOWeek)
	})

	t.Run("second materialization returns the existing row", func(t *testing.T) {
		repo := newWeeklyTargetRepository(setupWeeklyTargetTestDB(t))
		tenantID := uuid.New()
		driverID := uuid.New()

		first, err := settlement.NewWeeklyTarget(tenantID, driverID, at, decimal.NewFromInt(700))
		require.NoError(t, err)
		_, err = repo.CreateIfAbsent(ctx, first)
		require.NoError(t, err)

		require.NoError(t, first.AddCollected(decimal.NewFromInt(100)))
		require.NoError(t, repo.Save(ctx, first))

		// a racing caller presents a fresh row for the same driver and week
		second, err := settlement.NewWeeklyTarget(tenantID, driverID, at, decimal.NewFromInt(900))
		require.NoError(t, err)

		won, err := repo.CreateIfAbsent(ctx, second)

		require.NoError(t, err)
		assert.Equal(t, first.ID, won.ID)
		assert.True(t, won.TargetAmount.Equal(decimal.NewFromInt(700)))
		assert.True(t, won.CollectedAmount.Equal(decimal.NewFromInt(100)))
	})
}

func TestWeeklyTargetRepository_FindOpenEndedBefore(t *testing.T) {
	ctx := context.Background()
	repo := newWeeklyTargetRepository(setupWeeklyTargetTestDB(t))
	tenantID := uuid.New()

	past, err := settlement.NewWeeklyTarget(tenantID, uuid.New(),
		time.Date(2026, 2, 25, 0, 0, 0, 0, time.UTC), decimal.NewFromInt(700))
	require.NoError(t, err)
	_, err = repo.CreateIfAbsent(ctx, past)
	require.NoError(t, err)

	current, err := settlement.NewWeeklyTarget(tenantID, uuid.New(),
		time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC), decimal.NewFromInt(700))
	require.NoError(t, err)
	_, err = repo.CreateIfAbsent(ctx, current)
	require.NoError(t, err)

	closed, err := settlement.NewWeeklyTarget(tenantID, uuid.New(),
		time.Date(2026, 2, 18, 0, 0, 0, 0, time.UTC), decimal.NewFromInt(700))
	require.NoError(t, err)
	_, err = closed.Close()
	require.NoError(t, err)
	_, err = repo.CreateIfAbsent(ctx, closed)
	require.NoError(t, err)

	// cutoff falls inside the current week: only the past open week qualifies
	due, err := repo.FindOpenEndedBefore(ctx, time.Date(2026, 3, 5, 3, 0, 0, 0, time.UTC))

	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, past.ID, due[0].ID)
}
