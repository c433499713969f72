package fleet

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDriver(t *testing.T) *Driver {
	driver, err := NewDriver(uuid.New(), "Sam Okafor", "dl-99821")
	require.NoError(t, err)
	return driver
}

func TestNewDriver(t *testing.T) {
	t.Run("creates driver with zero balance", func(t *testing.T) {
		driver := newTestDriver(t)

		assert.Equal(t, "Sam Okafor", driver.Name)
		assert.Equal(t, "DL-99821", driver.LicenceNumber)
		assert.Equal(t, DriverStatusActive, driver.Status)
		assert.True(t, driver.DebtBalance.IsZero())
	})

	t.Run("fails with empty name", func(t *testing.T) {
		_, err := NewDriver(uuid.New(), "  ", "DL-1")
		assert.Error(t, err)
	})

	t.Run("fails with empty licence number", func(t *testing.T) {
		_, err := NewDriver(uuid.New(), "Sam Okafor", "")
		assert.Error(t, err)
	})
}

func TestDriver_BalanceAdjustments(t *testing.T) {
	amount := decimal.RequireFromString("150.00")

	t.Run("collection reduces debt", func(t *testing.T) {
		driver := newTestDriver(t)

		require.NoError(t, driver.ApplyCollection(amount))
		assert.True(t, driver.DebtBalance.Equal(amount.Neg()))
	})

	t.Run("reversal is symmetric with collection", func(t *testing.T) {
		driver := newTestDriver(t)

		require.NoError(t, driver.ApplyCollection(amount))
		require.NoError(t, driver.ReverseCollection(amount))
		assert.True(t, driver.DebtBalance.IsZero())
	})

	t.Run("balance can go negative", func(t *testing.T) {
		driver := newTestDriver(t)

		require.NoError(t, driver.CarryOverShortfall(decimal.NewFromInt(100)))
		require.NoError(t, driver.ApplyCollection(decimal.NewFromInt(250)))
		assert.True(t, driver.DebtBalance.Equal(decimal.NewFromInt(-150)))
	})

	t.Run("rejects non-positive amounts", func(t *testing.T) {
		driver := newTestDriver(t)

		assert.Error(t, driver.ApplyCollection(decimal.Zero))
		assert.Error(t, driver.ReverseCollection(decimal.NewFromInt(-5)))
	})

	t.Run("carry-over adds shortfall to debt", func(t *testing.T) {
		driver := newTestDriver(t)

		require.NoError(t, driver.CarryOverShortfall(decimal.NewFromInt(320)))
		assert.True(t, driver.DebtBalance.Equal(decimal.NewFromInt(320)))
	})

	t.Run("zero carry-over is a no-op", func(t *testing.T) {
		driver := newTestDriver(t)
		version := driver.Version

		require.NoError(t, driver.CarryOverShortfall(decimal.Zero))
		assert.Equal(t, version, driver.Version)
		assert.True(t, driver.DebtBalance.IsZero())
	})

	t.Run("negative carry-over rejected", func(t *testing.T) {
		driver := newTestDriver(t)
		assert.Error(t, driver.CarryOverShortfall(decimal.NewFromInt(-1)))
	})
}

func TestDriver_Deactivate(t *testing.T) {
	driver := newTestDriver(t)

	require.NoError(t, driver.Deactivate())
	assert.False(t, driver.IsActive())

	assert.Error(t, driver.Deactivate())
}
