package fleet

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/fleetops/backend/internal/domain/fleet"
	"github.com/fleetops/backend/internal/domain/identity"
	"github.com/fleetops/backend/internal/domain/settlement"
	"github.com/fleetops/backend/internal/domain/shared"
	"github.com/fleetops/backend/internal/infrastructure/auth"
	"github.com/fleetops/backend/internal/infrastructure/persistence"
)

func newTestRoster(t *testing.T) (*RosterService, uuid.UUID) {
	gormDB, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, gormDB.AutoMigrate(
		&identity.Tenant{},
		&fleet.Driver{},
		&fleet.Vehicle{},
		&fleet.Assignment{},
		&settlement.Remittance{},
		&settlement.WeeklyTarget{},
	))

	runner := persistence.NewRunner(persistence.NewDatabaseFromGorm(gormDB), zap.NewNop())

	var tenantID uuid.UUID
	err = runner.RunPlatform(context.Background(), auth.SystemPrincipal("test"), "test.seed_tenant", func(ctx context.Context, scope *persistence.Scope) error {
		tenant, err := identity.NewTenant("ACME", "Acme Fleet Ltd")
		if err != nil {
			return err
		}
		tenantID = tenant.ID
		return scope.Tenants().Save(ctx, tenant)
	})
	require.NoError(t, err)

	return NewRosterService(runner), tenantID
}

func createTestDriver(t *testing.T, svc *RosterService, tenantID uuid.UUID, licence string) *DriverDTO {
	dto, err := svc.CreateDriver(context.Background(), tenantID, CreateDriverInput{
		Name:          "Sam Okafor",
		LicenceNumber: licence,
	})
	require.NoError(t, err)
	return dto
}

func createTestVehicle(t *testing.T, svc *RosterService, tenantID uuid.UUID, reg string) *VehicleDTO {
	dto, err := svc.CreateVehicle(context.Background(), tenantID, CreateVehicleInput{
		Registration:  reg,
		PaymentConfig: fleet.FixedPaymentConfig(decimal.NewFromInt(120), 6),
	})
	require.NoError(t, err)
	return dto
}

func TestRosterService_CreateDriver(t *testing.T) {
	t.Run("creates an active driver with a zero balance", func(t *testing.T) {
		svc, tenantID := newTestRoster(t)

		dto := createTestDriver(t, svc, tenantID, "DL-100")

		assert.Equal(t, fleet.DriverStatusActive, dto.Status)
		assert.True(t, dto.DebtBalance.IsZero())
	})

	t.Run("duplicate licence within a tenant conflicts", func(t *testing.T) {
		svc, tenantID := newTestRoster(t)
		createTestDriver(t, svc, tenantID, "DL-100")

		_, err := svc.CreateDriver(context.Background(), tenantID, CreateDriverInput{
			Name:          "Other Driver",
			LicenceNumber: "DL-100",
		})
		assert.True(t, errors.Is(err, shared.ErrConflict))
	})

	t.Run("rejects empty name", func(t *testing.T) {
		svc, tenantID := newTestRoster(t)

		_, err := svc.CreateDriver(context.Background(), tenantID, CreateDriverInput{
			LicenceNumber: "DL-100",
		})
		assert.True(t, errors.Is(err, shared.ErrValidation))
	})
}

func TestRosterService_AssignDriver(t *testing.T) {
	start := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

	t.Run("opens a primary assignment", func(t *testing.T) {
		svc, tenantID := newTestRoster(t)
		driver := createTestDriver(t, svc, tenantID, "DL-100")
		vehicle := createTestVehicle(t, svc, tenantID, "KCB 123X")

		dto, err := svc.AssignDriver(context.Background(), tenantID, AssignDriverInput{
			DriverID:  driver.ID,
			VehicleID: vehicle.ID,
			StartDate: start,
			IsPrimary: true,
		})
		require.NoError(t, err)

		assert.Nil(t, dto.EndDate)
		assert.True(t, dto.IsPrimary)
	})

	t.Run("vehicle with an open assignment cannot be reassigned", func(t *testing.T) {
		svc, tenantID := newTestRoster(t)
		first := createTestDriver(t, svc, tenantID, "DL-100")
		second := createTestDriver(t, svc, tenantID, "DL-200")
		vehicle := createTestVehicle(t, svc, tenantID, "KCB 123X")

		_, err := svc.AssignDriver(context.Background(), tenantID, AssignDriverInput{
			DriverID: first.ID, VehicleID: vehicle.ID, StartDate: start, IsPrimary: true,
		})
		require.NoError(t, err)

		_, err = svc.AssignDriver(context.Background(), tenantID, AssignDriverInput{
			DriverID: second.ID, VehicleID: vehicle.ID, StartDate: start, IsPrimary: true,
		})
		assert.True(t, errors.Is(err, shared.ErrConflict))
	})

	t.Run("driver keeps at most one open primary assignment", func(t *testing.T) {
		svc, tenantID := newTestRoster(t)
		driver := createTestDriver(t, svc, tenantID, "DL-100")
		first := createTestVehicle(t, svc, tenantID, "KCB 123X")
		second := createTestVehicle(t, svc, tenantID, "KDA 456Y")

		_, err := svc.AssignDriver(context.Background(), tenantID, AssignDriverInput{
			DriverID: driver.ID, VehicleID: first.ID, StartDate: start, IsPrimary: true,
		})
		require.NoError(t, err)

		_, err = svc.AssignDriver(context.Background(), tenantID, AssignDriverInput{
			DriverID: driver.ID, VehicleID: second.ID, StartDate: start, IsPrimary: true,
		})
		assert.True(t, errors.Is(err, shared.ErrConflict))
	})

	t.Run("ending the assignment frees both sides", func(t *testing.T) {
		svc, tenantID := newTestRoster(t)
		driver := createTestDriver(t, svc, tenantID, "DL-100")
		vehicle := createTestVehicle(t, svc, tenantID, "KCB 123X")

		opened, err := svc.AssignDriver(context.Background(), tenantID, AssignDriverInput{
			DriverID: driver.ID, VehicleID: vehicle.ID, StartDate: start, IsPrimary: true,
		})
		require.NoError(t, err)

		ended, err := svc.EndAssignment(context.Background(), tenantID, opened.ID, start.AddDate(0, 0, 30))
		require.NoError(t, err)
		require.NotNil(t, ended.EndDate)

		_, err = svc.AssignDriver(context.Background(), tenantID, AssignDriverInput{
			DriverID: driver.ID, VehicleID: vehicle.ID, StartDate: start.AddDate(0, 1, 0), IsPrimary: true,
		})
		assert.NoError(t, err)
	})

	t.Run("inactive driver cannot be assigned", func(t *testing.T) {
		svc, tenantID := newTestRoster(t)
		driver := createTestDriver(t, svc, tenantID, "DL-100")
		vehicle := createTestVehicle(t, svc, tenantID, "KCB 123X")

		require.NoError(t, svc.DeactivateDriver(context.Background(), tenantID, driver.ID))

		_, err := svc.AssignDriver(context.Background(), tenantID, AssignDriverInput{
			DriverID: driver.ID, VehicleID: vehicle.ID, StartDate: start, IsPrimary: true,
		})
		assert.True(t, errors.Is(err, shared.ErrConflict))
	})
}

func TestRosterService_DeactivateDriver(t *testing.T) {
	t.Run("ends open assignments alongside the driver", func(t *testing.T) {
		svc, tenantID := newTestRoster(t)
		driver := createTestDriver(t, svc, tenantID, "DL-100")
		vehicle := createTestVehicle(t, svc, tenantID, "KCB 123X")

		_, err := svc.AssignDriver(context.Background(), tenantID, AssignDriverInput{
			DriverID:  driver.ID,
			VehicleID: vehicle.ID,
			StartDate: time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
			IsPrimary: true,
		})
		require.NoError(t, err)

		require.NoError(t, svc.DeactivateDriver(context.Background(), tenantID, driver.ID))

		got, err := svc.GetDriver(context.Background(), tenantID, driver.ID)
		require.NoError(t, err)
		assert.Equal(t, fleet.DriverStatusInactive, got.Status)

		history, err := svc.AssignmentHistory(context.Background(), tenantID, driver.ID)
		require.NoError(t, err)
		require.Len(t, history, 1)
		assert.NotNil(t, history[0].EndDate)

		_, err = svc.CurrentVehicleForDriver(context.Background(), tenantID, driver.ID)
		assert.True(t, errors.Is(err, shared.ErrNotFound))
	})
}

func TestRosterService_Lookups(t *testing.T) {
	t.Run("current driver and vehicle resolve through the open assignment", func(t *testing.T) {
		svc, tenantID := newTestRoster(t)
		driver := createTestDriver(t, svc, tenantID, "DL-100")
		vehicle := createTestVehicle(t, svc, tenantID, "KCB 123X")

		_, err := svc.AssignDriver(context.Background(), tenantID, AssignDriverInput{
			DriverID:  driver.ID,
			VehicleID: vehicle.ID,
			StartDate: time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
			IsPrimary: true,
		})
		require.NoError(t, err)

		gotDriver, err := svc.CurrentDriverForVehicle(context.Background(), tenantID, vehicle.ID)
		require.NoError(t, err)
		assert.Equal(t, driver.ID, gotDriver.ID)

		gotVehicle, err := svc.CurrentVehicleForDriver(context.Background(), tenantID, driver.ID)
		require.NoError(t, err)
		assert.Equal(t, vehicle.ID, gotVehicle.ID)
	})

	t.Run("tenants cannot see each other's drivers", func(t *testing.T) {
		svc, tenantID := newTestRoster(t)
		driver := createTestDriver(t, svc, tenantID, "DL-100")

		_, err := svc.GetDriver(context.Background(), uuid.New(), driver.ID)
		assert.True(t, errors.Is(err, shared.ErrNotFound))
	})
}

func TestRosterService_UpdateVehiclePaymentConfig(t *testing.T) {
	svc, tenantID := newTestRoster(t)
	vehicle := createTestVehicle(t, svc, tenantID, "KCB 123X")

	updated, err := svc.UpdateVehiclePaymentConfig(context.Background(), tenantID, vehicle.ID,
		fleet.FixedPaymentConfig(decimal.NewFromInt(150), 5))
	require.NoError(t, err)

	assert.True(t, updated.PaymentConfig.WeeklyTargetAmount().Equal(decimal.NewFromInt(750)))
}
