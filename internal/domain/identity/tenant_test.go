package identity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTenant(t *testing.T) {
	t.Run("creates tenant successfully", func(t *testing.T) {
		tenant, err := NewTenant("ACME-FLEET", "Acme Fleet Ltd")

		require.NoError(t, err)
		assert.Equal(t, "ACME-FLEET", tenant.Code)
		assert.Equal(t, "Acme Fleet Ltd", tenant.Name)
		assert.Equal(t, TenantStatusActive, tenant.Status)
		assert.Equal(t, TenantPlanStarter, tenant.Plan)
		assert.NotEqual(t, "", tenant.ID.String())
	})

	t.Run("converts code to uppercase", func(t *testing.T) {
		tenant, err := NewTenant("acme-fleet", "Acme Fleet Ltd")

		require.NoError(t, err)
		assert.Equal(t, "ACME-FLEET", tenant.Code)
	})

	t.Run("fails with empty code", func(t *testing.T) {
		tenant, err := NewTenant("", "Acme Fleet Ltd")

		assert.Error(t, err)
		assert.Nil(t, tenant)
		assert.Contains(t, err.Error(), "code cannot be empty")
	})

	t.Run("fails with invalid code characters", func(t *testing.T) {
		tenant, err := NewTenant("ACME@FLEET", "Acme Fleet Ltd")

		assert.Error(t, err)
		assert.Nil(t, tenant)
		assert.Contains(t, err.Error(), "can only contain")
	})

	t.Run("fails with empty name", func(t *testing.T) {
		tenant, err := NewTenant("ACME", "")

		assert.Error(t, err)
		assert.Nil(t, tenant)
	})
}

func TestTenant_Lifecycle(t *testing.T) {
	newActive := func(t *testing.T) *Tenant {
		tenant, err := NewTenant("ACME", "Acme Fleet Ltd")
		require.NoError(t, err)
		return tenant
	}

	t.Run("suspend and reactivate", func(t *testing.T) {
		tenant := newActive(t)

		require.NoError(t, tenant.Suspend())
		assert.True(t, tenant.IsSuspended())

		require.NoError(t, tenant.Reactivate())
		assert.True(t, tenant.IsActive())
	})

	t.Run("suspending twice conflicts", func(t *testing.T) {
		tenant := newActive(t)

		require.NoError(t, tenant.Suspend())
		assert.Error(t, tenant.Suspend())
	})

	t.Run("cancel is terminal", func(t *testing.T) {
		tenant := newActive(t)

		require.NoError(t, tenant.Cancel())
		assert.True(t, tenant.IsCanceled())
		assert.NotNil(t, tenant.CanceledAt)

		assert.Error(t, tenant.Reactivate())
		assert.Error(t, tenant.Suspend())
		assert.Error(t, tenant.Cancel())
	})

	t.Run("canceled tenant keeps its data fields", func(t *testing.T) {
		tenant := newActive(t)
		require.NoError(t, tenant.SetContact("Jo Smith", "+44 20 7946 0000", "jo@acme.example"))
		require.NoError(t, tenant.Cancel())

		assert.Equal(t, "Jo Smith", tenant.ContactName)
		assert.Equal(t, "ACME", tenant.Code)
	})
}

func TestTenant_SetPlan(t *testing.T) {
	tenant, err := NewTenant("ACME", "Acme Fleet Ltd")
	require.NoError(t, err)

	require.NoError(t, tenant.SetPlan(TenantPlanEnterprise))
	assert.Equal(t, TenantPlanEnterprise, tenant.Plan)

	assert.Error(t, tenant.SetPlan("gold"))
}
