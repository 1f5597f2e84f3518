package tenant_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amrshah/tenantengine/pkg/tenant"
)

func TestAuthorizeAt(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	pastTrial := now.AddDate(0, 0, -3)
	futureTrial := now.AddDate(0, 0, 7)
	futureSub := now.AddDate(0, 1, 0)

	t.Run("nil tenant is not found", func(t *testing.T) {
		t.Parallel()

		err := tenant.AuthorizeAt(nil, now)
		assert.ErrorIs(t, err, tenant.ErrTenantNotFound)
	})

	t.Run("suspended tenant is rejected before billing", func(t *testing.T) {
		t.Parallel()

		// Expired trial must not surface: status is checked first.
		tn := &tenant.Tenant{
			Slug:        "acme",
			Status:      tenant.StatusSuspended,
			TrialEndsAt: &pastTrial,
		}

		err := tenant.AuthorizeAt(tn, now)
		assert.ErrorIs(t, err, tenant.ErrTenantSuspended)
		assert.NotErrorIs(t, err, tenant.ErrSubscriptionRequired)

		var accessErr *tenant.AccessError
		require.ErrorAs(t, err, &accessErr)
		assert.Equal(t, tenant.StatusSuspended, accessErr.Status)
	})

	t.Run("cancelled tenant is rejected", func(t *testing.T) {
		t.Parallel()

		tn := &tenant.Tenant{Slug: "gone", Status: tenant.StatusCancelled}
		err := tenant.AuthorizeAt(tn, now)
		assert.ErrorIs(t, err, tenant.ErrTenantCancelled)
	})

	t.Run("unknown status is rejected as unavailable", func(t *testing.T) {
		t.Parallel()

		tn := &tenant.Tenant{Slug: "odd", Status: tenant.Status("pending")}
		err := tenant.AuthorizeAt(tn, now)
		assert.ErrorIs(t, err, tenant.ErrTenantUnavailable)
	})

	t.Run("expired trial without subscription requires payment", func(t *testing.T) {
		t.Parallel()

		tn := &tenant.Tenant{
			Slug:        "startup",
			Status:      tenant.StatusActive,
			TrialEndsAt: &pastTrial,
		}

		err := tenant.AuthorizeAt(tn, now)
		assert.ErrorIs(t, err, tenant.ErrSubscriptionRequired)

		var accessErr *tenant.AccessError
		require.ErrorAs(t, err, &accessErr)
		require.NotNil(t, accessErr.TrialEndsAt)
		assert.Equal(t, pastTrial, *accessErr.TrialEndsAt)
	})

	t.Run("expired trial with active subscription is granted", func(t *testing.T) {
		t.Parallel()

		tn := &tenant.Tenant{
			Slug:               "paying",
			Status:             tenant.StatusActive,
			TrialEndsAt:        &pastTrial,
			SubscriptionEndsAt: &futureSub,
		}

		assert.NoError(t, tenant.AuthorizeAt(tn, now))
	})

	t.Run("open trial is granted", func(t *testing.T) {
		t.Parallel()

		tn := &tenant.Tenant{
			Slug:        "trying",
			Status:      tenant.StatusActive,
			TrialEndsAt: &futureTrial,
		}

		assert.NoError(t, tenant.AuthorizeAt(tn, now))
	})

	t.Run("active tenant without trial window is granted", func(t *testing.T) {
		t.Parallel()

		tn := &tenant.Tenant{Slug: "evergreen", Status: tenant.StatusActive}
		assert.NoError(t, tenant.AuthorizeAt(tn, now))
	})
}
