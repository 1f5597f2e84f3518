package tenant_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amrshah/tenantengine/pkg/tenant"
)

func TestTenantContext(t *testing.T) {
	t.Parallel()

	t.Run("round trip", func(t *testing.T) {
		t.Parallel()

		tn := &tenant.Tenant{Slug: "acme"}
		ctx := tenant.WithTenant(context.Background(), tn)

		got, ok := tenant.FromContext(ctx)
		require.True(t, ok)
		assert.Same(t, tn, got)

		slug, ok := tenant.SlugFromContext(ctx)
		require.True(t, ok)
		assert.Equal(t, "acme", slug)
	})

	t.Run("empty context", func(t *testing.T) {
		t.Parallel()

		_, ok := tenant.FromContext(context.Background())
		assert.False(t, ok)

		_, ok = tenant.SlugFromContext(context.Background())
		assert.False(t, ok)
	})

	t.Run("must panics without tenant", func(t *testing.T) {
		t.Parallel()

		assert.Panics(t, func() {
			tenant.MustFromContext(context.Background())
		})
	})

	t.Run("must returns tenant when present", func(t *testing.T) {
		t.Parallel()

		tn := &tenant.Tenant{Slug: "acme"}
		ctx := tenant.WithTenant(context.Background(), tn)
		assert.Same(t, tn, tenant.MustFromContext(ctx))
	})
}

func TestLoggerExtractor(t *testing.T) {
	t.Parallel()

	extract := tenant.LoggerExtractor()

	attr, ok := extract(tenant.WithTenant(context.Background(), &tenant.Tenant{Slug: "acme"}))
	require.True(t, ok)
	assert.Equal(t, "tenant", attr.Key)
	assert.Equal(t, "acme", attr.Value.String())

	_, ok = extract(context.Background())
	assert.False(t, ok)
}
