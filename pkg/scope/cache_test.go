package scope_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amrshah/tenantengine/pkg/scope"
	"github.com/amrshah/tenantengine/pkg/tenant"
)

func TestCacheScope(t *testing.T) {
	t.Parallel()

	tn := &tenant.Tenant{Slug: "acme", Status: tenant.StatusActive}

	t.Run("binds tenant keyspace into context", func(t *testing.T) {
		t.Parallel()

		s := scope.Cache(nil)

		ctx, release, err := s.Bind(context.Background(), tn)
		require.NoError(t, err)
		defer release()

		ks, ok := scope.KeyspaceFromContext(ctx)
		require.True(t, ok)
		assert.Equal(t, scope.DefaultKeyspacePrefix+"acme:", ks.Prefix())
		assert.Equal(t, scope.DefaultKeyspacePrefix+"acme:sessions", ks.Key("sessions"))
	})

	t.Run("custom prefix", func(t *testing.T) {
		t.Parallel()

		s := scope.Cache(nil, scope.WithKeyspacePrefix("app:"))

		ctx, release, err := s.Bind(context.Background(), tn)
		require.NoError(t, err)
		defer release()

		ks, ok := scope.KeyspaceFromContext(ctx)
		require.True(t, ok)
		assert.Equal(t, "app:acme:", ks.Prefix())
	})

	t.Run("keyspaces of different tenants never overlap", func(t *testing.T) {
		t.Parallel()

		a := scope.NewKeyspace(nil, "", "acme")
		b := scope.NewKeyspace(nil, "", "acme-2")

		assert.NotEqual(t, a.Prefix(), b.Prefix())
		assert.False(t, a.Prefix() == b.Prefix()[:len(a.Prefix())])
	})

	t.Run("no keyspace in bare context", func(t *testing.T) {
		t.Parallel()

		_, ok := scope.KeyspaceFromContext(context.Background())
		assert.False(t, ok)
	})
}
