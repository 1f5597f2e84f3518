package tenant_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amrshah/tenantengine/pkg/tenant"
)

func TestPathResolver(t *testing.T) {
	t.Parallel()

	resolve := tenant.NewPathResolver(1)

	t.Run("extracts first segment", func(t *testing.T) {
		t.Parallel()

		r := httptest.NewRequest("GET", "/acme/dashboard", nil)
		id, err := resolve(r)
		require.NoError(t, err)
		assert.Equal(t, "acme", id)
	})

	t.Run("root path addresses no tenant", func(t *testing.T) {
		t.Parallel()

		r := httptest.NewRequest("GET", "/", nil)
		id, err := resolve(r)
		require.NoError(t, err)
		assert.Empty(t, id)
	})

	t.Run("position beyond path addresses no tenant", func(t *testing.T) {
		t.Parallel()

		deep := tenant.NewPathResolver(3)
		r := httptest.NewRequest("GET", "/acme", nil)
		id, err := deep(r)
		require.NoError(t, err)
		assert.Empty(t, id)
	})

	t.Run("rejects malformed identifier", func(t *testing.T) {
		t.Parallel()

		r := httptest.NewRequest("GET", "/ac..me/dashboard", nil)
		_, err := resolve(r)
		assert.ErrorIs(t, err, tenant.ErrInvalidIdentifier)
	})

	t.Run("rejects overlong identifier", func(t *testing.T) {
		t.Parallel()

		long := make([]byte, tenant.MaxSlugLength+1)
		for i := range long {
			long[i] = 'a'
		}
		r := httptest.NewRequest("GET", "/"+string(long), nil)
		_, err := resolve(r)
		assert.ErrorIs(t, err, tenant.ErrInvalidIdentifier)
	})
}

func TestSubdomainResolver(t *testing.T) {
	t.Parallel()

	resolve := tenant.NewSubdomainResolver(".example.com")

	t.Run("extracts subdomain", func(t *testing.T) {
		t.Parallel()

		r := httptest.NewRequest("GET", "/", nil)
		r.Host = "acme.example.com"
		id, err := resolve(r)
		require.NoError(t, err)
		assert.Equal(t, "acme", id)
	})

	t.Run("strips port", func(t *testing.T) {
		t.Parallel()

		r := httptest.NewRequest("GET", "/", nil)
		r.Host = "acme.example.com:8080"
		id, err := resolve(r)
		require.NoError(t, err)
		assert.Equal(t, "acme", id)
	})

	t.Run("base domain addresses no tenant", func(t *testing.T) {
		t.Parallel()

		r := httptest.NewRequest("GET", "/", nil)
		r.Host = "example.com"
		id, err := resolve(r)
		require.NoError(t, err)
		assert.Empty(t, id)
	})

	t.Run("skips www prefix", func(t *testing.T) {
		t.Parallel()

		r := httptest.NewRequest("GET", "/", nil)
		r.Host = "www.acme.example.com"
		id, err := resolve(r)
		require.NoError(t, err)
		assert.Equal(t, "acme", id)
	})
}

func TestHeaderResolver(t *testing.T) {
	t.Parallel()

	resolve := tenant.NewHeaderResolver("")

	t.Run("reads default header", func(t *testing.T) {
		t.Parallel()

		r := httptest.NewRequest("GET", "/", nil)
		r.Header.Set("X-Tenant-ID", "acme")
		id, err := resolve(r)
		require.NoError(t, err)
		assert.Equal(t, "acme", id)
	})

	t.Run("missing header addresses no tenant", func(t *testing.T) {
		t.Parallel()

		r := httptest.NewRequest("GET", "/", nil)
		id, err := resolve(r)
		require.NoError(t, err)
		assert.Empty(t, id)
	})

	t.Run("rejects malformed value", func(t *testing.T) {
		t.Parallel()

		r := httptest.NewRequest("GET", "/", nil)
		r.Header.Set("X-Tenant-ID", "not valid!")
		_, err := resolve(r)
		assert.ErrorIs(t, err, tenant.ErrInvalidIdentifier)
	})
}

func TestCompositeResolver(t *testing.T) {
	t.Parallel()

	t.Run("first non-empty wins", func(t *testing.T) {
		t.Parallel()

		resolve := tenant.NewCompositeResolver(
			tenant.NewHeaderResolver("X-Tenant-ID"),
			tenant.NewPathResolver(1),
		)

		r := httptest.NewRequest("GET", "/path-tenant/x", nil)
		r.Header.Set("X-Tenant-ID", "header-tenant")

		id, err := resolve(r)
		require.NoError(t, err)
		assert.Equal(t, "header-tenant", id)
	})

	t.Run("falls through empty resolvers", func(t *testing.T) {
		t.Parallel()

		resolve := tenant.NewCompositeResolver(
			tenant.NewHeaderResolver("X-Tenant-ID"),
			tenant.NewPathResolver(1),
		)

		r := httptest.NewRequest("GET", "/acme/x", nil)
		id, err := resolve(r)
		require.NoError(t, err)
		assert.Equal(t, "acme", id)
	})

	t.Run("aggregates errors when nothing resolves", func(t *testing.T) {
		t.Parallel()

		boom := errors.New("boom")
		resolve := tenant.NewCompositeResolver(
			func(r *http.Request) (string, error) { return "", boom },
			func(r *http.Request) (string, error) { return "", nil },
		)

		r := httptest.NewRequest("GET", "/", nil)
		_, err := resolve(r)
		assert.ErrorIs(t, err, boom)
	})

	t.Run("identifier wins over earlier error", func(t *testing.T) {
		t.Parallel()

		resolve := tenant.NewCompositeResolver(
			func(r *http.Request) (string, error) { return "", errors.New("ignored") },
			func(r *http.Request) (string, error) { return "acme", nil },
		)

		r := httptest.NewRequest("GET", "/", nil)
		id, err := resolve(r)
		require.NoError(t, err)
		assert.Equal(t, "acme", id)
	})
}
