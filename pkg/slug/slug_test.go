package slug_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amrshah/tenantengine/pkg/slug"
)

func TestValidate(t *testing.T) {
	t.Parallel()

	t.Run("accepts valid slugs", func(t *testing.T) {
		t.Parallel()

		for _, s := range []string{"acme", "acme-corp", "a1b", "123", "my-shop-2"} {
			assert.NoError(t, slug.Validate(s), s)
		}
	})

	t.Run("rejects malformed slugs", func(t *testing.T) {
		t.Parallel()

		cases := []string{
			"",
			"ab",                                // too short
			strings.Repeat("a", slug.MaxLength+1), // too long
			"-acme",
			"acme-",
			"Acme",
			"acme corp",
			"acme_corp",
			"ac.me",
		}
		for _, s := range cases {
			assert.ErrorIs(t, slug.Validate(s), slug.ErrInvalidSlug, s)
		}
	})

	t.Run("rejects reserved slugs", func(t *testing.T) {
		t.Parallel()

		for _, s := range []string{"api", "admin", "www", "dashboard", "health", "production"} {
			assert.ErrorIs(t, slug.Validate(s), slug.ErrReservedSlug, s)
		}
	})
}

func TestIsReserved(t *testing.T) {
	t.Parallel()

	assert.True(t, slug.IsReserved("api"))
	assert.True(t, slug.IsReserved("super-admin"))
	assert.False(t, slug.IsReserved("acme"))
}

func TestMake(t *testing.T) {
	t.Parallel()

	t.Run("derives from display name", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t, "acme-corp", slug.Make("Acme Corp"))
		assert.Equal(t, "acme-co", slug.Make("Acme & Co."))
		assert.Equal(t, "shop-24-7", slug.Make("Shop 24/7"))
	})

	t.Run("output always validates", func(t *testing.T) {
		t.Parallel()

		names := []string{
			"Acme Corp",
			"  spaces  everywhere  ",
			"ünïcödé Nàme",
			"api",  // reserved, gets suffixed
			"ab",   // too short, gets suffixed
			"",     // empty, gets generated
			strings.Repeat("very long name ", 10),
		}
		for _, name := range names {
			s := slug.Make(name)
			require.NoError(t, slug.Validate(s), "name %q produced %q", name, s)
		}
	})

	t.Run("reserved names get a suffix", func(t *testing.T) {
		t.Parallel()

		s := slug.Make("admin")
		assert.True(t, strings.HasPrefix(s, "admin-"), s)
		assert.False(t, slug.IsReserved(s))
	})

	t.Run("length is bounded", func(t *testing.T) {
		t.Parallel()

		s := slug.Make(strings.Repeat("abcdefgh ", 20))
		assert.LessOrEqual(t, len(s), slug.MaxLength)
	})
}
