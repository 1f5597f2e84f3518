package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amrshah/tenantengine/pkg/config"
)

// Env mutation means the test binary cannot run these in parallel.

type serverConfig struct {
	Addr  string `env:"TEST_SERVER_ADDR" envDefault:":8080"`
	Debug bool   `env:"TEST_SERVER_DEBUG" envDefault:"false"`
}

type strictConfig struct {
	Token string `env:"TEST_STRICT_TOKEN,required"`
}

func TestLoad(t *testing.T) {
	t.Run("applies defaults", func(t *testing.T) {
		config.Reset()

		var cfg serverConfig
		require.NoError(t, config.Load(&cfg))
		assert.Equal(t, ":8080", cfg.Addr)
		assert.False(t, cfg.Debug)
	})

	t.Run("reads environment", func(t *testing.T) {
		config.Reset()
		t.Setenv("TEST_SERVER_ADDR", ":9999")
		t.Setenv("TEST_SERVER_DEBUG", "true")

		var cfg serverConfig
		require.NoError(t, config.Load(&cfg))
		assert.Equal(t, ":9999", cfg.Addr)
		assert.True(t, cfg.Debug)
	})

	t.Run("caches per type", func(t *testing.T) {
		config.Reset()
		t.Setenv("TEST_SERVER_ADDR", ":1111")

		var first serverConfig
		require.NoError(t, config.Load(&first))

		// A later env change is invisible: the cached value wins.
		t.Setenv("TEST_SERVER_ADDR", ":2222")

		var second serverConfig
		require.NoError(t, config.Load(&second))
		assert.Equal(t, ":1111", second.Addr)
	})

	t.Run("missing required variable fails", func(t *testing.T) {
		config.Reset()

		var cfg strictConfig
		err := config.Load(&cfg)
		assert.ErrorIs(t, err, config.ErrParseFailed)
	})

	t.Run("nil target", func(t *testing.T) {
		var cfg *serverConfig
		assert.ErrorIs(t, config.Load(cfg), config.ErrNilConfig)
	})
}
