package logger_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amrshah/tenantengine/pkg/logger"
)

func logLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	return record
}

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("defaults to json at info level", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		log := logger.New(logger.WithOutput(&buf))

		log.Debug("hidden")
		assert.Empty(t, buf.String())

		log.Info("visible", "key", "value")
		record := logLine(t, &buf)
		assert.Equal(t, "visible", record["msg"])
		assert.Equal(t, "value", record["key"])
	})

	t.Run("static attrs appear on every record", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		log := logger.New(
			logger.WithOutput(&buf),
			logger.WithAttr(slog.String("service", "tenantd")),
		)

		log.Info("hello")
		record := logLine(t, &buf)
		assert.Equal(t, "tenantd", record["service"])
	})

	t.Run("development preset logs debug as text", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		log := logger.New(
			logger.WithDevelopment("tenantd"),
			logger.WithOutput(&buf),
		)

		log.Debug("dev detail")
		assert.Contains(t, buf.String(), "dev detail")
		assert.Contains(t, buf.String(), "env=development")
	})

	t.Run("environment preset picks production for prod labels", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		log := logger.New(
			logger.WithEnvironment("production", "tenantd"),
			logger.WithOutput(&buf),
		)

		log.Info("hello")
		record := logLine(t, &buf)
		assert.Equal(t, "production", record["env"])
	})
}

func TestContextExtraction(t *testing.T) {
	t.Parallel()

	type slugKey struct{}

	extractor := func(ctx context.Context) (slog.Attr, bool) {
		if v, ok := ctx.Value(slugKey{}).(string); ok {
			return slog.String("tenant", v), true
		}
		return slog.Attr{}, false
	}

	var buf bytes.Buffer
	log := logger.New(
		logger.WithOutput(&buf),
		logger.WithContextExtractors(extractor, nil),
	)

	ctx := context.WithValue(context.Background(), slugKey{}, "acme")
	log.InfoContext(ctx, "scoped")

	record := logLine(t, &buf)
	assert.Equal(t, "acme", record["tenant"])

	buf.Reset()
	log.InfoContext(context.Background(), "unscoped")
	record = logLine(t, &buf)
	_, present := record["tenant"]
	assert.False(t, present)
}

func TestAttrHelpers(t *testing.T) {
	t.Parallel()

	assert.Equal(t, slog.Attr{}, logger.Error(nil))

	attr := logger.Error(errors.New("boom"))
	assert.Equal(t, "error", attr.Key)

	assert.Equal(t, "tenant", logger.TenantSlug("acme").Key)

	group := logger.Group("req", slog.String("method", "GET"))
	assert.Equal(t, "req", group.Key)
}
