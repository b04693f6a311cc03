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

	"github.com/nextweekend/nextweekend/pkg/logger"
)

func decode(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	return entry
}

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("creates JSON logger", func(t *testing.T) {
		t.Parallel()
		buf := &bytes.Buffer{}
		log := logger.New(logger.WithOutput(buf))
		log.Info("hello")

		entry := decode(t, buf)
		assert.Equal(t, "INFO", entry["level"])
		assert.Equal(t, "hello", entry["msg"])
	})

	t.Run("text formatter option", func(t *testing.T) {
		t.Parallel()
		buf := &bytes.Buffer{}
		log := logger.New(logger.WithOutput(buf), logger.WithTextFormatter())
		log.Info("hello")

		assert.Contains(t, buf.String(), "level=INFO")
		assert.Contains(t, buf.String(), "msg=hello")
	})

	t.Run("invalid format panics", func(t *testing.T) {
		t.Parallel()
		assert.Panics(t, func() {
			logger.New(logger.WithFormat("xml"))
		})
	})

	t.Run("production environment tags records", func(t *testing.T) {
		t.Parallel()
		buf := &bytes.Buffer{}
		log := logger.New(logger.WithOutput(buf), logger.WithEnvironment("prod", "nextweekend"))
		log.Debug("dropped")
		log.Info("kept")

		entry := decode(t, buf)
		assert.Equal(t, "kept", entry["msg"])
		assert.Equal(t, "nextweekend", entry["service"])
		assert.Equal(t, "production", entry["env"])
	})

	t.Run("static attributes on every record", func(t *testing.T) {
		t.Parallel()
		buf := &bytes.Buffer{}
		log := logger.New(logger.WithOutput(buf), logger.WithAttr(slog.String("version", "1.4.0")))
		log.Info("hello")

		entry := decode(t, buf)
		assert.Equal(t, "1.4.0", entry["version"])
	})

	t.Run("unknown environment falls back to development", func(t *testing.T) {
		t.Parallel()
		buf := &bytes.Buffer{}
		log := logger.New(logger.WithOutput(buf), logger.WithEnvironment("", "svc"))
		log.Debug("visible")

		assert.Contains(t, buf.String(), "env=development")
		assert.Contains(t, buf.String(), "msg=visible")
	})
}

func TestContextExtraction(t *testing.T) {
	t.Parallel()

	t.Run("request id extractor", func(t *testing.T) {
		t.Parallel()
		type key struct{}
		buf := &bytes.Buffer{}
		log := logger.New(
			logger.WithOutput(buf),
			logger.WithContextExtractors(logger.RequestIDExtractor(func(ctx context.Context) string {
				id, _ := ctx.Value(key{}).(string)
				return id
			})),
		)

		ctx := context.WithValue(context.Background(), key{}, "req-1")
		log.InfoContext(ctx, "with id")

		entry := decode(t, buf)
		assert.Equal(t, "req-1", entry["request_id"])
	})

	t.Run("empty request id is skipped", func(t *testing.T) {
		t.Parallel()
		buf := &bytes.Buffer{}
		log := logger.New(
			logger.WithOutput(buf),
			logger.WithContextExtractors(logger.RequestIDExtractor(func(context.Context) string { return "" })),
		)
		log.InfoContext(context.Background(), "no id")

		entry := decode(t, buf)
		assert.NotContains(t, entry, "request_id")
	})

	t.Run("context value option", func(t *testing.T) {
		t.Parallel()
		type key string
		buf := &bytes.Buffer{}
		log := logger.New(logger.WithOutput(buf), logger.WithContextValue("tenant", key("t")))

		log.InfoContext(context.WithValue(context.Background(), key("t"), "acme"), "msg")

		entry := decode(t, buf)
		assert.Equal(t, "acme", entry["tenant"])
	})

	t.Run("extractors survive WithAttrs and WithGroup", func(t *testing.T) {
		t.Parallel()
		type key struct{}
		buf := &bytes.Buffer{}
		log := logger.New(
			logger.WithOutput(buf),
			logger.WithContextValue("trace", key{}),
		).With(slog.String("a", "b")).WithGroup("g")

		log.InfoContext(context.WithValue(context.Background(), key{}, "t1"), "msg")
		assert.Contains(t, buf.String(), "t1")
		assert.Contains(t, buf.String(), `"a":"b"`)
	})
}

func TestAttrs(t *testing.T) {
	t.Parallel()

	assert.Equal(t, slog.Attr{}, logger.Error(nil))
	assert.Equal(t, "error", logger.Error(errors.New("boom")).Key)
	assert.Equal(t, slog.String("customer_id", "cus_1"), logger.CustomerID("cus_1"))
	assert.Equal(t, slog.String("profile_id", "u1"), logger.ProfileID("u1"))
	assert.Equal(t, slog.String("event_type", "customer.subscription.created"), logger.EventType("customer.subscription.created"))
	assert.Equal(t, slog.Int("status", 200), logger.Status(200))
}
