package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCtxHandler_AddsContextAttributes(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(&ctxHandler{slog.NewJSONHandler(&buf, nil)})

	ctx := context.WithValue(context.Background(), RequestIDKey, "req-1")
	ctx = context.WithValue(ctx, TraceIDKey, "trace-1")
	logger.With(slog.String("component", "test")).InfoContext(ctx, "hello")

	out := buf.String()
	assert.Contains(t, out, `"request_id":"req-1"`)
	assert.Contains(t, out, `"trace_id":"trace-1"`)
	assert.Contains(t, out, `"component":"test"`)
}

func TestContextMiddleware_PropagatesRequestID(t *testing.T) {
	app := fiber.New()
	app.Use(requestid.New())
	app.Use(ContextMiddleware())
	app.Get("/", func(c *fiber.Ctx) error {
		rid, _ := c.UserContext().Value(RequestIDKey).(string)
		return c.SendString(rid)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(fiber.HeaderXRequestID, "fixed-id")
	resp, err := app.Test(req)
	require.NoError(t, err)

	var body bytes.Buffer
	_, err = body.ReadFrom(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "fixed-id", body.String())
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, parseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, parseLevel("warning"))
	assert.Equal(t, slog.LevelError, parseLevel("error"))
	assert.Equal(t, slog.LevelInfo, parseLevel(""))
}

func TestStructuredLogger_LogsErrorStatus(t *testing.T) {
	var buf bytes.Buffer
	previous := Logger
	Logger = slog.New(slog.NewJSONHandler(&buf, nil))
	t.Cleanup(func() { Logger = previous })

	app := fiber.New()
	app.Use(StructuredLogger())
	app.Get("/ok", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusNoContent) })
	app.Get("/gone", func(c *fiber.Ctx) error { return fiber.ErrMethodNotAllowed })
	app.Get("/boom", func(c *fiber.Ctx) error { return errors.New("boom") })

	tests := []struct {
		path   string
		status int
		level  string
	}{
		{"/ok", fiber.StatusNoContent, "INFO"},
		{"/gone", fiber.StatusMethodNotAllowed, "WARN"},
		{"/boom", fiber.StatusInternalServerError, "ERROR"},
	}
	for _, tt := range tests {
		buf.Reset()
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, tt.path, nil))
		require.NoError(t, err)
		assert.Equal(t, tt.status, resp.StatusCode, tt.path)

		var entry map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &entry), tt.path)
		assert.EqualValues(t, tt.status, entry["status"], tt.path)
		assert.Equal(t, tt.level, entry["level"], tt.path)
	}
}
