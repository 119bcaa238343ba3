// Package middleware provides the fiber middleware stack and the process-wide logger.
package middleware

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
)

// Logger is the global structured logger instance used throughout the application.
var Logger *slog.Logger

type contextKey string

const (
	RequestIDKey contextKey = "request_id"
	TraceIDKey   contextKey = "trace_id"
	ClientIPKey  contextKey = "client_ip"
)

// ctxHandler is a slog.Handler that adds context values to the log record.
type ctxHandler struct {
	slog.Handler
}

// Handle adds context values to the record before passing it to the underlying handler.
func (h *ctxHandler) Handle(ctx context.Context, r slog.Record) error {
	if rid, ok := ctx.Value(RequestIDKey).(string); ok {
		r.AddAttrs(slog.String("request_id", rid))
	}
	if tid, ok := ctx.Value(TraceIDKey).(string); ok {
		r.AddAttrs(slog.String("trace_id", tid))
	}
	if ip, ok := ctx.Value(ClientIPKey).(string); ok {
		r.AddAttrs(slog.String("client_ip", ip))
	}
	return h.Handler.Handle(ctx, r)
}

// WithAttrs keeps the context-aware wrapper around derived handlers.
func (h *ctxHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &ctxHandler{h.Handler.WithAttrs(attrs)}
}

// WithGroup keeps the context-aware wrapper around derived handlers.
func (h *ctxHandler) WithGroup(name string) slog.Handler {
	return &ctxHandler{h.Handler.WithGroup(name)}
}

func init() {
	Logger = NewLogger(os.Getenv("APP_ENV"), os.Getenv("LOG_LEVEL"))
}

// NewLogger builds the context-aware logger: JSON in production, text elsewhere.
func NewLogger(env, level string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(level)}

	var handler slog.Handler
	if env == "production" || env == "prod" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	return slog.New(&ctxHandler{handler})
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// ContextMiddleware copies the request ID, trace ID and client IP from Fiber
// locals into the request context so service and repository logs carry them.
func ContextMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := c.UserContext()

		if rid, ok := c.Locals("requestid").(string); ok && rid != "" {
			ctx = context.WithValue(ctx, RequestIDKey, rid)
		}
		if tid, ok := c.Locals("traceID").(string); ok && tid != "" {
			ctx = context.WithValue(ctx, TraceIDKey, tid)
		}
		ctx = context.WithValue(ctx, ClientIPKey, c.IP())

		c.SetUserContext(ctx)
		return c.Next()
	}
}

// StructuredLogger returns a Fiber middleware for logging requests using slog
func StructuredLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		status := responseStatus(c, err)
		fields := []any{
			slog.Int("status", status),
			slog.String("method", c.Method()),
			slog.String("path", c.Path()),
			slog.Duration("latency", time.Since(start)),
			slog.String("user_agent", c.Get("User-Agent")),
		}

		switch {
		case err != nil && status >= fiber.StatusInternalServerError:
			fields = append(fields, slog.String("error", err.Error()))
			Logger.ErrorContext(c.UserContext(), "request failed", fields...)
		case err != nil:
			fields = append(fields, slog.String("error", err.Error()))
			Logger.WarnContext(c.UserContext(), "request failed", fields...)
		case status >= fiber.StatusInternalServerError:
			Logger.ErrorContext(c.UserContext(), "request processed", fields...)
		default:
			Logger.InfoContext(c.UserContext(), "request processed", fields...)
		}

		return err
	}
}

// responseStatus is the status the client will see. A returned error is
// only rendered by the app's ErrorHandler after this middleware unwinds.
func responseStatus(c *fiber.Ctx, err error) int {
	if err == nil {
		return c.Response().StatusCode()
	}
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fe.Code
	}
	return fiber.StatusInternalServerError
}
