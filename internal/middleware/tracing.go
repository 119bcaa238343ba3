package middleware

import (
	"fmt"

	"giftshare/internal/observability"

	"github.com/gofiber/fiber/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// TracingMiddleware opens a server span per request and exposes its trace ID
// in locals ("traceID") and in the X-Trace-ID response header.
func TracingMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := otel.GetTextMapPropagator().Extract(c.UserContext(), propagation.HeaderCarrier(c.GetReqHeaders()))

		ctx, span := observability.Tracer.Start(ctx, fmt.Sprintf("%s %s", c.Method(), c.Path()),
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				attribute.String("http.method", c.Method()),
				attribute.String("http.target", c.OriginalURL()),
				attribute.String("http.client_ip", c.IP()),
				attribute.String("http.user_agent", c.Get(fiber.HeaderUserAgent)),
			),
		)
		defer span.End()

		traceID := span.SpanContext().TraceID().String()
		c.Locals("traceID", traceID)
		c.Set("X-Trace-ID", traceID)

		if requestID, ok := c.Locals("requestid").(string); ok {
			span.SetAttributes(attribute.String("request.id", requestID))
		}

		c.SetUserContext(ctx)

		err := c.Next()

		status := c.Response().StatusCode()
		span.SetAttributes(
			attribute.Int("http.status_code", status),
			attribute.String("http.route", c.Route().Path),
		)
		span.SetName(fmt.Sprintf("%s %s", c.Method(), c.Route().Path))
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		} else if status >= fiber.StatusInternalServerError {
			span.SetStatus(codes.Error, fmt.Sprintf("HTTP %d", status))
		}

		return err
	}
}
