package http

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/jhoicas/stockledger-api/internal/interfaces/http"

// TracingMiddleware continúa la traza entrante (traceparent) y abre un span de servidor por petición.
// El contexto resultante queda en c.UserContext() para que los casos de uso cuelguen sus spans.
func TracingMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := make(http.Header)
		c.Request().Header.VisitAll(func(k, v []byte) {
			header.Add(string(k), string(v))
		})
		ctx := otel.GetTextMapPropagator().Extract(c.UserContext(), propagation.HeaderCarrier(header))
		ctx, span := otel.GetTracerProvider().Tracer(tracerName).Start(ctx, c.Method()+" "+c.Path(), trace.WithSpanKind(trace.SpanKindServer))
		defer span.End()
		c.SetUserContext(ctx)

		err := c.Next()
		status := c.Response().StatusCode()
		span.SetName(c.Method() + " " + c.Route().Path)
		span.SetAttributes(
			attribute.String("http.request.method", c.Method()),
			attribute.String("http.route", c.Route().Path),
			attribute.Int("http.response.status_code", status),
		)
		if err != nil || status >= fiber.StatusInternalServerError {
			span.SetStatus(codes.Error, http.StatusText(status))
		}
		return err
	}
}
