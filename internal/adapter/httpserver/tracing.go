package httpserver

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/pscheid92/syncvision/internal/adapter/httpserver"

// tracingMiddleware opens a server span per request. Websocket, health and
// metrics routes are not traced.
func tracingMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		route := c.Path()
		if untracedRoute(route) {
			return next(c)
		}

		req := c.Request()
		ctx, span := otel.Tracer(tracerName).Start(req.Context(), req.Method+" "+route,
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				attribute.String("http.request.method", req.Method),
				attribute.String("http.route", route),
			),
		)
		defer span.End()
		c.SetRequest(req.WithContext(ctx))

		err := next(c)

		status := c.Response().Status
		if err != nil {
			span.RecordError(err)
		}
		span.SetAttributes(attribute.Int("http.response.status_code", status))
		if status >= http.StatusInternalServerError {
			span.SetStatus(codes.Error, http.StatusText(status))
		}
		return err
	}
}

func untracedRoute(route string) bool {
	return route == "/socket" || route == "/metrics" || strings.HasPrefix(route, "/health/")
}
