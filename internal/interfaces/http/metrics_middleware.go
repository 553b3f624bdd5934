package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

// HTTPRecorder registra duración y status de cada petición.
type HTTPRecorder interface {
	ObserveHTTP(method, path string, status int, elapsed time.Duration)
	AddInFlight(delta float64)
}

// MetricsMiddleware usa la ruta registrada (p. ej. /api/products/:id) como etiqueta para acotar la cardinalidad.
func MetricsMiddleware(rec HTTPRecorder) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		rec.AddInFlight(1)
		defer rec.AddInFlight(-1)
		err := c.Next()
		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}
		path := c.Route().Path
		if path == "" {
			path = "unmatched"
		}
		rec.ObserveHTTP(c.Method(), path, status, time.Since(start))
		return err
	}
}
