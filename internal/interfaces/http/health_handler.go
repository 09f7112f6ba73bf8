package http

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
)

// Pinger comprueba la disponibilidad del almacenamiento.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Health responde 200 si el almacenamiento contesta, 503 en caso contrario.
func Health(service string, store Pinger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		if err := store.Ping(ctx); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"status": "unavailable", "service": service, "error": err.Error(),
			})
		}
		return c.JSON(fiber.Map{"status": "ok", "service": service})
	}
}
