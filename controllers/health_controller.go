package controller

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"tasky/repository"
)

// Health reports whether the store answers
func Health(store repository.Pinger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 3*time.Second)
		defer cancel()

		if err := store.Ping(ctx); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"status":  "error",
				"message": err.Error(),
			})
		}
		return c.JSON(fiber.Map{"status": "ok"})
	}
}
