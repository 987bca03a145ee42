package controller

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"tasky/services"
	"tasky/utils"
)

// ErrorHandler turns handler errors into the response envelope
func ErrorHandler(log logrus.FieldLogger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var se *services.Error
		if errors.As(err, &se) && se.Kind != services.KindInternal {
			return utils.ErrorResponse(c, se.Kind.Status(), se.Message, se.Fields)
		}

		var fe *fiber.Error
		if errors.As(err, &fe) {
			return utils.ErrorResponse(c, fe.Code, fe.Message, nil)
		}

		utils.LogError(log, "request_failed", err, map[string]interface{}{
			"method": c.Method(),
			"path":   c.Path(),
		})
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Internal server error", nil)
	}
}

// NotFound answers requests no route matched
func NotFound(c *fiber.Ctx) error {
	return utils.ErrorResponse(c, fiber.StatusNotFound, "Route not found", nil)
}

func parseBody(c *fiber.Ctx, out interface{}) error {
	if err := c.BodyParser(out); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	return nil
}

func paramID(c *fiber.Ctx, name string) (uint, error) {
	id, ok := utils.ParseID(c.Params(name))
	if !ok {
		return 0, services.NewValidation("Invalid "+name, utils.FieldError{Field: name, Message: name + " must be a positive integer"})
	}
	return id, nil
}
