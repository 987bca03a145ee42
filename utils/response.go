package utils

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
)

// Envelope is the body of every API response
type Envelope struct {
	Success bool         `json:"success"`
	Data    interface{}  `json:"data,omitempty"`
	Message string       `json:"message,omitempty"`
	Errors  []FieldError `json:"errors,omitempty"`
	Token   string       `json:"token,omitempty"`
}

// SuccessResponse creates a standardized success response
func SuccessResponse(data interface{}) Envelope {
	return Envelope{Success: true, Data: data}
}

// MessageResponse creates a success response carrying only a message
func MessageResponse(message string) Envelope {
	return Envelope{Success: true, Message: message}
}

// ErrorResponse writes a standardized error response
func ErrorResponse(c *fiber.Ctx, status int, message string, errs []FieldError) error {
	return c.Status(status).JSON(Envelope{
		Success: false,
		Message: message,
		Errors:  errs,
	})
}

// ParseID parses a positive numeric path parameter
func ParseID(s string) (uint, bool) {
	id, err := strconv.ParseUint(s, 10, 32)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}
