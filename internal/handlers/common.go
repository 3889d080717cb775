package handlers

import (
	"errors"
	"fmt"

	"pasar/internal/models"

	"github.com/gofiber/fiber/v2"
)

// statusForError maps domain errors to HTTP statuses.
func statusForError(err error) int {
	switch {
	case errors.Is(err, models.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, models.ErrInvalidQuantity):
		return fiber.StatusBadRequest
	case errors.Is(err, models.ErrStoreNotSellable):
		return fiber.StatusForbidden
	case errors.Is(err, models.ErrInsufficientStock),
		errors.Is(err, models.ErrInvalidTransition):
		return fiber.StatusConflict
	case errors.Is(err, models.ErrOrderLimitExceeded):
		return fiber.StatusTooManyRequests
	case errors.Is(err, models.ErrUnavailable):
		return fiber.StatusServiceUnavailable
	}
	return fiber.StatusInternalServerError
}

func respondError(c *fiber.Ctx, message string, err error) error {
	return c.Status(statusForError(err)).JSON(fiber.Map{
		"message": message,
		"error":   err.Error(),
	})
}

// actor returns the verified identity placed in the context by the JWT
// middleware. The core trusts this identity; it was verified upstream.
func actor(c *fiber.Ctx) (userID, role string) {
	if v := c.Locals("user_id"); v != nil {
		userID = fmt.Sprintf("%v", v)
	}
	if v := c.Locals("role"); v != nil {
		role = fmt.Sprintf("%v", v)
	}
	return userID, role
}
