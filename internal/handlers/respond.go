package handlers

import (
	"errors"
	"log"

	"xivttw/internal/payment"
	"xivttw/internal/repositories"
	"xivttw/internal/services"

	"github.com/gofiber/fiber/v2"
)

// respondError maps a service error to a status code and writes the JSON
// error body. message is shown for server-side failures.
func respondError(c *fiber.Ctx, err error, message string) error {
	var verr *services.ValidationError
	switch {
	case errors.As(err, &verr):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Validation failed",
			"errors":  verr.Fields,
		})
	case errors.Is(err, repositories.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": "Resource not found",
			"error":   err.Error(),
		})
	case errors.Is(err, repositories.ErrDuplicate):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"message": "Resource already exists",
			"error":   err.Error(),
		})
	case errors.Is(err, services.ErrInvalidTransition):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"message": "Order status update failed",
			"error":   err.Error(),
		})
	case errors.Is(err, services.ErrEmptyCart),
		errors.Is(err, services.ErrProductInactive),
		errors.Is(err, services.ErrInvalidCartOwner),
		errors.Is(err, services.ErrNoReference):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": err.Error(),
		})
	case errors.Is(err, payment.ErrGateway):
		log.Printf("Payment gateway error: %v", err)
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"message": "Payment provider is unavailable, please try again",
		})
	}
	log.Printf("%s: %v", message, err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"message": message,
	})
}

func badBody(c *fiber.Ctx, err error) error {
	log.Printf("Error parsing request body: %v", err)
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"message": "Invalid request body",
		"error":   err.Error(),
	})
}
