package handlers

import (
	"errors"

	"xivttw/internal/middleware"
	"xivttw/internal/services"

	"github.com/gofiber/fiber/v2"
)

// CheckoutHandler handles checkout and payment confirmation.
type CheckoutHandler struct {
	checkout *services.CheckoutService
	payments *services.PaymentService
}

// NewCheckoutHandler creates a new CheckoutHandler.
func NewCheckoutHandler(checkout *services.CheckoutService, payments *services.PaymentService) *CheckoutHandler {
	return &CheckoutHandler{checkout: checkout, payments: payments}
}

// RegisterRoutes registers the checkout routes. The checkout routes expect
// middleware.CartOwner in front of them.
func (h *CheckoutHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/checkout/session", h.HandleSession)
	router.Post("/checkout", h.HandleCheckout)
	router.Get("/order-confirmation", h.HandleConfirmation)
}

// HandleSession issues the idempotency key for a checkout form.
func (h *CheckoutHandler) HandleSession(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"idempotencyKey": h.checkout.NewIdempotencyKey(),
	})
}

func (h *CheckoutHandler) HandleCheckout(c *fiber.Ctx) error {
	var in services.CheckoutInput
	if err := c.BodyParser(&in); err != nil {
		return badBody(c, err)
	}
	if in.IdempotencyKey == "" {
		in.IdempotencyKey = c.Get("Idempotency-Key")
	}
	res, err := h.checkout.Checkout(c.UserContext(), middleware.Owner(c), in)
	if err != nil {
		return respondError(c, err, "Could not place order")
	}
	return c.Status(fiber.StatusCreated).JSON(res)
}

// HandleConfirmation verifies the payment the gateway redirected back with.
func (h *CheckoutHandler) HandleConfirmation(c *fiber.Ctx) error {
	reference := c.Query("reference")
	if reference == "" {
		reference = c.Query("trxref")
	}
	conf, err := h.payments.Confirm(c.UserContext(), reference, c.Query("order_id"))
	if errors.Is(err, services.ErrNoReference) {
		return c.Redirect("/", fiber.StatusSeeOther)
	}
	if err != nil {
		return respondError(c, err, "Could not confirm payment")
	}
	return c.JSON(conf)
}
