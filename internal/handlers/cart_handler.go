package handlers

import (
	"xivttw/internal/middleware"
	"xivttw/internal/models"
	"xivttw/internal/services"

	"github.com/gofiber/fiber/v2"
)

// CartHandler handles HTTP requests for the shopping cart. Routes expect
// the middleware.CartOwner handler in front of them.
type CartHandler struct {
	service *services.CartService
}

// NewCartHandler creates a new CartHandler.
func NewCartHandler(service *services.CartService) *CartHandler {
	return &CartHandler{service: service}
}

// RegisterRoutes registers the cart routes with the Fiber app.
func (h *CartHandler) RegisterRoutes(router fiber.Router) {
	cartRoutes := router.Group("/cart")
	cartRoutes.Get("/", h.HandleView)
	cartRoutes.Post("/items", h.HandleAddItem)
	cartRoutes.Patch("/items/:id", h.HandleSetQuantity)
	cartRoutes.Delete("/items/:id", h.HandleRemoveItem)
	cartRoutes.Delete("/", h.HandleClear)
	cartRoutes.Post("/merge", h.HandleMerge)
}

func (h *CartHandler) HandleView(c *fiber.Ctx) error {
	view, err := h.service.View(c.UserContext(), middleware.Owner(c))
	if err != nil {
		return respondError(c, err, "Could not load cart")
	}
	return c.JSON(view)
}

func (h *CartHandler) HandleAddItem(c *fiber.Ctx) error {
	var in services.AddItemInput
	if err := c.BodyParser(&in); err != nil {
		return badBody(c, err)
	}
	if in.ProductID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "product_id is required",
		})
	}
	view, err := h.service.AddItem(c.UserContext(), middleware.Owner(c), in)
	if err != nil {
		return respondError(c, err, "Could not add item to cart")
	}
	return c.Status(fiber.StatusCreated).JSON(view)
}

func (h *CartHandler) HandleSetQuantity(c *fiber.Ctx) error {
	var body struct {
		Quantity *int `json:"quantity"`
	}
	if err := c.BodyParser(&body); err != nil {
		return badBody(c, err)
	}
	if body.Quantity == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "quantity is required",
		})
	}
	view, err := h.service.SetQuantity(c.UserContext(), middleware.Owner(c), c.Params("id"), *body.Quantity)
	if err != nil {
		return respondError(c, err, "Could not update cart")
	}
	return c.JSON(view)
}

func (h *CartHandler) HandleRemoveItem(c *fiber.Ctx) error {
	view, err := h.service.RemoveItem(c.UserContext(), middleware.Owner(c), c.Params("id"))
	if err != nil {
		return respondError(c, err, "Could not update cart")
	}
	return c.JSON(view)
}

func (h *CartHandler) HandleClear(c *fiber.Ctx) error {
	if err := h.service.Clear(c.UserContext(), middleware.Owner(c)); err != nil {
		return respondError(c, err, "Could not clear cart")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// HandleMerge moves the anonymous cart into the signed-in user's cart.
func (h *CartHandler) HandleMerge(c *fiber.Ctx) error {
	owner := middleware.Owner(c)
	sid := c.Cookies(middleware.CartCookie)
	if owner.UserID == "" || sid == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Merging needs a signed-in user and an anonymous cart",
		})
	}
	view, err := h.service.Merge(c.UserContext(), models.CartOwner{SessionID: sid}, owner)
	if err != nil {
		return respondError(c, err, "Could not merge carts")
	}
	c.ClearCookie(middleware.CartCookie)
	return c.JSON(view)
}
