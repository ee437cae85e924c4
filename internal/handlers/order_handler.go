package handlers

import (
	"fmt"
	"time"

	"xivttw/internal/services"

	"github.com/gofiber/fiber/v2"
)

// OrderHandler handles back-office HTTP requests for orders.
type OrderHandler struct {
	service *services.OrderService
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(service *services.OrderService) *OrderHandler {
	return &OrderHandler{
		service: service,
	}
}

// RegisterRoutes registers the order routes with the Fiber app.
func (h *OrderHandler) RegisterRoutes(router fiber.Router) {
	orderRoutes := router.Group("/orders")
	orderRoutes.Get("/", h.HandleGetOrders)
	orderRoutes.Get("/revenue", h.HandleGetRevenue)
	orderRoutes.Get("/:id", h.HandleGetOrderByID)
	orderRoutes.Patch("/:id/status", h.HandleUpdateOrderStatus)
	orderRoutes.Delete("/:id", h.HandleDeleteOrder)
}

// HandleGetOrders lists orders newest first. Supports ?status= and
// ?from=&to= (RFC 3339 or YYYY-MM-DD).
func (h *OrderHandler) HandleGetOrders(c *fiber.Ctx) error {
	ctx := c.UserContext()
	if from, to := c.Query("from"), c.Query("to"); from != "" || to != "" {
		start, err := parseDate(from, time.Time{})
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid 'from' date", "error": err.Error()})
		}
		end, err := parseDate(to, time.Now())
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid 'to' date", "error": err.Error()})
		}
		if len(to) == len("2006-01-02") {
			end = end.Add(24*time.Hour - time.Nanosecond)
		}
		orders, err := h.service.GetOrdersByDateRange(ctx, start, end)
		if err != nil {
			return respondError(c, err, "Could not retrieve orders")
		}
		return c.JSON(orders)
	}
	if status := c.Query("status"); status != "" {
		orders, err := h.service.GetOrdersByStatus(ctx, status)
		if err != nil {
			return respondError(c, err, "Could not retrieve orders")
		}
		return c.JSON(orders)
	}
	orders, err := h.service.GetAllOrders(ctx)
	if err != nil {
		return respondError(c, err, "Could not retrieve orders")
	}
	return c.JSON(orders)
}

// HandleGetOrderByID retrieves a single order by its ID.
func (h *OrderHandler) HandleGetOrderByID(c *fiber.Ctx) error {
	order, err := h.service.GetOrderByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err, "Could not retrieve order")
	}
	return c.JSON(order)
}

// HandleUpdateOrderStatus moves an order to a new fulfillment status.
func (h *OrderHandler) HandleUpdateOrderStatus(c *fiber.Ctx) error {
	orderID := c.Params("id")
	var updateData struct {
		Status string `json:"status"`
	}

	if err := c.BodyParser(&updateData); err != nil {
		return badBody(c, err)
	}

	if updateData.Status == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Status is required for order status update.",
		})
	}

	order, err := h.service.UpdateFulfillmentStatus(c.UserContext(), orderID, updateData.Status)
	if err != nil {
		return respondError(c, err, "Could not update order status")
	}

	return c.JSON(fiber.Map{
		"message": fmt.Sprintf("Order %s status updated successfully to %s", orderID, updateData.Status),
		"order":   order,
	})
}

func (h *OrderHandler) HandleDeleteOrder(c *fiber.Ctx) error {
	orderID := c.Params("id")
	if err := h.service.DeleteOrder(c.UserContext(), orderID); err != nil {
		return respondError(c, err, "Could not delete order")
	}
	return c.JSON(fiber.Map{
		"message": fmt.Sprintf("Order %s deleted successfully", orderID),
	})
}

// HandleGetRevenue returns the sum of paid orders.
func (h *OrderHandler) HandleGetRevenue(c *fiber.Ctx) error {
	revenue, err := h.service.Revenue(c.UserContext())
	if err != nil {
		return respondError(c, err, "Could not compute revenue")
	}
	return c.JSON(fiber.Map{"revenue": revenue})
}

func parseDate(s string, fallback time.Time) (time.Time, error) {
	if s == "" {
		return fallback, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}
