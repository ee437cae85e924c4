package handlers

import (
	"xivttw/internal/services"

	"github.com/gofiber/fiber/v2"
)

// DashboardHandler serves the back-office overview.
type DashboardHandler struct {
	service *services.DashboardService
}

func NewDashboardHandler(service *services.DashboardService) *DashboardHandler {
	return &DashboardHandler{service: service}
}

func (h *DashboardHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/dashboard", h.HandleStats)
}

func (h *DashboardHandler) HandleStats(c *fiber.Ctx) error {
	stats, err := h.service.Stats(c.UserContext())
	if err != nil {
		return respondError(c, err, "Could not load dashboard")
	}
	return c.JSON(stats)
}
