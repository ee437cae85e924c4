package handlers

import (
	"xivttw/internal/models"
	"xivttw/internal/services"

	"github.com/gofiber/fiber/v2"
)

// ContactHandler handles contact form submissions and their review.
type ContactHandler struct {
	service *services.ContactService
}

func NewContactHandler(service *services.ContactService) *ContactHandler {
	return &ContactHandler{service: service}
}

// RegisterRoutes registers the public contact form route.
func (h *ContactHandler) RegisterRoutes(router fiber.Router) {
	router.Post("/contact", h.HandleSubmit)
}

// RegisterAdminRoutes registers the message inbox routes.
func (h *ContactHandler) RegisterAdminRoutes(router fiber.Router) {
	router.Get("/messages", h.HandleList)
	router.Patch("/messages/:id/read", h.HandleSetRead)
}

func (h *ContactHandler) HandleSubmit(c *fiber.Ctx) error {
	var msg models.ContactMessage
	if err := c.BodyParser(&msg); err != nil {
		return badBody(c, err)
	}
	msg.ID = ""
	if err := h.service.Submit(c.UserContext(), &msg); err != nil {
		return respondError(c, err, "Could not send message")
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Message sent successfully",
		"id":      msg.ID,
	})
}

func (h *ContactHandler) HandleList(c *fiber.Ctx) error {
	msgs, err := h.service.List(c.UserContext())
	if err != nil {
		return respondError(c, err, "Could not retrieve messages")
	}
	return c.JSON(msgs)
}

// HandleSetRead marks a message read, or unread with {"read": false}.
func (h *ContactHandler) HandleSetRead(c *fiber.Ctx) error {
	body := struct {
		Read *bool `json:"read"`
	}{}
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&body); err != nil {
			return badBody(c, err)
		}
	}
	read := body.Read == nil || *body.Read
	if err := h.service.SetRead(c.UserContext(), c.Params("id"), read); err != nil {
		return respondError(c, err, "Could not update message")
	}
	return c.JSON(fiber.Map{"id": c.Params("id"), "read": read})
}
