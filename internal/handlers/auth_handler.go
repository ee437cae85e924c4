package handlers

import (
	"errors"
	"fmt"
	"log"
	"time"

	"xivttw/internal/middleware"
	"xivttw/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

// AuthHandler handles HTTP requests for admin authentication.
type AuthHandler struct {
	authService *services.AuthService
	validate    *validator.Validate
	loginLimit  int
}

// NewAuthHandler creates a new AuthHandler. loginLimit caps login attempts
// per client per minute; zero uses the default of 10.
func NewAuthHandler(authService *services.AuthService, loginLimit int) *AuthHandler {
	if loginLimit <= 0 {
		loginLimit = 10
	}
	return &AuthHandler{
		authService: authService,
		validate:    validator.New(),
		loginLimit:  loginLimit,
	}
}

// RegisterRoutes registers the authentication routes with the Fiber app.
func (h *AuthHandler) RegisterRoutes(router fiber.Router) {
	authRoutes := router.Group("/auth")
	authRoutes.Post("/login", limiter.New(limiter.Config{
		Max:        h.loginLimit,
		Expiration: time.Minute,
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"message": "Too many attempts. Please try again later.",
			})
		},
	}), h.HandleLogin)
	authRoutes.Post("/logout", h.HandleLogout)
	authRoutes.Get("/status", h.HandleStatus)
}

// LoginRequest represents the request body for login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// HandleLogin checks admin credentials and issues a session token.
func (h *AuthHandler) HandleLogin(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, err)
	}

	// Validate the login request
	if err := h.validate.Struct(req); err != nil {
		validationErrors := err.(validator.ValidationErrors)
		errorMessages := make(map[string]string)
		for _, e := range validationErrors {
			errorMessages[e.Field()] = fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag())
		}
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Validation failed",
			"errors":  errorMessages,
		})
	}

	res, err := h.authService.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		if !errors.Is(err, services.ErrInvalidCredentials) {
			log.Printf("Error during login: %v", err)
		}
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"success": false,
			"message": "Invalid email or password",
		})
	}

	c.Cookie(&fiber.Cookie{
		Name:     middleware.TokenCookie,
		Value:    res.Token,
		Path:     "/",
		Expires:  res.Session.ExpiresAt,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteStrictMode,
	})
	return c.JSON(fiber.Map{
		"success":    true,
		"message":    "Login successful",
		"token":      res.Token,
		"expires_at": res.Session.ExpiresAt,
	})
}

// HandleLogout ends the caller's session. It always succeeds.
func (h *AuthHandler) HandleLogout(c *fiber.Ctx) error {
	h.authService.Logout(c.UserContext(), middleware.BearerToken(c))
	c.ClearCookie(middleware.TokenCookie)
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Logged out",
	})
}

// HandleStatus reports whether the caller holds a live session.
func (h *AuthHandler) HandleStatus(c *fiber.Ctx) error {
	status := h.authService.Status(c.UserContext(), middleware.BearerToken(c))
	return c.JSON(fiber.Map{
		"authenticated":     status.Authenticated,
		"user":              status.User,
		"expires_at":        status.ExpiresAt,
		"remaining_seconds": int64(status.Remaining.Seconds()),
		"expiring_soon":     status.ExpiringSoon,
	})
}
