package middleware

import (
	"context"
	"log"
	"strings"

	"xivttw/internal/models"
	"xivttw/internal/services"

	"github.com/gofiber/fiber/v2"
)

// TokenCookie carries the admin session token for browser clients.
const TokenCookie = "admin_token"

// Authenticator resolves a session token. *services.AuthService satisfies it.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*models.AdminSession, error)
}

// BearerToken returns the session token from the Authorization header or,
// failing that, the session cookie.
func BearerToken(c *fiber.Ctx) string {
	if authHeader := c.Get(fiber.HeaderAuthorization); authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
		return ""
	}
	return c.Cookies(TokenCookie)
}

// AdminRequired rejects requests without a live admin session and stores
// the session in c.Locals("session").
func AdminRequired(auth Authenticator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString := BearerToken(c)
		if tokenString == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Authentication required",
			})
		}

		session, err := auth.Authenticate(c.UserContext(), tokenString)
		if err != nil {
			log.Printf("Session validation failed: %v", err)
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Invalid or expired session",
			})
		}

		c.Locals("session", session)
		c.Locals("user_id", session.UserID)
		return c.Next()
	}
}

// Session returns the admin session stored by AdminRequired or CartOwner.
func Session(c *fiber.Ctx) *models.AdminSession {
	s, _ := c.Locals("session").(*models.AdminSession)
	return s
}

var _ Authenticator = (*services.AuthService)(nil)
