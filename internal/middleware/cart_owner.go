package middleware

import (
	"strings"
	"time"

	"xivttw/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// CartCookie holds the anonymous cart id.
const CartCookie = "cart_session_id"

const cartCookieTTL = 365 * 24 * time.Hour

// NewCartSessionID returns a fresh anonymous cart id.
func NewCartSessionID() string {
	return "session_" + strings.ReplaceAll(uuid.New().String(), "-", "")
}

// CartOwner resolves whose cart the request works on. A valid session token
// selects the signed-in user; otherwise the anonymous cart cookie is used,
// and issued when missing.
func CartOwner(auth Authenticator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if token := BearerToken(c); token != "" {
			if session, err := auth.Authenticate(c.UserContext(), token); err == nil {
				c.Locals("session", session)
				c.Locals("cart_owner", models.CartOwner{UserID: session.UserID})
				return c.Next()
			}
		}

		sid := c.Cookies(CartCookie)
		if sid == "" {
			sid = NewCartSessionID()
			c.Cookie(&fiber.Cookie{
				Name:     CartCookie,
				Value:    sid,
				Path:     "/",
				Expires:  time.Now().Add(cartCookieTTL),
				HTTPOnly: true,
				SameSite: fiber.CookieSameSiteLaxMode,
			})
		}
		c.Locals("cart_owner", models.CartOwner{SessionID: sid})
		return c.Next()
	}
}

// Owner returns the cart owner stored by CartOwner.
func Owner(c *fiber.Ctx) models.CartOwner {
	o, _ := c.Locals("cart_owner").(models.CartOwner)
	return o
}
