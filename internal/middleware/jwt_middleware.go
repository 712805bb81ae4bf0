package middleware

import (
	"log"
	"strings"

	"lemari/internal/models"

	"github.com/gofiber/fiber/v2"
)

const userKey = "user"

// IdentityResolver maps a presented token key to its user.
type IdentityResolver interface {
	Resolve(key string) (*models.User, error)
}

// Identify resolves the Authorization header into the acting user. Both
// "Bearer <key>" and "Token <key>" are accepted. A missing, malformed or
// unknown token leaves the request anonymous; endpoints that need an
// identity reject it later.
func Identify(identity IdentityResolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		key, ok := tokenFromHeader(c.Get(fiber.HeaderAuthorization))
		if !ok {
			return c.Next()
		}

		user, err := identity.Resolve(key)
		if err != nil {
			log.Printf("Token rejected for %s %s: %v", c.Method(), c.Path(), err)
			return c.Next()
		}
		c.Locals(userKey, user)
		return c.Next()
	}
}

// RequireIdentity rejects anonymous requests with 401.
func RequireIdentity() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if CurrentUser(c) == nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Authentication credentials were not provided.",
			})
		}
		return c.Next()
	}
}

// CurrentUser returns the user resolved by Identify, or nil for anonymous
// requests.
func CurrentUser(c *fiber.Ctx) *models.User {
	user, _ := c.Locals(userKey).(*models.User)
	return user
}

func tokenFromHeader(header string) (string, bool) {
	parts := strings.SplitN(strings.TrimSpace(header), " ", 2)
	if len(parts) != 2 {
		return "", false
	}
	switch parts[0] {
	case "Bearer", "Token":
	default:
		return "", false
	}
	key := strings.TrimSpace(parts[1])
	return key, key != ""
}
