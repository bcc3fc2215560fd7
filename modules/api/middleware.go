package api

import (
	"strings"

	"github.com/Aswath1709/task-manager-app/domain/user"
	"github.com/Aswath1709/task-manager-app/modules/users"
	"github.com/gofiber/fiber/v2"
)

// UserContextKey is the Locals key holding the caller's user.Claims.
const UserContextKey = "user"

// AuthMiddleware validates the bearer token and stores the claims.
func AuthMiddleware(port users.UserPort) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		if header == "" {
			return unauthorized(c, "Authorization header is required")
		}
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			return unauthorized(c, "Invalid authorization header format. Use: Bearer <token>")
		}

		claims, err := port.ValidateToken(c.UserContext(), strings.TrimSpace(token))
		if err != nil {
			return unauthorized(c, "Invalid or expired token")
		}

		c.Locals(UserContextKey, claims)
		return c.Next()
	}
}

// AdminOnly allows only the listed usernames through. It must run after
// AuthMiddleware.
func AdminOnly(usernames []string) fiber.Handler {
	admins := make(map[string]struct{}, len(usernames))
	for _, name := range usernames {
		if name = strings.TrimSpace(name); name != "" {
			admins[name] = struct{}{}
		}
	}
	return func(c *fiber.Ctx) error {
		claims, _ := c.Locals(UserContextKey).(user.Claims)
		if _, ok := admins[claims.Username]; !ok {
			return c.Status(fiber.StatusForbidden).JSON(ErrorResponse{
				Error:   "forbidden",
				Message: "Administrator access required",
			})
		}
		return c.Next()
	}
}

func unauthorized(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
		Error:   "unauthorized",
		Message: message,
	})
}

// ownerID returns the authenticated user id set by AuthMiddleware.
func ownerID(c *fiber.Ctx) string {
	claims, ok := c.Locals(UserContextKey).(user.Claims)
	if !ok {
		return ""
	}
	return claims.UserID
}
