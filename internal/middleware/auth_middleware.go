package middleware

import (
	"strings"

	"go-supplychain-router/pkg/jwt"

	"github.com/gofiber/fiber/v2"
)

// RequireOperator validates the bearer token on mutating routes and stores
// its subject in c.Locals("operator"). With an empty secret the guard is disabled.
func RequireOperator(secret []byte) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if len(secret) == 0 {
			return c.Next()
		}

		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return unauthorized(c, "Missing authorization token")
		}

		// "Bearer <token>"
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			return unauthorized(c, "Invalid authorization format. Use: Bearer <token>")
		}

		claims, err := jwt.ValidateToken(secret, parts[1])
		if err != nil {
			return unauthorized(c, "Invalid or expired token")
		}

		if claims.Role != jwt.RoleOperator {
			c.Set("Access-Control-Allow-Origin", "*")
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden: requires operator role"})
		}

		c.Locals("operator", claims.Subject)
		return c.Next()
	}
}

func unauthorized(c *fiber.Ctx, msg string) error {
	c.Set("Access-Control-Allow-Origin", "*")
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": msg})
}
