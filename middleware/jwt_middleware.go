package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"tasky/utils"
)

// IdentityKey is the Locals key holding the token claims
const IdentityKey = "identity"

// Protected rejects requests without a valid access token. The token comes
// from the Authorization header, or from the token query parameter for
// clients that cannot set headers (browser websockets).
func Protected(tokens *utils.TokenIssuer) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var token string
		authHeader := c.Get("Authorization")
		if authHeader != "" {
			// Check if it's a Bearer token
			tokenParts := strings.Split(authHeader, " ")
			if len(tokenParts) != 2 || tokenParts[0] != "Bearer" {
				return utils.ErrorResponse(c, fiber.StatusUnauthorized, "Invalid authorization format", nil)
			}
			token = tokenParts[1]
		} else {
			token = c.Query("token")
			if token == "" {
				return utils.ErrorResponse(c, fiber.StatusUnauthorized, "Authorization required", nil)
			}
		}

		claims, err := tokens.Parse(token)
		if err != nil {
			return utils.ErrorResponse(c, fiber.StatusUnauthorized, "Invalid or expired token", nil)
		}

		c.Locals(IdentityKey, claims)
		return c.Next()
	}
}

// Identity returns the claims stored by Protected
func Identity(c *fiber.Ctx) *utils.Claims {
	claims, _ := c.Locals(IdentityKey).(*utils.Claims)
	return claims
}

// UserID returns the authenticated user id, zero when unauthenticated
func UserID(c *fiber.Ctx) uint {
	if claims := Identity(c); claims != nil {
		return claims.ID
	}
	return 0
}
