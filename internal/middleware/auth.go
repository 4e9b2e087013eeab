package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/example/storedash/internal/config"
	"github.com/example/storedash/internal/models"
	"github.com/example/storedash/internal/utils"
)

const identityContextKey = "currentIdentity"

// AuthMiddleware validates bearer tokens and loads the decoded identity into
// context. When a required role is given, any other role except superadmin
// is rejected. The gate never touches the database.
func AuthMiddleware(cfg *config.Config, requiredRole ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "No token, authorization denied")
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return fiber.NewError(fiber.StatusUnauthorized, "No token, authorization denied")
		}

		claims, err := utils.ParseToken(cfg.JWTSecret, parts[1])
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "Token is not valid")
		}

		c.Locals(identityContextKey, claims)

		if len(requiredRole) > 0 {
			role := requiredRole[0]
			if claims.Role != role && claims.Role != models.RoleSuperadmin {
				return fiber.NewError(fiber.StatusForbidden, "Forbidden, insufficient rights")
			}
		}

		return c.Next()
	}
}

// GetCurrentUser extracts the authenticated identity from context.
func GetCurrentUser(c *fiber.Ctx) (utils.Claims, bool) {
	value := c.Locals(identityContextKey)
	if value == nil {
		return utils.Claims{}, false
	}

	if claims, ok := value.(utils.Claims); ok {
		return claims, true
	}

	return utils.Claims{}, false
}
