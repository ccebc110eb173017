package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"updateserver/internal/database"
	"updateserver/internal/models"
	"updateserver/internal/services"
)

func hasRole(userRole string, allowed []string) bool {
	if len(allowed) == 0 {
		return true
	}
	for _, r := range allowed {
		if r == userRole {
			return true
		}
	}
	return false
}

func tokenFrom(c *fiber.Ctx) string {
	token := c.Cookies("admin_token")
	if token == "" {
		authz := c.Get("Authorization")
		if strings.HasPrefix(authz, "Bearer ") {
			token = strings.TrimPrefix(authz, "Bearer ")
		}
	}
	return token
}

// AuthRequired guards admin panel pages; unauthenticated requests are
// redirected to the login form.
func AuthRequired(roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := tokenFrom(c)
		if token == "" {
			return c.Redirect("/login")
		}
		claims, err := services.ParseToken(token)
		if err != nil {
			return c.Redirect("/login")
		}
		if !hasRole(claims.Role, roles) {
			return fiber.ErrForbidden
		}
		var user models.User
		if err := database.DB.First(&user, claims.UserID).Error; err == nil {
			c.Locals("user", &user)
		}
		c.Locals("claims", claims)
		return c.Next()
	}
}

// APIAuthRequired guards admin JSON endpoints; failures answer 401/403
// instead of redirecting.
func APIAuthRequired(roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := tokenFrom(c)
		if token == "" {
			return fiber.ErrUnauthorized
		}
		claims, err := services.ParseToken(token)
		if err != nil {
			return fiber.ErrUnauthorized
		}
		if !hasRole(claims.Role, roles) {
			return fiber.ErrForbidden
		}
		c.Locals("claims", claims)
		return c.Next()
	}
}
