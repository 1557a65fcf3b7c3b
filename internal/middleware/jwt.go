package middleware

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/hassan-byekwaso/smart-budget-tracker/internal/auth"
	"github.com/hassan-byekwaso/smart-budget-tracker/internal/config"
	"github.com/hassan-byekwaso/smart-budget-tracker/internal/user"
)

func bearerToken(c *fiber.Ctx) (string, bool) {
	authz := c.Get(fiber.HeaderAuthorization)
	if !strings.HasPrefix(strings.ToLower(authz), "bearer ") {
		return "", false
	}
	return strings.TrimSpace(authz[len("Bearer "):]), true
}

// JWTAuth returns a middleware that requires a valid access token and loads
// the referenced user.
func JWTAuth(cfg config.Config, repo user.Repository) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenStr, ok := bearerToken(c)
		if !ok {
			return fiber.NewError(http.StatusUnauthorized, "missing bearer token")
		}
		claims, err := auth.ParseAndVerifyHS256(tokenStr, []byte(cfg.JWTSecret))
		if err != nil {
			return fiber.NewError(http.StatusUnauthorized, "invalid token")
		}
		sub, _ := claims["sub"].(string)

		u, err := repo.FindByID(c.UserContext(), sub)
		if err != nil {
			return fiber.NewError(http.StatusUnauthorized, "user not found")
		}

		c.Locals("user_id", u.ID)
		c.Locals("user_paid", u.Paid)
		return c.Next()
	}
}

// OptionalJWT attaches the user identity when a valid bearer token is
// present and proceeds as a guest otherwise. Used by the payment initiation
// endpoint, where the presence of an identity selects the existing-account
// path.
func OptionalJWT(cfg config.Config, repo user.Repository) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenStr, ok := bearerToken(c)
		if !ok {
			return c.Next()
		}
		claims, err := auth.ParseAndVerifyHS256(tokenStr, []byte(cfg.JWTSecret))
		if err != nil {
			// Invalid token on an optional route: proceed as guest.
			return c.Next()
		}
		sub, _ := claims["sub"].(string)
		u, err := repo.FindByID(c.UserContext(), sub)
		if err != nil {
			return c.Next()
		}

		c.Locals("user_id", u.ID)
		c.Locals("user_paid", u.Paid)
		return c.Next()
	}
}

// RequirePaid rejects requests from users whose account activation payment
// has not completed. Must run after JWTAuth.
func RequirePaid() fiber.Handler {
	return func(c *fiber.Ctx) error {
		paid, _ := c.Locals("user_paid").(bool)
		if !paid {
			return fiber.NewError(http.StatusPaymentRequired, "Payment required to access this resource.")
		}
		return c.Next()
	}
}
