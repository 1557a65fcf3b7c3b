package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/hassan-byekwaso/smart-budget-tracker/internal/auth"
)

// RegisterAuthRoutes wires login and profile endpoints.
func RegisterAuthRoutes(r fiber.Router, handler *auth.Handler, jwtmw fiber.Handler, rateLimiter fiber.Handler) {
	grp := r.Group("/auth")
	grp.Post("/login", rateLimiter, handler.Login)
	grp.Get("/me", jwtmw, handler.Me)
}
