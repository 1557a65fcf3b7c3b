package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/hassan-byekwaso/smart-budget-tracker/internal/activation"
)

// RegisterMpesaRoutes wires payment initiation and the provider callback.
// The callback stays unauthenticated per the provider contract; initiation
// runs behind optional auth so logged-in users take the existing-account path.
func RegisterMpesaRoutes(r fiber.Router, handler *activation.Handler, optionalAuth fiber.Handler) {
	grp := r.Group("/mpesa")
	grp.Post("/stk-push", optionalAuth, handler.StkPush)
	grp.Post("/callback", handler.Callback)
}
