package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/hassan-byekwaso/smart-budget-tracker/internal/transaction"
)

// RegisterTransactionRoutes wires budget entry CRUD endpoints.
func RegisterTransactionRoutes(r fiber.Router, handler *transaction.Handler) {
	grp := r.Group("/transactions")
	grp.Get("/options", handler.GetOptions)
	grp.Post("/", handler.Create)
	grp.Get("/", handler.List)
	grp.Put("/:id", handler.Update)
	grp.Delete("/:id", handler.Delete)
}
