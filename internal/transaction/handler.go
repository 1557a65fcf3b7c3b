package transaction

import (
	"errors"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// Handler exposes budget entry CRUD endpoints. All routes run behind the
// authenticated, paid-user middleware chain.
type Handler struct {
	repo Repository
}

// NewHandler constructs a transaction handler.
func NewHandler(repo Repository) *Handler {
	return &Handler{repo: repo}
}

type createRequest struct {
	Type        string `json:"type"`
	Category    string `json:"category"`
	Amount      int64  `json:"amount"`
	Description string `json:"description"`
	Date        string `json:"date"`
}

// Create records a new budget entry for the authenticated user.
func (h *Handler) Create(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)

	var req createRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	if req.Type != TypeIncome && req.Type != TypeExpense {
		return fiber.NewError(http.StatusBadRequest, "type must be income or expense")
	}
	if req.Amount <= 0 {
		return fiber.NewError(http.StatusBadRequest, "amount must be positive")
	}

	date := time.Now().UTC()
	if req.Date != "" {
		parsed, err := time.Parse(time.RFC3339, req.Date)
		if err != nil {
			return fiber.NewError(http.StatusBadRequest, "date must be RFC3339")
		}
		date = parsed.UTC()
	}

	tx := Transaction{
		ID:          uuid.New().String(),
		UserID:      userID,
		Type:        req.Type,
		Category:    req.Category,
		Amount:      req.Amount,
		Description: req.Description,
		Date:        date,
		CreatedAt:   time.Now().UTC(),
	}

	if err := h.repo.Create(c.UserContext(), tx); err != nil {
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}

	return c.Status(http.StatusCreated).JSON(tx)
}

// List returns the user's entries, optionally filtered with ?category=.
func (h *Handler) List(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)
	category := c.Query("category")

	entries, err := h.repo.ListByUser(c.UserContext(), userID, category)
	if err != nil {
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
	if entries == nil {
		entries = []Transaction{}
	}
	return c.JSON(entries)
}

// Update rewrites one of the user's entries. Omitting the date keeps the
// stored one.
func (h *Handler) Update(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)
	id := c.Params("id")

	var req createRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	if req.Type != TypeIncome && req.Type != TypeExpense {
		return fiber.NewError(http.StatusBadRequest, "type must be income or expense")
	}
	if req.Amount <= 0 {
		return fiber.NewError(http.StatusBadRequest, "amount must be positive")
	}

	var date time.Time
	if req.Date != "" {
		parsed, err := time.Parse(time.RFC3339, req.Date)
		if err != nil {
			return fiber.NewError(http.StatusBadRequest, "date must be RFC3339")
		}
		date = parsed.UTC()
	}

	tx := Transaction{
		ID:          id,
		UserID:      userID,
		Type:        req.Type,
		Category:    req.Category,
		Amount:      req.Amount,
		Description: req.Description,
		Date:        date,
	}

	if err := h.repo.Update(c.UserContext(), tx); err != nil {
		if errors.Is(err, ErrNotFound) {
			return fiber.NewError(http.StatusNotFound, err.Error())
		}
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(fiber.Map{"status": "updated"})
}

// Delete removes one of the user's entries.
func (h *Handler) Delete(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)
	id := c.Params("id")

	if err := h.repo.Delete(c.UserContext(), userID, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return fiber.NewError(http.StatusNotFound, err.Error())
		}
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(fiber.Map{"status": "deleted"})
}

// GetOptions returns the accepted types and suggested categories.
func (h *Handler) GetOptions(c *fiber.Ctx) error {
	return c.JSON(DefaultOptions())
}
