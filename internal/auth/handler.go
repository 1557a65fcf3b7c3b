package auth

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/hassan-byekwaso/smart-budget-tracker/internal/user"
)

// Handler exposes login and profile endpoints.
type Handler struct {
	users *user.Service
	svc   *Service
}

// NewHandler constructs an auth handler.
func NewHandler(users *user.Service, svc *Service) *Handler {
	return &Handler{users: users, svc: svc}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userPayload struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Paid  bool   `json:"hasPaid"`
}

type loginResponse struct {
	Token     string      `json:"token"`
	ExpiresIn int64       `json:"expires_in"`
	User      userPayload `json:"user"`
}

// Login validates credentials and returns an access token.
func (h *Handler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	if req.Email == "" || req.Password == "" {
		return fiber.NewError(http.StatusBadRequest, "email and password are required")
	}

	u, err := h.users.Authenticate(c.UserContext(), user.Credentials{Email: req.Email, Password: req.Password})
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid credentials")
	}

	token, err := h.svc.Issue(u)
	if err != nil {
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}

	return c.Status(http.StatusOK).JSON(loginResponse{
		Token:     token.AccessToken,
		ExpiresIn: token.ExpiresIn,
		User:      userPayload{ID: u.ID, Name: u.Name, Email: u.Email, Paid: u.Paid},
	})
}

// Me returns the authenticated user's profile.
func (h *Handler) Me(c *fiber.Ctx) error {
	uid, _ := c.Locals("user_id").(string)
	if uid == "" {
		return c.SendStatus(http.StatusUnauthorized)
	}
	u, err := h.users.Repo().FindByID(c.UserContext(), uid)
	if err != nil {
		return fiber.NewError(http.StatusUnauthorized, "user not found")
	}
	return c.JSON(userPayload{ID: u.ID, Name: u.Name, Email: u.Email, Paid: u.Paid})
}
