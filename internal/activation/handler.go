package activation

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/hassan-byekwaso/smart-budget-tracker/internal/daraja"
)

// Handler exposes the STK push initiation and provider callback endpoints.
type Handler struct {
	service *Service
}

// NewHandler constructs an activation handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type stkPushRequest struct {
	Phone     string `json:"phone"`
	Amount    int64  `json:"amount"`
	SessionID string `json:"sessionId"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

type stkPushResponse struct {
	Message           string `json:"message"`
	CheckoutRequestID string `json:"CheckoutRequestID"`
	MerchantRequestID string `json:"MerchantRequestID"`
}

// StkPush initiates a push payment. Unauthenticated callers register a new
// account; callers with a verified bearer token activate their existing one.
func (h *Handler) StkPush(c *fiber.Ctx) error {
	var req stkPushRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	userID, _ := c.Locals("user_id").(string)

	result, err := h.service.Initiate(c.UserContext(), InitiateInput{
		Phone:     req.Phone,
		Amount:    req.Amount,
		SessionID: req.SessionID,
		Name:      req.Name,
		Email:     req.Email,
		Password:  req.Password,
		UserID:    userID,
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrDuplicateAccount), errors.Is(err, daraja.ErrInvalidPhone):
			return fiber.NewError(http.StatusBadRequest, err.Error())
		default:
			return fiber.NewError(http.StatusInternalServerError, err.Error())
		}
	}

	return c.Status(http.StatusOK).JSON(stkPushResponse{
		Message:           "STK Push initiated. Please check your phone to complete the payment.",
		CheckoutRequestID: result.CheckoutRequestID,
		MerchantRequestID: result.MerchantRequestID,
	})
}

type callbackEnvelope struct {
	Body struct {
		StkCallback struct {
			MerchantRequestID string `json:"MerchantRequestID"`
			CheckoutRequestID string `json:"CheckoutRequestID"`
			ResultCode        int    `json:"ResultCode"`
			ResultDesc        string `json:"ResultDesc"`
		} `json:"stkCallback"`
	} `json:"Body"`
}

// Callback receives the provider's asynchronous payment result. Per the
// provider contract it always acknowledges with ResultCode 0; anything else
// triggers provider-side retries.
func (h *Handler) Callback(c *fiber.Ctx) error {
	ack := fiber.Map{"ResultCode": 0, "ResultDesc": "Accepted"}

	var envelope callbackEnvelope
	if err := c.BodyParser(&envelope); err != nil {
		h.service.logger.Warn("malformed provider callback", "error", err, "remote_ip", c.IP())
		return c.Status(http.StatusOK).JSON(ack)
	}

	cb := envelope.Body.StkCallback
	if err := h.service.Complete(c.UserContext(), Callback{
		CheckoutRequestID: cb.CheckoutRequestID,
		ResultCode:        cb.ResultCode,
		ResultDesc:        cb.ResultDesc,
	}); err != nil {
		h.service.logger.Error("callback processing failed",
			"checkout_request_id", cb.CheckoutRequestID,
			"error", err,
			"remote_ip", c.IP())
	}

	return c.Status(http.StatusOK).JSON(ack)
}
