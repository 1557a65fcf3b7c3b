// Package activation orchestrates payment-gated account activation: it
// initiates an STK push, parks the registration context while the provider
// processes it, and finishes the job when the callback arrives.
package activation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/hassan-byekwaso/smart-budget-tracker/internal/daraja"
	"github.com/hassan-byekwaso/smart-budget-tracker/internal/pending"
	"github.com/hassan-byekwaso/smart-budget-tracker/internal/realtime"
	"github.com/hassan-byekwaso/smart-budget-tracker/internal/user"
)

var (
	// ErrInvalidInput indicates missing or malformed initiation fields.
	ErrInvalidInput = errors.New("invalid input")

	// ErrDuplicateAccount indicates an activated account already exists for
	// the email. A not-yet-activated draft does not trigger this, so a user
	// whose first payment attempt failed can retry.
	ErrDuplicateAccount = errors.New("an active account with this email already exists")
)

// PaymentProvider is the outbound connector used to request push payments.
type PaymentProvider interface {
	StkPush(ctx context.Context, input daraja.StkPushInput) (daraja.StkPushResult, error)
}

// Service coordinates the activation workflow between the payment provider,
// the pending store, the user store and the realtime channel.
type Service struct {
	provider PaymentProvider
	store    pending.Store
	users    *user.Service
	notifier realtime.Notifier
	logger   *slog.Logger
}

// NewService builds the activation workflow service.
func NewService(provider PaymentProvider, store pending.Store, users *user.Service, notifier realtime.Notifier, logger *slog.Logger) *Service {
	return &Service{provider: provider, store: store, users: users, notifier: notifier, logger: logger}
}

// InitiateInput captures a payment initiation request. UserID is set only
// when a verified identity was attached to the request; its presence selects
// the existing-account mode.
type InitiateInput struct {
	Phone     string
	Amount    int64
	SessionID string

	Name     string
	Email    string
	Password string

	UserID string
}

// InitiateResult carries the provider identifiers the client uses to
// correlate realtime events.
type InitiateResult struct {
	CheckoutRequestID string
	MerchantRequestID string
}

// Initiate validates the request, submits the STK push and registers the
// pending activation. Nothing is stored unless the provider accepted the
// push, so a pending entry always implies an in-flight payment.
func (s *Service) Initiate(ctx context.Context, input InitiateInput) (InitiateResult, error) {
	if input.Phone == "" || input.Amount <= 0 || input.SessionID == "" {
		return InitiateResult{}, fmt.Errorf("%w: phone, amount, and sessionId are required", ErrInvalidInput)
	}

	var entry pending.Activation
	var email string

	if input.UserID == "" {
		if input.Name == "" || input.Email == "" || input.Password == "" {
			return InitiateResult{}, fmt.Errorf("%w: name, email, and password are required for registration", ErrInvalidInput)
		}
		email = strings.ToLower(strings.TrimSpace(input.Email))

		existing, err := s.users.Repo().FindByEmail(ctx, email)
		if err == nil && existing.Paid {
			return InitiateResult{}, ErrDuplicateAccount
		}
		if err != nil && !errors.Is(err, user.ErrNotFound) {
			return InitiateResult{}, err
		}

		entry = pending.Activation{
			SessionID: input.SessionID,
			Mode:      pending.ModeNewAccount,
			Name:      input.Name,
			Email:     email,
			Password:  input.Password,
		}
	} else {
		existing, err := s.users.Repo().FindByID(ctx, input.UserID)
		if err != nil {
			return InitiateResult{}, err
		}
		email = existing.Email
		entry = pending.Activation{
			SessionID: input.SessionID,
			Mode:      pending.ModeExistingAccount,
			UserID:    existing.ID,
		}
	}

	s.logger.Info("stk push initiation", "email", email, "session_id", input.SessionID)

	result, err := s.provider.StkPush(ctx, daraja.StkPushInput{
		Phone:            input.Phone,
		Amount:           input.Amount,
		AccountReference: accountReference(email),
	})
	if err != nil {
		return InitiateResult{}, err
	}

	entry.CheckoutRequestID = result.CheckoutRequestID
	if err := s.store.Put(ctx, result.CheckoutRequestID, entry); err != nil {
		return InitiateResult{}, err
	}

	s.logger.Info("pending activation stored", "checkout_request_id", result.CheckoutRequestID)

	return InitiateResult{
		CheckoutRequestID: result.CheckoutRequestID,
		MerchantRequestID: result.MerchantRequestID,
	}, nil
}

// Callback carries the fields extracted from the provider's result envelope.
type Callback struct {
	CheckoutRequestID string
	ResultCode        int
	ResultDesc        string
}

// Complete processes a provider callback. Late, duplicate, or unknown
// callbacks are acknowledged no-ops: the pending entry is consumed atomically
// on first delivery, so a retried callback finds nothing. The returned error
// only reports store access failures; workflow outcomes, including failed
// persistence after a successful payment, surface through the realtime
// channel and logs.
func (s *Service) Complete(ctx context.Context, cb Callback) error {
	entry, ok, err := s.store.Take(ctx, cb.CheckoutRequestID)
	if err != nil {
		return fmt.Errorf("look up pending activation: %w", err)
	}
	if !ok {
		s.logger.Warn("callback for unknown or expired request", "checkout_request_id", cb.CheckoutRequestID)
		return nil
	}

	if cb.ResultCode != 0 {
		s.logger.Info("payment failed or cancelled",
			"checkout_request_id", cb.CheckoutRequestID,
			"result_code", cb.ResultCode,
			"result_desc", cb.ResultDesc)
		s.emit(ctx, entry.SessionID, realtime.Event{
			Name:    failureEvent(entry.Mode),
			Message: "Payment not successful: " + cb.ResultDesc,
		})
		return nil
	}

	switch entry.Mode {
	case pending.ModeNewAccount:
		activated, err := s.users.Activate(ctx, entry.Name, entry.Email, entry.Password)
		if err != nil {
			// Payment went through but the account write failed; needs manual
			// follow-up, so keep the checkout id in the log.
			s.logger.Error("activation persistence failed after successful payment",
				"checkout_request_id", cb.CheckoutRequestID,
				"email", entry.Email,
				"error", err)
			s.emit(ctx, entry.SessionID, realtime.Event{
				Name:    realtime.EventRegistrationFailure,
				Message: "Payment successful, but a server error occurred. Please contact support.",
			})
			return nil
		}
		s.logger.Info("account activated", "email", activated.Email, "user_id", activated.ID)
		s.emit(ctx, entry.SessionID, realtime.Event{
			Name:    realtime.EventRegistrationSuccess,
			Message: "Payment successful! Your account has been created. You can now log in.",
			Email:   activated.Email,
		})
	case pending.ModeExistingAccount:
		activated, err := s.users.ActivateByID(ctx, entry.UserID)
		if err != nil {
			s.logger.Error("activation persistence failed after successful payment",
				"checkout_request_id", cb.CheckoutRequestID,
				"user_id", entry.UserID,
				"error", err)
			s.emit(ctx, entry.SessionID, realtime.Event{
				Name:    realtime.EventPaymentFailure,
				Message: "Payment successful, but failed to update your account. Please contact support.",
			})
			return nil
		}
		s.logger.Info("payment confirmed for existing user", "email", activated.Email, "user_id", activated.ID)
		s.emit(ctx, entry.SessionID, realtime.Event{
			Name:    realtime.EventPaymentSuccess,
			Message: "Payment successful! Your account is now active.",
			Email:   activated.Email,
		})
	}

	return nil
}

func (s *Service) emit(ctx context.Context, sessionID string, event realtime.Event) {
	if err := s.notifier.Emit(ctx, sessionID, event); err != nil {
		s.logger.Warn("realtime emit failed", "session_id", sessionID, "event", event.Name, "error", err)
	}
}

func failureEvent(mode pending.Mode) string {
	if mode == pending.ModeNewAccount {
		return realtime.EventRegistrationFailure
	}
	return realtime.EventPaymentFailure
}

func accountReference(email string) string {
	local := email
	if at := strings.IndexByte(email, '@'); at > 0 {
		local = email[:at]
	}
	return "BudgetTracker-" + local
}
