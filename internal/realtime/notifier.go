package realtime

import (
	"context"
	"log/slog"
)

const (
	// EventRegistrationSuccess signals a new account was created and activated.
	EventRegistrationSuccess = "registration-success"
	// EventRegistrationFailure signals a failed new-account payment.
	EventRegistrationFailure = "registration-failure"
	// EventPaymentSuccess signals an existing account was activated.
	EventPaymentSuccess = "payment-success"
	// EventPaymentFailure signals a failed payment for an existing account.
	EventPaymentFailure = "payment-failure"
)

// Event is a server-to-client push message.
type Event struct {
	Name    string `json:"-"`
	Message string `json:"message"`
	Email   string `json:"email,omitempty"`
}

// Notifier delivers terminal payment outcomes to a connected client session.
// Delivery to an unknown or disconnected session is a no-op, not an error.
type Notifier interface {
	Emit(ctx context.Context, sessionID string, event Event) error
}

// LoggerNotifier writes events to the structured logger. Used when no hub is
// wired and as a test double.
type LoggerNotifier struct {
	logger *slog.Logger
}

// NewLoggerNotifier constructs a logging notifier.
func NewLoggerNotifier(logger *slog.Logger) *LoggerNotifier {
	return &LoggerNotifier{logger: logger}
}

// Emit writes the event to the structured logger.
func (n *LoggerNotifier) Emit(_ context.Context, sessionID string, event Event) error {
	if n == nil || n.logger == nil {
		return nil
	}
	n.logger.Info("realtime event", "session_id", sessionID, "event", event.Name, "message", event.Message)
	return nil
}
