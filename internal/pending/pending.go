// Package pending holds the short-lived registry of push-payment requests
// awaiting a provider callback.
package pending

import "context"

// Mode distinguishes activations that create a new account from those that
// re-activate an existing one.
type Mode string

const (
	// ModeNewAccount marks a registration paid for before the account exists.
	ModeNewAccount Mode = "new_account"
	// ModeExistingAccount marks a payment by an already registered user.
	ModeExistingAccount Mode = "existing_account"
)

// Activation is the context stored between payment initiation and the
// provider callback, keyed by the provider's CheckoutRequestID.
type Activation struct {
	CheckoutRequestID string `json:"checkout_request_id"`
	SessionID         string `json:"session_id"`
	Mode              Mode   `json:"mode"`

	// Draft account fields, ModeNewAccount only. Password is the raw
	// credential; hashing happens when the account is created.
	Name     string `json:"name,omitempty"`
	Email    string `json:"email,omitempty"`
	Password string `json:"password,omitempty"`

	// UserID references the persistent record, ModeExistingAccount only.
	UserID string `json:"user_id,omitempty"`
}

// Store is a TTL-bounded key-value registry of pending activations. Entries
// are consumed at most once: Take atomically reads and removes, so a retried
// callback for the same request finds nothing. Entries not taken within the
// TTL are evicted.
type Store interface {
	Put(ctx context.Context, key string, value Activation) error
	Take(ctx context.Context, key string) (Activation, bool, error)
	Delete(ctx context.Context, key string) error
}
