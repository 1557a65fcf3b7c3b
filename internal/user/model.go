package user

import "time"

// User represents a budget tracker account. Paid gates access to the
// transaction features and is flipped by the activation workflow once the
// M-Pesa payment confirms.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash []byte
	Phone        string
	Paid         bool
	CreatedAt    time.Time
}

// Credentials carries a login attempt.
type Credentials struct {
	Email    string
	Password string
}
