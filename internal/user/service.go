package user

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Service manages account lifecycle.
type Service struct {
	repo Repository
}

// NewService creates a new user service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Repo exposes the underlying repository for collaborators that need lookups.
func (s *Service) Repo() Repository {
	return s.repo
}

// Register creates an unpaid account with a hashed password.
func (s *Service) Register(ctx context.Context, name, email, password string) (User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if name == "" || email == "" {
		return User{}, errors.New("name and email are required")
	}
	if len(password) < 6 {
		return User{}, errors.New("password must be at least 6 characters")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, err
	}

	user := User{
		ID:           uuid.New().String(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return User{}, err
	}

	return user, nil
}

// Authenticate verifies email/password credentials.
func (s *Service) Authenticate(ctx context.Context, creds Credentials) (User, error) {
	email := strings.ToLower(strings.TrimSpace(creds.Email))
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return User{}, errors.New("invalid credentials")
	}

	if err := bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(creds.Password)); err != nil {
		return User{}, errors.New("invalid credentials")
	}

	return user, nil
}

// Activate creates the account if it does not exist yet and marks it paid.
// Used by the payment callback, where the draft may already have been
// persisted by an earlier attempt.
func (s *Service) Activate(ctx context.Context, name, email, password string) (User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	existing, err := s.repo.FindByEmail(ctx, email)
	switch {
	case err == nil:
		if err := s.repo.SetPaid(ctx, existing.ID, true); err != nil {
			return User{}, err
		}
		existing.Paid = true
		return existing, nil
	case errors.Is(err, ErrNotFound):
		user, err := s.Register(ctx, name, email, password)
		if err != nil {
			return User{}, err
		}
		if err := s.repo.SetPaid(ctx, user.ID, true); err != nil {
			return User{}, err
		}
		user.Paid = true
		return user, nil
	default:
		return User{}, err
	}
}

// ActivateByID marks an existing account as paid.
func (s *Service) ActivateByID(ctx context.Context, id string) (User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return User{}, err
	}
	if err := s.repo.SetPaid(ctx, user.ID, true); err != nil {
		return User{}, err
	}
	user.Paid = true
	return user, nil
}
