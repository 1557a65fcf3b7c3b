package auth

import (
	"time"

	"github.com/hassan-byekwaso/smart-budget-tracker/internal/config"
	"github.com/hassan-byekwaso/smart-budget-tracker/internal/user"
)

// Service issues access tokens for authenticated users.
type Service struct {
	cfg config.Config
}

// NewService builds the token-issuing service.
func NewService(cfg config.Config) *Service {
	return &Service{cfg: cfg}
}

// Token captures an issued access token and its lifetime.
type Token struct {
	AccessToken string `json:"token"`
	ExpiresIn   int64  `json:"expires_in"`
}

// Issue signs an access token for the user.
func (s *Service) Issue(u user.User) (Token, error) {
	now := time.Now()
	exp := now.Add(s.cfg.AccessTokenTTL)
	claims := map[string]any{
		"sub":   u.ID,
		"email": u.Email,
		"iat":   now.Unix(),
		"exp":   exp.Unix(),
	}
	signed, err := SignHS256(claims, []byte(s.cfg.JWTSecret))
	if err != nil {
		return Token{}, err
	}
	return Token{AccessToken: signed, ExpiresIn: int64(time.Until(exp).Seconds())}, nil
}
