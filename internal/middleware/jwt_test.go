package middleware

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/hassan-byekwaso/smart-budget-tracker/internal/auth"
	"github.com/hassan-byekwaso/smart-budget-tracker/internal/config"
	"github.com/hassan-byekwaso/smart-budget-tracker/internal/user"
)

func jwtFixture(t *testing.T, paid bool) (config.Config, user.Repository, string) {
	t.Helper()
	cfg := config.Config{JWTSecret: "test-secret"}

	repo := user.NewMemoryRepository()
	svc := user.NewService(repo)
	u, err := svc.Register(context.Background(), "Jane", "jane@example.com", "secret123")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if paid {
		if err := repo.SetPaid(context.Background(), u.ID, true); err != nil {
			t.Fatalf("set paid: %v", err)
		}
	}

	token, err := auth.SignHS256(map[string]any{
		"sub": u.ID,
		"exp": time.Now().Add(time.Hour).Unix(),
	}, []byte(cfg.JWTSecret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return cfg, repo, token
}

func TestJWTAuthRejectsMissingToken(t *testing.T) {
	cfg, repo, _ := jwtFixture(t, false)

	app := fiber.New()
	app.Get("/protected", JWTAuth(cfg, repo), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/protected", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
}

func TestJWTAuthAcceptsValidToken(t *testing.T) {
	cfg, repo, token := jwtFixture(t, false)

	app := fiber.New()
	app.Get("/protected", JWTAuth(cfg, repo), func(c *fiber.Ctx) error {
		uid, _ := c.Locals("user_id").(string)
		if uid == "" {
			t.Error("expected user_id in locals")
		}
		return c.SendStatus(fiber.StatusOK)
	})

	req := httptest.NewRequest(fiber.MethodGet, "/protected", nil)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
}

func TestOptionalJWTProceedsAsGuest(t *testing.T) {
	cfg, repo, _ := jwtFixture(t, false)

	app := fiber.New()
	app.Post("/open", OptionalJWT(cfg, repo), func(c *fiber.Ctx) error {
		if uid, _ := c.Locals("user_id").(string); uid != "" {
			t.Errorf("expected no identity, got %q", uid)
		}
		return c.SendStatus(fiber.StatusOK)
	})

	// No token at all.
	resp, err := app.Test(httptest.NewRequest(fiber.MethodPost, "/open", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected guest pass-through, got %d", resp.StatusCode)
	}

	// Garbage token is ignored, not rejected.
	req := httptest.NewRequest(fiber.MethodPost, "/open", nil)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer not.a.token")
	resp, err = app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected guest pass-through with bad token, got %d", resp.StatusCode)
	}
}

func TestRequirePaidGate(t *testing.T) {
	cfgUnpaid, repoUnpaid, tokenUnpaid := jwtFixture(t, false)

	app := fiber.New()
	app.Get("/paid-only", JWTAuth(cfgUnpaid, repoUnpaid), RequirePaid(), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	req := httptest.NewRequest(fiber.MethodGet, "/paid-only", nil)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer "+tokenUnpaid)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != fiber.StatusPaymentRequired {
		t.Fatalf("expected 402 for unpaid user, got %d", resp.StatusCode)
	}

	cfgPaid, repoPaid, tokenPaid := jwtFixture(t, true)
	app2 := fiber.New()
	app2.Get("/paid-only", JWTAuth(cfgPaid, repoPaid), RequirePaid(), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	req = httptest.NewRequest(fiber.MethodGet, "/paid-only", nil)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer "+tokenPaid)
	resp, err = app2.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200 for paid user, got %d", resp.StatusCode)
	}
}
