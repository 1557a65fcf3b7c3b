package user

import (
	"context"
	"testing"
)

func TestRegisterAndAuthenticate(t *testing.T) {
	repo := NewMemoryRepository()
	svc := NewService(repo)

	ctx := context.Background()
	created, err := svc.Register(ctx, "Jane", "jane@example.com", "secret123")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if created.Paid {
		t.Fatal("new accounts must start unpaid")
	}

	authed, err := svc.Authenticate(ctx, Credentials{Email: "jane@example.com", Password: "secret123"})
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if authed.ID != created.ID {
		t.Fatalf("expected user %s, got %s", created.ID, authed.ID)
	}

	if _, err := svc.Authenticate(ctx, Credentials{Email: "jane@example.com", Password: "wrong"}); err == nil {
		t.Fatal("expected invalid credentials error")
	}
}

func TestRegisterRejectsShortPassword(t *testing.T) {
	svc := NewService(NewMemoryRepository())
	if _, err := svc.Register(context.Background(), "Jane", "jane@example.com", "123"); err == nil {
		t.Fatal("expected password length error")
	}
}

func TestActivateCreatesMissingAccount(t *testing.T) {
	repo := NewMemoryRepository()
	svc := NewService(repo)
	ctx := context.Background()

	user, err := svc.Activate(ctx, "Jane", "jane@example.com", "secret123")
	if err != nil {
		t.Fatalf("activate: %v", err)
	}
	if !user.Paid {
		t.Fatal("activated user must be paid")
	}

	// Second activation for the same email must reuse the record.
	again, err := svc.Activate(ctx, "Jane", "jane@example.com", "secret123")
	if err != nil {
		t.Fatalf("second activate: %v", err)
	}
	if again.ID != user.ID {
		t.Fatalf("expected same user id, got %s and %s", user.ID, again.ID)
	}
}

func TestActivateByID(t *testing.T) {
	repo := NewMemoryRepository()
	svc := NewService(repo)
	ctx := context.Background()

	created, err := svc.Register(ctx, "Jane", "jane@example.com", "secret123")
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	activated, err := svc.ActivateByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("activate by id: %v", err)
	}
	if !activated.Paid {
		t.Fatal("expected paid flag set")
	}

	if _, err := svc.ActivateByID(ctx, "missing"); err == nil {
		t.Fatal("expected error for unknown user")
	}
}
