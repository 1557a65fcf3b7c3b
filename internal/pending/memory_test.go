package pending

import (
	"context"
	"testing"
	"time"
)

func TestMemoryStoreTakeConsumesEntry(t *testing.T) {
	store := NewMemoryStore(time.Minute)
	ctx := context.Background()

	entry := Activation{CheckoutRequestID: "ws_1", SessionID: "s1", Mode: ModeNewAccount, Email: "jane@example.com"}
	if err := store.Put(ctx, "ws_1", entry); err != nil {
		t.Fatalf("put: %v", err)
	}

	got, ok, err := store.Take(ctx, "ws_1")
	if err != nil {
		t.Fatalf("take: %v", err)
	}
	if !ok {
		t.Fatal("expected entry present")
	}
	if got.Email != entry.Email || got.Mode != ModeNewAccount {
		t.Fatalf("unexpected entry %+v", got)
	}

	// Second take must find nothing.
	if _, ok, _ := store.Take(ctx, "ws_1"); ok {
		t.Fatal("expected entry consumed after first take")
	}
}

func TestMemoryStoreTakeUnknownKey(t *testing.T) {
	store := NewMemoryStore(time.Minute)
	if _, ok, err := store.Take(context.Background(), "missing"); err != nil || ok {
		t.Fatalf("expected absent without error, got ok=%v err=%v", ok, err)
	}
}

func TestMemoryStorePutOverwrites(t *testing.T) {
	store := NewMemoryStore(time.Minute)
	ctx := context.Background()

	store.Put(ctx, "ws_1", Activation{SessionID: "s1"})
	store.Put(ctx, "ws_1", Activation{SessionID: "s2"})

	got, ok, _ := store.Take(ctx, "ws_1")
	if !ok || got.SessionID != "s2" {
		t.Fatalf("expected last writer to win, got %+v ok=%v", got, ok)
	}
}

func TestMemoryStoreTTLEviction(t *testing.T) {
	store := NewMemoryStore(20 * time.Millisecond)
	ctx := context.Background()

	if err := store.Put(ctx, "ws_1", Activation{SessionID: "s1"}); err != nil {
		t.Fatalf("put: %v", err)
	}

	time.Sleep(60 * time.Millisecond)

	if _, ok, _ := store.Take(ctx, "ws_1"); ok {
		t.Fatal("expected entry evicted after TTL")
	}
}

func TestMemoryStoreDeleteIdempotent(t *testing.T) {
	store := NewMemoryStore(time.Minute)
	ctx := context.Background()

	store.Put(ctx, "ws_1", Activation{SessionID: "s1"})
	if err := store.Delete(ctx, "ws_1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := store.Delete(ctx, "ws_1"); err != nil {
		t.Fatalf("second delete: %v", err)
	}
}
