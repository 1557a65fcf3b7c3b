package realtime

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/hassan-byekwaso/smart-budget-tracker/internal/logging"
)

func TestHubEmitToSubscriber(t *testing.T) {
	hub := NewHub(logging.Discard())
	events, cancel := hub.Subscribe("s1")
	defer cancel()

	if err := hub.Emit(context.Background(), "s1", Event{Name: EventRegistrationSuccess, Message: "done", Email: "jane@example.com"}); err != nil {
		t.Fatalf("emit: %v", err)
	}

	select {
	case ev := <-events:
		if ev.Name != EventRegistrationSuccess || ev.Email != "jane@example.com" {
			t.Fatalf("unexpected event %+v", ev)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
	}
}

func TestHubEmitToDisconnectedSessionIsNoOp(t *testing.T) {
	hub := NewHub(logging.Discard())
	if err := hub.Emit(context.Background(), "ghost", Event{Name: EventPaymentFailure, Message: "nope"}); err != nil {
		t.Fatalf("emit to absent session must not error: %v", err)
	}
}

func TestHubCancelRemovesSession(t *testing.T) {
	hub := NewHub(logging.Discard())
	_, cancel := hub.Subscribe("s1")
	if !hub.Connected("s1") {
		t.Fatal("expected session connected")
	}
	cancel()
	if hub.Connected("s1") {
		t.Fatal("expected session removed after cancel")
	}
}

func TestHubEmitConcurrentWithCancel(t *testing.T) {
	hub := NewHub(logging.Discard())

	// Emit must never race the channel close performed by cancel or a
	// resubscribe; a lost race panics on send to a closed channel.
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		_, cancel := hub.Subscribe("s1")

		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				hub.Emit(context.Background(), "s1", Event{Name: EventPaymentSuccess, Message: "ok"})
			}
		}()
		go func() {
			defer wg.Done()
			cancel()
		}()
		wg.Wait()
	}
}

func TestHubResubscribeReplacesSession(t *testing.T) {
	hub := NewHub(logging.Discard())
	old, _ := hub.Subscribe("s1")
	fresh, cancel := hub.Subscribe("s1")
	defer cancel()

	// Old channel must be closed so a hung reader unblocks.
	select {
	case _, open := <-old:
		if open {
			t.Fatal("expected old channel closed")
		}
	case <-time.After(time.Second):
		t.Fatal("old channel not closed")
	}

	hub.Emit(context.Background(), "s1", Event{Name: EventPaymentSuccess, Message: "ok"})
	select {
	case ev := <-fresh:
		if ev.Name != EventPaymentSuccess {
			t.Fatalf("unexpected event %+v", ev)
		}
	case <-time.After(time.Second):
		t.Fatal("fresh subscription did not receive event")
	}
}
