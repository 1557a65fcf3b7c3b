package realtime

import (
	"context"
	"log/slog"
	"sync"
)

// sessionBuffer bounds undelivered events per session; the workflow emits at
// most one terminal event per payment attempt.
const sessionBuffer = 8

// Hub routes events to connected client sessions. Sessions identify
// themselves with a client-chosen id when subscribing to the event stream and
// pass the same id when initiating a payment.
type Hub struct {
	logger *slog.Logger

	mu       sync.RWMutex
	sessions map[string]chan Event
}

// NewHub builds an empty hub.
func NewHub(logger *slog.Logger) *Hub {
	return &Hub{logger: logger, sessions: make(map[string]chan Event)}
}

// Subscribe registers a session and returns its event channel plus a cancel
// function. Subscribing again under the same id replaces the previous
// subscription; the stale channel is closed so its reader unblocks.
func (h *Hub) Subscribe(sessionID string) (<-chan Event, func()) {
	ch := make(chan Event, sessionBuffer)

	h.mu.Lock()
	if old, ok := h.sessions[sessionID]; ok {
		close(old)
	}
	h.sessions[sessionID] = ch
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		if current, ok := h.sessions[sessionID]; ok && current == ch {
			delete(h.sessions, sessionID)
			close(ch)
		}
		h.mu.Unlock()
	}
	return ch, cancel
}

// Emit delivers the event to the session if connected. A missing session or a
// full buffer drops the event; the outcome is still observable in logs.
// The read lock is held across the send: channels are only ever closed under
// the write lock (cancel, resubscribe), so a send here can never overlap a
// close.
func (h *Hub) Emit(_ context.Context, sessionID string, event Event) error {
	h.mu.RLock()
	defer h.mu.RUnlock()

	ch, ok := h.sessions[sessionID]
	if !ok {
		if h.logger != nil {
			h.logger.Info("realtime event dropped, session not connected",
				"session_id", sessionID, "event", event.Name)
		}
		return nil
	}

	select {
	case ch <- event:
	default:
		if h.logger != nil {
			h.logger.Warn("realtime event dropped, session buffer full",
				"session_id", sessionID, "event", event.Name)
		}
	}
	return nil
}

// Connected reports whether a session currently has a subscriber.
func (h *Hub) Connected(sessionID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.sessions[sessionID]
	return ok
}
