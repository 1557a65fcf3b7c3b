package routes

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"

	"github.com/hassan-byekwaso/smart-budget-tracker/internal/realtime"
)

// heartbeatInterval must stay below the server write timeout so idle
// streams are not torn down between events.
const heartbeatInterval = 15 * time.Second

// RegisterEventRoutes wires the server-sent-events stream clients subscribe
// to before initiating a payment. The :sessionId is chosen by the client and
// echoed back in the stk-push request so the callback can reach this stream.
func RegisterEventRoutes(r fiber.Router, hub *realtime.Hub) {
	r.Get("/events/:sessionId", func(c *fiber.Ctx) error {
		sessionID := c.Params("sessionId")
		if sessionID == "" {
			return fiber.NewError(http.StatusBadRequest, "session id is required")
		}

		c.Set(fiber.HeaderContentType, "text/event-stream")
		c.Set(fiber.HeaderCacheControl, "no-cache")
		c.Set(fiber.HeaderConnection, "keep-alive")

		events, cancel := hub.Subscribe(sessionID)

		c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
			defer cancel()

			heartbeat := time.NewTicker(heartbeatInterval)
			defer heartbeat.Stop()

			for {
				select {
				case ev, ok := <-events:
					if !ok {
						return
					}
					payload, err := json.Marshal(ev)
					if err != nil {
						continue
					}
					fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Name, payload)
					if err := w.Flush(); err != nil {
						return
					}
				case <-heartbeat.C:
					// Comment line keeps the connection alive and surfaces
					// client disconnects through the flush error.
					fmt.Fprint(w, ": keepalive\n\n")
					if err := w.Flush(); err != nil {
						return
					}
				}
			}
		}))

		return nil
	})
}
