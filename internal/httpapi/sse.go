package httpapi

import (
	"net/http"

	"github.com/gin-contrib/sse"

	"github.com/codearena/portal/internal/portal/types"
)

// handleViolationStream is the live admin feed: a one-way SSE stream that
// forwards every newly logged violation as a named "violation" event.
//
// Delivery is best-effort with no replay buffer — a reconnecting viewer
// re-fetches the log via GET /admin/violations to recover missed events.
// The admin role is checked once at establishment; an open stream is not
// torn down by a later role change.
func (s *Server) handleViolationStream(w http.ResponseWriter, r *http.Request, _ types.User) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming_unsupported", "response writer cannot stream")
		return
	}

	id, ch := s.broadcast.Subscribe()
	defer s.broadcast.Unsubscribe(id)

	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			// Client went away; the deferred Unsubscribe deregisters us.
			return
		case v, open := <-ch:
			if !open {
				return
			}
			if err := sse.Encode(w, sse.Event{Event: "violation", Data: v}); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}
