package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/jonathan/careers-board/internal/events"
)

// DefaultKeepAlive is how often an idle event stream receives a comment line.
const DefaultKeepAlive = 15 * time.Second

// SSEWriter helps write Server-Sent Events
type SSEWriter struct {
	w       http.ResponseWriter
	flusher http.Flusher
}

// NewSSEWriter creates a new SSE writer
func NewSSEWriter(w http.ResponseWriter) (*SSEWriter, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, fmt.Errorf("streaming not supported")
	}

	// Set SSE headers
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	return &SSEWriter{w: w, flusher: flusher}, nil
}

// WriteEvent sends a hub event. Its data is already JSON.
func (s *SSEWriter) WriteEvent(ev events.Event) error {
	if _, err := fmt.Fprintf(s.w, "event: %s\n", ev.Name); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(s.w, "data: %s\n\n", ev.Data); err != nil {
		return err
	}
	s.flusher.Flush()
	return nil
}

// WriteComment sends an SSE comment line, ignored by clients.
func (s *SSEWriter) WriteComment(text string) error {
	if _, err := fmt.Fprintf(s.w, ": %s\n\n", text); err != nil {
		return err
	}
	s.flusher.Flush()
	return nil
}

// handleEvents streams hub events to the client until it disconnects or the
// hub is closed.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	sse, err := NewSSEWriter(w)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	// Streams outlive the server's write timeout
	_ = http.NewResponseController(w).SetWriteDeadline(time.Time{})

	sub := s.hub.Subscribe()
	defer s.hub.Unsubscribe(sub)

	w.WriteHeader(http.StatusOK)
	if err := sse.WriteComment("connected " + sub.ID); err != nil {
		return
	}

	ticker := time.NewTicker(s.keepAlive)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case ev, ok := <-sub.Events:
			if !ok {
				return
			}
			if err := sse.WriteEvent(ev); err != nil {
				s.log.WithError(err).WithField("subscriber", sub.ID).Debug("event stream write failed")
				return
			}
		case <-ticker.C:
			if err := sse.WriteComment("keep-alive"); err != nil {
				return
			}
		}
	}
}
