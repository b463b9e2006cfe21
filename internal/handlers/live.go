package handlers

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/abrezinsky/outletplay/internal/broadcast"
)

// Events a slow viewer may fall behind before it is dropped
const liveBufferSize = 16

type sseEvent struct {
	id   string
	data []byte
}

// sseViewer is the broadcast.Channel of one server-sent-events connection.
// Writes never block the publisher; the handler goroutine drains events.
type sseViewer struct {
	events chan sseEvent
	done   <-chan struct{}
}

func (v *sseViewer) WriteEvent(id string, payload []byte) error {
	select {
	case <-v.done:
		return broadcast.ErrChannelClosed
	default:
	}
	select {
	case v.events <- sseEvent{id: id, data: payload}:
		return nil
	default:
		return broadcast.ErrChannelFull
	}
}

func writeSSEEvent(w io.Writer, ev sseEvent) error {
	_, err := fmt.Fprintf(w, "id: %s\nevent: win\ndata: %s\n\n", ev.id, ev.data)
	return err
}

// handleLive streams win events to an anonymous viewer until it disconnects
func (h *Handlers) handleLive(w http.ResponseWriter, r *http.Request) {
	select {
	case <-h.liveDone:
		respondJSON(w, http.StatusServiceUnavailable,
			NewAPIError(http.StatusServiceUnavailable, ErrCodeUnavailable, "Server is shutting down"))
		return
	default:
	}
	rc := http.NewResponseController(w)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	if _, err := io.WriteString(w, ": connected\n\n"); err != nil {
		return
	}
	if err := rc.Flush(); err != nil {
		h.log.Error("Streaming not supported", "error", err)
		return
	}

	ctx := r.Context()
	viewer := &sseViewer{
		events: make(chan sseEvent, liveBufferSize),
		done:   ctx.Done(),
	}
	unsubscribe := h.Feed.Subscribe(viewer)
	defer unsubscribe()

	reqID := middleware.GetReqID(ctx)
	h.log.Debug("Live viewer connected", "transport", "sse", "request_id", reqID)
	defer h.log.Debug("Live viewer disconnected", "transport", "sse", "request_id", reqID)

	keepalive := time.NewTicker(h.opts.KeepaliveInterval)
	defer keepalive.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-h.liveDone:
			return
		case ev := <-viewer.events:
			if err := writeSSEEvent(w, ev); err != nil {
				return
			}
			if err := rc.Flush(); err != nil {
				return
			}
		case <-keepalive.C:
			if _, err := io.WriteString(w, ": keep-alive\n\n"); err != nil {
				return
			}
			if err := rc.Flush(); err != nil {
				return
			}
		}
	}
}
