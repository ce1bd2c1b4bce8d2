package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/orderlab/realtime-orders/internal/domain"
)

// heartbeatInterval keeps intermediaries from closing idle streams.
const heartbeatInterval = 15 * time.Second

// HandleEvents serves the observer stream over Server-Sent Events. The
// client first receives an ordersList snapshot, then every broadcast in
// order, until it disconnects or falls too far behind.
func (h *Handler) HandleEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		h.writeError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	snapshot, sub := h.engine.Subscribe()
	defer sub.Close()

	h.logger.Info("observer connected", "remote", r.RemoteAddr)
	defer h.logger.Info("observer disconnected", "remote", r.RemoteAddr)

	if err := writeSSE(w, domain.EventOrdersList, snapshot); err != nil {
		return
	}
	flusher.Flush()

	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-heartbeat.C:
			if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
				return
			}
			flusher.Flush()
		case ev, open := <-sub.Events():
			if !open {
				// Dropped by the hub for falling behind.
				return
			}
			if err := writeSSE(w, ev.Name, ev.Payload); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

func writeSSE(w http.ResponseWriter, event string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, data)
	return err
}
