package notify

import (
	"context"
	"log/slog"
	"sync"
)

// subscriberBuffer bounds how far one observer may fall behind before the
// hub gives up on it. Broadcast never blocks on a full buffer.
const subscriberBuffer = 64

// Hub fans events out to the currently connected observers. Each observer
// drains its own buffered channel; a slow observer that fills its buffer is
// dropped so table mutations are never delayed by delivery.
type Hub struct {
	mu     sync.Mutex
	subs   map[*Subscriber]struct{}
	logger *slog.Logger
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		subs:   make(map[*Subscriber]struct{}),
		logger: logger,
	}
}

type Subscriber struct {
	hub *Hub
	ch  chan Event
}

// Events yields the subscriber's event stream. The channel is closed when
// the subscriber is removed, either by Close or by falling behind.
func (s *Subscriber) Events() <-chan Event {
	return s.ch
}

func (s *Subscriber) Close() {
	s.hub.remove(s)
}

// Subscribe registers a new observer. The caller is expected to pair this
// with a store snapshot under the engine's publish lock so the observer's
// first view is never older than the next event it receives.
func (h *Hub) Subscribe() *Subscriber {
	sub := &Subscriber{hub: h, ch: make(chan Event, subscriberBuffer)}

	h.mu.Lock()
	h.subs[sub] = struct{}{}
	h.mu.Unlock()

	return sub
}

func (h *Hub) remove(sub *Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(sub)
}

func (h *Hub) removeLocked(sub *Subscriber) {
	if _, ok := h.subs[sub]; !ok {
		return
	}
	delete(h.subs, sub)
	close(sub.ch)
}

// Broadcast enqueues ev to every subscriber without blocking.
func (h *Hub) Broadcast(_ context.Context, ev Event) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	for sub := range h.subs {
		select {
		case sub.ch <- ev:
		default:
			h.logger.Warn("dropping slow observer", "event", ev.Name, "order_id", ev.OrderID)
			h.removeLocked(sub)
		}
	}
	return nil
}

// Len reports the number of connected observers.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}
