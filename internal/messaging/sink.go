package messaging

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/orderlab/realtime-orders/internal/notify"
)

const (
	sinkBuffer     = 256
	publishTimeout = 5 * time.Second
)

var (
	// ErrSinkBacklogged is returned when the publish queue is full. The
	// caller logs and moves on; the store stays the source of truth.
	ErrSinkBacklogged = errors.New("kafka sink backlogged, event dropped")

	// ErrSinkClosed is returned for broadcasts after shutdown began.
	ErrSinkClosed = errors.New("kafka sink closed")
)

// Envelope is the wire shape on the topic: the event name plus its payload.
type Envelope struct {
	Event   string `json:"event"`
	Payload any    `json:"payload"`
}

// Sink adapts the Producer to the engine's notify.Sink. Broadcast only
// enqueues; a single background goroutine publishes, which keeps the
// engine's publish lock off the network while preserving emission order.
type Sink struct {
	producer *Producer
	logger   *slog.Logger
	queue    chan notify.Event
	done     chan struct{}

	mu     sync.Mutex
	closed bool
}

func NewSink(producer *Producer, logger *slog.Logger) *Sink {
	s := &Sink{
		producer: producer,
		logger:   logger,
		queue:    make(chan notify.Event, sinkBuffer),
		done:     make(chan struct{}),
	}
	go s.run()
	return s
}

func (s *Sink) Broadcast(_ context.Context, ev notify.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrSinkClosed
	}
	select {
	case s.queue <- ev:
		return nil
	default:
		return ErrSinkBacklogged
	}
}

func (s *Sink) run() {
	defer close(s.done)

	for ev := range s.queue {
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		err := s.producer.Publish(ctx, ev.OrderID, Envelope{Event: ev.Name, Payload: ev.Payload})
		cancel()
		if err != nil {
			s.logger.Error("failed to publish event to kafka", "event", ev.Name, "order_id", ev.OrderID, "error", err)
		}
	}
}

// Close drains queued events, then closes the producer.
func (s *Sink) Close() error {
	s.mu.Lock()
	if !s.closed {
		s.closed = true
		close(s.queue)
	}
	s.mu.Unlock()

	<-s.done
	return s.producer.Close()
}
