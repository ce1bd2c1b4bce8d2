// Package scheduler advances each order through its lifecycle on a timer.
// Delays are measured from arming time: Processing at T+processingAfter and
// Completed at T+completedAfter, with completedAfter > processingAfter as a
// hard precondition. The clock is injected so tests can drive time.
package scheduler

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/orderlab/realtime-orders/internal/domain"
)

// AdvanceFunc is invoked from timer callbacks to move an order forward.
// Implementations own the store access and the event emission.
type AdvanceFunc func(orderID string, status domain.OrderStatus)

type timerPair struct {
	processing *clock.Timer
	completed  *clock.Timer
}

type Scheduler struct {
	clock           clock.Clock
	processingAfter time.Duration
	completedAfter  time.Duration
	advance         AdvanceFunc
	logger          *slog.Logger

	mu     sync.Mutex
	timers map[string]*timerPair
}

func New(clk clock.Clock, processingAfter, completedAfter time.Duration, advance AdvanceFunc, logger *slog.Logger) (*Scheduler, error) {
	if completedAfter <= processingAfter {
		return nil, fmt.Errorf("completed delay %s must exceed processing delay %s", completedAfter, processingAfter)
	}
	return &Scheduler{
		clock:           clk,
		processingAfter: processingAfter,
		completedAfter:  completedAfter,
		advance:         advance,
		logger:          logger,
		timers:          make(map[string]*timerPair),
	}, nil
}

// Arm schedules both deferred transitions for orderID.
func (s *Scheduler) Arm(orderID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.timers[orderID] = &timerPair{
		processing: s.clock.AfterFunc(s.processingAfter, func() {
			s.fire(orderID, domain.OrderStatusProcessing, false)
		}),
		completed: s.clock.AfterFunc(s.completedAfter, func() {
			s.fire(orderID, domain.OrderStatusCompleted, true)
		}),
	}
}

// Cancel stops any not-yet-fired timers for orderID. It is an idempotent
// no-op when none exist and only prevents future firings; a callback that
// is already running settles against the store on its own.
func (s *Scheduler) Cancel(orderID string) {
	s.mu.Lock()
	pair, ok := s.timers[orderID]
	delete(s.timers, orderID)
	s.mu.Unlock()

	if !ok {
		return
	}
	pair.processing.Stop()
	pair.completed.Stop()
}

// Pending reports how many orders still have timer bookkeeping.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}

func (s *Scheduler) fire(orderID string, status domain.OrderStatus, final bool) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("transition callback panicked", "order_id", orderID, "status", status, "panic", r)
		}
	}()

	if final {
		s.mu.Lock()
		delete(s.timers, orderID)
		s.mu.Unlock()
	}

	s.advance(orderID, status)
}
