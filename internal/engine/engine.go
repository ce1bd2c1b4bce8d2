// Package engine is the single entry point for order operations. It
// sequences catalog validation, the store, the lifecycle scheduler and the
// notification sinks, and owns the ordering guarantee of the event stream.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"

	"github.com/orderlab/realtime-orders/internal/catalog"
	"github.com/orderlab/realtime-orders/internal/domain"
	"github.com/orderlab/realtime-orders/internal/notify"
	"github.com/orderlab/realtime-orders/internal/scheduler"
	"github.com/orderlab/realtime-orders/internal/store"
)

// ErrInvalidRequest marks creation input the engine refuses: empty customer
// name or a product id the catalog cannot resolve.
var ErrInvalidRequest = errors.New("invalid request")

type Engine struct {
	catalog *catalog.Catalog
	store   *store.Store
	sched   *scheduler.Scheduler
	hub     *notify.Hub
	sinks   []notify.Sink
	clock   clock.Clock
	logger  *slog.Logger
	metrics *engineMetrics

	// mu serializes {mutation, event enqueue} pairs and {snapshot,
	// subscribe} pairs. Enqueueing is non-blocking in every sink, so
	// holding mu here never waits on observer delivery.
	mu sync.Mutex
}

// New wires the engine. extraSinks receive every broadcast in addition to
// the hub; nil entries are ignored so optional transports drop in cleanly.
func New(cat *catalog.Catalog, st *store.Store, hub *notify.Hub, clk clock.Clock,
	processingAfter, completedAfter time.Duration, logger *slog.Logger, extraSinks ...notify.Sink) (*Engine, error) {

	e := &Engine{
		catalog: cat,
		store:   st,
		hub:     hub,
		clock:   clk,
		logger:  logger,
	}

	e.sinks = append(e.sinks, hub)
	for _, sink := range extraSinks {
		if sink != nil {
			e.sinks = append(e.sinks, sink)
		}
	}

	sched, err := scheduler.New(clk, processingAfter, completedAfter, e.handleTransition, logger)
	if err != nil {
		return nil, err
	}
	e.sched = sched

	m, err := newEngineMetrics(hub)
	if err != nil {
		return nil, err
	}
	e.metrics = m

	return e, nil
}

// CreateOrder validates the request, stores the new order with a denormalized
// catalog snapshot, arms its lifecycle timers and broadcasts orderCreated.
func (e *Engine) CreateOrder(ctx context.Context, customerName string, productID int) (domain.Order, error) {
	if strings.TrimSpace(customerName) == "" {
		return domain.Order{}, fmt.Errorf("%w: customer name is required", ErrInvalidRequest)
	}
	product, ok := e.catalog.Lookup(productID)
	if !ok {
		return domain.Order{}, fmt.Errorf("%w: product %d not found", ErrInvalidRequest, productID)
	}

	order := domain.Order{
		ID:           uuid.New().String(),
		CustomerName: customerName,
		ProductID:    product.ID,
		ProductName:  product.Name,
		Price:        product.Price,
		Status:       domain.OrderStatusPending,
		CreatedAt:    e.clock.Now().UTC(),
	}

	e.mu.Lock()
	e.store.Insert(order)
	e.sched.Arm(order.ID)
	e.broadcastLocked(ctx, notify.Event{
		Name:    domain.EventOrderCreated,
		OrderID: order.ID,
		Payload: order,
	})
	e.mu.Unlock()

	e.metrics.ordersCreated.Add(ctx, 1)
	e.logger.Info("order created", "order_id", order.ID, "customer_name", order.CustomerName, "product_id", order.ProductID)
	return order, nil
}

// ListOrders returns all orders, most recent first.
func (e *Engine) ListOrders() []domain.Order {
	return e.store.List()
}

// GetOrder looks up a single order by id.
func (e *Engine) GetOrder(id string) (domain.Order, bool) {
	return e.store.Get(id)
}

// DeleteOrder removes a Completed order, cancels any leftover timers and
// broadcasts orderDeleted. It returns store.ErrNotFound or
// store.ErrNotCompleted unchanged for the transport to map.
func (e *Engine) DeleteOrder(ctx context.Context, id string) error {
	e.mu.Lock()
	err := e.store.Remove(id)
	if err == nil {
		e.sched.Cancel(id)
		e.broadcastLocked(ctx, notify.Event{
			Name:    domain.EventOrderDeleted,
			OrderID: id,
			Payload: id,
		})
	}
	e.mu.Unlock()

	if err != nil {
		return err
	}

	e.metrics.ordersDeleted.Add(ctx, 1)
	e.logger.Info("order deleted", "order_id", id)
	return nil
}

// Subscribe registers a new observer and returns the snapshot it must see
// first. Snapshot and registration happen under the publish lock, so the
// snapshot is never older than the next event delivered to the subscriber.
func (e *Engine) Subscribe() ([]domain.Order, *notify.Subscriber) {
	e.mu.Lock()
	defer e.mu.Unlock()

	snapshot := e.store.List()
	return snapshot, e.hub.Subscribe()
}

// handleTransition runs on scheduler timer callbacks. An order deleted
// before its timer fired is an expected race, not an error.
func (e *Engine) handleTransition(orderID string, status domain.OrderStatus) {
	ctx := context.Background()

	e.mu.Lock()
	order, err := e.store.AdvanceStatus(orderID, status)
	if err == nil {
		e.broadcastLocked(ctx, notify.Event{
			Name:    domain.EventOrderStatusUpdate,
			OrderID: order.ID,
			Payload: domain.OrderStatusUpdateEvent{OrderID: order.ID, Status: order.Status},
		})
	}
	e.mu.Unlock()

	switch {
	case err == nil:
		e.metrics.recordTransition(ctx, status)
		e.logger.Info("order status updated", "order_id", orderID, "status", status)
	case errors.Is(err, store.ErrNotFound):
		e.logger.Debug("transition skipped, order deleted", "order_id", orderID, "status", status)
	default:
		e.logger.Warn("transition refused", "order_id", orderID, "status", status, "error", err)
	}
}

func (e *Engine) broadcastLocked(ctx context.Context, ev notify.Event) {
	for _, sink := range e.sinks {
		if err := sink.Broadcast(ctx, ev); err != nil {
			e.logger.Error("failed to broadcast event", "event", ev.Name, "order_id", ev.OrderID, "error", err)
		}
	}
}
