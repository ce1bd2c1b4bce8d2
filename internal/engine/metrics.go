package engine

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/orderlab/realtime-orders/internal/domain"
	"github.com/orderlab/realtime-orders/internal/notify"
)

type engineMetrics struct {
	ordersCreated metric.Int64Counter
	ordersDeleted metric.Int64Counter
	transitions   metric.Int64Counter
}

func newEngineMetrics(hub *notify.Hub) (*engineMetrics, error) {
	meter := otel.Meter("github.com/orderlab/realtime-orders/internal/engine")

	ordersCreated, err := meter.Int64Counter("orders_created_total",
		metric.WithDescription("Orders accepted by the engine."))
	if err != nil {
		return nil, err
	}

	ordersDeleted, err := meter.Int64Counter("orders_deleted_total",
		metric.WithDescription("Completed orders removed on request."))
	if err != nil {
		return nil, err
	}

	transitions, err := meter.Int64Counter("order_transitions_total",
		metric.WithDescription("Timer-driven status transitions applied."))
	if err != nil {
		return nil, err
	}

	observers, err := meter.Int64ObservableGauge("connected_observers",
		metric.WithDescription("Observers currently subscribed to the event stream."))
	if err != nil {
		return nil, err
	}
	_, err = meter.RegisterCallback(func(_ context.Context, o metric.Observer) error {
		o.ObserveInt64(observers, int64(hub.Len()))
		return nil
	}, observers)
	if err != nil {
		return nil, err
	}

	return &engineMetrics{
		ordersCreated: ordersCreated,
		ordersDeleted: ordersDeleted,
		transitions:   transitions,
	}, nil
}

func (m *engineMetrics) recordTransition(ctx context.Context, status domain.OrderStatus) {
	m.transitions.Add(ctx, 1, metric.WithAttributes(attribute.String("status", string(status))))
}
