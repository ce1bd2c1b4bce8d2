// Package notify carries order lifecycle events from the engine to
// observers. The engine treats delivery as best effort: a sink error is
// logged by the caller and never rolls back the store mutation behind it.
package notify

import "context"

type Event struct {
	// Name is one of the domain.Event* constants.
	Name string
	// OrderID keys the event for partitioned transports and diagnostics.
	OrderID string
	// Payload is the JSON-encodable event body.
	Payload any
}

type Sink interface {
	Broadcast(ctx context.Context, ev Event) error
}
