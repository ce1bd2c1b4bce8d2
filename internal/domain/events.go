package domain

// Event names on the observer stream. They match the payloads the original
// web client consumes, so they double as SSE event types and Kafka keys.
const (
	EventOrdersList        = "ordersList"
	EventOrderCreated      = "orderCreated"
	EventOrderStatusUpdate = "orderStatusUpdate"
	EventOrderDeleted      = "orderDeleted"
)

type OrderStatusUpdateEvent struct {
	OrderID string      `json:"orderId"`
	Status  OrderStatus `json:"status"`
}
