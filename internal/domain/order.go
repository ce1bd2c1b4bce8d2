package domain

import "time"

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "Pending"
	OrderStatusProcessing OrderStatus = "Processing"
	OrderStatusCompleted  OrderStatus = "Completed"
)

// validNext is the only reachable edge set: Pending → Processing → Completed.
var validNext = map[OrderStatus]OrderStatus{
	OrderStatusPending:    OrderStatusProcessing,
	OrderStatusProcessing: OrderStatusCompleted,
}

// CanTransition reports whether to directly follows from in the lifecycle.
// Completed is terminal.
func CanTransition(from, to OrderStatus) bool {
	return validNext[from] == to
}

type Order struct {
	ID           string      `json:"id"`
	CustomerName string      `json:"customerName"`
	ProductID    int         `json:"productId"`
	ProductName  string      `json:"productName"`
	Price        int64       `json:"price"`
	Status       OrderStatus `json:"status"`
	CreatedAt    time.Time   `json:"createdAt"`
}
