// Package queue defines the order audit events exchanged over the
// message broker and the background consumer that records them.
package queue

// Event types carried in OrderEvent.Type.
const (
	TypeOrderPlaced        = "order.placed"
	TypeOrderStatusChanged = "order.status_changed"
)

// OrderEvent is published to the order.events queue whenever an order
// is placed or changes status. It carries enough for downstream
// consumers to log or feed analytics without querying the primary
// database.
type OrderEvent struct {
	Type         string  `json:"type"`
	OrderID      uint64  `json:"order_id"`
	CustomerID   uint64  `json:"customer_id"`
	Status       string  `json:"status"`
	Total        float64 `json:"total"`
	ItemCount    int     `json:"item_count"`
	CustomerName string  `json:"customer_name"`
	OccurredAt   string  `json:"occurred_at"`
}
