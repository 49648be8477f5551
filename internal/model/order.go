package model

import (
	"math"
	"time"
)

// OrderStatus enumerates the states an order moves through. The chain
// is strictly forward: pending → confirmed → preparing → ready →
// delivered. Cancellation is reachable from any non-terminal state.
type OrderStatus string

const (
	StatusPending   OrderStatus = "pending"
	StatusConfirmed OrderStatus = "confirmed"
	StatusPreparing OrderStatus = "preparing"
	StatusReady     OrderStatus = "ready"
	StatusDelivered OrderStatus = "delivered"
	StatusCancelled OrderStatus = "cancelled"
)

// statusRank orders the forward chain. Cancelled is not part of the
// chain and is handled separately.
var statusRank = map[OrderStatus]int{
	StatusPending:   0,
	StatusConfirmed: 1,
	StatusPreparing: 2,
	StatusReady:     3,
	StatusDelivered: 4,
}

// ValidStatus reports whether s names a known status.
func ValidStatus(s OrderStatus) bool {
	if s == StatusCancelled {
		return true
	}
	_, ok := statusRank[s]
	return ok
}

// Terminal reports whether no further transitions may leave s.
func (s OrderStatus) Terminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

// CanTransition reports whether an order in status s may move to the
// requested status under the strict forward-chain policy: exactly one
// step forward along the chain, or a jump to cancelled from any
// non-terminal state. Self-transitions are not allowed.
func (s OrderStatus) CanTransition(to OrderStatus) bool {
	if s.Terminal() || s == to {
		return false
	}
	if to == StatusCancelled {
		return true
	}
	from, ok := statusRank[s]
	if !ok {
		return false
	}
	next, ok := statusRank[to]
	if !ok {
		return false
	}
	return next == from+1
}

// CustomerInfo is the contact snapshot captured at order time. It is a
// value copy, deliberately not a reference into users: editing the
// profile later must not rewrite history.
type CustomerInfo struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Address string `json:"address,omitempty"`
}

// OrderItem is one line of an order. Price is the per-unit snapshot
// recorded when the order was placed, immune to later menu changes.
// MenuItem is a denormalized join for display and may be nil if the
// row was loaded without the join.
type OrderItem struct {
	ID         uint64    `json:"id"`
	OrderID    uint64    `json:"orderId"`
	MenuItemID uint64    `json:"menuItemId"`
	Quantity   int       `json:"quantity"`
	Price      float64   `json:"price"`
	MenuItem   *MenuItem `json:"menuItem,omitempty"`
}

// Order aggregates the order row with its lines and the joined
// customer record. Total is computed once at placement and never
// recomputed; rows are never deleted, so CreatedAt/UpdatedAt form the
// audit trail.
type Order struct {
	ID           uint64       `json:"id"`
	CustomerID   uint64       `json:"customerId"`
	Items        []*OrderItem `json:"items"`
	Status       OrderStatus  `json:"status"`
	Total        float64      `json:"total"`
	CustomerInfo CustomerInfo `json:"customerInfo"`
	Customer     *User        `json:"customer,omitempty"`
	CreatedAt    time.Time    `json:"createdAt"`
	UpdatedAt    time.Time    `json:"updatedAt"`
}

// Round2 rounds a money amount to two decimal places. All totals are
// computed through this so DECIMAL(10,2) columns and JSON payloads
// agree.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
