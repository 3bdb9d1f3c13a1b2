package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus is the fulfillment state of an order.
type OrderStatus string

const (
	StatusPreparing OrderStatus = "PREPARING"
	StatusShipped   OrderStatus = "SHIPPED"
	StatusDelivered OrderStatus = "DELIVERED"
)

// ParseOrderStatus validates a raw status string.
func ParseOrderStatus(s string) (OrderStatus, error) {
	switch OrderStatus(s) {
	case StatusPreparing, StatusShipped, StatusDelivered:
		return OrderStatus(s), nil
	}
	return "", fmt.Errorf("unknown order status %q", s)
}

// rank orders the lifecycle PREPARING < SHIPPED < DELIVERED.
func (s OrderStatus) rank() int {
	switch s {
	case StatusPreparing:
		return 0
	case StatusShipped:
		return 1
	case StatusDelivered:
		return 2
	}
	return -1
}

// CanTransitionTo reports whether the lifecycle allows moving from s to
// next. Only adjacent moves are allowed, in either direction, so the admin
// can correct a mis-click but never skip a state. A same-state update is
// not a transition; callers treat it as a no-op.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	a, b := s.rank(), next.rank()
	if a < 0 || b < 0 {
		return false
	}
	diff := a - b
	return diff == 1 || diff == -1
}

// Order is the persisted checkout result. Total is computed once at
// creation from the prices observed during validation and never re-derived
// from the live catalog.
type Order struct {
	ID            int64           `json:"id" db:"id"`
	Customer      string          `json:"customer" db:"customer"`
	Address       string          `json:"address" db:"address"`
	PaymentMethod PaymentMethod   `json:"payment_method" db:"payment_method"`
	Status        OrderStatus     `json:"status" db:"status"`
	Total         decimal.Decimal `json:"total" db:"total"`
	CreatedAt     time.Time       `json:"created_at" db:"created_at"`
	Items         []OrderItem     `json:"items"`
}

// OrderItem is one line of an order. UnitPrice is the flavor's selling
// price snapshotted at order time, so later catalog edits cannot rewrite
// order history.
type OrderItem struct {
	ID        int64           `json:"id" db:"id"`
	OrderID   int64           `json:"order_id" db:"order_id"`
	FlavorID  int64           `json:"flavor_id" db:"flavor_id"`
	Quantity  int             `json:"quantity" db:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price" db:"unit_price"`

	// Resolved display fields, populated on reads.
	FlavorName   string `json:"flavor_name,omitempty"`
	FlavorCode   string `json:"flavor_code,omitempty"`
	BrandName    string `json:"brand_name,omitempty"`
	CategoryName string `json:"category_name,omitempty"`
}
