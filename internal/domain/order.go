package domain

import (
	"time"

	"github.com/google/uuid"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusShipped   OrderStatus = "shipped"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"
)

var allowedTransitions = map[OrderStatus]map[OrderStatus]bool{
	OrderStatusPending: {
		OrderStatusConfirmed: true,
		OrderStatusCancelled: true,
	},
	OrderStatusConfirmed: {
		OrderStatusShipped:   true,
		OrderStatusCancelled: true,
	},
	OrderStatusShipped: {
		OrderStatusDelivered: true,
		OrderStatusCancelled: true,
	},
	OrderStatusDelivered: {},
	OrderStatusCancelled: {},
}

// CanTransitionTo reports whether the status may move to next.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	return allowedTransitions[s][next]
}

func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled
}

// Valid reports whether s is one of the known statuses.
func (s OrderStatus) Valid() bool {
	_, ok := allowedTransitions[s]
	return ok
}

// String representation (for logging)
func (s OrderStatus) String() string {
	return string(s)
}

// OrderItem is a frozen product snapshot copied from the active item source
// at submission time. Later cart mutations cannot alter it.
type OrderItem struct {
	ProductID string `json:"product_id"`
	Title     string `json:"title"`
	Author    string `json:"author"`
	Price     int64  `json:"price"`
	Quantity  int    `json:"quantity"`
	Image     string `json:"image"`
}

// Order is a submitted checkout. Items and TotalPrice are written once at
// creation; status transitions are the only permitted later mutation.
type Order struct {
	ID              uuid.UUID   `json:"id"`
	DeviceID        string      `json:"device_id"`
	CustomerName    string      `json:"customer_name"`
	CustomerEmail   string      `json:"customer_email"`
	CustomerPhone   string      `json:"customer_phone,omitempty"`
	CustomerAddress string      `json:"customer_address"`
	Items           []OrderItem `json:"items"`
	TotalPrice      int64       `json:"total_price"`
	ShippingCost    int64       `json:"shipping_cost"`
	Status          OrderStatus `json:"status"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`
}
