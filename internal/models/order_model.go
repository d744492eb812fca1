package models

import "time"

// OrderStatus is the fulfilment state of an order.
type OrderStatus string

const (
	OrderPending   OrderStatus = "pendiente"
	OrderShipped   OrderStatus = "enviado"
	OrderDelivered OrderStatus = "entregado"
	OrderCancelled OrderStatus = "cancelado"
)

// Valid reports whether s is a known status.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderPending, OrderShipped, OrderDelivered, OrderCancelled:
		return true
	}
	return false
}

// CanTransitionTo reports whether an order in status s may move to next.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	switch s {
	case OrderPending:
		return next == OrderShipped || next == OrderCancelled
	case OrderShipped:
		return next == OrderDelivered || next == OrderCancelled
	}
	return false
}

// OrderLine is a snapshot of a cart line at checkout time.
type OrderLine struct {
	UniqueID string  `json:"uniqueID" firestore:"uniqueID"`
	Name     string  `json:"name" firestore:"name"`
	Price    float64 `json:"price" firestore:"price"`
	Qty      int     `json:"qty" firestore:"qty"`
	Image    string  `json:"image,omitempty" firestore:"image,omitempty"`
}

// Totals are the computed money amounts of a cart or order.
type Totals struct {
	Subtotal float64 `json:"subtotal" firestore:"subtotal"`
	Shipping float64 `json:"shipping" firestore:"shipping"`
	Tax      float64 `json:"tax" firestore:"tax"`
	Total    float64 `json:"total" firestore:"total"`
}

// Order is a denormalised snapshot of address, lines and totals.
type Order struct {
	ID             string      `json:"id" firestore:"-"`
	OwnerID        string      `json:"ownerId" firestore:"ownerId"`
	Email          string      `json:"email,omitempty" firestore:"email,omitempty"`
	Address        Address     `json:"address" firestore:"address"`
	Items          []OrderLine `json:"items" firestore:"items"`
	Totals         Totals      `json:"totals" firestore:"totals"`
	OrderStatus    OrderStatus `json:"orderStatus" firestore:"orderStatus"`
	TrackingNumber string      `json:"trackingNumber,omitempty" firestore:"trackingNumber,omitempty"`
	Courier        string      `json:"courier,omitempty" firestore:"courier,omitempty"`
	CreatedAt      time.Time   `json:"createdAt" firestore:"createdAt"`
	UpdatedAt      time.Time   `json:"updatedAt" firestore:"updatedAt"`
}

// OrderCreatedEvent is published on the order events queue after checkout.
type OrderCreatedEvent struct {
	OrderID   string  `json:"orderId"`
	OwnerID   string  `json:"ownerId"`
	Email     string  `json:"email,omitempty"`
	Total     float64 `json:"total"`
	CreatedAt string  `json:"createdAt"`
}
