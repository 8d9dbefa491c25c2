package models

import (
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// OrderStatus is the order lifecycle enum. Only these three literals
// are ever persisted; anything else is rejected at the write boundary.
type OrderStatus string

const (
	StatusPending   OrderStatus = "Pending"
	StatusShipped   OrderStatus = "Shipped"
	StatusDelivered OrderStatus = "Delivered"
)

// ParseOrderStatus validates an incoming status string against the enum.
func ParseOrderStatus(s string) (OrderStatus, error) {
	switch OrderStatus(s) {
	case StatusPending, StatusShipped, StatusDelivered:
		return OrderStatus(s), nil
	default:
		return "", fmt.Errorf("%w: unknown order status %q", ErrValidation, s)
	}
}

// Order is one persisted line of a checkout: one product, one quantity.
// A multi-item checkout decomposes into several Order rows created in
// the same batch.
type Order struct {
	ID          bson.ObjectID `json:"id" bson:"_id,omitempty"`
	UserID      bson.ObjectID `json:"user_id" bson:"user_id"`
	ProductID   bson.ObjectID `json:"product_id" bson:"product_id"`
	Quantity    int           `json:"quantity" bson:"quantity" validate:"required,gte=1"`
	TotalPrice  float64       `json:"total_price" bson:"total_price" validate:"required,gte=0"`
	Status      OrderStatus   `json:"status" bson:"status"`
	CreatedAt   time.Time     `json:"created_at" bson:"created_at"`
	DeliveredAt *time.Time    `json:"delivered_at" bson:"delivered_at"`
}

// Accept moves a Pending order to Shipped (courier took the parcel).
// Accepting an order in any other state is rejected rather than
// treated as a no-op.
func (o *Order) Accept() error {
	if o.Status != StatusPending {
		return fmt.Errorf("%w: cannot accept order in status %s", ErrInvalidTransition, o.Status)
	}
	o.Status = StatusShipped
	return nil
}

// Deliver moves a Shipped order to Delivered once the courier presents
// the shared PIN, stamping the delivery time.
func (o *Order) Deliver(pin, expectedPIN string) error {
	if o.Status != StatusShipped {
		return fmt.Errorf("%w: cannot deliver order in status %s", ErrInvalidTransition, o.Status)
	}
	if pin != expectedPIN {
		return ErrInvalidCredential
	}
	now := time.Now()
	o.Status = StatusDelivered
	o.DeliveredAt = &now
	return nil
}

// Override is the manager escape hatch: it sets any valid status
// directly, bypassing the Pending -> Shipped -> Delivered ordering.
// delivered_at is stamped if and only if the target status is
// Delivered; forcing away from Delivered clears it.
func (o *Order) Override(status OrderStatus) {
	o.Status = status
	if status == StatusDelivered {
		now := time.Now()
		o.DeliveredAt = &now
	} else {
		o.DeliveredAt = nil
	}
}

// OrderView is the read-side projection of an order joined with the
// product and user attributes the dashboards display.
type OrderView struct {
	ID          bson.ObjectID `json:"id" bson:"_id"`
	Quantity    int           `json:"quantity" bson:"quantity"`
	TotalPrice  float64       `json:"total_price" bson:"total_price"`
	Status      OrderStatus   `json:"status" bson:"status"`
	CreatedAt   time.Time     `json:"created_at" bson:"created_at"`
	DeliveredAt *time.Time    `json:"delivered_at" bson:"delivered_at"`
	Product     ProductBrief  `json:"product" bson:"product"`
	User        UserBrief     `json:"user" bson:"user"`
}

type ProductBrief struct {
	ID          bson.ObjectID `json:"id" bson:"_id"`
	Name        string        `json:"name" bson:"name"`
	Price       float64       `json:"price" bson:"price"`
	Category    string        `json:"category" bson:"category"`
	Description string        `json:"description,omitempty" bson:"description,omitempty"`
}

type UserBrief struct {
	Username  string `json:"username" bson:"username"`
	FirstName string `json:"first_name,omitempty" bson:"first_name,omitempty"`
	Address   string `json:"address,omitempty" bson:"address,omitempty"`
}

// Checkout request payloads.

type OrderLineRequest struct {
	ProductID  string  `json:"product_id" binding:"required"`
	Quantity   int     `json:"quantity" binding:"required,gte=1"`
	TotalPrice float64 `json:"total_price" binding:"required,gte=0"`
}

type PlaceOrderRequest struct {
	Username string             `json:"username" binding:"required"`
	Items    []OrderLineRequest `json:"items" binding:"required"`
}
