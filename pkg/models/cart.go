package models

import "time"

// CartItem is one reserved line in a user's cart. Price, category and
// description are denormalized snapshots taken when the item was
// added; the catalog may drift afterwards.
type CartItem struct {
	ProductID   string    `json:"product_id"`
	Name        string    `json:"name"`
	Price       float64   `json:"price"`
	Category    string    `json:"category"`
	Description string    `json:"description,omitempty"`
	Quantity    int       `json:"quantity"`
	AddedAt     time.Time `json:"added_at"`
}

// Cart is the per-user aggregate, keyed strictly by product id. An
// item never sits at quantity zero; decrementing past one removes it.
type Cart struct {
	User      string               `json:"user"`
	Items     map[string]*CartItem `json:"items"` // keyed by product id
	UpdatedAt time.Time            `json:"updated_at"`
}

func NewCart(user string) *Cart {
	return &Cart{
		User:      user,
		Items:     make(map[string]*CartItem),
		UpdatedAt: time.Now(),
	}
}

func (c *Cart) Subtotal() float64 {
	var total float64
	for _, item := range c.Items {
		total += item.Price * float64(item.Quantity)
	}
	return total
}

func (c *Cart) ItemCount() int {
	var count int
	for _, item := range c.Items {
		count += item.Quantity
	}
	return count
}

type AddToCartRequest struct {
	ProductID string `json:"product_id" binding:"required"`
}

type AdjustCartItemRequest struct {
	Op string `json:"op" binding:"required,oneof=increment decrement"`
}

type RestoreCartRequest struct {
	Items []*CartItem `json:"items" binding:"required"`
}

type ClaimCartRequest struct {
	GuestKey string `json:"guest_key" binding:"required"`
}
