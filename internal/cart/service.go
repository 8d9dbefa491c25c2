// Package cart implements the per-user cart aggregate. Every mutation
// reconciles with the stock ledger first and then syncs the full cart
// snapshot to the durable per-user store, so a returning user's cart
// reloads exactly as they left it.
package cart

import (
	"context"
	"errors"
	"time"

	"logikalmart.ca/storefront/api/pkg/models"
)

// GuestUser is the snapshot key used before a user authenticates.
// After login the guest snapshot can be claimed under the real
// username; guest and user carts are never merged.
const GuestUser = "guest"

// Ledger is the stock ledger: reserve decrements availability with a
// floor of zero, release increments it. Both return the new
// availability.
type Ledger interface {
	Reserve(ctx context.Context, productID string, qty int) (int, error)
	Release(ctx context.Context, productID string, qty int) (int, error)
}

// SnapshotStore is the durable per-user cart mirror, a plain key-value
// get/set keyed by user identity.
type SnapshotStore interface {
	Load(ctx context.Context, user string) (*models.Cart, error)
	Save(ctx context.Context, cart *models.Cart) error
	Delete(ctx context.Context, user string) error
	// Rename moves a snapshot to a new key. It reports false without
	// error when the source is absent or the target already exists.
	Rename(ctx context.Context, from, to string) (bool, error)
}

type Service struct {
	ledger Ledger
	store  SnapshotStore
}

func NewService(ledger Ledger, store SnapshotStore) *Service {
	return &Service{ledger: ledger, store: store}
}

// Get returns the user's cart, or an empty one if no snapshot exists.
func (s *Service) Get(ctx context.Context, user string) (*models.Cart, error) {
	c, err := s.store.Load(ctx, user)
	if errors.Is(err, models.ErrNotFound) {
		return models.NewCart(user), nil
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Add reserves one unit and either increments the existing line or
// inserts a new one with a price/category/description snapshot taken
// now. A failed reservation leaves the cart untouched.
func (s *Service) Add(ctx context.Context, user string, product *models.Product) (*models.Cart, error) {
	c, err := s.Get(ctx, user)
	if err != nil {
		return nil, err
	}

	productID := product.ID.Hex()
	if _, err := s.ledger.Reserve(ctx, productID, 1); err != nil {
		return nil, err
	}

	if item, ok := c.Items[productID]; ok {
		item.Quantity++
	} else {
		c.Items[productID] = &models.CartItem{
			ProductID:   productID,
			Name:        product.Name,
			Price:       product.Price,
			Category:    product.Category,
			Description: product.Description,
			Quantity:    1,
			AddedAt:     time.Now(),
		}
	}

	return c, s.sync(ctx, c)
}

// Increment reserves one more unit for a line already in the cart.
func (s *Service) Increment(ctx context.Context, user, productID string) (*models.Cart, error) {
	c, err := s.Get(ctx, user)
	if err != nil {
		return nil, err
	}
	item, ok := c.Items[productID]
	if !ok {
		return nil, models.ErrNotFound
	}

	if _, err := s.ledger.Reserve(ctx, productID, 1); err != nil {
		return nil, err
	}
	item.Quantity++

	return c, s.sync(ctx, c)
}

// Decrement releases one unit back to the ledger. A line at quantity
// one is removed rather than kept at zero.
func (s *Service) Decrement(ctx context.Context, user, productID string) (*models.Cart, error) {
	c, err := s.Get(ctx, user)
	if err != nil {
		return nil, err
	}
	item, ok := c.Items[productID]
	if !ok {
		return nil, models.ErrNotFound
	}

	if _, err := s.ledger.Release(ctx, productID, 1); err != nil {
		return nil, err
	}
	if item.Quantity > 1 {
		item.Quantity--
	} else {
		delete(c.Items, productID)
	}

	return c, s.sync(ctx, c)
}

// Clear empties the cart and drops the durable snapshot. With restock
// set, every reserved unit is released back to the ledger first; order
// placement clears without restock because the reservation is consumed
// by the order.
func (s *Service) Clear(ctx context.Context, user string, restock bool) error {
	if restock {
		c, err := s.Get(ctx, user)
		if err != nil {
			return err
		}
		for productID, item := range c.Items {
			if _, err := s.ledger.Release(ctx, productID, item.Quantity); err != nil {
				return err
			}
		}
	}
	return s.store.Delete(ctx, user)
}

// Restore replaces the cart wholesale from a persisted snapshot. The
// ledger is not consulted: restored items represent stock that was
// already reserved when the snapshot was written.
func (s *Service) Restore(ctx context.Context, user string, items []*models.CartItem) (*models.Cart, error) {
	c := models.NewCart(user)
	for _, item := range items {
		if item.Quantity < 1 {
			continue
		}
		c.Items[item.ProductID] = item
	}
	return c, s.sync(ctx, c)
}

// Claim re-keys a guest snapshot under the authenticated username. If
// the user already has a snapshot the guest cart is left alone; no
// merge is attempted.
func (s *Service) Claim(ctx context.Context, guestKey, user string) (*models.Cart, error) {
	if _, err := s.store.Rename(ctx, guestKey, user); err != nil {
		return nil, err
	}
	return s.Get(ctx, user)
}

func (s *Service) sync(ctx context.Context, c *models.Cart) error {
	c.UpdatedAt = time.Now()
	return s.store.Save(ctx, c)
}
