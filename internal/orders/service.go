// Package orders holds the order lifecycle: building Pending rows from
// a finalized cart, the Pending -> Shipped -> Delivered progression,
// the manager override path, and the joined read views the dashboards
// consume.
package orders

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/v2/bson"

	"logikalmart.ca/storefront/api/pkg/models"
)

// UserDirectory resolves usernames to accounts.
type UserDirectory interface {
	FindByUsername(ctx context.Context, username string) (*models.User, error)
}

// Repository is the order persistence boundary. CreateBatch is
// all-or-nothing: either every row of one checkout lands or none do.
// UpdateStatus is a compare-and-swap keyed on the status the caller
// read; a stale `from` must fail with ErrInvalidTransition rather
// than overwrite a concurrent transition.
type Repository interface {
	CreateBatch(ctx context.Context, batch []*models.Order) error
	GetByID(ctx context.Context, id bson.ObjectID) (*models.Order, error)
	UpdateStatus(ctx context.Context, o *models.Order, from models.OrderStatus) error
	ListByUser(ctx context.Context, userID bson.ObjectID) ([]models.OrderView, error)
	ListAll(ctx context.Context) ([]models.OrderView, error)
}

type Service struct {
	users       UserDirectory
	repo        Repository
	deliveryPIN string
}

func NewService(users UserDirectory, repo Repository, deliveryPIN string) *Service {
	return &Service{users: users, repo: repo, deliveryPIN: deliveryPIN}
}

// PlaceOrder turns a finalized cart into one Pending order row per
// line item, all stamped with the same creation time. The caller's
// total_price is trusted as the captured at-order price and rounded to
// two decimal places. Clearing the cart afterwards is the caller's job.
func (s *Service) PlaceOrder(ctx context.Context, username string, items []models.OrderLineRequest) (int, error) {
	if len(items) == 0 {
		return 0, models.ErrEmptyOrder
	}

	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return 0, err
	}

	now := time.Now()
	batch := make([]*models.Order, 0, len(items))
	for _, it := range items {
		productID, err := bson.ObjectIDFromHex(it.ProductID)
		if err != nil {
			return 0, fmt.Errorf("%w: invalid product id %q", models.ErrValidation, it.ProductID)
		}
		if it.Quantity < 1 {
			return 0, fmt.Errorf("%w: quantity must be at least 1", models.ErrValidation)
		}
		if it.TotalPrice < 0 {
			return 0, fmt.Errorf("%w: total price cannot be negative", models.ErrValidation)
		}
		batch = append(batch, &models.Order{
			ID:         bson.NewObjectID(),
			UserID:     user.ID,
			ProductID:  productID,
			Quantity:   it.Quantity,
			TotalPrice: decimal.NewFromFloat(it.TotalPrice).Round(2).InexactFloat64(),
			Status:     models.StatusPending,
			CreatedAt:  now,
		})
	}

	if err := s.repo.CreateBatch(ctx, batch); err != nil {
		return 0, err
	}
	return len(batch), nil
}

// Accept is the courier taking a Pending order: Pending -> Shipped.
func (s *Service) Accept(ctx context.Context, orderID string) (*models.Order, error) {
	return s.transition(ctx, orderID, func(o *models.Order) error {
		return o.Accept()
	})
}

// Deliver is the courier handing over a Shipped order, gated by the
// shared PIN: Shipped -> Delivered with a delivery timestamp.
func (s *Service) Deliver(ctx context.Context, orderID, pin string) (*models.Order, error) {
	return s.transition(ctx, orderID, func(o *models.Order) error {
		return o.Deliver(pin, s.deliveryPIN)
	})
}

// Override is the manager path: any of the three statuses may be set
// directly. The status string is validated against the closed enum
// before anything is written.
func (s *Service) Override(ctx context.Context, orderID, status string) (*models.Order, error) {
	parsed, err := models.ParseOrderStatus(status)
	if err != nil {
		return nil, err
	}
	return s.transition(ctx, orderID, func(o *models.Order) error {
		o.Override(parsed)
		return nil
	})
}

// OrdersForUser returns the user's orders joined with product and user
// attributes, newest first. Read-only.
func (s *Service) OrdersForUser(ctx context.Context, username string) ([]models.OrderView, error) {
	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	return s.repo.ListByUser(ctx, user.ID)
}

// AllOrders is the unscoped view backing the manager and delivery
// dashboards. Read-only.
func (s *Service) AllOrders(ctx context.Context) ([]models.OrderView, error) {
	return s.repo.ListAll(ctx)
}

func (s *Service) transition(ctx context.Context, orderID string, step func(*models.Order) error) (*models.Order, error) {
	oid, err := bson.ObjectIDFromHex(orderID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid order id %q", models.ErrValidation, orderID)
	}
	o, err := s.repo.GetByID(ctx, oid)
	if err != nil {
		return nil, err
	}
	from := o.Status
	if err := step(o); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateStatus(ctx, o, from); err != nil {
		return nil, err
	}
	return o, nil
}
