package orders

import (
	"context"
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"

	"logikalmart.ca/storefront/api/pkg/models"
)

type fakeUsers struct {
	byUsername map[string]*models.User
}

func (f *fakeUsers) FindByUsername(_ context.Context, username string) (*models.User, error) {
	u, ok := f.byUsername[username]
	if !ok {
		return nil, models.ErrNotFound
	}
	return u, nil
}

type fakeRepo struct {
	orders   map[bson.ObjectID]*models.Order
	failNext bool
	products map[bson.ObjectID]models.ProductBrief
	users    map[bson.ObjectID]models.UserBrief
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		orders:   make(map[bson.ObjectID]*models.Order),
		products: make(map[bson.ObjectID]models.ProductBrief),
		users:    make(map[bson.ObjectID]models.UserBrief),
	}
}

func (f *fakeRepo) CreateBatch(_ context.Context, batch []*models.Order) error {
	if f.failNext {
		return assert.AnError
	}
	for _, o := range batch {
		cp := *o
		f.orders[o.ID] = &cp
	}
	return nil
}

func (f *fakeRepo) GetByID(_ context.Context, id bson.ObjectID) (*models.Order, error) {
	o, ok := f.orders[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (f *fakeRepo) UpdateStatus(_ context.Context, o *models.Order, from models.OrderStatus) error {
	stored, ok := f.orders[o.ID]
	if !ok {
		return models.ErrNotFound
	}
	if stored.Status != from {
		return models.ErrInvalidTransition
	}
	cp := *o
	f.orders[o.ID] = &cp
	return nil
}

func (f *fakeRepo) view(o *models.Order) models.OrderView {
	return models.OrderView{
		ID:          o.ID,
		Quantity:    o.Quantity,
		TotalPrice:  o.TotalPrice,
		Status:      o.Status,
		CreatedAt:   o.CreatedAt,
		DeliveredAt: o.DeliveredAt,
		Product:     f.products[o.ProductID],
		User:        f.users[o.UserID],
	}
}

func (f *fakeRepo) ListByUser(_ context.Context, userID bson.ObjectID) ([]models.OrderView, error) {
	var out []models.OrderView
	for _, o := range f.orders {
		if o.UserID == userID {
			out = append(out, f.view(o))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeRepo) ListAll(_ context.Context) ([]models.OrderView, error) {
	var out []models.OrderView
	for _, o := range f.orders {
		out = append(out, f.view(o))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

const testPIN = "4321"

func setup(t *testing.T) (*Service, *fakeRepo, *models.User, bson.ObjectID) {
	t.Helper()
	user := &models.User{
		ID:        bson.NewObjectID(),
		FirstName: "Ramesh",
		Username:  "ramesh",
		Role:      "USER",
		Address:   "12 MG Road",
	}
	repo := newFakeRepo()
	productID := bson.NewObjectID()
	repo.products[productID] = models.ProductBrief{ID: productID, Name: "Adidas Track Jacket", Price: 250, Category: "tracks"}
	repo.users[user.ID] = models.UserBrief{Username: user.Username, FirstName: user.FirstName, Address: user.Address}
	users := &fakeUsers{byUsername: map[string]*models.User{user.Username: user}}
	return NewService(users, repo, testPIN), repo, user, productID
}

func TestPlaceOrderCreatesPendingRows(t *testing.T) {
	ctx := context.Background()
	svc, repo, user, productID := setup(t)

	count, err := svc.PlaceOrder(ctx, "ramesh", []models.OrderLineRequest{
		{ProductID: productID.Hex(), Quantity: 2, TotalPrice: 500},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	require.Len(t, repo.orders, 1)
	for _, o := range repo.orders {
		assert.Equal(t, user.ID, o.UserID)
		assert.Equal(t, productID, o.ProductID)
		assert.Equal(t, 2, o.Quantity)
		assert.Equal(t, 500.0, o.TotalPrice)
		assert.Equal(t, models.StatusPending, o.Status)
		assert.Nil(t, o.DeliveredAt)
		assert.False(t, o.CreatedAt.IsZero())
	}
}

func TestPlaceOrderOneRowPerItemSameTimestamp(t *testing.T) {
	ctx := context.Background()
	svc, repo, _, productID := setup(t)
	other := bson.NewObjectID()

	count, err := svc.PlaceOrder(ctx, "ramesh", []models.OrderLineRequest{
		{ProductID: productID.Hex(), Quantity: 1, TotalPrice: 250},
		{ProductID: other.Hex(), Quantity: 3, TotalPrice: 89.997},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	require.Len(t, repo.orders, 2)

	var created []int64
	for _, o := range repo.orders {
		created = append(created, o.CreatedAt.UnixNano())
		if o.ProductID == other {
			assert.Equal(t, 90.0, o.TotalPrice, "totals are rounded to two places")
		}
	}
	assert.Equal(t, created[0], created[1], "one checkout shares one creation time")
}

func TestPlaceOrderRejections(t *testing.T) {
	ctx := context.Background()
	svc, repo, _, productID := setup(t)

	_, err := svc.PlaceOrder(ctx, "ramesh", nil)
	assert.ErrorIs(t, err, models.ErrEmptyOrder)

	_, err = svc.PlaceOrder(ctx, "nobody", []models.OrderLineRequest{
		{ProductID: productID.Hex(), Quantity: 1, TotalPrice: 10},
	})
	assert.ErrorIs(t, err, models.ErrNotFound)

	_, err = svc.PlaceOrder(ctx, "ramesh", []models.OrderLineRequest{
		{ProductID: "not-an-id", Quantity: 1, TotalPrice: 10},
	})
	assert.ErrorIs(t, err, models.ErrValidation)

	_, err = svc.PlaceOrder(ctx, "ramesh", []models.OrderLineRequest{
		{ProductID: productID.Hex(), Quantity: 0, TotalPrice: 10},
	})
	assert.ErrorIs(t, err, models.ErrValidation)

	assert.Empty(t, repo.orders, "rejected placements must write nothing")
}

func TestAcceptAndDeliverFlow(t *testing.T) {
	ctx := context.Background()
	svc, repo, _, productID := setup(t)

	_, err := svc.PlaceOrder(ctx, "ramesh", []models.OrderLineRequest{
		{ProductID: productID.Hex(), Quantity: 1, TotalPrice: 250},
	})
	require.NoError(t, err)

	var orderID string
	for id := range repo.orders {
		orderID = id.Hex()
	}

	o, err := svc.Accept(ctx, orderID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusShipped, o.Status)
	assert.Nil(t, o.DeliveredAt)

	_, err = svc.Accept(ctx, orderID)
	assert.ErrorIs(t, err, models.ErrInvalidTransition)

	_, err = svc.Deliver(ctx, orderID, "0000")
	assert.ErrorIs(t, err, models.ErrInvalidCredential)
	stored, _ := repo.GetByID(ctx, mustOID(t, orderID))
	assert.Equal(t, models.StatusShipped, stored.Status, "bad PIN must not move the order")

	o, err = svc.Deliver(ctx, orderID, testPIN)
	require.NoError(t, err)
	assert.Equal(t, models.StatusDelivered, o.Status)
	require.NotNil(t, o.DeliveredAt)
}

// pairedReadRepo forces two callers to both read the order before
// either one writes, so a transition race is guaranteed rather than
// timing-dependent.
type pairedReadRepo struct {
	*fakeRepo
	barrier *sync.WaitGroup
	mu      sync.Mutex
}

func (r *pairedReadRepo) GetByID(ctx context.Context, id bson.ObjectID) (*models.Order, error) {
	o, err := r.fakeRepo.GetByID(ctx, id)
	r.barrier.Done()
	r.barrier.Wait()
	return o, err
}

func (r *pairedReadRepo) UpdateStatus(ctx context.Context, o *models.Order, from models.OrderStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.fakeRepo.UpdateStatus(ctx, o, from)
}

func TestConcurrentAcceptOnlyOneWins(t *testing.T) {
	ctx := context.Background()
	svc, base, _, productID := setup(t)

	_, err := svc.PlaceOrder(ctx, "ramesh", []models.OrderLineRequest{
		{ProductID: productID.Hex(), Quantity: 1, TotalPrice: 250},
	})
	require.NoError(t, err)

	var orderID string
	for id := range base.orders {
		orderID = id.Hex()
	}

	var barrier sync.WaitGroup
	barrier.Add(2)
	repo := &pairedReadRepo{fakeRepo: base, barrier: &barrier}
	raceSvc := NewService(&fakeUsers{byUsername: map[string]*models.User{}}, repo, testPIN)

	errs := make(chan error, 2)
	for i := 0; i < 2; i++ {
		go func() {
			_, err := raceSvc.Accept(ctx, orderID)
			errs <- err
		}()
	}

	var wins, losses int
	for i := 0; i < 2; i++ {
		if err := <-errs; err == nil {
			wins++
		} else {
			assert.ErrorIs(t, err, models.ErrInvalidTransition)
			losses++
		}
	}
	assert.Equal(t, 1, wins, "exactly one accept may land")
	assert.Equal(t, 1, losses)

	stored, err := base.GetByID(ctx, mustOID(t, orderID))
	require.NoError(t, err)
	assert.Equal(t, models.StatusShipped, stored.Status)
}

func TestTransitionUnknownOrder(t *testing.T) {
	ctx := context.Background()
	svc, _, _, _ := setup(t)

	missing := bson.NewObjectID().Hex()
	_, err := svc.Accept(ctx, missing)
	assert.ErrorIs(t, err, models.ErrNotFound)
	_, err = svc.Deliver(ctx, missing, testPIN)
	assert.ErrorIs(t, err, models.ErrNotFound)
	_, err = svc.Override(ctx, missing, "Shipped")
	assert.ErrorIs(t, err, models.ErrNotFound)

	_, err = svc.Accept(ctx, "garbage")
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestManagerOverride(t *testing.T) {
	ctx := context.Background()
	svc, repo, _, productID := setup(t)

	_, err := svc.PlaceOrder(ctx, "ramesh", []models.OrderLineRequest{
		{ProductID: productID.Hex(), Quantity: 1, TotalPrice: 250},
	})
	require.NoError(t, err)

	var orderID string
	for id := range repo.orders {
		orderID = id.Hex()
	}

	o, err := svc.Override(ctx, orderID, "Delivered")
	require.NoError(t, err)
	assert.Equal(t, models.StatusDelivered, o.Status)
	require.NotNil(t, o.DeliveredAt)

	// forcing backward clears delivered_at
	o, err = svc.Override(ctx, orderID, "Pending")
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, o.Status)
	assert.Nil(t, o.DeliveredAt)

	_, err = svc.Override(ctx, orderID, "Lost")
	assert.ErrorIs(t, err, models.ErrValidation)
	stored, _ := repo.GetByID(ctx, mustOID(t, orderID))
	assert.Equal(t, models.StatusPending, stored.Status, "invalid status must be rejected before any write")
}

func TestOrdersForUserRoundTrip(t *testing.T) {
	ctx := context.Background()
	svc, _, _, productID := setup(t)

	_, err := svc.PlaceOrder(ctx, "ramesh", []models.OrderLineRequest{
		{ProductID: productID.Hex(), Quantity: 2, TotalPrice: 500},
	})
	require.NoError(t, err)

	views, err := svc.OrdersForUser(ctx, "ramesh")
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, models.StatusPending, views[0].Status)
	assert.Equal(t, 500.0, views[0].TotalPrice)
	assert.Equal(t, "Adidas Track Jacket", views[0].Product.Name)
	assert.Equal(t, "ramesh", views[0].User.Username)

	_, err = svc.OrdersForUser(ctx, "nobody")
	assert.ErrorIs(t, err, models.ErrNotFound)

	all, err := svc.AllOrders(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func mustOID(t *testing.T, hex string) bson.ObjectID {
	t.Helper()
	id, err := bson.ObjectIDFromHex(hex)
	require.NoError(t, err)
	return id
}
