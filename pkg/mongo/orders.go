package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"logikalmart.ca/storefront/api/pkg/models"
)

type OrderStore struct {
	client *mongo.Client
	col    *mongo.Collection
}

func NewOrderStore() *OrderStore {
	return &OrderStore{client: GetClient(), col: GetCollection("orders")}
}

// CreateBatch inserts every row of one checkout inside a session
// transaction, so a failure partway through rolls the whole batch back.
func (s *OrderStore) CreateBatch(ctx context.Context, batch []*models.Order) error {
	docs := make([]interface{}, len(batch))
	for i, o := range batch {
		docs[i] = o
	}

	session, err := s.client.StartSession()
	if err != nil {
		return err
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(ctx context.Context) (interface{}, error) {
		return s.col.InsertMany(ctx, docs)
	})
	return err
}

func (s *OrderStore) GetByID(ctx context.Context, id bson.ObjectID) (*models.Order, error) {
	var o models.Order
	err := s.col.FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Decode(&o)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// UpdateStatus writes status and delivered_at together; a nil
// DeliveredAt persists as null. The update is a compare-and-swap on
// the status read before the transition, so two racing transitions
// cannot both land: the loser's filter no longer matches and it gets
// ErrInvalidTransition back.
func (s *OrderStore) UpdateStatus(ctx context.Context, o *models.Order, from models.OrderStatus) error {
	filter := bson.D{
		{Key: "_id", Value: o.ID},
		{Key: "status", Value: from},
	}
	update := bson.D{{Key: "$set", Value: bson.D{
		{Key: "status", Value: o.Status},
		{Key: "delivered_at", Value: o.DeliveredAt},
	}}}

	result, err := s.col.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		// distinguish a vanished order from one a concurrent
		// transition moved out from under us
		count, countErr := s.col.CountDocuments(ctx, bson.D{{Key: "_id", Value: o.ID}})
		if countErr != nil {
			return countErr
		}
		if count == 0 {
			return models.ErrNotFound
		}
		return fmt.Errorf("%w: order %s changed status concurrently", models.ErrInvalidTransition, o.ID.Hex())
	}
	return nil
}

func (s *OrderStore) ListByUser(ctx context.Context, userID bson.ObjectID) ([]models.OrderView, error) {
	pipeline := append(bson.A{
		bson.D{{Key: "$match", Value: bson.D{{Key: "user_id", Value: userID}}}},
	}, viewStages()...)
	return s.aggregateViews(ctx, pipeline)
}

func (s *OrderStore) ListAll(ctx context.Context) ([]models.OrderView, error) {
	return s.aggregateViews(ctx, bson.A(viewStages()))
}

// viewStages joins each order with its product and user attributes and
// sorts newest first. Orders whose product or user was since deleted
// still appear, with the joined fields empty.
func viewStages() []interface{} {
	return []interface{}{
		bson.D{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: "products"},
			{Key: "localField", Value: "product_id"},
			{Key: "foreignField", Value: "_id"},
			{Key: "as", Value: "product"},
		}}},
		bson.D{{Key: "$unwind", Value: bson.D{
			{Key: "path", Value: "$product"},
			{Key: "preserveNullAndEmptyArrays", Value: true},
		}}},
		bson.D{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: "users"},
			{Key: "localField", Value: "user_id"},
			{Key: "foreignField", Value: "_id"},
			{Key: "as", Value: "user"},
		}}},
		bson.D{{Key: "$unwind", Value: bson.D{
			{Key: "path", Value: "$user"},
			{Key: "preserveNullAndEmptyArrays", Value: true},
		}}},
		bson.D{{Key: "$project", Value: bson.D{
			{Key: "quantity", Value: 1},
			{Key: "total_price", Value: 1},
			{Key: "status", Value: 1},
			{Key: "created_at", Value: 1},
			{Key: "delivered_at", Value: 1},
			{Key: "product._id", Value: 1},
			{Key: "product.name", Value: 1},
			{Key: "product.price", Value: 1},
			{Key: "product.category", Value: 1},
			{Key: "product.description", Value: 1},
			{Key: "user.username", Value: 1},
			{Key: "user.first_name", Value: 1},
			{Key: "user.address", Value: 1},
		}}},
		bson.D{{Key: "$sort", Value: bson.D{{Key: "created_at", Value: -1}}}},
	}
}

func (s *OrderStore) aggregateViews(ctx context.Context, pipeline bson.A) ([]models.OrderView, error) {
	cursor, err := s.col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	views := make([]models.OrderView, 0)
	if err := cursor.All(ctx, &views); err != nil {
		return nil, err
	}
	return views, nil
}
