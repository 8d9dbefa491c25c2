package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"logikalmart.ca/storefront/api/pkg/models"
)

// ProductStore persists the catalog and is the single source of truth
// for availability. Reserve and Release are each one atomic
// read-modify-write; no separate read-then-write step exists for a
// concurrent request to squeeze between.
type ProductStore struct {
	col *mongo.Collection
}

func NewProductStore() *ProductStore {
	return &ProductStore{col: GetCollection("products")}
}

func (s *ProductStore) Create(ctx context.Context, products []*models.Product) error {
	docs := make([]interface{}, len(products))
	for i, p := range products {
		p.SetTimestamps()
		docs[i] = p
	}
	_, err := s.col.InsertMany(ctx, docs)
	return err
}

// All returns the catalog, optionally filtered by category tag.
func (s *ProductStore) All(ctx context.Context, category string) ([]models.Product, error) {
	filter := bson.D{}
	if category != "" {
		filter = bson.D{{Key: "category", Value: category}}
	}

	cursor, err := s.col.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var products []models.Product
	if err := cursor.All(ctx, &products); err != nil {
		return nil, err
	}
	return products, nil
}

func (s *ProductStore) GetByID(ctx context.Context, id string) (*models.Product, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, models.ErrNotFound
	}

	var p models.Product
	err = s.col.FindOne(ctx, bson.D{{Key: "_id", Value: oid}}).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Reserve decrements availability by qty in a single guarded update.
// The availability >= qty filter means a failed reservation writes
// nothing, and availability can never go below zero.
func (s *ProductStore) Reserve(ctx context.Context, id string, qty int) (int, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return 0, models.ErrNotFound
	}

	filter := bson.D{
		{Key: "_id", Value: oid},
		{Key: "availability", Value: bson.D{{Key: "$gte", Value: qty}}},
	}
	update := bson.D{{Key: "$inc", Value: bson.D{{Key: "availability", Value: -qty}}}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var p models.Product
	err = s.col.FindOneAndUpdate(ctx, filter, update, opts).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		// distinguish a missing product from one that is out of stock
		count, countErr := s.col.CountDocuments(ctx, bson.D{{Key: "_id", Value: oid}})
		if countErr != nil {
			return 0, countErr
		}
		if count == 0 {
			return 0, models.ErrNotFound
		}
		return 0, models.ErrInsufficientStock
	}
	if err != nil {
		return 0, err
	}
	return p.Availability, nil
}

// Release increments availability by qty unconditionally. There is no
// upper bound: the ledger does not track original stock levels.
func (s *ProductStore) Release(ctx context.Context, id string, qty int) (int, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return 0, models.ErrNotFound
	}

	update := bson.D{{Key: "$inc", Value: bson.D{{Key: "availability", Value: qty}}}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var p models.Product
	err = s.col.FindOneAndUpdate(ctx, bson.D{{Key: "_id", Value: oid}}, update, opts).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return 0, models.ErrNotFound
	}
	if err != nil {
		return 0, err
	}
	return p.Availability, nil
}
