package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"logikalmart.ca/storefront/api/pkg/models"
)

type UserStore struct {
	col *mongo.Collection
}

func NewUserStore() *UserStore {
	return &UserStore{col: GetCollection("users")}
}

// Create inserts a new account. Username uniqueness is enforced by the
// idx_username_unique index; a duplicate surfaces as ErrUsernameTaken.
func (s *UserStore) Create(ctx context.Context, user *models.User) error {
	user.ID = bson.NewObjectID()
	_, err := s.col.InsertOne(ctx, user)
	if mongo.IsDuplicateKeyError(err) {
		return models.ErrUsernameTaken
	}
	return err
}

func (s *UserStore) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	err := s.col.FindOne(ctx, bson.D{{Key: "username", Value: username}}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}
