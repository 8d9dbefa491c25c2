package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	redisclient "github.com/redis/go-redis/v9"

	"logikalmart.ca/storefront/api/pkg/models"
)

// Carts live under cart:{user} as one JSON snapshot per user. The TTL
// is long-lived on purpose: a returning user's cart must reload, it is
// not a short session cache.
const cartTTL = 30 * 24 * time.Hour

// CartStore is the durable per-user cart mirror backing the cart
// aggregate's SnapshotStore.
type CartStore struct{}

func NewCartStore() *CartStore {
	return &CartStore{}
}

func cartKey(user string) string {
	return fmt.Sprintf("cart:%s", user)
}

// isMissingKey matches the server reply for operations on an absent
// key, tolerating the varying suffixes redis versions append.
func isMissingKey(err error) bool {
	return redisclient.HasErrorPrefix(err, "ERR no such key")
}

func (s *CartStore) Load(ctx context.Context, user string) (*models.Cart, error) {
	client := RedisClient()
	defer client.Close()

	payload, err := client.Get(ctx, cartKey(user)).Result()
	if errors.Is(err, redisclient.Nil) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	var cart models.Cart
	if err := json.Unmarshal([]byte(payload), &cart); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cart for %s: %w", user, err)
	}
	if cart.Items == nil {
		cart.Items = make(map[string]*models.CartItem)
	}
	return &cart, nil
}

func (s *CartStore) Save(ctx context.Context, cart *models.Cart) error {
	client := RedisClient()
	defer client.Close()

	payload, err := json.Marshal(cart)
	if err != nil {
		return fmt.Errorf("failed to marshal cart for %s: %w", cart.User, err)
	}
	return client.Set(ctx, cartKey(cart.User), payload, cartTTL).Err()
}

func (s *CartStore) Delete(ctx context.Context, user string) error {
	client := RedisClient()
	defer client.Close()

	return client.Del(ctx, cartKey(user)).Err()
}

// Rename re-keys a snapshot, refusing to clobber an existing target.
// Returns false when the source is absent or the target already holds
// a cart.
func (s *CartStore) Rename(ctx context.Context, from, to string) (bool, error) {
	client := RedisClient()
	defer client.Close()

	moved, err := client.RenameNX(ctx, cartKey(from), cartKey(to)).Result()
	if err != nil {
		// RENAMENX errors when the source key does not exist
		if isMissingKey(err) {
			return false, nil
		}
		return false, err
	}
	if moved {
		// the renamed value still carries the old user tag; rewrite it
		cart, err := s.Load(ctx, to)
		if err != nil {
			return true, err
		}
		cart.User = to
		return true, s.Save(ctx, cart)
	}
	return false, nil
}
