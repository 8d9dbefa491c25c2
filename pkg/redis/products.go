package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"logikalmart.ca/storefront/api/pkg/models"
)

// Product read-projection cache. Cached availability is only a
// projection: every reserve/release against the ledger invalidates the
// entry, and readers fall back to MongoDB on a miss.

func productKey(id string) string {
	return fmt.Sprintf("product:%s", id)
}

func CacheSingleProduct(ctx context.Context, product *models.Product) error {
	client := RedisClient()
	defer client.Close()

	payload, err := json.Marshal(product)
	if err != nil {
		return fmt.Errorf("failed to marshal product %s: %w", product.ID.Hex(), err)
	}
	return client.Set(ctx, productKey(product.ID.Hex()), payload, 24*time.Hour).Err()
}

func GetProductFromCache(ctx context.Context, id string) (*models.Product, error) {
	client := RedisClient()
	defer client.Close()

	payload, err := client.Get(ctx, productKey(id)).Result()
	if err != nil {
		return nil, err
	}

	var product models.Product
	if err := json.Unmarshal([]byte(payload), &product); err != nil {
		return nil, fmt.Errorf("failed to unmarshal product: %w", err)
	}
	return &product, nil
}

func RemoveProductFromCache(ctx context.Context, id string) error {
	client := RedisClient()
	defer client.Close()

	return client.Del(ctx, productKey(id)).Err()
}
