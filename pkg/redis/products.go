package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Daviipontes/Dev-Web/pkg/models"
)

// ProductCache is a read-through cache of single products keyed by id.
type ProductCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewProductCache(client *redis.Client, ttl time.Duration) *ProductCache {
	return &ProductCache{client: client, ttl: ttl}
}

func productKey(id int) string {
	return fmt.Sprintf("product:%d", id)
}

// Get reports a miss with ok == false and a nil error.
func (c *ProductCache) Get(ctx context.Context, id int) (models.Product, bool, error) {
	var product models.Product

	productJSON, err := c.client.Get(ctx, productKey(id)).Result()
	if errors.Is(err, redis.Nil) {
		return product, false, nil
	}
	if err != nil {
		return product, false, err
	}

	if err := json.Unmarshal([]byte(productJSON), &product); err != nil {
		return product, false, fmt.Errorf("failed to unmarshal product %d: %w", id, err)
	}
	return product, true, nil
}

func (c *ProductCache) Set(ctx context.Context, product models.Product) error {
	productJSON, err := json.Marshal(product)
	if err != nil {
		return fmt.Errorf("failed to marshal product %d: %w", product.ID, err)
	}

	if err := c.client.Set(ctx, productKey(product.ID), productJSON, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache product %d: %w", product.ID, err)
	}
	return nil
}

func (c *ProductCache) Invalidate(ctx context.Context, id int) error {
	if err := c.client.Del(ctx, productKey(id)).Err(); err != nil {
		return fmt.Errorf("failed to remove product %d from cache: %w", id, err)
	}
	return nil
}
