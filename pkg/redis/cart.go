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

// CartState keeps each session cart as one JSON value under cart:{session}.
// Every write refreshes the expiry.
type CartState struct {
	client *redis.Client
	ttl    time.Duration
}

func NewCartState(client *redis.Client, ttl time.Duration) *CartState {
	return &CartState{client: client, ttl: ttl}
}

func cartKey(sessionID string) string {
	return fmt.Sprintf("cart:%s", sessionID)
}

func (s *CartState) Load(ctx context.Context, sessionID string) ([]models.CartItem, error) {
	data, err := s.client.Get(ctx, cartKey(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return []models.CartItem{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read cart %s: %w", sessionID, err)
	}

	var items []models.CartItem
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("failed to decode cart %s: %w", sessionID, err)
	}
	return items, nil
}

func (s *CartState) Save(ctx context.Context, sessionID string, items []models.CartItem) error {
	if len(items) == 0 {
		return s.client.Del(ctx, cartKey(sessionID)).Err()
	}

	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("failed to encode cart %s: %w", sessionID, err)
	}
	if err := s.client.Set(ctx, cartKey(sessionID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write cart %s: %w", sessionID, err)
	}
	return nil
}
