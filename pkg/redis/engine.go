package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

func RedisClient(addr, password string) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       0,
		Protocol: 2,
	})
}

// Connect returns a client after confirming the server answers.
func Connect(ctx context.Context, addr, password string) (*redis.Client, error) {
	client := RedisClient(addr, password)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis at %s: %w", addr, err)
	}
	return client, nil
}
