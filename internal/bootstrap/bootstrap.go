// Package bootstrap opens the backends selected by configuration.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	goredis "github.com/redis/go-redis/v9"

	"github.com/Daviipontes/Dev-Web/pkg/global"
	"github.com/Daviipontes/Dev-Web/pkg/mongo"
	"github.com/Daviipontes/Dev-Web/pkg/redis"
	"github.com/Daviipontes/Dev-Web/pkg/store"
)

// OpenStore opens the configured backend and creates missing collections.
func OpenStore(ctx context.Context, cfg *global.Config) (*store.Store, error) {
	var (
		backend store.Backend
		err     error
	)
	switch cfg.StoreDriver {
	case "sqlite":
		backend, err = store.OpenSQLite(cfg.SQLitePath)
	case "mongo":
		backend, err = mongo.Connect(cfg.MongoURI, cfg.MongoDB)
	default:
		backend, err = store.NewFileBackend(cfg.DataDir)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", cfg.StoreDriver, err)
	}

	s := store.New(backend)
	if err := s.Init(ctx); err != nil {
		s.Close()
		return nil, err
	}
	slog.Info("Store ready", "driver", cfg.StoreDriver, "data_dir", filepath.Clean(cfg.DataDir))
	return s, nil
}

// OpenRedis connects only when the cart or the product cache uses Redis.
// It returns a nil client otherwise.
func OpenRedis(ctx context.Context, cfg *global.Config) (*goredis.Client, error) {
	if cfg.CartDriver != "redis" && cfg.CacheDriver != "redis" {
		return nil, nil
	}
	client, err := redis.Connect(ctx, cfg.RedisAddress, cfg.RedisPass)
	if err != nil {
		return nil, err
	}
	slog.Info("Connected to Redis", "address", cfg.RedisAddress)
	return client, nil
}
