package cli

import (
	"context"
	"fmt"

	"storefront/internal/cache"
	"storefront/internal/config"
	"storefront/internal/database"
	"storefront/internal/handler"
	"storefront/internal/repository"

	"github.com/rs/zerolog"
)

// storage is the opened order store and the dependencies behind it.
type storage struct {
	orders  repository.OrderRepository
	pingers map[string]handler.Pinger
	closers []func()
}

func (s *storage) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
}

// openStorage connects the configured order store, ensures its indexes and
// wraps it with the Redis listing cache when enabled.
func openStorage(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*storage, error) {
	s := &storage{pingers: make(map[string]handler.Pinger)}

	var orders repository.OrderRepository
	switch cfg.Storage.Driver {
	case config.StoragePostgres:
		pool, err := database.NewPool(ctx, cfg.Database, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		s.closers = append(s.closers, pool.Close)
		orders = repository.NewPostgresOrderRepository(pool, logger)

	case config.StorageMongo:
		logger.Info().
			Str("database", cfg.Mongo.Database).
			Msg("connecting to mongodb")

		db, err := repository.ConnectMongoDB(ctx, cfg.Mongo.URI, cfg.Mongo.Database, repository.DefaultMongoConfig())
		if err != nil {
			return nil, fmt.Errorf("failed to initialize mongodb: %w", err)
		}
		s.closers = append(s.closers, func() {
			if err := db.Client().Disconnect(context.Background()); err != nil {
				logger.Error().Err(err).Msg("failed to disconnect mongodb")
			}
		})
		orders = repository.NewMongoOrderRepository(db, logger)

	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}

	if err := repository.EnsureIndexes(ctx, orders); err != nil {
		s.Close()
		return nil, err
	}
	s.pingers["orders"] = orders

	if cfg.Redis.Enabled {
		client, err := database.NewRedisClient(ctx, cfg.Redis, logger)
		if err != nil {
			s.Close()
			return nil, fmt.Errorf("failed to initialize redis: %w", err)
		}
		s.closers = append(s.closers, func() { _ = client.Close() })

		redisCache := cache.NewRedisCache(client, cfg.Redis.TTL())
		s.pingers["cache"] = redisCache
		orders = repository.NewCachedOrderRepository(orders, redisCache, logger)
	}

	s.orders = orders
	return s, nil
}

// loadConfig loads configuration and builds the application logger.
func loadConfig() (*config.Config, zerolog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, zerolog.Nop(), fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, config.NewLogger(cfg.Logger), nil
}
