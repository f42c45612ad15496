package storage

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"pastebin-lite/config"
	infraredis "pastebin-lite/internal/infra/redis"
)

// New creates the store backend selected by configuration. The zero
// backend is redis, matching the service's original deployment shape.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (Store, error) {
	switch cfg.Store.Backend {
	case "", "redis":
		client, err := infraredis.NewClient(ctx, cfg.Redis)
		if err != nil {
			return nil, fmt.Errorf("storage: connect redis: %w", err)
		}
		logger.Info("using redis store", zap.String("addr", client.Options().Addr))
		return NewRedisStore(client), nil

	case "bolt":
		path := cfg.Bolt.Path
		if path == "" {
			path = "pastebin.db"
		}
		logger.Info("using bolt store", zap.String("path", path))
		return NewBoltStore(path)

	case "mongodb":
		database := cfg.Mongo.Database
		if database == "" {
			database = "pastebin"
		}
		collection := cfg.Mongo.Collection
		if collection == "" {
			collection = "pastes"
		}
		logger.Info("using mongodb store",
			zap.String("database", database),
			zap.String("collection", collection))
		return NewMongoStore(ctx, cfg.Mongo.URI, database, collection)

	case "dynamodb":
		logger.Info("using dynamodb store",
			zap.String("table", cfg.Dynamo.Table),
			zap.String("region", cfg.Dynamo.Region))
		return NewDynamoStore(ctx, cfg.Dynamo.Table, cfg.Dynamo.Region)

	default:
		return nil, fmt.Errorf("storage: unsupported backend %q (supported: redis, bolt, mongodb, dynamodb)", cfg.Store.Backend)
	}
}
