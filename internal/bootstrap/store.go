package bootstrap

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/PrimeSandy/Alpha-Dev/config"
	"github.com/PrimeSandy/Alpha-Dev/internal/records/repository"
)

// OpenStore connects the configured record store and prepares its schema
// or indexes.
func OpenStore(ctx context.Context, cfg config.StoreConfig, log *zap.Logger) (repository.Store, error) {
	switch cfg.Driver {
	case config.StoreMemory:
		log.Warn("using in-memory store, records are lost on restart")
		return repository.NewMemoryStore(), nil

	case config.StorePostgres:
		pool, err := OpenDB(ctx, DBOptions{
			DSN:       cfg.PostgresDSN,
			MaxConns:  cfg.MaxConns,
			MinConns:  cfg.MinConns,
			ConnectTO: cfg.ConnectTimeout,
		})
		if err != nil {
			return nil, err
		}
		store := repository.NewPostgresStore(pool)
		if err := store.EnsureSchema(ctx); err != nil {
			pool.Close()
			return nil, fmt.Errorf("postgres schema: %w", err)
		}
		log.Info("connected to postgres")
		return store, nil

	case config.StoreMongo:
		client, err := OpenMongo(ctx, cfg.MongoURI, cfg.ConnectTimeout)
		if err != nil {
			return nil, err
		}
		store := repository.NewMongoStore(client, cfg.MongoDatabase)
		if err := store.EnsureIndexes(ctx); err != nil {
			_ = client.Disconnect(context.Background())
			return nil, fmt.Errorf("mongo indexes: %w", err)
		}
		log.Info("connected to mongodb", zap.String("database", cfg.MongoDatabase))
		return store, nil
	}
	return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
}
