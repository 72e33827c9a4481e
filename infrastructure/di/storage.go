package di

import (
	"context"
	"fmt"

	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"go.uber.org/zap"

	"github.com/luisriego/MatisseAPI-sub001/application/ports"
	"github.com/luisriego/MatisseAPI-sub001/infrastructure/config"
	"github.com/luisriego/MatisseAPI-sub001/infrastructure/persistence/dynamodb"
	"github.com/luisriego/MatisseAPI-sub001/infrastructure/persistence/memory"
	"github.com/luisriego/MatisseAPI-sub001/infrastructure/persistence/postgres"
	"github.com/luisriego/MatisseAPI-sub001/infrastructure/persistence/serialization"
)

// Storage is the backend selected by the store driver.
// Reader is nil when the event store has no global order. Tracker and
// Unprojected are only set for the dynamodb driver.
type Storage struct {
	Driver      string
	Events      ports.EventStore
	Reader      ports.StreamReader
	ReadModels  ports.ReadModelStore
	Tx          ports.TxRunner
	Tracker     ports.ProjectionTracker
	Unprojected *dynamodb.EventStore
}

// ProvideStorage opens the event store and read models for cfg.Store.Driver
func ProvideStorage(
	ctx context.Context,
	cfg *config.Config,
	client *awsdynamodb.Client,
	serializer *serialization.Serializer,
	deserializer *serialization.Deserializer,
	logger *zap.Logger,
) (*Storage, func(), error) {
	switch cfg.Store.Driver {
	case config.DriverMemory:
		events := memory.NewEventStore(serializer, deserializer)
		return &Storage{
			Driver:     cfg.Store.Driver,
			Events:     events,
			Reader:     events,
			ReadModels: memory.NewReadModelStore(),
			Tx:         memory.NewTxRunner(),
		}, func() {}, nil

	case config.DriverPostgres:
		pool, err := postgres.NewPool(ctx, cfg.Database)
		if err != nil {
			return nil, nil, err
		}
		if cfg.Database.AutoMigrate {
			if err := postgres.Migrate(ctx, pool, logger); err != nil {
				pool.Close()
				return nil, nil, err
			}
		}
		tx := postgres.NewTxManager(pool)
		events := postgres.NewEventStore(pool, tx, serializer, deserializer)
		return &Storage{
			Driver:     cfg.Store.Driver,
			Events:     events,
			Reader:     events,
			ReadModels: postgres.NewReadModelStore(pool),
			Tx:         tx,
		}, pool.Close, nil

	case config.DriverDynamoDB:
		events := dynamodb.NewEventStore(client, cfg.AWS.EventsTable, serializer, deserializer)
		storage := &Storage{
			Driver:      cfg.Store.Driver,
			Events:      events,
			ReadModels:  memory.NewReadModelStore(),
			Tracker:     events,
			Unprojected: events,
		}
		if cfg.Database.DSN == "" {
			logger.Warn("DynamoDB event store without a database DSN, read models are kept in memory")
			return storage, func() {}, nil
		}

		pool, err := postgres.NewPool(ctx, cfg.Database)
		if err != nil {
			return nil, nil, err
		}
		if cfg.Database.AutoMigrate {
			if err := postgres.Migrate(ctx, pool, logger); err != nil {
				pool.Close()
				return nil, nil, err
			}
		}
		storage.ReadModels = postgres.NewReadModelStore(pool)
		storage.Tx = postgres.NewTxManager(pool)
		return storage, pool.Close, nil
	}

	return nil, nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
}
