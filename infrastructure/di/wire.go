//go:build wireinject
// +build wireinject

package di

import (
	"context"

	"github.com/google/wire"

	"github.com/luisriego/MatisseAPI-sub001/infrastructure/config"
)

// SuperSet is the main provider set containing all providers
var SuperSet = wire.NewSet(
	ProvideLogger,
	ProvideAWSConfig,
	ProvideDynamoDBClient,
	ProvideEventBridgeClient,
	ProvideCloudWatchClient,
	ProvideRegistry,
	ProvideUpcasters,
	ProvideSerializer,
	ProvideDeserializer,
	ProvideStorage,
	ProvideEventStore,
	ProvideMetrics,
	ProvideCommandRecorder,
	ProvideTracer,
	ProvideProjectionManager,
	ProvideEventPublisher,
	ProvideRepositoryDependencies,
	ProvideCommandHandlers,
	ProvideLocker,
	ProvideCommandBus,
	ProvideQueryCache,
	ProvideQueryBus,
	ProvideUnitOnboarding,
	ProvideRecoveryProcessor,
	wire.Struct(new(Container), "*"),
)

// InitializeContainer creates a fully wired container
func InitializeContainer(ctx context.Context, cfg *config.Config) (*Container, func(), error) {
	wire.Build(SuperSet)
	return nil, nil, nil
}
