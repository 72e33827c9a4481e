package di

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awscloudwatch "github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awseventbridge "github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"go.uber.org/zap"

	"github.com/luisriego/MatisseAPI-sub001/application/commands/bus"
	"github.com/luisriego/MatisseAPI-sub001/application/commands/handlers"
	"github.com/luisriego/MatisseAPI-sub001/application/ports"
	querybus "github.com/luisriego/MatisseAPI-sub001/application/queries/bus"
	queryhandlers "github.com/luisriego/MatisseAPI-sub001/application/queries/handlers"
	"github.com/luisriego/MatisseAPI-sub001/application/projections"
	"github.com/luisriego/MatisseAPI-sub001/application/sagas"
	"github.com/luisriego/MatisseAPI-sub001/domain/events"
	"github.com/luisriego/MatisseAPI-sub001/infrastructure/cache"
	"github.com/luisriego/MatisseAPI-sub001/infrastructure/config"
	"github.com/luisriego/MatisseAPI-sub001/infrastructure/messaging/eventbridge"
	"github.com/luisriego/MatisseAPI-sub001/infrastructure/persistence/dynamodb"
	"github.com/luisriego/MatisseAPI-sub001/infrastructure/persistence/eventsourced"
	"github.com/luisriego/MatisseAPI-sub001/infrastructure/persistence/memory"
	"github.com/luisriego/MatisseAPI-sub001/infrastructure/persistence/resilience"
	"github.com/luisriego/MatisseAPI-sub001/infrastructure/persistence/schema"
	"github.com/luisriego/MatisseAPI-sub001/infrastructure/persistence/serialization"
	"github.com/luisriego/MatisseAPI-sub001/pkg/observability"
)

// ProvideLogger creates a new logger instance
func ProvideLogger(cfg *config.Config) (*zap.Logger, error) {
	logger, err := observability.NewLogger(cfg.App.Environment, cfg.Log.Level)
	if err != nil {
		return nil, err
	}
	return logger.With(zap.String("service", cfg.App.ServiceName)), nil
}

// ProvideAWSConfig creates AWS configuration
func ProvideAWSConfig(ctx context.Context, cfg *config.Config) (aws.Config, error) {
	return awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.AWS.Region),
	)
}

// ProvideDynamoDBClient creates a DynamoDB client
func ProvideDynamoDBClient(awsCfg aws.Config) *awsdynamodb.Client {
	return awsdynamodb.NewFromConfig(awsCfg)
}

// ProvideEventBridgeClient creates an EventBridge client
func ProvideEventBridgeClient(awsCfg aws.Config) *awseventbridge.Client {
	return awseventbridge.NewFromConfig(awsCfg)
}

// ProvideCloudWatchClient creates a CloudWatch client
func ProvideCloudWatchClient(awsCfg aws.Config) *awscloudwatch.Client {
	return awscloudwatch.NewFromConfig(awsCfg)
}

// ProvideRegistry returns the event type registry
func ProvideRegistry() *events.Registry {
	return events.DefaultRegistry()
}

// ProvideUpcasters returns the schema upcasters
func ProvideUpcasters() *schema.Upcasters {
	return schema.DefaultUpcasters()
}

// ProvideSerializer creates the event serializer
func ProvideSerializer(registry *events.Registry, upcasters *schema.Upcasters) *serialization.Serializer {
	return serialization.NewSerializer(registry, upcasters)
}

// ProvideDeserializer creates the event deserializer
func ProvideDeserializer(registry *events.Registry, upcasters *schema.Upcasters) *serialization.Deserializer {
	return serialization.NewDeserializer(registry, upcasters)
}

// ProvideEventStore guards the selected event store with a circuit breaker
// when enabled
func ProvideEventStore(storage *Storage, cfg *config.Config, logger *zap.Logger) ports.EventStore {
	if !cfg.Breaker.Enabled {
		return storage.Events
	}
	return resilience.NewEventStore(storage.Events, resilience.BreakerConfig{
		Name:             "event-store-" + storage.Driver,
		MaxRequests:      cfg.Breaker.MaxRequests,
		Interval:         cfg.Breaker.Interval,
		Timeout:          cfg.Breaker.Timeout,
		FailureThreshold: cfg.Breaker.FailureThreshold,
		MinRequests:      cfg.Breaker.MinRequests,
	}, logger)
}

// ProvideMetrics creates the Prometheus collector
func ProvideMetrics(cfg *config.Config) *observability.Collector {
	return observability.NewCollector(cfg.AWS.MetricsNamespace)
}

// ProvideCommandRecorder records command executions in Prometheus and,
// when enabled, in CloudWatch
func ProvideCommandRecorder(
	cfg *config.Config,
	metrics *observability.Collector,
	client *awscloudwatch.Client,
	logger *zap.Logger,
) observability.CommandRecorder {
	if !cfg.Metrics.CloudWatch {
		return metrics
	}
	namespace := fmt.Sprintf("%s/%s", cfg.AWS.MetricsNamespace, cfg.App.Environment)
	return observability.MultiRecorder{
		metrics,
		observability.NewCloudWatchMetrics(namespace, client, logger),
	}
}

// ProvideTracer creates the X-Ray tracer
func ProvideTracer(cfg *config.Config) *observability.Tracer {
	return observability.NewTracer(cfg.App.ServiceName, cfg.Tracing.Enabled)
}

// ProvideProjectionManager creates the projection manager with every projector
func ProvideProjectionManager(
	storage *Storage,
	store ports.EventStore,
	metrics *observability.Collector,
	cfg *config.Config,
	logger *zap.Logger,
) (*projections.Manager, error) {
	opts := projections.ManagerOptions{
		Store:     store,
		Tx:        storage.Tx,
		Metrics:   metrics,
		BatchSize: cfg.Ledger.ReplayBatchSize,
		Logger:    logger,
	}
	if storage.Reader != nil {
		if reader, ok := store.(ports.StreamReader); ok {
			opts.Reader = reader
		} else {
			opts.Reader = storage.Reader
		}
	}
	return projections.NewManager(opts, projections.Projectors(storage.ReadModels)...)
}

// ProvideEventPublisher creates the EventBridge publisher; nil when no
// event bus is configured
func ProvideEventPublisher(
	client *awseventbridge.Client,
	serializer *serialization.Serializer,
	cfg *config.Config,
	logger *zap.Logger,
) ports.EventPublisher {
	if cfg.AWS.EventBusName == "" {
		return nil
	}
	return eventbridge.NewPublisher(client, serializer, eventbridge.Options{
		EventBusName: cfg.AWS.EventBusName,
		Source:       cfg.AWS.EventSource,
	}, logger)
}

// ProvideRepositoryDependencies groups what every event sourced repository needs.
// Tracked stores append outside any transaction.
func ProvideRepositoryDependencies(
	storage *Storage,
	store ports.EventStore,
	manager *projections.Manager,
	publisher ports.EventPublisher,
	logger *zap.Logger,
) eventsourced.Dependencies {
	deps := eventsourced.Dependencies{
		Store:       store,
		Tx:          storage.Tx,
		Projections: manager,
		Publisher:   publisher,
		Logger:      logger,
	}
	if storage.Tracker != nil {
		deps.Tx = nil
		deps.Tracker = storage.Tracker
	}
	return deps
}

// ProvideCommandHandlers creates every command handler
func ProvideCommandHandlers(deps eventsourced.Dependencies, logger *zap.Logger) *handlers.Handlers {
	accounts := eventsourced.NewAccountRepository(deps)
	ledgers := eventsourced.NewUnitLedgerAccountRepository(deps)
	condominiums := eventsourced.NewCondominiumRepository(deps)
	units := eventsourced.NewUnitRepository(deps)
	owners := eventsourced.NewOwnerRepository(deps)
	expenses := eventsourced.NewExpenseRepository(deps)

	return &handlers.Handlers{
		Accounts:     handlers.NewAccountHandler(accounts, logger),
		UnitLedgers:  handlers.NewUnitLedgerHandler(ledgers, units, logger),
		Condominiums: handlers.NewCondominiumHandler(condominiums, logger),
		Units:        handlers.NewUnitHandler(units, condominiums, owners, logger),
		Owners:       handlers.NewOwnerHandler(owners, logger),
		Expenses:     handlers.NewExpenseHandler(expenses, condominiums, logger),
	}
}

// ProvideLocker serialises commands per aggregate. The DynamoDB lock is
// shared between processes; the in-memory one only within this process.
func ProvideLocker(cfg *config.Config, client *awsdynamodb.Client, logger *zap.Logger) ports.AggregateLocker {
	if cfg.Store.Driver != config.DriverDynamoDB {
		return memory.NewLocker()
	}

	owner := cfg.App.InstanceID
	if owner == "" {
		hostname, err := os.Hostname()
		if err != nil {
			hostname = "unknown"
		}
		owner = fmt.Sprintf("%s-%d", hostname, os.Getpid())
	}
	return dynamodb.NewAggregateLock(client, cfg.AWS.EventsTable, owner, dynamodb.LockOptions{
		Lease: cfg.Ledger.LockLease,
	}, logger)
}

// ProvideCommandBus creates a command bus with registered handlers.
// Conflicts are retried outside the lock so a retry re-acquires it.
func ProvideCommandBus(
	h *handlers.Handlers,
	locker ports.AggregateLocker,
	recorder observability.CommandRecorder,
	metrics *observability.Collector,
	tracer *observability.Tracer,
	cfg *config.Config,
	logger *zap.Logger,
) (*bus.CommandBus, error) {
	commandBus := bus.NewCommandBus(
		bus.LoggingMiddleware(logger),
		bus.MetricsMiddleware(recorder),
		bus.TracingMiddleware(tracer),
		bus.ValidationMiddleware(),
		bus.RetryOnConflictMiddleware(cfg.Ledger.MaxConflictRetries, cfg.Ledger.ConflictRetryDelay, metrics.RecordConflict),
		bus.LockingMiddleware(locker),
	)
	if err := h.Register(commandBus); err != nil {
		return nil, err
	}
	return commandBus, nil
}

// ProvideQueryCache creates the query result cache
func ProvideQueryCache() (*cache.InMemoryCache, func()) {
	c := cache.NewInMemoryCache(time.Minute)
	return c, c.Close
}

// ProvideQueryBus creates a query bus with registered handlers
func ProvideQueryBus(
	storage *Storage,
	queryCache *cache.InMemoryCache,
	metrics *observability.Collector,
	cfg *config.Config,
	logger *zap.Logger,
) (*querybus.QueryBus, error) {
	middlewares := []querybus.Middleware{
		querybus.MetricsMiddleware(metrics),
		querybus.LoggingMiddleware(logger),
	}
	if cfg.Ledger.QueryCacheTTL > 0 {
		middlewares = append(middlewares, querybus.CachingMiddleware(queryCache, cfg.Ledger.QueryCacheTTL, logger))
	}

	queryBus := querybus.NewQueryBus(middlewares...)
	if err := queryhandlers.NewReadModelHandler(storage.ReadModels, logger).Register(queryBus); err != nil {
		return nil, err
	}
	return queryBus, nil
}

// ProvideUnitOnboarding creates the unit onboarding saga
func ProvideUnitOnboarding(commandBus *bus.CommandBus, logger *zap.Logger) *sagas.UnitOnboarding {
	return sagas.NewUnitOnboarding(commandBus, logger)
}

// ProvideRecoveryProcessor creates the projection recovery processor; nil
// unless the event store tracks projection status
func ProvideRecoveryProcessor(
	storage *Storage,
	manager *projections.Manager,
	metrics *observability.Collector,
	cfg *config.Config,
	logger *zap.Logger,
) *dynamodb.RecoveryProcessor {
	if storage.Unprojected == nil {
		return nil
	}
	return dynamodb.NewRecoveryProcessor(storage.Unprojected, manager, metrics, logger, dynamodb.RecoveryOptions{
		BatchSize:   cfg.Ledger.RecoveryBatchSize,
		Interval:    cfg.Ledger.RecoveryInterval,
		MaxAttempts: cfg.Ledger.RecoveryMaxAttempts,
		Grace:       cfg.Ledger.RecoveryGrace,
	})
}
