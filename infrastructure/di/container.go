package di

import (
	"go.uber.org/zap"

	"github.com/luisriego/MatisseAPI-sub001/application/commands/bus"
	"github.com/luisriego/MatisseAPI-sub001/application/ports"
	querybus "github.com/luisriego/MatisseAPI-sub001/application/queries/bus"
	"github.com/luisriego/MatisseAPI-sub001/application/projections"
	"github.com/luisriego/MatisseAPI-sub001/application/sagas"
	"github.com/luisriego/MatisseAPI-sub001/infrastructure/config"
	"github.com/luisriego/MatisseAPI-sub001/infrastructure/persistence/dynamodb"
	"github.com/luisriego/MatisseAPI-sub001/pkg/observability"
)

// Container holds all application dependencies.
// Recovery is nil unless the event store tracks projection status.
type Container struct {
	Config      *config.Config
	Logger      *zap.Logger
	Storage     *Storage
	EventStore  ports.EventStore
	Projections *projections.Manager
	CommandBus  *bus.CommandBus
	QueryBus    *querybus.QueryBus
	Onboarding  *sagas.UnitOnboarding
	Recovery    *dynamodb.RecoveryProcessor
	Metrics     *observability.Collector
	Tracer      *observability.Tracer
}
