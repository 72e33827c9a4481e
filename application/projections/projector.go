package projections

import (
	"context"
	"fmt"

	"github.com/luisriego/MatisseAPI-sub001/application/ports"
	"github.com/luisriego/MatisseAPI-sub001/domain/events"
)

// baseProjector provides the name, routing and reset shared by all projectors
type baseProjector struct {
	name       string
	table      string
	eventTypes map[string]bool
	store      ports.ReadModelStore
}

func newBaseProjector(table string, store ports.ReadModelStore, eventTypes ...string) baseProjector {
	typeMap := make(map[string]bool, len(eventTypes))
	for _, et := range eventTypes {
		typeMap[et] = true
	}
	return baseProjector{
		name:       table,
		table:      table,
		eventTypes: typeMap,
		store:      store,
	}
}

// Name returns the projector name, which is its table name
func (p *baseProjector) Name() string {
	return p.name
}

// Handles reports whether the projector reacts to eventName
func (p *baseProjector) Handles(eventName string) bool {
	return p.eventTypes[eventName]
}

// Reset empties the projector's table
func (p *baseProjector) Reset(ctx context.Context) error {
	return p.store.Reset(ctx, p.table)
}

func unexpectedEvent(projector string, env events.Envelope) error {
	return fmt.Errorf("projector %s cannot handle %T as %s", projector, env.Event, env.EventName())
}

// Projectors builds the full set of projectors over one read model store
func Projectors(store ports.ReadModelStore) []ports.Projector {
	return []ports.Projector{
		NewCondominiumProjector(store),
		NewUnitProjector(store),
		NewUnitLedgerAccountProjector(store),
		NewExpenseProjector(store),
		NewFeesIssuedProjector(store),
		NewPaymentsReceivedProjector(store),
		NewOwnerProjector(store),
	}
}
