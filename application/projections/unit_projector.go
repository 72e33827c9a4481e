package projections

import (
	"context"

	"github.com/luisriego/MatisseAPI-sub001/application/ports"
	"github.com/luisriego/MatisseAPI-sub001/domain/events"
)

// UnitProjector maintains the units table
type UnitProjector struct {
	baseProjector
}

// NewUnitProjector creates a UnitProjector
func NewUnitProjector(store ports.ReadModelStore) *UnitProjector {
	return &UnitProjector{newBaseProjector(ports.TableUnits, store,
		events.EventUnitCreated,
		events.EventUnitOwnerAssigned,
		events.EventUnitOwnerRemoved,
	)}
}

// Project upserts the unit row
func (p *UnitProjector) Project(ctx context.Context, env events.Envelope) error {
	if e, ok := env.Event.(events.UnitCreated); ok {
		return p.store.SaveUnit(ctx, ports.UnitView{
			ID:            e.AggregateID(),
			CondominiumID: e.CondominiumID.String(),
			Identifier:    e.Identifier,
			Version:       env.Version,
			UpdatedAt:     e.OccurredOn(),
		})
	}

	row, err := p.store.GetUnit(ctx, env.AggregateID())
	if err != nil {
		return err
	}
	if row.Version >= env.Version {
		return nil
	}

	switch e := env.Event.(type) {
	case events.UnitOwnerAssigned:
		row.OwnerID = e.OwnerID.String()
	case events.UnitOwnerRemoved:
		row.OwnerID = ""
	default:
		return unexpectedEvent(p.name, env)
	}

	row.Version = env.Version
	row.UpdatedAt = env.Event.OccurredOn()
	return p.store.SaveUnit(ctx, row)
}
