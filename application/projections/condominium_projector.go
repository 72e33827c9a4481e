package projections

import (
	"context"

	"github.com/luisriego/MatisseAPI-sub001/application/ports"
	"github.com/luisriego/MatisseAPI-sub001/domain/events"
)

// CondominiumProjector maintains the condominiums table
type CondominiumProjector struct {
	baseProjector
}

// NewCondominiumProjector creates a CondominiumProjector
func NewCondominiumProjector(store ports.ReadModelStore) *CondominiumProjector {
	return &CondominiumProjector{newBaseProjector(ports.TableCondominiums, store,
		events.EventCondominiumRegistered,
		events.EventCondominiumRenamed,
		events.EventCondominiumAddressChanged,
	)}
}

// Project upserts the condominium row
func (p *CondominiumProjector) Project(ctx context.Context, env events.Envelope) error {
	if e, ok := env.Event.(events.CondominiumRegistered); ok {
		return p.store.SaveCondominium(ctx, ports.CondominiumView{
			ID:         e.AggregateID(),
			Name:       e.Name,
			Street:     e.Address.Street(),
			City:       e.Address.City(),
			PostalCode: e.Address.PostalCode(),
			Country:    e.Address.Country(),
			Version:    env.Version,
			UpdatedAt:  e.OccurredOn(),
		})
	}

	row, err := p.store.GetCondominium(ctx, env.AggregateID())
	if err != nil {
		return err
	}
	if row.Version >= env.Version {
		return nil
	}

	switch e := env.Event.(type) {
	case events.CondominiumRenamed:
		row.Name = e.Name
	case events.CondominiumAddressChanged:
		row.Street = e.Address.Street()
		row.City = e.Address.City()
		row.PostalCode = e.Address.PostalCode()
		row.Country = e.Address.Country()
	default:
		return unexpectedEvent(p.name, env)
	}

	row.Version = env.Version
	row.UpdatedAt = env.Event.OccurredOn()
	return p.store.SaveCondominium(ctx, row)
}
