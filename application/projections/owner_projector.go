package projections

import (
	"context"

	"github.com/luisriego/MatisseAPI-sub001/application/ports"
	"github.com/luisriego/MatisseAPI-sub001/domain/events"
)

// OwnerProjector maintains the owners table
type OwnerProjector struct {
	baseProjector
}

// NewOwnerProjector creates an OwnerProjector
func NewOwnerProjector(store ports.ReadModelStore) *OwnerProjector {
	return &OwnerProjector{newBaseProjector(ports.TableOwners, store,
		events.EventOwnerCreated,
		events.EventOwnerContactInfoUpdated,
	)}
}

// Project upserts the owner row
func (p *OwnerProjector) Project(ctx context.Context, env events.Envelope) error {
	switch e := env.Event.(type) {
	case events.OwnerCreated:
		return p.store.SaveOwner(ctx, ports.OwnerView{
			ID:        e.AggregateID(),
			Name:      e.Name,
			Email:     e.Email.String(),
			Phone:     e.Phone.String(),
			Version:   env.Version,
			UpdatedAt: e.OccurredOn(),
		})
	case events.OwnerContactInfoUpdated:
		row, err := p.store.GetOwner(ctx, env.AggregateID())
		if err != nil {
			return err
		}
		if row.Version >= env.Version {
			return nil
		}
		row.Email = e.Email.String()
		row.Phone = e.Phone.String()
		row.Version = env.Version
		row.UpdatedAt = e.OccurredOn()
		return p.store.SaveOwner(ctx, row)
	default:
		return unexpectedEvent(p.name, env)
	}
}
