package projections

import (
	"context"

	"github.com/luisriego/MatisseAPI-sub001/application/ports"
	"github.com/luisriego/MatisseAPI-sub001/domain/events"
)

// FeesIssuedProjector keeps one row per fee applied to a unit ledger
type FeesIssuedProjector struct {
	baseProjector
}

// NewFeesIssuedProjector creates a FeesIssuedProjector
func NewFeesIssuedProjector(store ports.ReadModelStore) *FeesIssuedProjector {
	return &FeesIssuedProjector{newBaseProjector(ports.TableFeesIssued, store, events.EventUnitLedgerFeeApplied)}
}

// Project inserts the fee row keyed by event id
func (p *FeesIssuedProjector) Project(ctx context.Context, env events.Envelope) error {
	e, ok := env.Event.(events.FeeAppliedToUnitLedger)
	if !ok {
		return unexpectedEvent(p.name, env)
	}

	return p.store.InsertFeeIssued(ctx, ports.FeeIssuedView{
		EventID:     e.EventID(),
		FeeItemID:   e.FeeItemID.String(),
		UnitID:      e.AggregateID(),
		Amount:      e.Amount.Amount(),
		Currency:    e.Amount.Currency().String(),
		DueDate:     e.DueDate,
		Description: e.Description,
		IssuedAt:    e.OccurredOn(),
	})
}
