package projections

import (
	"context"

	"github.com/luisriego/MatisseAPI-sub001/application/ports"
	"github.com/luisriego/MatisseAPI-sub001/domain/events"
)

// PaymentsReceivedProjector keeps one row per payment received on a unit ledger
type PaymentsReceivedProjector struct {
	baseProjector
}

// NewPaymentsReceivedProjector creates a PaymentsReceivedProjector
func NewPaymentsReceivedProjector(store ports.ReadModelStore) *PaymentsReceivedProjector {
	return &PaymentsReceivedProjector{newBaseProjector(ports.TablePaymentsReceived, store, events.EventUnitLedgerPaymentReceived)}
}

// Project inserts the payment row keyed by event id
func (p *PaymentsReceivedProjector) Project(ctx context.Context, env events.Envelope) error {
	e, ok := env.Event.(events.PaymentReceivedOnUnitLedger)
	if !ok {
		return unexpectedEvent(p.name, env)
	}

	return p.store.InsertPaymentReceived(ctx, ports.PaymentReceivedView{
		EventID:       e.EventID(),
		PaymentID:     e.PaymentID.String(),
		UnitID:        e.AggregateID(),
		Amount:        e.Amount.Amount(),
		Currency:      e.Amount.Currency().String(),
		PaymentDate:   e.PaymentDate,
		PaymentMethod: e.PaymentMethod,
		ReceivedAt:    e.OccurredOn(),
	})
}
