package projections

import (
	"context"
	"fmt"

	"github.com/luisriego/MatisseAPI-sub001/application/ports"
	"github.com/luisriego/MatisseAPI-sub001/domain/core/valueobjects"
	"github.com/luisriego/MatisseAPI-sub001/domain/events"
)

// UnitLedgerAccountProjector maintains the running balance of every unit
type UnitLedgerAccountProjector struct {
	baseProjector
}

// NewUnitLedgerAccountProjector creates a UnitLedgerAccountProjector
func NewUnitLedgerAccountProjector(store ports.ReadModelStore) *UnitLedgerAccountProjector {
	return &UnitLedgerAccountProjector{newBaseProjector(ports.TableUnitLedgerAccounts, store,
		events.EventUnitLedgerCreated,
		events.EventUnitLedgerFeeApplied,
		events.EventUnitLedgerPaymentReceived,
	)}
}

// Project updates the balance. An envelope whose version is not newer than
// the row was already applied and is skipped.
func (p *UnitLedgerAccountProjector) Project(ctx context.Context, env events.Envelope) error {
	if e, ok := env.Event.(events.UnitLedgerAccountCreated); ok {
		return p.store.SaveUnitLedgerAccount(ctx, ports.UnitLedgerAccountView{
			UnitID:        e.AggregateID(),
			BalanceAmount: e.InitialBalance.Amount(),
			Currency:      e.InitialBalance.Currency().String(),
			Version:       env.Version,
			UpdatedAt:     e.OccurredOn(),
		})
	}

	row, err := p.store.GetUnitLedgerAccount(ctx, env.AggregateID())
	if err != nil {
		return err
	}
	if row.Version >= env.Version {
		return nil
	}

	balance, err := valueobjects.NewMoneyFromPrimitives(row.BalanceAmount, row.Currency)
	if err != nil {
		return fmt.Errorf("stored balance of unit %s is invalid: %w", row.UnitID, err)
	}

	switch e := env.Event.(type) {
	case events.FeeAppliedToUnitLedger:
		balance, err = balance.Add(e.Amount)
	case events.PaymentReceivedOnUnitLedger:
		balance, err = balance.Subtract(e.Amount)
	default:
		return unexpectedEvent(p.name, env)
	}
	if err != nil {
		return err
	}

	row.BalanceAmount = balance.Amount()
	row.Version = env.Version
	row.UpdatedAt = env.Event.OccurredOn()
	return p.store.SaveUnitLedgerAccount(ctx, row)
}
