package projections

import (
	"context"

	"github.com/luisriego/MatisseAPI-sub001/application/ports"
	"github.com/luisriego/MatisseAPI-sub001/domain/events"
)

// ExpenseProjector maintains the expenses table
type ExpenseProjector struct {
	baseProjector
}

// NewExpenseProjector creates an ExpenseProjector
func NewExpenseProjector(store ports.ReadModelStore) *ExpenseProjector {
	return &ExpenseProjector{newBaseProjector(ports.TableExpenses, store, events.EventExpenseRecorded)}
}

// Project inserts the expense row once
func (p *ExpenseProjector) Project(ctx context.Context, env events.Envelope) error {
	e, ok := env.Event.(events.ExpenseRecorded)
	if !ok {
		return unexpectedEvent(p.name, env)
	}

	return p.store.InsertExpense(ctx, ports.ExpenseView{
		ID:            e.AggregateID(),
		EventID:       e.EventID(),
		CondominiumID: e.CondominiumID.String(),
		CategoryID:    e.CategoryID.String(),
		Description:   e.Description,
		Amount:        e.Amount.Amount(),
		Currency:      e.Amount.Currency().String(),
		ExpenseDate:   e.ExpenseDate,
		RecordedAt:    e.OccurredOn(),
	})
}
