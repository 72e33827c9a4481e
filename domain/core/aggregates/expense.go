package aggregates

import (
	"strings"
	"time"

	"github.com/luisriego/MatisseAPI-sub001/domain/core/valueobjects"
	"github.com/luisriego/MatisseAPI-sub001/domain/events"
	pkgerrors "github.com/luisriego/MatisseAPI-sub001/pkg/errors"
)

// Expense is a cost booked against a condominium
type Expense struct {
	AggregateRoot
	expenseID     valueobjects.ExpenseID
	condominiumID valueobjects.CondominiumID
	categoryID    valueobjects.CategoryID
	description   string
	amount        valueobjects.Money
	expenseDate   time.Time
}

// RecordExpense books a new expense
func RecordExpense(
	id valueobjects.ExpenseID,
	condominiumID valueobjects.CondominiumID,
	categoryID valueobjects.CategoryID,
	description string,
	amount valueobjects.Money,
	expenseDate time.Time,
) (*Expense, error) {
	if id.IsZero() {
		return nil, pkgerrors.NewInvalidArgumentError("expense ID is required")
	}
	if condominiumID.IsZero() {
		return nil, pkgerrors.NewInvalidArgumentError("condominium ID is required")
	}
	if categoryID.IsZero() {
		return nil, pkgerrors.NewInvalidArgumentError("category ID is required")
	}
	description = strings.TrimSpace(description)
	if description == "" {
		return nil, pkgerrors.NewInvalidArgumentError("expense description cannot be empty")
	}
	if err := requirePositive("expense amount", amount); err != nil {
		return nil, err
	}
	if expenseDate.IsZero() {
		return nil, pkgerrors.NewInvalidArgumentError("expense date is required")
	}

	e := &Expense{}
	if err := e.raise(events.NewExpenseRecorded(id, condominiumID, categoryID, description, amount, expenseDate)); err != nil {
		return nil, err
	}
	return e, nil
}

// ReconstituteExpense rebuilds an expense from its stored events
func ReconstituteExpense(history ...events.DomainEvent) (*Expense, error) {
	e := &Expense{}
	if err := replay(&e.AggregateRoot, events.AggregateTypeExpense, history, e.apply); err != nil {
		return nil, err
	}
	return e, nil
}

func (e *Expense) ID() valueobjects.ExpenseID                 { return e.expenseID }
func (e *Expense) CondominiumID() valueobjects.CondominiumID { return e.condominiumID }
func (e *Expense) CategoryID() valueobjects.CategoryID       { return e.categoryID }
func (e *Expense) Description() string                       { return e.description }
func (e *Expense) Amount() valueobjects.Money                { return e.amount }
func (e *Expense) ExpenseDate() time.Time                    { return e.expenseDate }

func (e *Expense) raise(ev events.ExpenseEvent) error {
	if err := e.apply(ev); err != nil {
		return err
	}
	e.record(ev)
	return nil
}

func (e *Expense) apply(ev events.ExpenseEvent) error {
	switch recorded := ev.(type) {
	case events.ExpenseRecorded:
		if err := e.initialize(recorded); err != nil {
			return err
		}
		id, err := valueobjects.ExpenseIDFromString(recorded.AggregateID())
		if err != nil {
			return pkgerrors.NewDataIntegrityError("expense.recorded carries an invalid expense ID").WithCause(err)
		}
		e.expenseID = id
		e.condominiumID = recorded.CondominiumID
		e.categoryID = recorded.CategoryID
		e.description = recorded.Description
		e.amount = recorded.Amount
		e.expenseDate = recorded.ExpenseDate
	default:
		return unrecognizedEvent(events.AggregateTypeExpense, ev)
	}
	return nil
}
