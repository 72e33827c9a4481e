package events

import (
	"time"

	"github.com/luisriego/MatisseAPI-sub001/domain/core/valueobjects"
)

const EventExpenseRecorded = "expense.recorded"

// ExpenseEvent is implemented only by the events an Expense can apply
type ExpenseEvent interface {
	DomainEvent
	isExpenseEvent()
}

// ExpenseRecorded is raised when a condominium expense is booked
type ExpenseRecorded struct {
	BaseEvent
	CondominiumID valueobjects.CondominiumID
	CategoryID    valueobjects.CategoryID
	Description   string
	Amount        valueobjects.Money
	ExpenseDate   time.Time
}

// NewExpenseRecorded creates an ExpenseRecorded event
func NewExpenseRecorded(id valueobjects.ExpenseID, condominiumID valueobjects.CondominiumID, categoryID valueobjects.CategoryID, description string, amount valueobjects.Money, expenseDate time.Time) ExpenseRecorded {
	return ExpenseRecorded{
		BaseEvent:     NewBaseEvent(id.String()),
		CondominiumID: condominiumID,
		CategoryID:    categoryID,
		Description:   description,
		Amount:        amount,
		ExpenseDate:   expenseDate.UTC(),
	}
}

func (ExpenseRecorded) EventName() string { return EventExpenseRecorded }
func (ExpenseRecorded) isExpenseEvent()    {}

func (e ExpenseRecorded) ToPrimitives() Primitives {
	p := Primitives{
		"condominium_id": e.CondominiumID.String(),
		"category_id":    e.CategoryID.String(),
		"description":    e.Description,
	}
	p.putMoney("amount", e.Amount)
	p.putTime("expense_date", e.ExpenseDate)
	return p
}

// ExpenseRecordedFromPrimitives rebuilds an ExpenseRecorded event
func ExpenseRecordedFromPrimitives(aggregateID string, payload Primitives, eventID string, occurredOn time.Time) (ExpenseRecorded, error) {
	condominiumID, err := parseID(payload, "condominium_id", valueobjects.CondominiumIDFromString)
	if err != nil {
		return ExpenseRecorded{}, invalidPayload(EventExpenseRecorded, err)
	}
	categoryID, err := parseID(payload, "category_id", valueobjects.CategoryIDFromString)
	if err != nil {
		return ExpenseRecorded{}, invalidPayload(EventExpenseRecorded, err)
	}
	description, err := payload.GetString("description")
	if err != nil {
		return ExpenseRecorded{}, invalidPayload(EventExpenseRecorded, err)
	}
	amount, err := payload.GetMoney("amount")
	if err != nil {
		return ExpenseRecorded{}, invalidPayload(EventExpenseRecorded, err)
	}
	expenseDate, err := payload.GetTime("expense_date")
	if err != nil {
		return ExpenseRecorded{}, invalidPayload(EventExpenseRecorded, err)
	}
	return ExpenseRecorded{
		BaseEvent:     RestoreBaseEvent(aggregateID, eventID, occurredOn),
		CondominiumID: condominiumID,
		CategoryID:    categoryID,
		Description:   description,
		Amount:        amount,
		ExpenseDate:   expenseDate,
	}, nil
}
