package events

import (
	"time"

	"github.com/luisriego/MatisseAPI-sub001/domain/core/valueobjects"
)

const (
	EventUnitLedgerCreated         = "unit_ledger.created"
	EventUnitLedgerFeeApplied      = "unit_ledger.fee_applied"
	EventUnitLedgerPaymentReceived = "unit_ledger.payment_received"
)

// UnitLedgerEvent is implemented only by the events a UnitLedgerAccount can apply
type UnitLedgerEvent interface {
	DomainEvent
	isUnitLedgerEvent()
}

// UnitLedgerAccountCreated is raised when a unit ledger is opened
type UnitLedgerAccountCreated struct {
	BaseEvent
	UnitID         valueobjects.UnitID
	InitialBalance valueobjects.Money
}

// NewUnitLedgerAccountCreated creates a UnitLedgerAccountCreated event
func NewUnitLedgerAccountCreated(unitID valueobjects.UnitID, initialBalance valueobjects.Money) UnitLedgerAccountCreated {
	return UnitLedgerAccountCreated{
		BaseEvent:      NewBaseEvent(unitID.String()),
		UnitID:         unitID,
		InitialBalance: initialBalance,
	}
}

func (UnitLedgerAccountCreated) EventName() string { return EventUnitLedgerCreated }
func (UnitLedgerAccountCreated) isUnitLedgerEvent() {}

func (e UnitLedgerAccountCreated) ToPrimitives() Primitives {
	p := Primitives{"unit_id": e.UnitID.String()}
	p.putMoney("initial_balance", e.InitialBalance)
	return p
}

// UnitLedgerAccountCreatedFromPrimitives rebuilds a UnitLedgerAccountCreated event
func UnitLedgerAccountCreatedFromPrimitives(aggregateID string, payload Primitives, eventID string, occurredOn time.Time) (UnitLedgerAccountCreated, error) {
	unitID, err := parseID(payload, "unit_id", valueobjects.UnitIDFromString)
	if err != nil {
		return UnitLedgerAccountCreated{}, invalidPayload(EventUnitLedgerCreated, err)
	}
	balance, err := payload.GetMoney("initial_balance")
	if err != nil {
		return UnitLedgerAccountCreated{}, invalidPayload(EventUnitLedgerCreated, err)
	}
	return UnitLedgerAccountCreated{
		BaseEvent:      RestoreBaseEvent(aggregateID, eventID, occurredOn),
		UnitID:         unitID,
		InitialBalance: balance,
	}, nil
}

// FeeAppliedToUnitLedger is raised when a fee is charged to a unit.
// Fees increase what the unit owes.
type FeeAppliedToUnitLedger struct {
	BaseEvent
	FeeItemID   valueobjects.FeeItemID
	Amount      valueobjects.Money
	DueDate     time.Time
	Description string
}

// NewFeeAppliedToUnitLedger creates a FeeAppliedToUnitLedger event
func NewFeeAppliedToUnitLedger(unitID valueobjects.UnitID, feeItemID valueobjects.FeeItemID, amount valueobjects.Money, dueDate time.Time, description string) FeeAppliedToUnitLedger {
	return FeeAppliedToUnitLedger{
		BaseEvent:   NewBaseEvent(unitID.String()),
		FeeItemID:   feeItemID,
		Amount:      amount,
		DueDate:     dueDate.UTC(),
		Description: description,
	}
}

func (FeeAppliedToUnitLedger) EventName() string { return EventUnitLedgerFeeApplied }
func (FeeAppliedToUnitLedger) isUnitLedgerEvent() {}

func (e FeeAppliedToUnitLedger) ToPrimitives() Primitives {
	p := Primitives{
		"fee_item_id": e.FeeItemID.String(),
		"description": e.Description,
	}
	p.putMoney("amount", e.Amount)
	p.putTime("due_date", e.DueDate)
	return p
}

// FeeAppliedToUnitLedgerFromPrimitives rebuilds a FeeAppliedToUnitLedger event
func FeeAppliedToUnitLedgerFromPrimitives(aggregateID string, payload Primitives, eventID string, occurredOn time.Time) (FeeAppliedToUnitLedger, error) {
	feeItemID, err := parseID(payload, "fee_item_id", valueobjects.FeeItemIDFromString)
	if err != nil {
		return FeeAppliedToUnitLedger{}, invalidPayload(EventUnitLedgerFeeApplied, err)
	}
	amount, err := payload.GetMoney("amount")
	if err != nil {
		return FeeAppliedToUnitLedger{}, invalidPayload(EventUnitLedgerFeeApplied, err)
	}
	dueDate, err := payload.GetTime("due_date")
	if err != nil {
		return FeeAppliedToUnitLedger{}, invalidPayload(EventUnitLedgerFeeApplied, err)
	}
	description, err := payload.GetOptionalString("description")
	if err != nil {
		return FeeAppliedToUnitLedger{}, invalidPayload(EventUnitLedgerFeeApplied, err)
	}
	return FeeAppliedToUnitLedger{
		BaseEvent:   RestoreBaseEvent(aggregateID, eventID, occurredOn),
		FeeItemID:   feeItemID,
		Amount:      amount,
		DueDate:     dueDate,
		Description: description,
	}, nil
}

// PaymentReceivedOnUnitLedger is raised when a unit pays part of its balance
type PaymentReceivedOnUnitLedger struct {
	BaseEvent
	PaymentID     valueobjects.PaymentID
	Amount        valueobjects.Money
	PaymentDate   time.Time
	PaymentMethod string
}

// NewPaymentReceivedOnUnitLedger creates a PaymentReceivedOnUnitLedger event
func NewPaymentReceivedOnUnitLedger(unitID valueobjects.UnitID, paymentID valueobjects.PaymentID, amount valueobjects.Money, paymentDate time.Time, method string) PaymentReceivedOnUnitLedger {
	return PaymentReceivedOnUnitLedger{
		BaseEvent:     NewBaseEvent(unitID.String()),
		PaymentID:     paymentID,
		Amount:        amount,
		PaymentDate:   paymentDate.UTC(),
		PaymentMethod: method,
	}
}

func (PaymentReceivedOnUnitLedger) EventName() string { return EventUnitLedgerPaymentReceived }
func (PaymentReceivedOnUnitLedger) isUnitLedgerEvent() {}

func (e PaymentReceivedOnUnitLedger) ToPrimitives() Primitives {
	p := Primitives{
		"payment_id":     e.PaymentID.String(),
		"payment_method": e.PaymentMethod,
	}
	p.putMoney("amount", e.Amount)
	p.putTime("payment_date", e.PaymentDate)
	return p
}

// PaymentReceivedOnUnitLedgerFromPrimitives rebuilds a PaymentReceivedOnUnitLedger event
func PaymentReceivedOnUnitLedgerFromPrimitives(aggregateID string, payload Primitives, eventID string, occurredOn time.Time) (PaymentReceivedOnUnitLedger, error) {
	paymentID, err := parseID(payload, "payment_id", valueobjects.PaymentIDFromString)
	if err != nil {
		return PaymentReceivedOnUnitLedger{}, invalidPayload(EventUnitLedgerPaymentReceived, err)
	}
	amount, err := payload.GetMoney("amount")
	if err != nil {
		return PaymentReceivedOnUnitLedger{}, invalidPayload(EventUnitLedgerPaymentReceived, err)
	}
	paymentDate, err := payload.GetTime("payment_date")
	if err != nil {
		return PaymentReceivedOnUnitLedger{}, invalidPayload(EventUnitLedgerPaymentReceived, err)
	}
	method, err := payload.GetOptionalString("payment_method")
	if err != nil {
		return PaymentReceivedOnUnitLedger{}, invalidPayload(EventUnitLedgerPaymentReceived, err)
	}
	return PaymentReceivedOnUnitLedger{
		BaseEvent:     RestoreBaseEvent(aggregateID, eventID, occurredOn),
		PaymentID:     paymentID,
		Amount:        amount,
		PaymentDate:   paymentDate,
		PaymentMethod: method,
	}, nil
}
