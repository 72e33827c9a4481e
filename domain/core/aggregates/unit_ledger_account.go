package aggregates

import (
	"strings"
	"time"

	"github.com/luisriego/MatisseAPI-sub001/domain/core/valueobjects"
	"github.com/luisriego/MatisseAPI-sub001/domain/events"
	pkgerrors "github.com/luisriego/MatisseAPI-sub001/pkg/errors"
)

// UnitLedgerAccount tracks what a unit owes. Fees raise the balance and
// payments lower it; the balance may go negative to represent credit.
type UnitLedgerAccount struct {
	AggregateRoot
	unitID  valueobjects.UnitID
	balance valueobjects.Money
}

// CreateNewUnitLedgerAccount opens the ledger of a unit
func CreateNewUnitLedgerAccount(unitID valueobjects.UnitID, initialBalance valueobjects.Money) (*UnitLedgerAccount, error) {
	if unitID.IsZero() {
		return nil, pkgerrors.NewInvalidArgumentError("unit ID is required")
	}
	if initialBalance.Currency().IsZero() {
		return nil, pkgerrors.NewInvalidArgumentError("initial balance must have a currency")
	}

	l := &UnitLedgerAccount{}
	if err := l.raise(events.NewUnitLedgerAccountCreated(unitID, initialBalance)); err != nil {
		return nil, err
	}
	return l, nil
}

// ReconstituteUnitLedgerAccount rebuilds a unit ledger from its stored events
func ReconstituteUnitLedgerAccount(history ...events.DomainEvent) (*UnitLedgerAccount, error) {
	l := &UnitLedgerAccount{}
	if err := replay(&l.AggregateRoot, events.AggregateTypeUnitLedgerAccount, history, l.apply); err != nil {
		return nil, err
	}
	return l, nil
}

// UnitID returns the unit the ledger belongs to
func (l *UnitLedgerAccount) UnitID() valueobjects.UnitID {
	return l.unitID
}

// Balance returns the amount currently owed
func (l *UnitLedgerAccount) Balance() valueobjects.Money {
	return l.balance
}

// ApplyFee charges a fee to the unit
func (l *UnitLedgerAccount) ApplyFee(feeItemID valueobjects.FeeItemID, amount valueobjects.Money, dueDate time.Time, description string) error {
	if feeItemID.IsZero() {
		return pkgerrors.NewInvalidArgumentError("fee item ID is required")
	}
	if !l.balance.SameCurrency(amount) {
		return pkgerrors.NewCurrencyMismatchError(l.balance.Currency().String(), amount.Currency().String())
	}
	if err := requirePositive("fee amount", amount); err != nil {
		return err
	}
	if dueDate.IsZero() {
		return pkgerrors.NewInvalidArgumentError("fee due date is required")
	}
	return l.raise(events.NewFeeAppliedToUnitLedger(l.unitID, feeItemID, amount, dueDate, strings.TrimSpace(description)))
}

// ReceivePayment credits a payment made by the unit
func (l *UnitLedgerAccount) ReceivePayment(amount valueobjects.Money, paymentID valueobjects.PaymentID, paymentDate time.Time, paymentMethod string) error {
	if paymentID.IsZero() {
		return pkgerrors.NewInvalidArgumentError("payment ID is required")
	}
	if !l.balance.SameCurrency(amount) {
		return pkgerrors.NewCurrencyMismatchError(l.balance.Currency().String(), amount.Currency().String())
	}
	if err := requirePositive("payment amount", amount); err != nil {
		return err
	}
	if paymentDate.IsZero() {
		return pkgerrors.NewInvalidArgumentError("payment date is required")
	}
	return l.raise(events.NewPaymentReceivedOnUnitLedger(l.unitID, paymentID, amount, paymentDate, strings.TrimSpace(paymentMethod)))
}

func (l *UnitLedgerAccount) raise(e events.UnitLedgerEvent) error {
	if err := l.apply(e); err != nil {
		return err
	}
	l.record(e)
	return nil
}

func (l *UnitLedgerAccount) apply(e events.UnitLedgerEvent) error {
	switch ev := e.(type) {
	case events.UnitLedgerAccountCreated:
		if err := l.initialize(ev); err != nil {
			return err
		}
		if ev.UnitID.String() != ev.AggregateID() {
			return pkgerrors.NewDataIntegrityError("unit_ledger.created unit ID differs from its aggregate ID")
		}
		l.unitID = ev.UnitID
		l.balance = ev.InitialBalance
	case events.FeeAppliedToUnitLedger:
		if err := l.requireCreated(ev); err != nil {
			return err
		}
		balance, err := l.balance.Add(ev.Amount)
		if err != nil {
			return err
		}
		l.balance = balance
	case events.PaymentReceivedOnUnitLedger:
		if err := l.requireCreated(ev); err != nil {
			return err
		}
		balance, err := l.balance.Subtract(ev.Amount)
		if err != nil {
			return err
		}
		l.balance = balance
	default:
		return unrecognizedEvent(events.AggregateTypeUnitLedgerAccount, e)
	}
	return nil
}
