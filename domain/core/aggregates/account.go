package aggregates

import (
	"fmt"

	"github.com/luisriego/MatisseAPI-sub001/domain/core/valueobjects"
	"github.com/luisriego/MatisseAPI-sub001/domain/events"
	pkgerrors "github.com/luisriego/MatisseAPI-sub001/pkg/errors"
)

// InsufficientFundsMessage is the caller-facing message of a rejected withdrawal
const InsufficientFundsMessage = "Insufficient funds."

// Account is the balance aggregate that refuses to go below zero
type Account struct {
	AggregateRoot
	accountID valueobjects.AccountID
	balance   valueobjects.Money
}

// CreateNewAccount opens an account with a non-negative initial balance
func CreateNewAccount(id valueobjects.AccountID, initialBalance valueobjects.Money) (*Account, error) {
	if id.IsZero() {
		return nil, pkgerrors.NewInvalidArgumentError("account ID is required")
	}
	if initialBalance.IsNegative() {
		return nil, pkgerrors.NewInvalidArgumentError(
			fmt.Sprintf("initial balance cannot be negative, got %s", initialBalance))
	}

	a := &Account{}
	if err := a.raise(events.NewAccountCreated(id, initialBalance)); err != nil {
		return nil, err
	}
	return a, nil
}

// ReconstituteAccount rebuilds an account from its stored events
func ReconstituteAccount(history ...events.DomainEvent) (*Account, error) {
	a := &Account{}
	if err := replay(&a.AggregateRoot, events.AggregateTypeAccount, history, a.apply); err != nil {
		return nil, err
	}
	return a, nil
}

// ID returns the typed account ID
func (a *Account) ID() valueobjects.AccountID {
	return a.accountID
}

// Balance returns the current balance
func (a *Account) Balance() valueobjects.Money {
	return a.balance
}

// Deposit adds money to the account
func (a *Account) Deposit(amount valueobjects.Money) error {
	if err := a.checkCurrency(amount); err != nil {
		return err
	}
	if err := requirePositive("deposit amount", amount); err != nil {
		return err
	}
	return a.raise(events.NewMoneyDeposited(a.accountID, amount))
}

// Withdraw takes money from the account. When the balance does not cover the
// amount a WithdrawalFailedDueToInsufficientFunds event is recorded, the balance
// is left as is and a domain rule violation is returned.
func (a *Account) Withdraw(amount valueobjects.Money) error {
	if err := a.checkCurrency(amount); err != nil {
		return err
	}
	if err := requirePositive("withdrawal amount", amount); err != nil {
		return err
	}

	exceeds, err := amount.GreaterThan(a.balance)
	if err != nil {
		return err
	}
	if exceeds {
		if err := a.raise(events.NewWithdrawalFailedDueToInsufficientFunds(a.accountID, amount, a.balance)); err != nil {
			return err
		}
		return pkgerrors.NewDomainRuleViolationError(InsufficientFundsMessage).
			WithCode("INSUFFICIENT_FUNDS").
			WithDetails(map[string]interface{}{
				"attemptedAmount": amount.Amount(),
				"currentBalance":  a.balance.Amount(),
			})
	}

	return a.raise(events.NewMoneyWithdrawn(a.accountID, amount))
}

func (a *Account) checkCurrency(amount valueobjects.Money) error {
	if !a.balance.SameCurrency(amount) {
		return pkgerrors.NewInvalidArgumentError("amount currency does not match the account currency").
			WithCause(pkgerrors.NewCurrencyMismatchError(a.balance.Currency().String(), amount.Currency().String()))
	}
	return nil
}

func (a *Account) raise(e events.AccountEvent) error {
	if err := a.apply(e); err != nil {
		return err
	}
	a.record(e)
	return nil
}

func (a *Account) apply(e events.AccountEvent) error {
	switch ev := e.(type) {
	case events.AccountCreated:
		if err := a.initialize(ev); err != nil {
			return err
		}
		id, err := valueobjects.AccountIDFromString(ev.AggregateID())
		if err != nil {
			return pkgerrors.NewDataIntegrityError("account.created carries an invalid account ID").WithCause(err)
		}
		a.accountID = id
		a.balance = ev.InitialBalance
	case events.MoneyDeposited:
		if err := a.requireCreated(ev); err != nil {
			return err
		}
		balance, err := a.balance.Add(ev.Amount)
		if pkgerrors.IsCurrencyMismatch(err) {
			return pkgerrors.NewDataIntegrityError("stored deposit does not match the account currency").WithCause(err)
		}
		if err != nil {
			return err
		}
		a.balance = balance
	case events.MoneyWithdrawn:
		if err := a.requireCreated(ev); err != nil {
			return err
		}
		balance, err := a.balance.Subtract(ev.Amount)
		if pkgerrors.IsCurrencyMismatch(err) {
			return pkgerrors.NewDataIntegrityError("stored withdrawal does not match the account currency").WithCause(err)
		}
		if err != nil {
			return err
		}
		a.balance = balance
	case events.WithdrawalFailedDueToInsufficientFunds:
		return a.requireCreated(ev)
	default:
		return unrecognizedEvent(events.AggregateTypeAccount, e)
	}
	return nil
}
