package events

import (
	"time"

	"github.com/luisriego/MatisseAPI-sub001/domain/core/valueobjects"
)

const (
	EventAccountCreated                           = "account.created"
	EventAccountMoneyDeposited                    = "account.money_deposited"
	EventAccountMoneyWithdrawn                    = "account.money_withdrawn"
	EventAccountWithdrawalFailedInsufficientFunds = "account.withdrawal_failed_insufficient_funds"
)

// AccountEvent is implemented only by the events an Account can apply
type AccountEvent interface {
	DomainEvent
	isAccountEvent()
}

// AccountCreated is raised when an account is opened
type AccountCreated struct {
	BaseEvent
	InitialBalance valueobjects.Money
}

// NewAccountCreated creates an AccountCreated event
func NewAccountCreated(accountID valueobjects.AccountID, initialBalance valueobjects.Money) AccountCreated {
	return AccountCreated{BaseEvent: NewBaseEvent(accountID.String()), InitialBalance: initialBalance}
}

func (AccountCreated) EventName() string { return EventAccountCreated }
func (AccountCreated) isAccountEvent()   {}

func (e AccountCreated) ToPrimitives() Primitives {
	p := Primitives{}
	p.putMoney("initial_balance", e.InitialBalance)
	return p
}

// AccountCreatedFromPrimitives rebuilds an AccountCreated event
func AccountCreatedFromPrimitives(aggregateID string, payload Primitives, eventID string, occurredOn time.Time) (AccountCreated, error) {
	balance, err := payload.GetMoney("initial_balance")
	if err != nil {
		return AccountCreated{}, invalidPayload(EventAccountCreated, err)
	}
	return AccountCreated{
		BaseEvent:      RestoreBaseEvent(aggregateID, eventID, occurredOn),
		InitialBalance: balance,
	}, nil
}

// MoneyDeposited is raised when money is added to an account
type MoneyDeposited struct {
	BaseEvent
	Amount valueobjects.Money
}

// NewMoneyDeposited creates a MoneyDeposited event
func NewMoneyDeposited(accountID valueobjects.AccountID, amount valueobjects.Money) MoneyDeposited {
	return MoneyDeposited{BaseEvent: NewBaseEvent(accountID.String()), Amount: amount}
}

func (MoneyDeposited) EventName() string { return EventAccountMoneyDeposited }
func (MoneyDeposited) isAccountEvent()   {}

func (e MoneyDeposited) ToPrimitives() Primitives {
	p := Primitives{}
	p.putMoney("amount", e.Amount)
	return p
}

// MoneyDepositedFromPrimitives rebuilds a MoneyDeposited event
func MoneyDepositedFromPrimitives(aggregateID string, payload Primitives, eventID string, occurredOn time.Time) (MoneyDeposited, error) {
	amount, err := payload.GetMoney("amount")
	if err != nil {
		return MoneyDeposited{}, invalidPayload(EventAccountMoneyDeposited, err)
	}
	return MoneyDeposited{BaseEvent: RestoreBaseEvent(aggregateID, eventID, occurredOn), Amount: amount}, nil
}

// MoneyWithdrawn is raised when money leaves an account
type MoneyWithdrawn struct {
	BaseEvent
	Amount valueobjects.Money
}

// NewMoneyWithdrawn creates a MoneyWithdrawn event
func NewMoneyWithdrawn(accountID valueobjects.AccountID, amount valueobjects.Money) MoneyWithdrawn {
	return MoneyWithdrawn{BaseEvent: NewBaseEvent(accountID.String()), Amount: amount}
}

func (MoneyWithdrawn) EventName() string { return EventAccountMoneyWithdrawn }
func (MoneyWithdrawn) isAccountEvent()   {}

func (e MoneyWithdrawn) ToPrimitives() Primitives {
	p := Primitives{}
	p.putMoney("amount", e.Amount)
	return p
}

// MoneyWithdrawnFromPrimitives rebuilds a MoneyWithdrawn event
func MoneyWithdrawnFromPrimitives(aggregateID string, payload Primitives, eventID string, occurredOn time.Time) (MoneyWithdrawn, error) {
	amount, err := payload.GetMoney("amount")
	if err != nil {
		return MoneyWithdrawn{}, invalidPayload(EventAccountMoneyWithdrawn, err)
	}
	return MoneyWithdrawn{BaseEvent: RestoreBaseEvent(aggregateID, eventID, occurredOn), Amount: amount}, nil
}

// WithdrawalFailedDueToInsufficientFunds records a rejected withdrawal.
// Applying it leaves the balance unchanged.
type WithdrawalFailedDueToInsufficientFunds struct {
	BaseEvent
	AttemptedAmount valueobjects.Money
	CurrentBalance  valueobjects.Money
}

// NewWithdrawalFailedDueToInsufficientFunds creates a WithdrawalFailedDueToInsufficientFunds event
func NewWithdrawalFailedDueToInsufficientFunds(accountID valueobjects.AccountID, attempted, balance valueobjects.Money) WithdrawalFailedDueToInsufficientFunds {
	return WithdrawalFailedDueToInsufficientFunds{
		BaseEvent:       NewBaseEvent(accountID.String()),
		AttemptedAmount: attempted,
		CurrentBalance:  balance,
	}
}

func (WithdrawalFailedDueToInsufficientFunds) EventName() string {
	return EventAccountWithdrawalFailedInsufficientFunds
}
func (WithdrawalFailedDueToInsufficientFunds) isAccountEvent() {}

func (e WithdrawalFailedDueToInsufficientFunds) ToPrimitives() Primitives {
	p := Primitives{}
	p.putMoney("attempted_amount", e.AttemptedAmount)
	p.putMoney("current_balance", e.CurrentBalance)
	return p
}

// WithdrawalFailedDueToInsufficientFundsFromPrimitives rebuilds a WithdrawalFailedDueToInsufficientFunds event
func WithdrawalFailedDueToInsufficientFundsFromPrimitives(aggregateID string, payload Primitives, eventID string, occurredOn time.Time) (WithdrawalFailedDueToInsufficientFunds, error) {
	attempted, err := payload.GetMoney("attempted_amount")
	if err != nil {
		return WithdrawalFailedDueToInsufficientFunds{}, invalidPayload(EventAccountWithdrawalFailedInsufficientFunds, err)
	}
	balance, err := payload.GetMoney("current_balance")
	if err != nil {
		return WithdrawalFailedDueToInsufficientFunds{}, invalidPayload(EventAccountWithdrawalFailedInsufficientFunds, err)
	}
	return WithdrawalFailedDueToInsufficientFunds{
		BaseEvent:       RestoreBaseEvent(aggregateID, eventID, occurredOn),
		AttemptedAmount: attempted,
		CurrentBalance:  balance,
	}, nil
}
