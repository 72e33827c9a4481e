package commands

import "github.com/luisriego/MatisseAPI-sub001/pkg/utils"

// OpenAccountCommand opens an account with an initial balance in minor units
type OpenAccountCommand struct {
	AccountID      string `json:"account_id" validate:"required,uuid"`
	InitialBalance int64  `json:"initial_balance" validate:"gte=0"`
	Currency       string `json:"currency" validate:"required,len=3"`
}

// Validate validates the command
func (c OpenAccountCommand) Validate() error { return utils.ValidateStruct(c) }

// TargetID returns the account id
func (c OpenAccountCommand) TargetID() string { return c.AccountID }

// DepositMoneyCommand adds money to an account
type DepositMoneyCommand struct {
	AccountID string `json:"account_id" validate:"required,uuid"`
	Amount    int64  `json:"amount" validate:"gt=0"`
	Currency  string `json:"currency" validate:"required,len=3"`
}

// Validate validates the command
func (c DepositMoneyCommand) Validate() error { return utils.ValidateStruct(c) }

// TargetID returns the account id
func (c DepositMoneyCommand) TargetID() string { return c.AccountID }

// WithdrawMoneyCommand takes money out of an account
type WithdrawMoneyCommand struct {
	AccountID string `json:"account_id" validate:"required,uuid"`
	Amount    int64  `json:"amount" validate:"gt=0"`
	Currency  string `json:"currency" validate:"required,len=3"`
}

// Validate validates the command
func (c WithdrawMoneyCommand) Validate() error { return utils.ValidateStruct(c) }

// TargetID returns the account id
func (c WithdrawMoneyCommand) TargetID() string { return c.AccountID }
