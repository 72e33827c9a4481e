package commands

import (
	"time"

	"github.com/luisriego/MatisseAPI-sub001/pkg/utils"
)

// OpenUnitLedgerCommand opens the ledger account of a unit
type OpenUnitLedgerCommand struct {
	UnitID         string `json:"unit_id" validate:"required,uuid"`
	InitialBalance int64  `json:"initial_balance"`
	Currency       string `json:"currency" validate:"required,len=3"`
}

// Validate validates the command
func (c OpenUnitLedgerCommand) Validate() error { return utils.ValidateStruct(c) }

// TargetID returns the unit id
func (c OpenUnitLedgerCommand) TargetID() string { return c.UnitID }

// ApplyFeeCommand charges a fee to a unit ledger
type ApplyFeeCommand struct {
	UnitID      string    `json:"unit_id" validate:"required,uuid"`
	FeeItemID   string    `json:"fee_item_id" validate:"required,uuid"`
	Amount      int64     `json:"amount" validate:"gt=0"`
	Currency    string    `json:"currency" validate:"required,len=3"`
	DueDate     time.Time `json:"due_date" validate:"required"`
	Description string    `json:"description" validate:"max=255"`
}

// Validate validates the command
func (c ApplyFeeCommand) Validate() error { return utils.ValidateStruct(c) }

// TargetID returns the unit id
func (c ApplyFeeCommand) TargetID() string { return c.UnitID }

// ReceivePaymentCommand credits a payment to a unit ledger
type ReceivePaymentCommand struct {
	UnitID        string    `json:"unit_id" validate:"required,uuid"`
	PaymentID     string    `json:"payment_id" validate:"required,uuid"`
	Amount        int64     `json:"amount" validate:"gt=0"`
	Currency      string    `json:"currency" validate:"required,len=3"`
	PaymentDate   time.Time `json:"payment_date" validate:"required"`
	PaymentMethod string    `json:"payment_method" validate:"required,max=50"`
}

// Validate validates the command
func (c ReceivePaymentCommand) Validate() error { return utils.ValidateStruct(c) }

// TargetID returns the unit id
func (c ReceivePaymentCommand) TargetID() string { return c.UnitID }
