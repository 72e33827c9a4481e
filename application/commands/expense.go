package commands

import (
	"time"

	"github.com/luisriego/MatisseAPI-sub001/pkg/utils"
)

// RecordExpenseCommand books an expense of an existing condominium
type RecordExpenseCommand struct {
	ExpenseID     string    `json:"expense_id" validate:"required,uuid"`
	CondominiumID string    `json:"condominium_id" validate:"required,uuid"`
	CategoryID    string    `json:"category_id" validate:"required,uuid"`
	Description   string    `json:"description" validate:"required,max=255"`
	Amount        int64     `json:"amount" validate:"gt=0"`
	Currency      string    `json:"currency" validate:"required,len=3"`
	ExpenseDate   time.Time `json:"expense_date" validate:"required"`
}

// Validate validates the command
func (c RecordExpenseCommand) Validate() error { return utils.ValidateStruct(c) }

// TargetID returns the expense id
func (c RecordExpenseCommand) TargetID() string { return c.ExpenseID }
