package handlers

import (
	"context"

	"go.uber.org/zap"

	"github.com/luisriego/MatisseAPI-sub001/application/commands"
	"github.com/luisriego/MatisseAPI-sub001/application/ports"
	"github.com/luisriego/MatisseAPI-sub001/domain/core/aggregates"
	"github.com/luisriego/MatisseAPI-sub001/domain/core/valueobjects"
)

// ExpenseHandler handles expense commands
type ExpenseHandler struct {
	expenses     ports.ExpenseRepository
	condominiums ports.CondominiumRepository
	logger       *zap.Logger
}

// NewExpenseHandler creates a new expense handler
func NewExpenseHandler(expenses ports.ExpenseRepository, condominiums ports.CondominiumRepository, logger *zap.Logger) *ExpenseHandler {
	return &ExpenseHandler{expenses: expenses, condominiums: condominiums, logger: logger}
}

// RecordExpense executes RecordExpenseCommand; the condominium must exist
func (h *ExpenseHandler) RecordExpense(ctx context.Context, cmd commands.RecordExpenseCommand) error {
	expenseID, err := valueobjects.ExpenseIDFromString(cmd.ExpenseID)
	if err != nil {
		return err
	}
	condominiumID, err := valueobjects.CondominiumIDFromString(cmd.CondominiumID)
	if err != nil {
		return err
	}
	categoryID, err := valueobjects.CategoryIDFromString(cmd.CategoryID)
	if err != nil {
		return err
	}
	amount, err := valueobjects.NewMoneyFromPrimitives(cmd.Amount, cmd.Currency)
	if err != nil {
		return err
	}
	if _, err := h.condominiums.FindByID(ctx, condominiumID); err != nil {
		return err
	}

	expense, err := aggregates.RecordExpense(expenseID, condominiumID, categoryID, cmd.Description, amount, cmd.ExpenseDate)
	if err != nil {
		return err
	}
	return h.expenses.Save(ctx, expense)
}
