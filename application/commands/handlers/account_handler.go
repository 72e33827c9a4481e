package handlers

import (
	"context"

	"go.uber.org/zap"

	"github.com/luisriego/MatisseAPI-sub001/application/commands"
	"github.com/luisriego/MatisseAPI-sub001/application/ports"
	"github.com/luisriego/MatisseAPI-sub001/domain/core/aggregates"
	"github.com/luisriego/MatisseAPI-sub001/domain/core/valueobjects"
	pkgerrors "github.com/luisriego/MatisseAPI-sub001/pkg/errors"
)

// AccountHandler handles account commands
type AccountHandler struct {
	accounts ports.AccountRepository
	logger   *zap.Logger
}

// NewAccountHandler creates a new account handler
func NewAccountHandler(accounts ports.AccountRepository, logger *zap.Logger) *AccountHandler {
	return &AccountHandler{accounts: accounts, logger: logger}
}

// OpenAccount executes OpenAccountCommand
func (h *AccountHandler) OpenAccount(ctx context.Context, cmd commands.OpenAccountCommand) error {
	id, err := valueobjects.AccountIDFromString(cmd.AccountID)
	if err != nil {
		return err
	}
	balance, err := valueobjects.NewMoneyFromPrimitives(cmd.InitialBalance, cmd.Currency)
	if err != nil {
		return err
	}

	account, err := aggregates.CreateNewAccount(id, balance)
	if err != nil {
		return err
	}
	return h.accounts.Save(ctx, account)
}

// Deposit executes DepositMoneyCommand
func (h *AccountHandler) Deposit(ctx context.Context, cmd commands.DepositMoneyCommand) error {
	account, amount, err := h.load(ctx, cmd.AccountID, cmd.Amount, cmd.Currency)
	if err != nil {
		return err
	}
	if err := account.Deposit(amount); err != nil {
		return err
	}
	return h.accounts.Save(ctx, account)
}

// Withdraw executes WithdrawMoneyCommand. A refused withdrawal is still
// saved so the failure stays in the account history.
func (h *AccountHandler) Withdraw(ctx context.Context, cmd commands.WithdrawMoneyCommand) error {
	account, amount, err := h.load(ctx, cmd.AccountID, cmd.Amount, cmd.Currency)
	if err != nil {
		return err
	}

	withdrawErr := account.Withdraw(amount)
	if withdrawErr != nil && !pkgerrors.IsDomainRuleViolation(withdrawErr) {
		return withdrawErr
	}
	if err := h.accounts.Save(ctx, account); err != nil {
		return err
	}
	if withdrawErr != nil {
		h.logger.Info("Withdrawal refused",
			zap.String("accountID", cmd.AccountID),
			zap.Int64("amount", cmd.Amount))
	}
	return withdrawErr
}

func (h *AccountHandler) load(ctx context.Context, accountID string, amount int64, currency string) (*aggregates.Account, valueobjects.Money, error) {
	id, err := valueobjects.AccountIDFromString(accountID)
	if err != nil {
		return nil, valueobjects.Money{}, err
	}
	money, err := valueobjects.NewMoneyFromPrimitives(amount, currency)
	if err != nil {
		return nil, valueobjects.Money{}, err
	}
	account, err := h.accounts.FindByID(ctx, id)
	if err != nil {
		return nil, valueobjects.Money{}, err
	}
	return account, money, nil
}
