package handlers

import (
	"context"

	"go.uber.org/zap"

	"github.com/luisriego/MatisseAPI-sub001/application/commands"
	"github.com/luisriego/MatisseAPI-sub001/application/ports"
	"github.com/luisriego/MatisseAPI-sub001/domain/core/aggregates"
	"github.com/luisriego/MatisseAPI-sub001/domain/core/valueobjects"
)

// UnitLedgerHandler handles unit ledger commands
type UnitLedgerHandler struct {
	ledgers ports.UnitLedgerAccountRepository
	units   ports.UnitRepository
	logger  *zap.Logger
}

// NewUnitLedgerHandler creates a new unit ledger handler
func NewUnitLedgerHandler(ledgers ports.UnitLedgerAccountRepository, units ports.UnitRepository, logger *zap.Logger) *UnitLedgerHandler {
	return &UnitLedgerHandler{ledgers: ledgers, units: units, logger: logger}
}

// OpenLedger executes OpenUnitLedgerCommand; the unit must exist
func (h *UnitLedgerHandler) OpenLedger(ctx context.Context, cmd commands.OpenUnitLedgerCommand) error {
	unitID, err := valueobjects.UnitIDFromString(cmd.UnitID)
	if err != nil {
		return err
	}
	balance, err := valueobjects.NewMoneyFromPrimitives(cmd.InitialBalance, cmd.Currency)
	if err != nil {
		return err
	}
	if _, err := h.units.FindByID(ctx, unitID); err != nil {
		return err
	}

	ledger, err := aggregates.CreateNewUnitLedgerAccount(unitID, balance)
	if err != nil {
		return err
	}
	return h.ledgers.Save(ctx, ledger)
}

// ApplyFee executes ApplyFeeCommand
func (h *UnitLedgerHandler) ApplyFee(ctx context.Context, cmd commands.ApplyFeeCommand) error {
	feeItemID, err := valueobjects.FeeItemIDFromString(cmd.FeeItemID)
	if err != nil {
		return err
	}
	ledger, amount, err := h.load(ctx, cmd.UnitID, cmd.Amount, cmd.Currency)
	if err != nil {
		return err
	}

	if err := ledger.ApplyFee(feeItemID, amount, cmd.DueDate, cmd.Description); err != nil {
		return err
	}
	return h.ledgers.Save(ctx, ledger)
}

// ReceivePayment executes ReceivePaymentCommand
func (h *UnitLedgerHandler) ReceivePayment(ctx context.Context, cmd commands.ReceivePaymentCommand) error {
	paymentID, err := valueobjects.PaymentIDFromString(cmd.PaymentID)
	if err != nil {
		return err
	}
	ledger, amount, err := h.load(ctx, cmd.UnitID, cmd.Amount, cmd.Currency)
	if err != nil {
		return err
	}

	if err := ledger.ReceivePayment(amount, paymentID, cmd.PaymentDate, cmd.PaymentMethod); err != nil {
		return err
	}
	return h.ledgers.Save(ctx, ledger)
}

func (h *UnitLedgerHandler) load(ctx context.Context, unitID string, amount int64, currency string) (*aggregates.UnitLedgerAccount, valueobjects.Money, error) {
	id, err := valueobjects.UnitIDFromString(unitID)
	if err != nil {
		return nil, valueobjects.Money{}, err
	}
	money, err := valueobjects.NewMoneyFromPrimitives(amount, currency)
	if err != nil {
		return nil, valueobjects.Money{}, err
	}
	ledger, err := h.ledgers.FindByID(ctx, id)
	if err != nil {
		return nil, valueobjects.Money{}, err
	}
	return ledger, money, nil
}
