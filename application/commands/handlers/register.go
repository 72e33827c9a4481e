package handlers

import (
	"github.com/luisriego/MatisseAPI-sub001/application/commands"
	"github.com/luisriego/MatisseAPI-sub001/application/commands/bus"
)

// Handlers groups every command handler of the ledger
type Handlers struct {
	Accounts     *AccountHandler
	UnitLedgers  *UnitLedgerHandler
	Condominiums *CondominiumHandler
	Units        *UnitHandler
	Owners       *OwnerHandler
	Expenses     *ExpenseHandler
}

// Register binds every command type to its handler
func (h *Handlers) Register(b *bus.CommandBus) error {
	registrations := []struct {
		cmd     bus.Command
		handler bus.CommandHandler
	}{
		{commands.OpenAccountCommand{}, bus.HandlerFor(h.Accounts.OpenAccount)},
		{commands.DepositMoneyCommand{}, bus.HandlerFor(h.Accounts.Deposit)},
		{commands.WithdrawMoneyCommand{}, bus.HandlerFor(h.Accounts.Withdraw)},
		{commands.OpenUnitLedgerCommand{}, bus.HandlerFor(h.UnitLedgers.OpenLedger)},
		{commands.ApplyFeeCommand{}, bus.HandlerFor(h.UnitLedgers.ApplyFee)},
		{commands.ReceivePaymentCommand{}, bus.HandlerFor(h.UnitLedgers.ReceivePayment)},
		{commands.RegisterCondominiumCommand{}, bus.HandlerFor(h.Condominiums.Register)},
		{commands.RenameCondominiumCommand{}, bus.HandlerFor(h.Condominiums.Rename)},
		{commands.ChangeCondominiumAddressCommand{}, bus.HandlerFor(h.Condominiums.ChangeAddress)},
		{commands.CreateUnitCommand{}, bus.HandlerFor(h.Units.CreateUnit)},
		{commands.AssignUnitOwnerCommand{}, bus.HandlerFor(h.Units.AssignOwner)},
		{commands.RemoveUnitOwnerCommand{}, bus.HandlerFor(h.Units.RemoveOwner)},
		{commands.CreateOwnerCommand{}, bus.HandlerFor(h.Owners.CreateOwner)},
		{commands.UpdateOwnerContactInfoCommand{}, bus.HandlerFor(h.Owners.UpdateContactInfo)},
		{commands.RecordExpenseCommand{}, bus.HandlerFor(h.Expenses.RecordExpense)},
	}

	for _, r := range registrations {
		if err := b.Register(r.cmd, r.handler); err != nil {
			return err
		}
	}
	return nil
}
