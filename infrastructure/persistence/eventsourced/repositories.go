package eventsourced

import (
	"context"

	"github.com/luisriego/MatisseAPI-sub001/application/ports"
	"github.com/luisriego/MatisseAPI-sub001/domain/core/aggregates"
	"github.com/luisriego/MatisseAPI-sub001/domain/core/valueobjects"
	"github.com/luisriego/MatisseAPI-sub001/domain/events"
)

// Compile-time interface checks
var (
	_ ports.AccountRepository           = (*AccountRepository)(nil)
	_ ports.UnitLedgerAccountRepository = (*UnitLedgerAccountRepository)(nil)
	_ ports.CondominiumRepository       = (*CondominiumRepository)(nil)
	_ ports.UnitRepository              = (*UnitRepository)(nil)
	_ ports.OwnerRepository             = (*OwnerRepository)(nil)
	_ ports.ExpenseRepository           = (*ExpenseRepository)(nil)
)

// AccountRepository stores Account streams
type AccountRepository struct {
	*Repository[*aggregates.Account]
}

// NewAccountRepository creates an AccountRepository
func NewAccountRepository(deps Dependencies) *AccountRepository {
	return &AccountRepository{NewRepository(events.AggregateTypeAccount, aggregates.ReconstituteAccount, deps)}
}

// FindByID loads an account
func (r *AccountRepository) FindByID(ctx context.Context, id valueobjects.AccountID) (*aggregates.Account, error) {
	return r.Load(ctx, id.String())
}

// UnitLedgerAccountRepository stores unit ledger streams, keyed by unit id
type UnitLedgerAccountRepository struct {
	*Repository[*aggregates.UnitLedgerAccount]
}

// NewUnitLedgerAccountRepository creates a UnitLedgerAccountRepository
func NewUnitLedgerAccountRepository(deps Dependencies) *UnitLedgerAccountRepository {
	return &UnitLedgerAccountRepository{NewRepository(events.AggregateTypeUnitLedgerAccount, aggregates.ReconstituteUnitLedgerAccount, deps)}
}

// FindByID loads the ledger of a unit
func (r *UnitLedgerAccountRepository) FindByID(ctx context.Context, id valueobjects.UnitID) (*aggregates.UnitLedgerAccount, error) {
	return r.Load(ctx, id.String())
}

// CondominiumRepository stores Condominium streams
type CondominiumRepository struct {
	*Repository[*aggregates.Condominium]
}

// NewCondominiumRepository creates a CondominiumRepository
func NewCondominiumRepository(deps Dependencies) *CondominiumRepository {
	return &CondominiumRepository{NewRepository(events.AggregateTypeCondominium, aggregates.ReconstituteCondominium, deps)}
}

// FindByID loads a condominium
func (r *CondominiumRepository) FindByID(ctx context.Context, id valueobjects.CondominiumID) (*aggregates.Condominium, error) {
	return r.Load(ctx, id.String())
}

// UnitRepository stores Unit streams
type UnitRepository struct {
	*Repository[*aggregates.Unit]
}

// NewUnitRepository creates a UnitRepository
func NewUnitRepository(deps Dependencies) *UnitRepository {
	return &UnitRepository{NewRepository(events.AggregateTypeUnit, aggregates.ReconstituteUnit, deps)}
}

// FindByID loads a unit
func (r *UnitRepository) FindByID(ctx context.Context, id valueobjects.UnitID) (*aggregates.Unit, error) {
	return r.Load(ctx, id.String())
}

// OwnerRepository stores Owner streams
type OwnerRepository struct {
	*Repository[*aggregates.Owner]
}

// NewOwnerRepository creates an OwnerRepository
func NewOwnerRepository(deps Dependencies) *OwnerRepository {
	return &OwnerRepository{NewRepository(events.AggregateTypeOwner, aggregates.ReconstituteOwner, deps)}
}

// FindByID loads an owner
func (r *OwnerRepository) FindByID(ctx context.Context, id valueobjects.OwnerID) (*aggregates.Owner, error) {
	return r.Load(ctx, id.String())
}

// ExpenseRepository stores Expense streams
type ExpenseRepository struct {
	*Repository[*aggregates.Expense]
}

// NewExpenseRepository creates an ExpenseRepository
func NewExpenseRepository(deps Dependencies) *ExpenseRepository {
	return &ExpenseRepository{NewRepository(events.AggregateTypeExpense, aggregates.ReconstituteExpense, deps)}
}

// FindByID loads an expense
func (r *ExpenseRepository) FindByID(ctx context.Context, id valueobjects.ExpenseID) (*aggregates.Expense, error) {
	return r.Load(ctx, id.String())
}
