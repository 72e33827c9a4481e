package ports

import (
	"context"

	"github.com/luisriego/MatisseAPI-sub001/domain/core/aggregates"
	"github.com/luisriego/MatisseAPI-sub001/domain/core/valueobjects"
)

// Repositories are ports in hexagonal architecture: command handlers depend on
// them and the persistence layer provides the event-sourced implementation.
// Save pulls the pending events of the aggregate, appends them with an
// expected-version check and projects them. FindByID returns a NotFound error
// for an unknown id.

// AccountRepository persists Account aggregates
type AccountRepository interface {
	Save(ctx context.Context, account *aggregates.Account) error
	FindByID(ctx context.Context, id valueobjects.AccountID) (*aggregates.Account, error)
}

// UnitLedgerAccountRepository persists UnitLedgerAccount aggregates
type UnitLedgerAccountRepository interface {
	Save(ctx context.Context, ledger *aggregates.UnitLedgerAccount) error
	FindByID(ctx context.Context, id valueobjects.UnitID) (*aggregates.UnitLedgerAccount, error)
}

// CondominiumRepository persists Condominium aggregates
type CondominiumRepository interface {
	Save(ctx context.Context, condominium *aggregates.Condominium) error
	FindByID(ctx context.Context, id valueobjects.CondominiumID) (*aggregates.Condominium, error)
}

// UnitRepository persists Unit aggregates
type UnitRepository interface {
	Save(ctx context.Context, unit *aggregates.Unit) error
	FindByID(ctx context.Context, id valueobjects.UnitID) (*aggregates.Unit, error)
}

// OwnerRepository persists Owner aggregates
type OwnerRepository interface {
	Save(ctx context.Context, owner *aggregates.Owner) error
	FindByID(ctx context.Context, id valueobjects.OwnerID) (*aggregates.Owner, error)
}

// ExpenseRepository persists Expense aggregates
type ExpenseRepository interface {
	Save(ctx context.Context, expense *aggregates.Expense) error
	FindByID(ctx context.Context, id valueobjects.ExpenseID) (*aggregates.Expense, error)
}

// AggregateLocker serialises work on one aggregate across handlers
type AggregateLocker interface {
	// WithLock runs fn while holding the lock for aggregateID
	WithLock(ctx context.Context, aggregateID string, fn func(ctx context.Context) error) error
}
