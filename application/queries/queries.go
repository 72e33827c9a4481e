package queries

import (
	"time"

	"github.com/luisriego/MatisseAPI-sub001/application/ports"
	pkgerrors "github.com/luisriego/MatisseAPI-sub001/pkg/errors"
	"github.com/luisriego/MatisseAPI-sub001/pkg/utils"
)

// DefaultPageSize is used when a list query leaves Limit at zero
const DefaultPageSize = 50

// Pagination is embedded by list queries
type Pagination struct {
	Limit  int `json:"limit" validate:"gte=0,max=500"`
	Offset int `json:"offset" validate:"gte=0"`
}

// Page is one slice of a list result
type Page[T any] struct {
	Items      []T `json:"items"`
	TotalCount int `json:"totalCount"`
	Limit      int `json:"limit"`
	Offset     int `json:"offset"`
}

// Paginate cuts items according to p
func Paginate[T any](items []T, p Pagination) Page[T] {
	limit := p.Limit
	if limit == 0 {
		limit = DefaultPageSize
	}

	page := Page[T]{Items: []T{}, TotalCount: len(items), Limit: limit, Offset: p.Offset}
	if p.Offset >= len(items) {
		return page
	}
	end := p.Offset + limit
	if end > len(items) {
		end = len(items)
	}
	page.Items = items[p.Offset:end]
	return page
}

// GetCondominiumQuery reads one condominium
type GetCondominiumQuery struct {
	CondominiumID string `json:"condominiumId" validate:"required,uuid"`
}

// Validate validates the query
func (q GetCondominiumQuery) Validate() error { return utils.ValidateStruct(q) }

// ListCondominiumsQuery lists condominiums by name
type ListCondominiumsQuery struct {
	Pagination
}

// Validate validates the query
func (q ListCondominiumsQuery) Validate() error { return utils.ValidateStruct(q) }

// GetUnitQuery reads one unit
type GetUnitQuery struct {
	UnitID string `json:"unitId" validate:"required,uuid"`
}

// Validate validates the query
func (q GetUnitQuery) Validate() error { return utils.ValidateStruct(q) }

// ListUnitsQuery lists the units of a condominium by identifier
type ListUnitsQuery struct {
	CondominiumID string `json:"condominiumId" validate:"required,uuid"`
	Pagination
}

// Validate validates the query
func (q ListUnitsQuery) Validate() error { return utils.ValidateStruct(q) }

// GetUnitBalanceQuery reads the projected balance of a unit ledger
type GetUnitBalanceQuery struct {
	UnitID string `json:"unitId" validate:"required,uuid"`
}

// Validate validates the query
func (q GetUnitBalanceQuery) Validate() error { return utils.ValidateStruct(q) }

// UnitBalanceResult is the projected balance of a unit ledger
type UnitBalanceResult struct {
	UnitID    string    `json:"unitId"`
	Amount    int64     `json:"amount"`
	Currency  string    `json:"currency"`
	Display   string    `json:"display"`
	Version   int       `json:"version"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// GetUnitStatementQuery reads balance, fees and payments of a unit
type GetUnitStatementQuery struct {
	UnitID string `json:"unitId" validate:"required,uuid"`
}

// Validate validates the query
func (q GetUnitStatementQuery) Validate() error { return utils.ValidateStruct(q) }

// UnitStatementResult lists every fee and payment of a unit with totals
type UnitStatementResult struct {
	Balance       UnitBalanceResult           `json:"balance"`
	Fees          []ports.FeeIssuedView       `json:"fees"`
	Payments      []ports.PaymentReceivedView `json:"payments"`
	TotalFees     int64                       `json:"totalFees"`
	TotalPayments int64                       `json:"totalPayments"`
}

// GetOwnerQuery reads one owner
type GetOwnerQuery struct {
	OwnerID string `json:"ownerId" validate:"required,uuid"`
}

// Validate validates the query
func (q GetOwnerQuery) Validate() error { return utils.ValidateStruct(q) }

// ListOwnersQuery lists owners by name
type ListOwnersQuery struct {
	Pagination
}

// Validate validates the query
func (q ListOwnersQuery) Validate() error { return utils.ValidateStruct(q) }

// ListExpensesQuery lists the expenses of a condominium by date; From and To
// are inclusive and optional.
type ListExpensesQuery struct {
	CondominiumID string    `json:"condominiumId" validate:"required,uuid"`
	From          time.Time `json:"from"`
	To            time.Time `json:"to"`
	Pagination
}

// Validate validates the query
func (q ListExpensesQuery) Validate() error {
	if err := utils.ValidateStruct(q); err != nil {
		return err
	}
	if !q.From.IsZero() && !q.To.IsZero() && q.To.Before(q.From) {
		return pkgerrors.NewValidationError("to must not be before from")
	}
	return nil
}

// ExpenseListResult is a page of expenses with the totals of the whole
// range, per currency
type ExpenseListResult struct {
	Page[ports.ExpenseView]
	Totals map[string]int64 `json:"totals"`
}
