package handlers

import (
	"context"

	"go.uber.org/zap"

	"github.com/luisriego/MatisseAPI-sub001/application/ports"
	"github.com/luisriego/MatisseAPI-sub001/application/queries"
	"github.com/luisriego/MatisseAPI-sub001/application/queries/bus"
	"github.com/luisriego/MatisseAPI-sub001/domain/core/valueobjects"
)

// ReadModelHandler answers queries from the projection tables
type ReadModelHandler struct {
	store  ports.ReadModelStore
	logger *zap.Logger
}

// NewReadModelHandler creates a new read model handler
func NewReadModelHandler(store ports.ReadModelStore, logger *zap.Logger) *ReadModelHandler {
	return &ReadModelHandler{store: store, logger: logger}
}

// Register binds every query type to its handler
func (h *ReadModelHandler) Register(b *bus.QueryBus) error {
	registrations := []struct {
		query   bus.Query
		handler bus.QueryHandler
	}{
		{queries.GetCondominiumQuery{}, bus.HandlerFor(h.GetCondominium)},
		{queries.ListCondominiumsQuery{}, bus.HandlerFor(h.ListCondominiums)},
		{queries.GetUnitQuery{}, bus.HandlerFor(h.GetUnit)},
		{queries.ListUnitsQuery{}, bus.HandlerFor(h.ListUnits)},
		{queries.GetUnitBalanceQuery{}, bus.HandlerFor(h.GetUnitBalance)},
		{queries.GetUnitStatementQuery{}, bus.HandlerFor(h.GetUnitStatement)},
		{queries.GetOwnerQuery{}, bus.HandlerFor(h.GetOwner)},
		{queries.ListOwnersQuery{}, bus.HandlerFor(h.ListOwners)},
		{queries.ListExpensesQuery{}, bus.HandlerFor(h.ListExpenses)},
	}

	for _, r := range registrations {
		if err := b.Register(r.query, r.handler); err != nil {
			return err
		}
	}
	return nil
}

// GetCondominium executes GetCondominiumQuery
func (h *ReadModelHandler) GetCondominium(ctx context.Context, q queries.GetCondominiumQuery) (ports.CondominiumView, error) {
	return h.store.GetCondominium(ctx, q.CondominiumID)
}

// ListCondominiums executes ListCondominiumsQuery
func (h *ReadModelHandler) ListCondominiums(ctx context.Context, q queries.ListCondominiumsQuery) (queries.Page[ports.CondominiumView], error) {
	rows, err := h.store.ListCondominiums(ctx)
	if err != nil {
		return queries.Page[ports.CondominiumView]{}, err
	}
	return queries.Paginate(rows, q.Pagination), nil
}

// GetUnit executes GetUnitQuery
func (h *ReadModelHandler) GetUnit(ctx context.Context, q queries.GetUnitQuery) (ports.UnitView, error) {
	return h.store.GetUnit(ctx, q.UnitID)
}

// ListUnits executes ListUnitsQuery
func (h *ReadModelHandler) ListUnits(ctx context.Context, q queries.ListUnitsQuery) (queries.Page[ports.UnitView], error) {
	rows, err := h.store.ListUnitsByCondominium(ctx, q.CondominiumID)
	if err != nil {
		return queries.Page[ports.UnitView]{}, err
	}
	return queries.Paginate(rows, q.Pagination), nil
}

// GetUnitBalance executes GetUnitBalanceQuery
func (h *ReadModelHandler) GetUnitBalance(ctx context.Context, q queries.GetUnitBalanceQuery) (queries.UnitBalanceResult, error) {
	return h.balance(ctx, q.UnitID)
}

// GetUnitStatement executes GetUnitStatementQuery
func (h *ReadModelHandler) GetUnitStatement(ctx context.Context, q queries.GetUnitStatementQuery) (queries.UnitStatementResult, error) {
	balance, err := h.balance(ctx, q.UnitID)
	if err != nil {
		return queries.UnitStatementResult{}, err
	}
	fees, err := h.store.ListFeesByUnit(ctx, q.UnitID)
	if err != nil {
		return queries.UnitStatementResult{}, err
	}
	payments, err := h.store.ListPaymentsByUnit(ctx, q.UnitID)
	if err != nil {
		return queries.UnitStatementResult{}, err
	}

	result := queries.UnitStatementResult{
		Balance:  balance,
		Fees:     fees,
		Payments: payments,
	}
	for _, fee := range fees {
		result.TotalFees += fee.Amount
	}
	for _, payment := range payments {
		result.TotalPayments += payment.Amount
	}
	return result, nil
}

// GetOwner executes GetOwnerQuery
func (h *ReadModelHandler) GetOwner(ctx context.Context, q queries.GetOwnerQuery) (ports.OwnerView, error) {
	return h.store.GetOwner(ctx, q.OwnerID)
}

// ListOwners executes ListOwnersQuery
func (h *ReadModelHandler) ListOwners(ctx context.Context, q queries.ListOwnersQuery) (queries.Page[ports.OwnerView], error) {
	rows, err := h.store.ListOwners(ctx)
	if err != nil {
		return queries.Page[ports.OwnerView]{}, err
	}
	return queries.Paginate(rows, q.Pagination), nil
}

// ListExpenses executes ListExpensesQuery
func (h *ReadModelHandler) ListExpenses(ctx context.Context, q queries.ListExpensesQuery) (queries.ExpenseListResult, error) {
	rows, err := h.store.ListExpensesByCondominium(ctx, q.CondominiumID)
	if err != nil {
		return queries.ExpenseListResult{}, err
	}

	inRange := make([]ports.ExpenseView, 0, len(rows))
	totals := make(map[string]int64)
	for _, row := range rows {
		if !q.From.IsZero() && row.ExpenseDate.Before(q.From) {
			continue
		}
		if !q.To.IsZero() && row.ExpenseDate.After(q.To) {
			continue
		}
		inRange = append(inRange, row)
		totals[row.Currency] += row.Amount
	}

	return queries.ExpenseListResult{
		Page:   queries.Paginate(inRange, q.Pagination),
		Totals: totals,
	}, nil
}

func (h *ReadModelHandler) balance(ctx context.Context, unitID string) (queries.UnitBalanceResult, error) {
	view, err := h.store.GetUnitLedgerAccount(ctx, unitID)
	if err != nil {
		return queries.UnitBalanceResult{}, err
	}

	result := queries.UnitBalanceResult{
		UnitID:    view.UnitID,
		Amount:    view.BalanceAmount,
		Currency:  view.Currency,
		Version:   view.Version,
		UpdatedAt: view.UpdatedAt,
	}
	if money, err := valueobjects.NewMoneyFromPrimitives(view.BalanceAmount, view.Currency); err == nil {
		result.Display = money.String()
	} else {
		h.logger.Warn("Stored balance has an invalid currency",
			zap.String("unitID", unitID), zap.String("currency", view.Currency))
	}
	return result, nil
}
