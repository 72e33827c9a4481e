package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/luisriego/MatisseAPI-sub001/application/ports"
	pkgerrors "github.com/luisriego/MatisseAPI-sub001/pkg/errors"
)

// ReadModelStore is an in-memory implementation of ports.ReadModelStore.
// Writes made with a transaction in the context are undone on rollback.
type ReadModelStore struct {
	mu           sync.RWMutex
	condominiums map[string]ports.CondominiumView
	units        map[string]ports.UnitView
	ledgers      map[string]ports.UnitLedgerAccountView
	owners       map[string]ports.OwnerView
	expenses     map[string]ports.ExpenseView
	fees         map[string]ports.FeeIssuedView
	payments     map[string]ports.PaymentReceivedView
}

// NewReadModelStore creates an empty read model store
func NewReadModelStore() *ReadModelStore {
	return &ReadModelStore{
		condominiums: make(map[string]ports.CondominiumView),
		units:        make(map[string]ports.UnitView),
		ledgers:      make(map[string]ports.UnitLedgerAccountView),
		owners:       make(map[string]ports.OwnerView),
		expenses:     make(map[string]ports.ExpenseView),
		fees:         make(map[string]ports.FeeIssuedView),
		payments:     make(map[string]ports.PaymentReceivedView),
	}
}

func getRow[V any](mu *sync.RWMutex, rows map[string]V, key, resource string) (V, error) {
	mu.RLock()
	defer mu.RUnlock()

	row, ok := rows[key]
	if !ok {
		var zero V
		return zero, pkgerrors.NewNotFoundError(fmt.Sprintf("%s %s", resource, key))
	}
	return row, nil
}

// putRow writes a row; the caller holds mu
func putRow[V any](ctx context.Context, mu *sync.RWMutex, rows map[string]V, key string, row V) {
	prev, existed := rows[key]
	rows[key] = row

	if tx, ok := txFromCtx(ctx); ok {
		tx.onRollback(func() {
			mu.Lock()
			defer mu.Unlock()
			if existed {
				rows[key] = prev
			} else {
				delete(rows, key)
			}
		})
	}
}

// listRows copies the rows accepted by keep and sorts them with less
func listRows[V any](mu *sync.RWMutex, rows map[string]V, keep func(V) bool, less func(a, b V) bool) []V {
	mu.RLock()
	out := make([]V, 0, len(rows))
	for _, row := range rows {
		if keep == nil || keep(row) {
			out = append(out, row)
		}
	}
	mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}

// clearRows empties a table in place; the caller holds mu
func clearRows[V any](ctx context.Context, mu *sync.RWMutex, rows map[string]V) {
	snapshot := make(map[string]V, len(rows))
	for k, v := range rows {
		snapshot[k] = v
		delete(rows, k)
	}

	if tx, ok := txFromCtx(ctx); ok {
		tx.onRollback(func() {
			mu.Lock()
			defer mu.Unlock()
			for k := range rows {
				delete(rows, k)
			}
			for k, v := range snapshot {
				rows[k] = v
			}
		})
	}
}

func requireKey(table, key string) error {
	if key == "" {
		return pkgerrors.NewInvalidArgumentError(fmt.Sprintf("%s row requires a key", table))
	}
	return nil
}

// GetCondominium returns a condominium row
func (s *ReadModelStore) GetCondominium(ctx context.Context, id string) (ports.CondominiumView, error) {
	return getRow(&s.mu, s.condominiums, id, "condominium")
}

// SaveCondominium upserts a condominium row unless a newer version is stored
func (s *ReadModelStore) SaveCondominium(ctx context.Context, view ports.CondominiumView) error {
	if err := requireKey(ports.TableCondominiums, view.ID); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if current, ok := s.condominiums[view.ID]; ok && current.Version >= view.Version {
		return nil
	}
	putRow(ctx, &s.mu, s.condominiums, view.ID, view)
	return nil
}

// ListCondominiums returns every condominium ordered by name
func (s *ReadModelStore) ListCondominiums(ctx context.Context) ([]ports.CondominiumView, error) {
	return listRows(&s.mu, s.condominiums, nil, func(a, b ports.CondominiumView) bool {
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		return a.ID < b.ID
	}), nil
}

// GetUnit returns a unit row
func (s *ReadModelStore) GetUnit(ctx context.Context, id string) (ports.UnitView, error) {
	return getRow(&s.mu, s.units, id, "unit")
}

// SaveUnit upserts a unit row unless a newer version is stored
func (s *ReadModelStore) SaveUnit(ctx context.Context, view ports.UnitView) error {
	if err := requireKey(ports.TableUnits, view.ID); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if current, ok := s.units[view.ID]; ok && current.Version >= view.Version {
		return nil
	}
	putRow(ctx, &s.mu, s.units, view.ID, view)
	return nil
}

// ListUnitsByCondominium returns the units of a condominium ordered by identifier
func (s *ReadModelStore) ListUnitsByCondominium(ctx context.Context, condominiumID string) ([]ports.UnitView, error) {
	return listRows(&s.mu, s.units,
		func(v ports.UnitView) bool { return v.CondominiumID == condominiumID },
		func(a, b ports.UnitView) bool { return a.Identifier < b.Identifier },
	), nil
}

// GetUnitLedgerAccount returns the ledger row of a unit
func (s *ReadModelStore) GetUnitLedgerAccount(ctx context.Context, unitID string) (ports.UnitLedgerAccountView, error) {
	return getRow(&s.mu, s.ledgers, unitID, "unit ledger account")
}

// SaveUnitLedgerAccount upserts a ledger row unless a newer version is stored
func (s *ReadModelStore) SaveUnitLedgerAccount(ctx context.Context, view ports.UnitLedgerAccountView) error {
	if err := requireKey(ports.TableUnitLedgerAccounts, view.UnitID); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if current, ok := s.ledgers[view.UnitID]; ok && current.Version >= view.Version {
		return nil
	}
	putRow(ctx, &s.mu, s.ledgers, view.UnitID, view)
	return nil
}

// GetOwner returns an owner row
func (s *ReadModelStore) GetOwner(ctx context.Context, id string) (ports.OwnerView, error) {
	return getRow(&s.mu, s.owners, id, "owner")
}

// SaveOwner upserts an owner row unless a newer version is stored
func (s *ReadModelStore) SaveOwner(ctx context.Context, view ports.OwnerView) error {
	if err := requireKey(ports.TableOwners, view.ID); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if current, ok := s.owners[view.ID]; ok && current.Version >= view.Version {
		return nil
	}
	putRow(ctx, &s.mu, s.owners, view.ID, view)
	return nil
}

// ListOwners returns every owner ordered by name
func (s *ReadModelStore) ListOwners(ctx context.Context) ([]ports.OwnerView, error) {
	return listRows(&s.mu, s.owners, nil, func(a, b ports.OwnerView) bool {
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		return a.ID < b.ID
	}), nil
}

// InsertExpense adds an expense row; an existing expense id is left as is
func (s *ReadModelStore) InsertExpense(ctx context.Context, view ports.ExpenseView) error {
	if err := requireKey(ports.TableExpenses, view.ID); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.expenses[view.ID]; ok {
		return nil
	}
	putRow(ctx, &s.mu, s.expenses, view.ID, view)
	return nil
}

// ListExpensesByCondominium returns the expenses of a condominium by date
func (s *ReadModelStore) ListExpensesByCondominium(ctx context.Context, condominiumID string) ([]ports.ExpenseView, error) {
	return listRows(&s.mu, s.expenses,
		func(v ports.ExpenseView) bool { return v.CondominiumID == condominiumID },
		func(a, b ports.ExpenseView) bool {
			if !a.ExpenseDate.Equal(b.ExpenseDate) {
				return a.ExpenseDate.Before(b.ExpenseDate)
			}
			return a.ID < b.ID
		},
	), nil
}

// InsertFeeIssued adds a fee row; an existing event id is left as is
func (s *ReadModelStore) InsertFeeIssued(ctx context.Context, view ports.FeeIssuedView) error {
	if err := requireKey(ports.TableFeesIssued, view.EventID); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.fees[view.EventID]; ok {
		return nil
	}
	putRow(ctx, &s.mu, s.fees, view.EventID, view)
	return nil
}

// ListFeesByUnit returns the fees issued to a unit by due date
func (s *ReadModelStore) ListFeesByUnit(ctx context.Context, unitID string) ([]ports.FeeIssuedView, error) {
	return listRows(&s.mu, s.fees,
		func(v ports.FeeIssuedView) bool { return v.UnitID == unitID },
		func(a, b ports.FeeIssuedView) bool {
			if !a.DueDate.Equal(b.DueDate) {
				return a.DueDate.Before(b.DueDate)
			}
			return a.EventID < b.EventID
		},
	), nil
}

// InsertPaymentReceived adds a payment row; an existing event id is left as is
func (s *ReadModelStore) InsertPaymentReceived(ctx context.Context, view ports.PaymentReceivedView) error {
	if err := requireKey(ports.TablePaymentsReceived, view.EventID); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.payments[view.EventID]; ok {
		return nil
	}
	putRow(ctx, &s.mu, s.payments, view.EventID, view)
	return nil
}

// ListPaymentsByUnit returns the payments received for a unit by payment date
func (s *ReadModelStore) ListPaymentsByUnit(ctx context.Context, unitID string) ([]ports.PaymentReceivedView, error) {
	return listRows(&s.mu, s.payments,
		func(v ports.PaymentReceivedView) bool { return v.UnitID == unitID },
		func(a, b ports.PaymentReceivedView) bool {
			if !a.PaymentDate.Equal(b.PaymentDate) {
				return a.PaymentDate.Before(b.PaymentDate)
			}
			return a.EventID < b.EventID
		},
	), nil
}

// Reset deletes every row of a table
func (s *ReadModelStore) Reset(ctx context.Context, table string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch table {
	case ports.TableCondominiums:
		clearRows(ctx, &s.mu, s.condominiums)
	case ports.TableUnits:
		clearRows(ctx, &s.mu, s.units)
	case ports.TableUnitLedgerAccounts:
		clearRows(ctx, &s.mu, s.ledgers)
	case ports.TableOwners:
		clearRows(ctx, &s.mu, s.owners)
	case ports.TableExpenses:
		clearRows(ctx, &s.mu, s.expenses)
	case ports.TableFeesIssued:
		clearRows(ctx, &s.mu, s.fees)
	case ports.TablePaymentsReceived:
		clearRows(ctx, &s.mu, s.payments)
	default:
		return pkgerrors.NewInvalidArgumentError(fmt.Sprintf("unknown read table %q", table))
	}
	return nil
}
