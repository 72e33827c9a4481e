package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"

	"github.com/luisriego/MatisseAPI-sub001/application/ports"
	pkgerrors "github.com/luisriego/MatisseAPI-sub001/pkg/errors"
)

var (
	condominiumColumns = []string{"id", "name", "street", "city", "postal_code", "country", "version", "updated_at"}
	unitColumns        = []string{"id", "condominium_id", "identifier", "owner_id", "version", "updated_at"}
	ledgerColumns      = []string{"unit_id", "balance_amount", "currency", "version", "updated_at"}
	ownerColumns       = []string{"id", "name", "email", "phone", "version", "updated_at"}
	expenseColumns     = []string{"id", "event_id", "condominium_id", "category_id", "description", "amount", "currency", "expense_date", "recorded_at"}
	feeColumns         = []string{"event_id", "fee_item_id", "unit_id", "amount", "currency", "due_date", "description", "issued_at"}
	paymentColumns     = []string{"event_id", "payment_id", "unit_id", "amount", "currency", "payment_date", "payment_method", "received_at"}
)

// ReadModelStore is a PostgreSQL implementation of ports.ReadModelStore.
// It uses the transaction in ctx when there is one.
type ReadModelStore struct {
	db DB
}

// NewReadModelStore creates a new PostgreSQL read model store
func NewReadModelStore(db DB) *ReadModelStore {
	return &ReadModelStore{db: db}
}

// GetCondominium returns a condominium row
func (s *ReadModelStore) GetCondominium(ctx context.Context, id string) (ports.CondominiumView, error) {
	query := psql.Select(condominiumColumns...).From(ports.TableCondominiums).Where(squirrel.Eq{"id": id})
	return getOne(ctx, s, query, scanCondominium, "condominium "+id)
}

// SaveCondominium upserts a condominium row unless a newer version is stored
func (s *ReadModelStore) SaveCondominium(ctx context.Context, v ports.CondominiumView) error {
	return s.upsert(ctx, ports.TableCondominiums, "id", condominiumColumns,
		v.ID, v.Name, v.Street, v.City, v.PostalCode, v.Country, v.Version, v.UpdatedAt)
}

// ListCondominiums returns every condominium ordered by name
func (s *ReadModelStore) ListCondominiums(ctx context.Context) ([]ports.CondominiumView, error) {
	query := psql.Select(condominiumColumns...).From(ports.TableCondominiums).OrderBy("name ASC", "id ASC")
	return list(ctx, s, query, scanCondominium)
}

// GetUnit returns a unit row
func (s *ReadModelStore) GetUnit(ctx context.Context, id string) (ports.UnitView, error) {
	query := psql.Select(unitColumns...).From(ports.TableUnits).Where(squirrel.Eq{"id": id})
	return getOne(ctx, s, query, scanUnit, "unit "+id)
}

// SaveUnit upserts a unit row unless a newer version is stored
func (s *ReadModelStore) SaveUnit(ctx context.Context, v ports.UnitView) error {
	return s.upsert(ctx, ports.TableUnits, "id", unitColumns,
		v.ID, v.CondominiumID, v.Identifier, v.OwnerID, v.Version, v.UpdatedAt)
}

// ListUnitsByCondominium returns the units of a condominium ordered by identifier
func (s *ReadModelStore) ListUnitsByCondominium(ctx context.Context, condominiumID string) ([]ports.UnitView, error) {
	query := psql.Select(unitColumns...).From(ports.TableUnits).
		Where(squirrel.Eq{"condominium_id": condominiumID}).
		OrderBy("identifier ASC")
	return list(ctx, s, query, scanUnit)
}

// GetUnitLedgerAccount returns the ledger row of a unit
func (s *ReadModelStore) GetUnitLedgerAccount(ctx context.Context, unitID string) (ports.UnitLedgerAccountView, error) {
	query := psql.Select(ledgerColumns...).From(ports.TableUnitLedgerAccounts).Where(squirrel.Eq{"unit_id": unitID})
	return getOne(ctx, s, query, scanLedger, "unit ledger account "+unitID)
}

// SaveUnitLedgerAccount upserts a ledger row unless a newer version is stored
func (s *ReadModelStore) SaveUnitLedgerAccount(ctx context.Context, v ports.UnitLedgerAccountView) error {
	return s.upsert(ctx, ports.TableUnitLedgerAccounts, "unit_id", ledgerColumns,
		v.UnitID, v.BalanceAmount, v.Currency, v.Version, v.UpdatedAt)
}

// GetOwner returns an owner row
func (s *ReadModelStore) GetOwner(ctx context.Context, id string) (ports.OwnerView, error) {
	query := psql.Select(ownerColumns...).From(ports.TableOwners).Where(squirrel.Eq{"id": id})
	return getOne(ctx, s, query, scanOwner, "owner "+id)
}

// SaveOwner upserts an owner row unless a newer version is stored
func (s *ReadModelStore) SaveOwner(ctx context.Context, v ports.OwnerView) error {
	return s.upsert(ctx, ports.TableOwners, "id", ownerColumns,
		v.ID, v.Name, v.Email, v.Phone, v.Version, v.UpdatedAt)
}

// ListOwners returns every owner ordered by name
func (s *ReadModelStore) ListOwners(ctx context.Context) ([]ports.OwnerView, error) {
	query := psql.Select(ownerColumns...).From(ports.TableOwners).OrderBy("name ASC", "id ASC")
	return list(ctx, s, query, scanOwner)
}

// InsertExpense adds an expense row; an existing expense id is left as is
func (s *ReadModelStore) InsertExpense(ctx context.Context, v ports.ExpenseView) error {
	return s.insertOnce(ctx, ports.TableExpenses, "id", expenseColumns,
		v.ID, v.EventID, v.CondominiumID, v.CategoryID, v.Description, v.Amount, v.Currency, v.ExpenseDate, v.RecordedAt)
}

// ListExpensesByCondominium returns the expenses of a condominium by date
func (s *ReadModelStore) ListExpensesByCondominium(ctx context.Context, condominiumID string) ([]ports.ExpenseView, error) {
	query := psql.Select(expenseColumns...).From(ports.TableExpenses).
		Where(squirrel.Eq{"condominium_id": condominiumID}).
		OrderBy("expense_date ASC", "id ASC")
	return list(ctx, s, query, scanExpense)
}

// InsertFeeIssued adds a fee row; an existing event id is left as is
func (s *ReadModelStore) InsertFeeIssued(ctx context.Context, v ports.FeeIssuedView) error {
	return s.insertOnce(ctx, ports.TableFeesIssued, "event_id", feeColumns,
		v.EventID, v.FeeItemID, v.UnitID, v.Amount, v.Currency, v.DueDate, v.Description, v.IssuedAt)
}

// ListFeesByUnit returns the fees issued to a unit by due date
func (s *ReadModelStore) ListFeesByUnit(ctx context.Context, unitID string) ([]ports.FeeIssuedView, error) {
	query := psql.Select(feeColumns...).From(ports.TableFeesIssued).
		Where(squirrel.Eq{"unit_id": unitID}).
		OrderBy("due_date ASC", "event_id ASC")
	return list(ctx, s, query, scanFee)
}

// InsertPaymentReceived adds a payment row; an existing event id is left as is
func (s *ReadModelStore) InsertPaymentReceived(ctx context.Context, v ports.PaymentReceivedView) error {
	return s.insertOnce(ctx, ports.TablePaymentsReceived, "event_id", paymentColumns,
		v.EventID, v.PaymentID, v.UnitID, v.Amount, v.Currency, v.PaymentDate, v.PaymentMethod, v.ReceivedAt)
}

// ListPaymentsByUnit returns the payments received for a unit by payment date
func (s *ReadModelStore) ListPaymentsByUnit(ctx context.Context, unitID string) ([]ports.PaymentReceivedView, error) {
	query := psql.Select(paymentColumns...).From(ports.TablePaymentsReceived).
		Where(squirrel.Eq{"unit_id": unitID}).
		OrderBy("payment_date ASC", "event_id ASC")
	return list(ctx, s, query, scanPayment)
}

// Reset empties one projection table
func (s *ReadModelStore) Reset(ctx context.Context, table string) error {
	if !isReadTable(table) {
		return pkgerrors.NewInvalidArgumentError(fmt.Sprintf("unknown read table '%s'", table))
	}
	_, err := QuerierFromCtx(ctx, s.db).Exec(ctx, "TRUNCATE TABLE "+table)
	return mapError(err, "reset "+table)
}

func (s *ReadModelStore) upsert(ctx context.Context, table, key string, columns []string, values ...interface{}) error {
	if err := requireKey(table, values[0]); err != nil {
		return err
	}

	sets := make([]string, 0, len(columns)-1)
	for _, column := range columns {
		if column != key {
			sets = append(sets, fmt.Sprintf("%s = EXCLUDED.%s", column, column))
		}
	}
	suffix := fmt.Sprintf("ON CONFLICT (%s) DO UPDATE SET %s WHERE %s.version < EXCLUDED.version",
		key, strings.Join(sets, ", "), table)

	return s.exec(ctx, psql.Insert(table).Columns(columns...).Values(values...).Suffix(suffix), "save "+table)
}

func (s *ReadModelStore) insertOnce(ctx context.Context, table, key string, columns []string, values ...interface{}) error {
	if err := requireKey(table, values[0]); err != nil {
		return err
	}
	suffix := fmt.Sprintf("ON CONFLICT (%s) DO NOTHING", key)
	return s.exec(ctx, psql.Insert(table).Columns(columns...).Values(values...).Suffix(suffix), "insert "+table)
}

func (s *ReadModelStore) exec(ctx context.Context, insert squirrel.InsertBuilder, operation string) error {
	sql, args, err := insert.ToSql()
	if err != nil {
		return fmt.Errorf("build %s statement: %w", operation, err)
	}
	_, err = QuerierFromCtx(ctx, s.db).Exec(ctx, sql, args...)
	return mapError(err, operation)
}

func getOne[T any](ctx context.Context, s *ReadModelStore, query squirrel.SelectBuilder, scan func(scanner) (T, error), resource string) (T, error) {
	var zero T
	sql, args, err := query.ToSql()
	if err != nil {
		return zero, fmt.Errorf("build query for %s: %w", resource, err)
	}

	row, err := scan(QuerierFromCtx(ctx, s.db).QueryRow(ctx, sql, args...))
	if isNoRows(err) {
		return zero, pkgerrors.NewNotFoundError(resource)
	}
	if err != nil {
		return zero, mapError(err, "read "+resource)
	}
	return row, nil
}

func list[T any](ctx context.Context, s *ReadModelStore, query squirrel.SelectBuilder, scan func(scanner) (T, error)) ([]T, error) {
	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list query: %w", err)
	}

	rows, err := QuerierFromCtx(ctx, s.db).Query(ctx, sql, args...)
	if err != nil {
		return nil, mapError(err, "list rows")
	}
	defer rows.Close()

	result := []T{}
	for rows.Next() {
		item, err := scan(rows)
		if err != nil {
			return nil, mapError(err, "scan row")
		}
		result = append(result, item)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err, "list rows")
	}
	return result, nil
}

func requireKey(table string, key interface{}) error {
	if k, ok := key.(string); ok && k != "" {
		return nil
	}
	return pkgerrors.NewInvalidArgumentError(fmt.Sprintf("%s row needs a key", table))
}

func isReadTable(table string) bool {
	for _, t := range ports.ReadTables {
		if t == table {
			return true
		}
	}
	return false
}

func scanCondominium(row scanner) (ports.CondominiumView, error) {
	var v ports.CondominiumView
	err := row.Scan(&v.ID, &v.Name, &v.Street, &v.City, &v.PostalCode, &v.Country, &v.Version, &v.UpdatedAt)
	return v, err
}

func scanUnit(row scanner) (ports.UnitView, error) {
	var v ports.UnitView
	err := row.Scan(&v.ID, &v.CondominiumID, &v.Identifier, &v.OwnerID, &v.Version, &v.UpdatedAt)
	return v, err
}

func scanLedger(row scanner) (ports.UnitLedgerAccountView, error) {
	var v ports.UnitLedgerAccountView
	err := row.Scan(&v.UnitID, &v.BalanceAmount, &v.Currency, &v.Version, &v.UpdatedAt)
	return v, err
}

func scanOwner(row scanner) (ports.OwnerView, error) {
	var v ports.OwnerView
	err := row.Scan(&v.ID, &v.Name, &v.Email, &v.Phone, &v.Version, &v.UpdatedAt)
	return v, err
}

func scanExpense(row scanner) (ports.ExpenseView, error) {
	var v ports.ExpenseView
	err := row.Scan(&v.ID, &v.EventID, &v.CondominiumID, &v.CategoryID, &v.Description,
		&v.Amount, &v.Currency, &v.ExpenseDate, &v.RecordedAt)
	return v, err
}

func scanFee(row scanner) (ports.FeeIssuedView, error) {
	var v ports.FeeIssuedView
	err := row.Scan(&v.EventID, &v.FeeItemID, &v.UnitID, &v.Amount, &v.Currency,
		&v.DueDate, &v.Description, &v.IssuedAt)
	return v, err
}

func scanPayment(row scanner) (ports.PaymentReceivedView, error) {
	var v ports.PaymentReceivedView
	err := row.Scan(&v.EventID, &v.PaymentID, &v.UnitID, &v.Amount, &v.Currency,
		&v.PaymentDate, &v.PaymentMethod, &v.ReceivedAt)
	return v, err
}

var (
	_ ports.EventStore     = (*EventStore)(nil)
	_ ports.StreamReader   = (*EventStore)(nil)
	_ ports.TxRunner       = (*TxManager)(nil)
	_ ports.ReadModelStore = (*ReadModelStore)(nil)
)
