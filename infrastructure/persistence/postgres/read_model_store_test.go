package postgres

import (
	"context"
	"regexp"
	"testing"
	"time"

	pgxmock "github.com/pashagolub/pgxmock/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luisriego/MatisseAPI-sub001/application/ports"
	pkgerrors "github.com/luisriego/MatisseAPI-sub001/pkg/errors"
)

func newMockReadModels(t *testing.T) (*ReadModelStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return NewReadModelStore(mock), mock
}

func TestReadModelStoreSaveIsVersionGuarded(t *testing.T) {
	store, mock := newMockReadModels(t)
	now := time.Now().UTC()

	mock.ExpectExec(regexp.QuoteMeta(
		"ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, street = EXCLUDED.street, " +
			"city = EXCLUDED.city, postal_code = EXCLUDED.postal_code, country = EXCLUDED.country, " +
			"version = EXCLUDED.version, updated_at = EXCLUDED.updated_at " +
			"WHERE condominiums.version < EXCLUDED.version")).
		WithArgs("c1", "Sunset", "Main St 1", "Lisbon", "1000", "PT", 3, now).
		WillReturnResult(pgxmock.NewResult("INSERT", 0))

	err := store.SaveCondominium(context.Background(), ports.CondominiumView{
		ID: "c1", Name: "Sunset", Street: "Main St 1", City: "Lisbon",
		PostalCode: "1000", Country: "PT", Version: 3, UpdatedAt: now,
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReadModelStoreInsertOnce(t *testing.T) {
	store, mock := newMockReadModels(t)
	now := time.Now().UTC()

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO fees_issued")+".*"+regexp.QuoteMeta("ON CONFLICT (event_id) DO NOTHING")).
		WithArgs("e1", "f1", "u1", int64(500), "USD", now, "March fee", now).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := store.InsertFeeIssued(context.Background(), ports.FeeIssuedView{
		EventID: "e1", FeeItemID: "f1", UnitID: "u1", Amount: 500, Currency: "USD",
		DueDate: now, Description: "March fee", IssuedAt: now,
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReadModelStoreRejectsMissingKey(t *testing.T) {
	store, mock := newMockReadModels(t)

	err := store.SaveOwner(context.Background(), ports.OwnerView{Name: "Ana"})
	assert.True(t, pkgerrors.IsInvalidArgument(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReadModelStoreGet(t *testing.T) {
	now := time.Now().UTC()

	tests := []struct {
		name  string
		rows  *pgxmock.Rows
		check func(t *testing.T, view ports.UnitLedgerAccountView, err error)
	}{
		{
			name: "existing row",
			rows: pgxmock.NewRows(ledgerColumns).AddRow("u1", int64(1200), "USD", 3, now),
			check: func(t *testing.T, view ports.UnitLedgerAccountView, err error) {
				require.NoError(t, err)
				assert.Equal(t, int64(1200), view.BalanceAmount)
				assert.Equal(t, 3, view.Version)
			},
		},
		{
			name: "missing row",
			rows: pgxmock.NewRows(ledgerColumns),
			check: func(t *testing.T, _ ports.UnitLedgerAccountView, err error) {
				assert.True(t, pkgerrors.IsNotFound(err))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, mock := newMockReadModels(t)
			mock.ExpectQuery(regexp.QuoteMeta("FROM unit_ledger_accounts WHERE unit_id = $1")).
				WithArgs("u1").
				WillReturnRows(tt.rows)

			view, err := store.GetUnitLedgerAccount(context.Background(), "u1")
			tt.check(t, view, err)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestReadModelStoreListReturnsEmptySlice(t *testing.T) {
	store, mock := newMockReadModels(t)
	mock.ExpectQuery(regexp.QuoteMeta("FROM units WHERE condominium_id = $1 ORDER BY identifier ASC")).
		WithArgs("c1").
		WillReturnRows(pgxmock.NewRows(unitColumns))

	units, err := store.ListUnitsByCondominium(context.Background(), "c1")
	require.NoError(t, err)
	assert.NotNil(t, units)
	assert.Empty(t, units)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReadModelStoreReset(t *testing.T) {
	store, mock := newMockReadModels(t)

	err := store.Reset(context.Background(), "users; DROP TABLE ledger_events")
	assert.True(t, pkgerrors.IsInvalidArgument(err))

	mock.ExpectExec(regexp.QuoteMeta("TRUNCATE TABLE expenses")).
		WillReturnResult(pgxmock.NewResult("TRUNCATE", 0))
	require.NoError(t, store.Reset(context.Background(), ports.TableExpenses))
	assert.NoError(t, mock.ExpectationsWereMet())
}
