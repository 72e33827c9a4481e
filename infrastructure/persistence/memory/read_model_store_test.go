package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luisriego/MatisseAPI-sub001/application/ports"
	pkgerrors "github.com/luisriego/MatisseAPI-sub001/pkg/errors"
)

func TestReadModelStoreVersionGuard(t *testing.T) {
	ctx := context.Background()
	store := NewReadModelStore()

	require.NoError(t, store.SaveUnitLedgerAccount(ctx, ports.UnitLedgerAccountView{UnitID: "u1", BalanceAmount: 1500, Currency: "USD", Version: 2}))
	require.NoError(t, store.SaveUnitLedgerAccount(ctx, ports.UnitLedgerAccountView{UnitID: "u1", BalanceAmount: 1000, Currency: "USD", Version: 1}))

	row, err := store.GetUnitLedgerAccount(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(1500), row.BalanceAmount)
	assert.Equal(t, 2, row.Version)
}

func TestReadModelStoreGetMissingRow(t *testing.T) {
	store := NewReadModelStore()

	_, err := store.GetCondominium(context.Background(), "missing")
	assert.True(t, pkgerrors.IsNotFound(err))
}

func TestReadModelStoreInsertOnce(t *testing.T) {
	ctx := context.Background()
	store := NewReadModelStore()
	fee := ports.FeeIssuedView{EventID: "e1", UnitID: "u1", Amount: 500, Currency: "USD", DueDate: time.Now()}

	require.NoError(t, store.InsertFeeIssued(ctx, fee))
	require.NoError(t, store.InsertFeeIssued(ctx, fee))

	fees, err := store.ListFeesByUnit(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, fees, 1)
}

func TestReadModelStoreRollback(t *testing.T) {
	ctx := context.Background()
	store := NewReadModelStore()
	runner := NewTxRunner()
	boom := errors.New("boom")

	require.NoError(t, store.SaveOwner(ctx, ports.OwnerView{ID: "o1", Name: "Ana", Version: 1}))

	err := runner.RunInTx(ctx, func(ctx context.Context) error {
		require.NoError(t, store.SaveOwner(ctx, ports.OwnerView{ID: "o1", Name: "Ana Maria", Version: 2}))
		require.NoError(t, store.SaveOwner(ctx, ports.OwnerView{ID: "o2", Name: "Bruno", Version: 1}))
		require.NoError(t, store.Reset(ctx, ports.TableUnits))
		return boom
	})
	require.ErrorIs(t, err, boom)

	owners, err := store.ListOwners(ctx)
	require.NoError(t, err)
	require.Len(t, owners, 1)
	assert.Equal(t, "Ana", owners[0].Name)
}

func TestReadModelStoreReset(t *testing.T) {
	ctx := context.Background()
	store := NewReadModelStore()

	require.NoError(t, store.SaveUnit(ctx, ports.UnitView{ID: "u1", CondominiumID: "c1", Identifier: "101", Version: 1}))
	require.NoError(t, store.SaveUnit(ctx, ports.UnitView{ID: "u2", CondominiumID: "c1", Identifier: "102", Version: 1}))
	require.NoError(t, store.Reset(ctx, ports.TableUnits))

	units, err := store.ListUnitsByCondominium(ctx, "c1")
	require.NoError(t, err)
	assert.Empty(t, units)

	err = store.Reset(ctx, "ledger_events")
	assert.True(t, pkgerrors.IsInvalidArgument(err))
}

func TestReadModelStoreListOrdering(t *testing.T) {
	ctx := context.Background()
	store := NewReadModelStore()

	require.NoError(t, store.SaveUnit(ctx, ports.UnitView{ID: "u2", CondominiumID: "c1", Identifier: "202", Version: 1}))
	require.NoError(t, store.SaveUnit(ctx, ports.UnitView{ID: "u1", CondominiumID: "c1", Identifier: "101", Version: 1}))
	require.NoError(t, store.SaveUnit(ctx, ports.UnitView{ID: "u3", CondominiumID: "c2", Identifier: "100", Version: 1}))

	units, err := store.ListUnitsByCondominium(ctx, "c1")
	require.NoError(t, err)
	require.Len(t, units, 2)
	assert.Equal(t, "101", units[0].Identifier)
	assert.Equal(t, "202", units[1].Identifier)
}
