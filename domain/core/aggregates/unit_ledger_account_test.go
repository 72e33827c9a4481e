package aggregates

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luisriego/MatisseAPI-sub001/domain/core/valueobjects"
	"github.com/luisriego/MatisseAPI-sub001/domain/events"
	pkgerrors "github.com/luisriego/MatisseAPI-sub001/pkg/errors"
)

var dueDate = time.Date(2026, 4, 10, 0, 0, 0, 0, time.UTC)

func TestUnitLedgerFeeAndPayment(t *testing.T) {
	ledger, err := CreateNewUnitLedgerAccount(valueobjects.NewUnitID(), usd(1000))
	require.NoError(t, err)

	require.NoError(t, ledger.ApplyFee(valueobjects.NewFeeItemID(), usd(500), dueDate, "April fee"))
	require.NoError(t, ledger.ReceivePayment(usd(300), valueobjects.NewPaymentID(), dueDate, "pix"))

	assert.Equal(t, int64(1200), ledger.Balance().Amount())
	assert.Equal(t, 3, ledger.Version())

	history := ledger.PullDomainEvents()
	require.Len(t, history, 3)
	assert.Equal(t, events.EventUnitLedgerCreated, history[0].EventName())
	assert.Equal(t, events.EventUnitLedgerFeeApplied, history[1].EventName())
	assert.Equal(t, events.EventUnitLedgerPaymentReceived, history[2].EventName())

	rebuilt, err := ReconstituteUnitLedgerAccount(history...)
	require.NoError(t, err)
	assert.Equal(t, int64(1200), rebuilt.Balance().Amount())
	assert.True(t, rebuilt.UnitID().Equals(ledger.UnitID()))
	assert.Equal(t, 3, rebuilt.Version())
	assert.Empty(t, rebuilt.PullDomainEvents())
}

func TestUnitLedgerAllowsNegativeBalance(t *testing.T) {
	ledger, err := CreateNewUnitLedgerAccount(valueobjects.NewUnitID(), usd(0))
	require.NoError(t, err)

	require.NoError(t, ledger.ReceivePayment(usd(2500), valueobjects.NewPaymentID(), dueDate, "transfer"))
	assert.Equal(t, int64(-2500), ledger.Balance().Amount())
}

func TestUnitLedgerRejectsBalanceOverflow(t *testing.T) {
	tests := []struct {
		name    string
		initial int64
		change  func(*UnitLedgerAccount) error
		balance int64
	}{
		{
			name:    "fee past the largest balance",
			initial: math.MaxInt64 - 10,
			change: func(l *UnitLedgerAccount) error {
				return l.ApplyFee(valueobjects.NewFeeItemID(), usd(100), dueDate, "fee")
			},
			balance: math.MaxInt64 - 10,
		},
		{
			name:    "payment past the smallest balance",
			initial: 0,
			change: func(l *UnitLedgerAccount) error {
				if err := l.ReceivePayment(usd(math.MaxInt64), valueobjects.NewPaymentID(), dueDate, "pix"); err != nil {
					return err
				}
				l.PullDomainEvents()
				return l.ReceivePayment(usd(100), valueobjects.NewPaymentID(), dueDate, "pix")
			},
			balance: -math.MaxInt64,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ledger, err := CreateNewUnitLedgerAccount(valueobjects.NewUnitID(), usd(tt.initial))
			require.NoError(t, err)
			ledger.PullDomainEvents()

			err = tt.change(ledger)
			require.Error(t, err)
			assert.True(t, pkgerrors.IsInvalidArgument(err))

			assert.Empty(t, ledger.PullDomainEvents())
			assert.Equal(t, tt.balance, ledger.Balance().Amount())
		})
	}
}

func TestUnitLedgerCurrencyMismatch(t *testing.T) {
	ledger, err := CreateNewUnitLedgerAccount(valueobjects.NewUnitID(), usd(1000))
	require.NoError(t, err)
	ledger.PullDomainEvents()

	brl := valueobjects.NewMoney(500, valueobjects.BRL)

	err = ledger.ApplyFee(valueobjects.NewFeeItemID(), brl, dueDate, "fee")
	assert.True(t, pkgerrors.IsCurrencyMismatch(err))

	err = ledger.ReceivePayment(brl, valueobjects.NewPaymentID(), dueDate, "pix")
	assert.True(t, pkgerrors.IsCurrencyMismatch(err))

	assert.Equal(t, int64(1000), ledger.Balance().Amount())
	assert.Empty(t, ledger.PullDomainEvents())
}

func TestUnitLedgerRejectsNonPositiveAmounts(t *testing.T) {
	ledger, err := CreateNewUnitLedgerAccount(valueobjects.NewUnitID(), usd(1000))
	require.NoError(t, err)

	assert.True(t, pkgerrors.IsInvalidArgument(ledger.ApplyFee(valueobjects.NewFeeItemID(), usd(0), dueDate, "")))
	assert.True(t, pkgerrors.IsInvalidArgument(ledger.ReceivePayment(usd(-1), valueobjects.NewPaymentID(), dueDate, "")))
	assert.True(t, pkgerrors.IsInvalidArgument(ledger.ApplyFee(valueobjects.FeeItemID{}, usd(1), dueDate, "")))
	assert.True(t, pkgerrors.IsInvalidArgument(ledger.ApplyFee(valueobjects.NewFeeItemID(), usd(1), time.Time{}, "")))
}
