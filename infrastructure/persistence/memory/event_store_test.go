package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luisriego/MatisseAPI-sub001/application/ports"
	"github.com/luisriego/MatisseAPI-sub001/domain/core/valueobjects"
	"github.com/luisriego/MatisseAPI-sub001/domain/events"
	"github.com/luisriego/MatisseAPI-sub001/infrastructure/persistence/schema"
	"github.com/luisriego/MatisseAPI-sub001/infrastructure/persistence/serialization"
	pkgerrors "github.com/luisriego/MatisseAPI-sub001/pkg/errors"
)

func newTestEventStore() *EventStore {
	registry := events.DefaultRegistry()
	upcasters := schema.DefaultUpcasters()
	return NewEventStore(
		serialization.NewSerializer(registry, upcasters),
		serialization.NewDeserializer(registry, upcasters),
	)
}

func usd(amount int64) valueobjects.Money {
	return valueobjects.NewMoney(amount, valueobjects.USD)
}

func ledgerEvents(unitID valueobjects.UnitID) []events.DomainEvent {
	return []events.DomainEvent{
		events.NewUnitLedgerAccountCreated(unitID, usd(1000)),
		events.NewFeeAppliedToUnitLedger(unitID, valueobjects.NewFeeItemID(), usd(500),
			time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC), "March fee"),
	}
}

func TestEventStoreAppendAndGetEvents(t *testing.T) {
	ctx := context.Background()
	store := newTestEventStore()
	unitID := valueobjects.NewUnitID()
	evts := ledgerEvents(unitID)

	envelopes, err := store.Append(ctx, ports.ExpectedVersions{}, evts...)
	require.NoError(t, err)
	require.Len(t, envelopes, 2)
	assert.Equal(t, 1, envelopes[0].Version)
	assert.Equal(t, 2, envelopes[1].Version)
	assert.Equal(t, int64(1), envelopes[0].Position)
	assert.Equal(t, int64(2), envelopes[1].Position)
	assert.Equal(t, events.AggregateTypeUnitLedgerAccount, envelopes[0].AggregateType)

	stored, err := store.GetEvents(ctx, unitID.String())
	require.NoError(t, err)
	require.Len(t, stored, 2)
	for i := range evts {
		assert.Equal(t, evts[i].EventID(), stored[i].Event.EventID())
		assert.Equal(t, evts[i], stored[i].Event)
		assert.Equal(t, i+1, stored[i].Version)
	}
}

func TestEventStoreGetEventsUnknownAggregate(t *testing.T) {
	store := newTestEventStore()

	stored, err := store.GetEvents(context.Background(), valueobjects.NewUnitID().String())
	require.NoError(t, err)
	assert.Empty(t, stored)
}

func TestEventStoreAppendNothing(t *testing.T) {
	store := newTestEventStore()

	envelopes, err := store.Append(context.Background(), ports.ExpectedVersions{})
	require.NoError(t, err)
	assert.Empty(t, envelopes)
}

func TestEventStoreConcurrencyConflict(t *testing.T) {
	ctx := context.Background()
	store := newTestEventStore()
	unitID := valueobjects.NewUnitID()

	_, err := store.Append(ctx, ports.ExpectedVersions{}, ledgerEvents(unitID)...)
	require.NoError(t, err)

	// two writers that both loaded version 2
	first := events.NewPaymentReceivedOnUnitLedger(unitID, valueobjects.NewPaymentID(), usd(100), time.Now(), "pix")
	second := events.NewPaymentReceivedOnUnitLedger(unitID, valueobjects.NewPaymentID(), usd(200), time.Now(), "cash")

	_, err = store.Append(ctx, ports.ExpectedVersions{unitID.String(): 2}, first)
	require.NoError(t, err)

	_, err = store.Append(ctx, ports.ExpectedVersions{unitID.String(): 2}, second)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsConcurrencyConflict(err))

	stored, err := store.GetEvents(ctx, unitID.String())
	require.NoError(t, err)
	assert.Len(t, stored, 3)
}

func TestEventStoreMultiStreamAppendIsAllOrNothing(t *testing.T) {
	ctx := context.Background()
	store := newTestEventStore()
	existing := valueobjects.NewUnitID()
	fresh := valueobjects.NewUnitID()

	_, err := store.Append(ctx, ports.ExpectedVersions{}, ledgerEvents(existing)...)
	require.NoError(t, err)

	batch := []events.DomainEvent{
		events.NewUnitLedgerAccountCreated(fresh, usd(0)),
		events.NewPaymentReceivedOnUnitLedger(existing, valueobjects.NewPaymentID(), usd(100), time.Now(), "pix"),
	}
	_, err = store.Append(ctx, ports.ExpectedVersions{existing.String(): 1}, batch...)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsConcurrencyConflict(err))

	stored, err := store.GetEvents(ctx, fresh.String())
	require.NoError(t, err)
	assert.Empty(t, stored)
}

func TestEventStoreRollbackRemovesAppendedEvents(t *testing.T) {
	ctx := context.Background()
	store := newTestEventStore()
	runner := NewTxRunner()
	unitID := valueobjects.NewUnitID()
	boom := errors.New("projection failed")

	err := runner.RunInTx(ctx, func(ctx context.Context) error {
		if _, err := store.Append(ctx, ports.ExpectedVersions{}, ledgerEvents(unitID)...); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	stored, err := store.GetEvents(ctx, unitID.String())
	require.NoError(t, err)
	assert.Empty(t, stored)

	all, err := store.ReadAll(ctx, 0, 10)
	require.NoError(t, err)
	assert.Empty(t, all)

	// the stream is writable again from version 0
	_, err = store.Append(ctx, ports.ExpectedVersions{}, ledgerEvents(unitID)...)
	require.NoError(t, err)
}

func TestEventStoreStagedAppendsStayPrivateToTx(t *testing.T) {
	ctx := context.Background()
	store := newTestEventStore()
	runner := NewTxRunner()
	unitID := valueobjects.NewUnitID()
	boom := errors.New("projection failed")

	tests := []struct {
		name    string
		outcome error
		visible int
	}{
		{name: "rolled back", outcome: boom, visible: 0},
		{name: "committed", outcome: nil, visible: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			staged := make(chan struct{})
			release := make(chan struct{})
			done := make(chan error, 1)

			go func() {
				done <- runner.RunInTx(ctx, func(txCtx context.Context) error {
					if _, err := store.Append(txCtx, ports.ExpectedVersions{}, ledgerEvents(unitID)...); err != nil {
						return err
					}

					own, err := store.GetEvents(txCtx, unitID.String())
					if err != nil {
						return err
					}
					if len(own) != 2 {
						return errors.New("tx does not see its own appends")
					}

					close(staged)
					<-release
					return tt.outcome
				})
			}()

			<-staged
			stream, err := store.GetEvents(ctx, unitID.String())
			require.NoError(t, err)
			assert.Empty(t, stream)

			all, err := store.ReadAll(ctx, 0, 10)
			require.NoError(t, err)
			assert.Empty(t, all)

			close(release)
			if tt.outcome != nil {
				require.ErrorIs(t, <-done, tt.outcome)
			} else {
				require.NoError(t, <-done)
			}

			stream, err = store.GetEvents(ctx, unitID.String())
			require.NoError(t, err)
			assert.Len(t, stream, tt.visible)
		})
	}
}

func TestEventStoreStagedReadAllIncludesOwnAppends(t *testing.T) {
	ctx := context.Background()
	store := newTestEventStore()
	runner := NewTxRunner()

	_, err := store.Append(ctx, ports.ExpectedVersions{}, ledgerEvents(valueobjects.NewUnitID())...)
	require.NoError(t, err)

	err = runner.RunInTx(ctx, func(txCtx context.Context) error {
		_, err := store.Append(txCtx, ports.ExpectedVersions{}, ledgerEvents(valueobjects.NewUnitID())...)
		require.NoError(t, err)

		inside, err := store.ReadAll(txCtx, 0, 10)
		require.NoError(t, err)
		assert.Len(t, inside, 4)

		outside, err := store.ReadAll(ctx, 0, 10)
		require.NoError(t, err)
		assert.Len(t, outside, 2)
		return nil
	})
	require.NoError(t, err)

	all, err := store.ReadAll(ctx, 0, 10)
	require.NoError(t, err)
	require.Len(t, all, 4)
	for i, env := range all {
		assert.Equal(t, int64(i+1), env.Position)
	}
}

func TestEventStoreCommitConflictsWithDirectWrite(t *testing.T) {
	ctx := context.Background()
	store := newTestEventStore()
	runner := NewTxRunner()
	unitID := valueobjects.NewUnitID()

	err := runner.RunInTx(ctx, func(txCtx context.Context) error {
		_, err := store.Append(txCtx, ports.ExpectedVersions{}, ledgerEvents(unitID)...)
		require.NoError(t, err)

		// same slot taken outside the tx before it commits
		_, err = store.Append(ctx, ports.ExpectedVersions{}, events.NewUnitLedgerAccountCreated(unitID, usd(0)))
		require.NoError(t, err)
		return nil
	})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsConcurrencyConflict(err))

	stream, err := store.GetEvents(ctx, unitID.String())
	require.NoError(t, err)
	assert.Len(t, stream, 1)
}

func TestEventStoreReadAll(t *testing.T) {
	ctx := context.Background()
	store := newTestEventStore()

	for i := 0; i < 3; i++ {
		_, err := store.Append(ctx, ports.ExpectedVersions{}, ledgerEvents(valueobjects.NewUnitID())...)
		require.NoError(t, err)
	}

	tests := []struct {
		name      string
		after     int64
		limit     int
		positions []int64
	}{
		{name: "first page", after: 0, limit: 4, positions: []int64{1, 2, 3, 4}},
		{name: "second page", after: 4, limit: 4, positions: []int64{5, 6}},
		{name: "past the end", after: 6, limit: 4, positions: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			batch, err := store.ReadAll(ctx, tt.after, tt.limit)
			require.NoError(t, err)

			var positions []int64
			for _, env := range batch {
				positions = append(positions, env.Position)
			}
			assert.Equal(t, tt.positions, positions)
		})
	}

	_, err := store.ReadAll(ctx, 0, 0)
	assert.True(t, pkgerrors.IsInvalidArgument(err))
}
