package projections

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
	"github.com/luisriego/MatisseAPI-sub001/infrastructure/persistence/memory"
	"github.com/luisriego/MatisseAPI-sub001/infrastructure/persistence/schema"
	"github.com/luisriego/MatisseAPI-sub001/infrastructure/persistence/serialization"
	pkgerrors "github.com/luisriego/MatisseAPI-sub001/pkg/errors"
)

type failingProjector struct {
	name  string
	event string
	err   error
	calls int
}

func (p *failingProjector) Name() string                    { return p.name }
func (p *failingProjector) Handles(eventName string) bool   { return eventName == p.event }
func (p *failingProjector) Reset(ctx context.Context) error { return nil }

func (p *failingProjector) Project(ctx context.Context, env events.Envelope) error {
	p.calls++
	return p.err
}

type recordingMetrics struct {
	observations map[string]int
	failures     map[string]int
}

func (m *recordingMetrics) RecordProjection(projector string, duration time.Duration, err error) {
	m.observations[projector]++
	if err != nil {
		m.failures[projector]++
	}
}

func newEventStore() *memory.EventStore {
	registry := events.DefaultRegistry()
	upcasters := schema.DefaultUpcasters()
	return memory.NewEventStore(
		serialization.NewSerializer(registry, upcasters),
		serialization.NewDeserializer(registry, upcasters),
	)
}

func TestNewManagerRejectsDuplicateNames(t *testing.T) {
	store := memory.NewReadModelStore()

	_, err := NewManager(ManagerOptions{}, NewUnitProjector(store), NewUnitProjector(store))
	assert.Error(t, err)
}

func TestManagerReportsFailingProjector(t *testing.T) {
	ctx := context.Background()
	store := memory.NewReadModelStore()
	boom := errors.New("disk full")
	failing := &failingProjector{name: "broken", event: events.EventUnitLedgerFeeApplied, err: boom}
	metrics := &recordingMetrics{observations: map[string]int{}, failures: map[string]int{}}

	manager, err := NewManager(ManagerOptions{Metrics: metrics},
		NewUnitLedgerAccountProjector(store), failing, NewFeesIssuedProjector(store))
	require.NoError(t, err)

	unitID := valueobjects.NewUnitID()
	stream := envelopes(
		events.NewUnitLedgerAccountCreated(unitID, usd(0)),
		events.NewFeeAppliedToUnitLedger(unitID, valueobjects.NewFeeItemID(), usd(500), time.Now(), "fee"),
	)

	err = manager.Project(ctx, stream)
	require.Error(t, err)

	var projErr *ProjectionError
	require.True(t, errors.As(err, &projErr))
	assert.Equal(t, "broken", projErr.Projector)
	assert.Equal(t, stream[1].Event.EventID(), projErr.EventID)
	assert.Equal(t, events.EventUnitLedgerFeeApplied, projErr.EventType)
	assert.Equal(t, unitID.String(), projErr.AggregateID)
	assert.Equal(t, int64(2), projErr.Position)
	assert.ErrorIs(t, err, boom)
	assert.True(t, pkgerrors.IsProjection(err))

	// projectors after the failing one never saw the event
	fees, err := store.ListFeesByUnit(ctx, unitID.String())
	require.NoError(t, err)
	assert.Empty(t, fees)

	stats := manager.Stats()
	assert.Equal(t, int64(1), stats["broken"].ErrorCount)
	assert.Equal(t, int64(2), stats[ports.TableUnitLedgerAccounts].EventsProcessed)
	assert.Equal(t, 1, metrics.failures["broken"])
}

func TestManagerFailureRollsBackAppend(t *testing.T) {
	ctx := context.Background()
	eventStore := newEventStore()
	readModels := memory.NewReadModelStore()
	tx := memory.NewTxRunner()
	failing := &failingProjector{name: "broken", event: events.EventUnitLedgerFeeApplied, err: errors.New("boom")}

	manager, err := NewManager(ManagerOptions{}, NewUnitLedgerAccountProjector(readModels), failing)
	require.NoError(t, err)

	unitID := valueobjects.NewUnitID()
	evts := []events.DomainEvent{
		events.NewUnitLedgerAccountCreated(unitID, usd(100)),
		events.NewFeeAppliedToUnitLedger(unitID, valueobjects.NewFeeItemID(), usd(500), time.Now(), "fee"),
	}

	err = tx.RunInTx(ctx, func(ctx context.Context) error {
		stored, err := eventStore.Append(ctx, ports.ExpectedVersions{}, evts...)
		if err != nil {
			return err
		}
		return manager.Project(ctx, stored)
	})
	require.Error(t, err)

	stream, err := eventStore.GetEvents(ctx, unitID.String())
	require.NoError(t, err)
	assert.Empty(t, stream)

	_, err = readModels.GetUnitLedgerAccount(ctx, unitID.String())
	assert.True(t, pkgerrors.IsNotFound(err))
}

func seedLedgers(t *testing.T, eventStore *memory.EventStore, count int) []valueobjects.UnitID {
	t.Helper()
	ids := make([]valueobjects.UnitID, count)
	for i := range ids {
		ids[i] = valueobjects.NewUnitID()
		_, err := eventStore.Append(context.Background(), ports.ExpectedVersions{},
			events.NewUnitLedgerAccountCreated(ids[i], usd(1000)),
			events.NewFeeAppliedToUnitLedger(ids[i], valueobjects.NewFeeItemID(), usd(250), time.Now(), "fee"),
		)
		require.NoError(t, err)
	}
	return ids
}

func TestReplayRebuildsTables(t *testing.T) {
	ctx := context.Background()
	eventStore := newEventStore()
	readModels := memory.NewReadModelStore()
	ids := seedLedgers(t, eventStore, 3)

	manager, err := NewManager(ManagerOptions{
		Reader:    eventStore,
		Store:     eventStore,
		Tx:        memory.NewTxRunner(),
		BatchSize: 4,
	}, Projectors(readModels)...)
	require.NoError(t, err)

	report, err := manager.Replay(ctx, ReplayRange{Reset: true})
	require.NoError(t, err)
	assert.Equal(t, 6, report.Events)
	assert.Equal(t, 9, report.Applied)
	assert.Equal(t, int64(6), report.LastPosition)

	for _, id := range ids {
		ledger, err := readModels.GetUnitLedgerAccount(ctx, id.String())
		require.NoError(t, err)
		assert.Equal(t, int64(1250), ledger.BalanceAmount)
	}

	// a second full replay changes nothing
	_, err = manager.Replay(ctx, ReplayRange{})
	require.NoError(t, err)
	fees, err := readModels.ListFeesByUnit(ctx, ids[0].String())
	require.NoError(t, err)
	assert.Len(t, fees, 1)
}

func TestReplayRange(t *testing.T) {
	ctx := context.Background()
	eventStore := newEventStore()
	readModels := memory.NewReadModelStore()
	seedLedgers(t, eventStore, 3)

	manager, err := NewManager(ManagerOptions{Reader: eventStore, BatchSize: 2}, Projectors(readModels)...)
	require.NoError(t, err)

	report, err := manager.Replay(ctx, ReplayRange{From: 3, To: 4, Projectors: []string{ports.TableFeesIssued}})
	require.NoError(t, err)
	assert.Equal(t, 2, report.Events)
	assert.Equal(t, 1, report.Applied)
	assert.Equal(t, int64(4), report.LastPosition)

	_, err = manager.Replay(ctx, ReplayRange{Projectors: []string{"nope"}})
	assert.True(t, pkgerrors.IsInvalidArgument(err))

	_, err = manager.Replay(ctx, ReplayRange{From: 5, To: 2})
	assert.True(t, pkgerrors.IsInvalidArgument(err))
}

func TestReplayReportsPositionGaps(t *testing.T) {
	ctx := context.Background()
	eventStore := newEventStore()
	readModels := memory.NewReadModelStore()
	tx := memory.NewTxRunner()

	seedLedgers(t, eventStore, 1)
	err := tx.RunInTx(ctx, func(ctx context.Context) error {
		unitID := valueobjects.NewUnitID()
		_, err := eventStore.Append(ctx, ports.ExpectedVersions{},
			events.NewUnitLedgerAccountCreated(unitID, usd(1000)),
			events.NewFeeAppliedToUnitLedger(unitID, valueobjects.NewFeeItemID(), usd(250), time.Now(), "fee"),
		)
		require.NoError(t, err)
		return errors.New("rolled back")
	})
	require.Error(t, err)
	seedLedgers(t, eventStore, 1)

	manager, err := NewManager(ManagerOptions{Reader: eventStore, BatchSize: 3}, Projectors(readModels)...)
	require.NoError(t, err)

	tests := []struct {
		name     string
		rng      ReplayRange
		events   int
		gaps     int64
		firstGap int64
	}{
		{name: "whole log", rng: ReplayRange{}, events: 4, gaps: 2, firstGap: 3},
		{name: "after the gap", rng: ReplayRange{From: 5}, events: 2},
		{name: "up to the gap", rng: ReplayRange{To: 4}, events: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report, err := manager.Replay(ctx, tt.rng)
			require.NoError(t, err)
			assert.Equal(t, tt.events, report.Events)
			assert.Equal(t, tt.gaps, report.Gaps)
			assert.Equal(t, tt.firstGap, report.FirstGap)
		})
	}
}

func TestReplayAggregates(t *testing.T) {
	ctx := context.Background()
	eventStore := newEventStore()
	readModels := memory.NewReadModelStore()
	ids := seedLedgers(t, eventStore, 2)

	manager, err := NewManager(ManagerOptions{Store: eventStore}, Projectors(readModels)...)
	require.NoError(t, err)

	report, err := manager.ReplayAggregates(ctx, ids[1].String(), valueobjects.NewUnitID().String())
	require.NoError(t, err)
	assert.Equal(t, 2, report.Events)
	assert.Equal(t, int64(4), report.LastPosition)

	_, err = readModels.GetUnitLedgerAccount(ctx, ids[0].String())
	assert.True(t, pkgerrors.IsNotFound(err))
	ledger, err := readModels.GetUnitLedgerAccount(ctx, ids[1].String())
	require.NoError(t, err)
	assert.Equal(t, int64(1250), ledger.BalanceAmount)
}

func TestReplayWithoutReader(t *testing.T) {
	manager := newTestManager(t, memory.NewReadModelStore())

	_, err := manager.Replay(context.Background(), ReplayRange{})
	assert.True(t, pkgerrors.IsInvalidArgument(err))
}
