package eventsourced

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/luisriego/MatisseAPI-sub001/application/ports"
	"github.com/luisriego/MatisseAPI-sub001/application/projections"
	"github.com/luisriego/MatisseAPI-sub001/domain/core/aggregates"
	"github.com/luisriego/MatisseAPI-sub001/domain/core/valueobjects"
	"github.com/luisriego/MatisseAPI-sub001/domain/events"
	"github.com/luisriego/MatisseAPI-sub001/infrastructure/persistence/memory"
	"github.com/luisriego/MatisseAPI-sub001/infrastructure/persistence/schema"
	"github.com/luisriego/MatisseAPI-sub001/infrastructure/persistence/serialization"
	pkgerrors "github.com/luisriego/MatisseAPI-sub001/pkg/errors"
)

type fixture struct {
	store      *memory.EventStore
	readModels *memory.ReadModelStore
	deps       Dependencies
}

func newFixture(t *testing.T, extra ...ports.Projector) *fixture {
	t.Helper()

	registry := events.DefaultRegistry()
	upcasters := schema.DefaultUpcasters()
	store := memory.NewEventStore(
		serialization.NewSerializer(registry, upcasters),
		serialization.NewDeserializer(registry, upcasters),
	)
	readModels := memory.NewReadModelStore()

	manager, err := projections.NewManager(projections.ManagerOptions{},
		append(projections.Projectors(readModels), extra...)...)
	require.NoError(t, err)

	return &fixture{
		store:      store,
		readModels: readModels,
		deps: Dependencies{
			Store:       store,
			Tx:          memory.NewTxRunner(),
			Projections: manager,
			Logger:      zap.NewNop(),
		},
	}
}

func usd(amount int64) valueobjects.Money {
	return valueobjects.NewMoney(amount, valueobjects.USD)
}

func TestUnitLedgerSaveAndFind(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	repo := NewUnitLedgerAccountRepository(f.deps)

	unitID := valueobjects.NewUnitID()
	ledger, err := aggregates.CreateNewUnitLedgerAccount(unitID, usd(1000))
	require.NoError(t, err)
	require.NoError(t, ledger.ApplyFee(valueobjects.NewFeeItemID(), usd(500), time.Now(), "fee"))
	require.NoError(t, repo.Save(ctx, ledger))
	assert.False(t, ledger.HasPendingEvents())

	loaded, err := repo.FindByID(ctx, unitID)
	require.NoError(t, err)
	require.NoError(t, loaded.ReceivePayment(usd(300), valueobjects.NewPaymentID(), time.Now(), "pix"))
	require.NoError(t, repo.Save(ctx, loaded))

	reloaded, err := repo.FindByID(ctx, unitID)
	require.NoError(t, err)
	assert.True(t, reloaded.Balance().Equals(usd(1200)))
	assert.Equal(t, 3, reloaded.Version())

	view, err := f.readModels.GetUnitLedgerAccount(ctx, unitID.String())
	require.NoError(t, err)
	assert.Equal(t, int64(1200), view.BalanceAmount)
	assert.Equal(t, 3, view.Version)
}

func TestSaveWithoutPendingEventsIsNoop(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	repo := NewOwnerRepository(f.deps)

	email, err := valueobjects.NewEmail("ana@example.com")
	require.NoError(t, err)
	owner, err := aggregates.CreateNewOwner(valueobjects.NewOwnerID(), "Ana", email, valueobjects.Phone{})
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, owner))
	require.NoError(t, repo.Save(ctx, owner))

	stream, err := f.store.GetEvents(ctx, owner.AggregateID())
	require.NoError(t, err)
	assert.Len(t, stream, 1)
}

func TestFindByIDUnknownAggregate(t *testing.T) {
	f := newFixture(t)
	repo := NewCondominiumRepository(f.deps)

	_, err := repo.FindByID(context.Background(), valueobjects.NewCondominiumID())
	assert.True(t, pkgerrors.IsNotFound(err))
}

func TestStaleSavesConflict(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	repo := NewAccountRepository(f.deps)

	accountID := valueobjects.NewAccountID()
	account, err := aggregates.CreateNewAccount(accountID, usd(10000))
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, account))

	first, err := repo.FindByID(ctx, accountID)
	require.NoError(t, err)
	second, err := repo.FindByID(ctx, accountID)
	require.NoError(t, err)

	require.NoError(t, first.Deposit(usd(5000)))
	require.NoError(t, second.Withdraw(usd(3000)))

	var (
		wg      sync.WaitGroup
		results = make([]error, 2)
	)
	for i, acc := range []*aggregates.Account{first, second} {
		wg.Add(1)
		go func(i int, acc *aggregates.Account) {
			defer wg.Done()
			results[i] = repo.Save(ctx, acc)
		}(i, acc)
	}
	wg.Wait()

	succeeded, conflicted := 0, 0
	for _, err := range results {
		switch {
		case err == nil:
			succeeded++
		case pkgerrors.IsConcurrencyConflict(err):
			conflicted++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 1, conflicted)

	stream, err := f.store.GetEvents(ctx, accountID.String())
	require.NoError(t, err)
	assert.Len(t, stream, 2)
}

func TestSaveCreateOfExistingStreamReportsAlreadyExists(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	repo := NewAccountRepository(f.deps)

	accountID := valueobjects.NewAccountID()
	first, err := aggregates.CreateNewAccount(accountID, usd(100))
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, first))

	duplicate, err := aggregates.CreateNewAccount(accountID, usd(200))
	require.NoError(t, err)

	err = repo.Save(ctx, duplicate)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsDomainRuleViolation(err))
	assert.False(t, pkgerrors.IsConcurrencyConflict(err))
	assert.Contains(t, err.Error(), accountID.String()+" already exists")

	stream, err := f.store.GetEvents(ctx, accountID.String())
	require.NoError(t, err)
	assert.Len(t, stream, 1)
}

type brokenProjector struct{}

func (brokenProjector) Name() string                    { return "broken" }
func (brokenProjector) Handles(eventName string) bool   { return eventName == events.EventUnitCreated }
func (brokenProjector) Reset(ctx context.Context) error { return nil }
func (brokenProjector) Project(ctx context.Context, env events.Envelope) error {
	return errors.New("read model unavailable")
}

func TestProjectionFailureRollsBackSave(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, brokenProjector{})
	repo := NewUnitRepository(f.deps)

	unit, err := aggregates.CreateNewUnit(valueobjects.NewUnitID(), valueobjects.NewCondominiumID(), "101")
	require.NoError(t, err)

	err = repo.Save(ctx, unit)
	require.Error(t, err)
	var projErr *projections.ProjectionError
	assert.True(t, errors.As(err, &projErr))

	stream, err := f.store.GetEvents(ctx, unit.AggregateID())
	require.NoError(t, err)
	assert.Empty(t, stream)

	_, err = f.readModels.GetUnit(ctx, unit.AggregateID())
	assert.True(t, pkgerrors.IsNotFound(err))
}

// gatedProjector holds a deposit projection open until released, then fails it
type gatedProjector struct {
	entered chan struct{}
	release chan struct{}
}

func (g *gatedProjector) Name() string { return "gated" }
func (g *gatedProjector) Handles(eventName string) bool {
	return eventName == events.EventAccountMoneyDeposited
}
func (g *gatedProjector) Reset(ctx context.Context) error { return nil }
func (g *gatedProjector) Project(ctx context.Context, env events.Envelope) error {
	close(g.entered)
	<-g.release
	return errors.New("read model unavailable")
}

func TestReadersNeverSeeUncommittedEvents(t *testing.T) {
	ctx := context.Background()
	gate := &gatedProjector{entered: make(chan struct{}), release: make(chan struct{})}
	f := newFixture(t, gate)
	repo := NewAccountRepository(f.deps)

	accountID := valueobjects.NewAccountID()
	account, err := aggregates.CreateNewAccount(accountID, usd(10000))
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, account))

	writer, err := repo.FindByID(ctx, accountID)
	require.NoError(t, err)
	require.NoError(t, writer.Deposit(usd(5000)))

	saved := make(chan error, 1)
	go func() { saved <- repo.Save(ctx, writer) }()
	<-gate.entered

	reader, err := repo.FindByID(ctx, accountID)
	require.NoError(t, err)
	assert.True(t, reader.Balance().Equals(usd(10000)))
	assert.Equal(t, 1, reader.Version())

	all, err := f.store.ReadAll(ctx, 0, 10)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	close(gate.release)
	var projErr *projections.ProjectionError
	require.True(t, errors.As(<-saved, &projErr))

	// the reader works from committed state, so an overdraft is refused
	err = reader.Withdraw(usd(12000))
	assert.True(t, pkgerrors.IsDomainRuleViolation(err))

	final, err := repo.FindByID(ctx, accountID)
	require.NoError(t, err)
	assert.True(t, final.Balance().Equals(usd(10000)))
	assert.Equal(t, 1, final.Version())
}

type fakeTracker struct {
	projected []events.Envelope
	failed    []events.Envelope
}

func (f *fakeTracker) MarkProjected(ctx context.Context, envelopes []events.Envelope) error {
	f.projected = append(f.projected, envelopes...)
	return nil
}

func (f *fakeTracker) MarkProjectionFailed(ctx context.Context, envelopes []events.Envelope, cause error) error {
	f.failed = append(f.failed, envelopes...)
	return nil
}

type fakePublisher struct {
	published []events.Envelope
	err       error
}

func (f *fakePublisher) Publish(ctx context.Context, envelope events.Envelope) error {
	return f.PublishBatch(ctx, []events.Envelope{envelope})
}

func (f *fakePublisher) PublishBatch(ctx context.Context, envelopes []events.Envelope) error {
	f.published = append(f.published, envelopes...)
	return f.err
}

func TestTrackedStoreKeepsEventsWhenProjectionFails(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, brokenProjector{})
	tracker := &fakeTracker{}
	publisher := &fakePublisher{}
	f.deps.Tx = nil
	f.deps.Tracker = tracker
	f.deps.Publisher = publisher
	repo := NewUnitRepository(f.deps)

	unit, err := aggregates.CreateNewUnit(valueobjects.NewUnitID(), valueobjects.NewCondominiumID(), "101")
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, unit))

	stream, err := f.store.GetEvents(ctx, unit.AggregateID())
	require.NoError(t, err)
	assert.Len(t, stream, 1)
	assert.Len(t, tracker.failed, 1)
	assert.Empty(t, tracker.projected)
	assert.Len(t, publisher.published, 1)
}

func TestPublishFailureDoesNotFailSave(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	publisher := &fakePublisher{err: errors.New("event bus down")}
	f.deps.Publisher = publisher
	repo := NewExpenseRepository(f.deps)

	expense, err := aggregates.RecordExpense(valueobjects.NewExpenseID(), valueobjects.NewCondominiumID(),
		valueobjects.NewCategoryID(), "Cleaning", usd(8000), time.Now())
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, expense))

	require.Len(t, publisher.published, 1)
	assert.Equal(t, 1, publisher.published[0].Version)
}
