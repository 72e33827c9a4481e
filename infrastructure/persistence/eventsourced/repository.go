package eventsourced

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/luisriego/MatisseAPI-sub001/application/ports"
	"github.com/luisriego/MatisseAPI-sub001/domain/events"
	pkgerrors "github.com/luisriego/MatisseAPI-sub001/pkg/errors"
)

// Aggregate is the part of an aggregate root the repository relies on
type Aggregate interface {
	AggregateID() string
	Version() int
	PullDomainEvents() []events.DomainEvent
}

// Dependencies groups the collaborators shared by every repository.
// Tx may be nil for stores without transactions. Tracker is set for stores
// that cannot project inside the append transaction; projection then runs
// after the append and its outcome is recorded on the stored events.
// Publisher may be nil.
type Dependencies struct {
	Store       ports.EventStore
	Tx          ports.TxRunner
	Projections ports.ProjectionManager
	Tracker     ports.ProjectionTracker
	Publisher   ports.EventPublisher
	Logger      *zap.Logger
}

// Repository persists one aggregate type as an event stream
type Repository[T Aggregate] struct {
	aggregateType string
	reconstitute  func(history ...events.DomainEvent) (T, error)
	deps          Dependencies
	logger        *zap.Logger
}

// NewRepository creates a repository for aggregateType; reconstitute
// rebuilds an aggregate from its stored history
func NewRepository[T Aggregate](aggregateType string, reconstitute func(history ...events.DomainEvent) (T, error), deps Dependencies) *Repository[T] {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Repository[T]{
		aggregateType: aggregateType,
		reconstitute:  reconstitute,
		deps:          deps,
		logger:        logger.With(zap.String("aggregateType", aggregateType)),
	}
}

// Save appends the pending events of aggregate and projects them.
// The events are pulled once; when Save fails the instance must be reloaded.
func (r *Repository[T]) Save(ctx context.Context, aggregate T) error {
	pending := aggregate.PullDomainEvents()
	if len(pending) == 0 {
		return nil
	}

	aggregateID := aggregate.AggregateID()
	expected := ports.ExpectedVersions{aggregateID: aggregate.Version() - len(pending)}

	var stored []events.Envelope
	err := r.runInTx(ctx, func(ctx context.Context) error {
		envelopes, err := r.deps.Store.Append(ctx, expected, pending...)
		if err != nil {
			return err
		}
		stored = envelopes
		if r.deps.Tracker != nil {
			return nil
		}
		return r.deps.Projections.Project(ctx, envelopes)
	})
	if err != nil {
		if pkgerrors.IsConcurrencyConflict(err) && expected[aggregateID] == 0 {
			r.logger.Info("Aggregate already exists", zap.String("aggregateID", aggregateID))
			return alreadyExists(r.aggregateType, aggregateID)
		}
		if pkgerrors.IsConcurrencyConflict(err) {
			r.logger.Info("Concurrent modification detected",
				zap.String("aggregateID", aggregateID),
				zap.Int("expectedVersion", expected[aggregateID]))
		} else {
			r.logger.Error("Failed to save aggregate",
				zap.String("aggregateID", aggregateID),
				zap.Int("events", len(pending)),
				zap.Error(err))
		}
		return err
	}

	if r.deps.Tracker != nil {
		r.projectTracked(ctx, stored)
	}

	r.logger.Debug("Aggregate saved",
		zap.String("aggregateID", aggregateID),
		zap.Int("version", aggregate.Version()),
		zap.Int("events", len(stored)))

	r.publish(ctx, stored)
	return nil
}

// Load rebuilds an aggregate from its stream
func (r *Repository[T]) Load(ctx context.Context, aggregateID string) (T, error) {
	var zero T

	envelopes, err := r.deps.Store.GetEvents(ctx, aggregateID)
	if err != nil {
		return zero, fmt.Errorf("failed to load %s %s: %w", r.aggregateType, aggregateID, err)
	}
	if len(envelopes) == 0 {
		return zero, pkgerrors.NewNotFoundError(fmt.Sprintf("%s %s", r.aggregateType, aggregateID))
	}

	history := make([]events.DomainEvent, len(envelopes))
	for i, env := range envelopes {
		history[i] = env.Event
	}

	aggregate, err := r.reconstitute(history...)
	if err != nil {
		return zero, fmt.Errorf("failed to rebuild %s %s: %w", r.aggregateType, aggregateID, err)
	}
	return aggregate, nil
}

// alreadyExists reports a create against a stream that has events. It does
// not wrap the conflict, so conflict retries leave it alone.
func alreadyExists(aggregateType, aggregateID string) error {
	return pkgerrors.NewDomainRuleViolationError(fmt.Sprintf("%s %s already exists", aggregateType, aggregateID)).
		WithCode("ALREADY_EXISTS").
		WithDetails(map[string]interface{}{
			"aggregateType": aggregateType,
			"aggregateID":   aggregateID,
		})
}

func (r *Repository[T]) runInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if r.deps.Tx == nil {
		return fn(ctx)
	}
	return r.deps.Tx.RunInTx(ctx, fn)
}

// projectTracked projects events that are already committed. A failure is
// recorded on the events for the recovery processor instead of failing Save.
func (r *Repository[T]) projectTracked(ctx context.Context, stored []events.Envelope) {
	if err := r.deps.Projections.Project(ctx, stored); err != nil {
		r.logger.Warn("Projection failed after append, left for recovery",
			zap.String("aggregateID", stored[0].AggregateID()),
			zap.Error(err))
		if markErr := r.deps.Tracker.MarkProjectionFailed(ctx, stored, err); markErr != nil {
			r.logger.Error("Failed to record projection failure", zap.Error(markErr))
		}
		return
	}
	if err := r.deps.Tracker.MarkProjected(ctx, stored); err != nil {
		r.logger.Warn("Failed to mark events as projected", zap.Error(err))
	}
}

// publish forwards committed events; failures never undo the commit
func (r *Repository[T]) publish(ctx context.Context, stored []events.Envelope) {
	if r.deps.Publisher == nil {
		return
	}
	if err := r.deps.Publisher.PublishBatch(ctx, stored); err != nil {
		r.logger.Warn("Failed to publish stored events",
			zap.String("aggregateID", stored[0].AggregateID()),
			zap.Error(err))
	}
}
