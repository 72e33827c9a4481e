package resilience

import (
	"context"
	"errors"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/luisriego/MatisseAPI-sub001/application/ports"
	"github.com/luisriego/MatisseAPI-sub001/domain/events"
	pkgerrors "github.com/luisriego/MatisseAPI-sub001/pkg/errors"
)

// BreakerConfig holds configuration for the event store circuit breaker
type BreakerConfig struct {
	Name        string
	MaxRequests uint32
	Interval    time.Duration
	Timeout     time.Duration
	// FailureThreshold is the failure ratio that trips the breaker
	FailureThreshold float64
	MinRequests      uint32
}

// DefaultBreakerConfig returns a default configuration for the breaker
func DefaultBreakerConfig(name string) BreakerConfig {
	return BreakerConfig{
		Name:             name,
		MaxRequests:      5,
		Interval:         30 * time.Second,
		Timeout:          60 * time.Second,
		FailureThreshold: 0.8,
		MinRequests:      5,
	}
}

// EventStore guards an event store with a circuit breaker. Only storage
// failures count against the breaker; conflicts and domain errors are
// answers from a healthy store.
type EventStore struct {
	next   ports.EventStore
	reader ports.StreamReader
	cb     *gobreaker.CircuitBreaker
}

// NewEventStore wraps next. ReadAll is guarded too when next implements
// ports.StreamReader.
func NewEventStore(next ports.EventStore, cfg BreakerConfig, logger *zap.Logger) *EventStore {
	reader, _ := next.(ports.StreamReader)
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinRequests {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= cfg.FailureThreshold
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("Circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
		IsSuccessful: func(err error) bool {
			return err == nil || !pkgerrors.IsStorage(err)
		},
	})
	return &EventStore{next: next, reader: reader, cb: cb}
}

// State returns the current breaker state
func (s *EventStore) State() gobreaker.State {
	return s.cb.State()
}

// Append forwards to the wrapped store unless the breaker is open
func (s *EventStore) Append(ctx context.Context, expected ports.ExpectedVersions, evts ...events.DomainEvent) ([]events.Envelope, error) {
	return execute(s, func() ([]events.Envelope, error) {
		return s.next.Append(ctx, expected, evts...)
	})
}

// GetEvents forwards to the wrapped store unless the breaker is open
func (s *EventStore) GetEvents(ctx context.Context, aggregateID string) ([]events.Envelope, error) {
	return execute(s, func() ([]events.Envelope, error) {
		return s.next.GetEvents(ctx, aggregateID)
	})
}

// ReadAll forwards to the wrapped store unless the breaker is open
func (s *EventStore) ReadAll(ctx context.Context, afterPosition int64, limit int) ([]events.Envelope, error) {
	if s.reader == nil {
		return nil, pkgerrors.NewInternalError("event store does not keep a global order")
	}
	return execute(s, func() ([]events.Envelope, error) {
		return s.reader.ReadAll(ctx, afterPosition, limit)
	})
}

func execute(s *EventStore, fn func() ([]events.Envelope, error)) ([]events.Envelope, error) {
	result, err := s.cb.Execute(func() (interface{}, error) {
		return fn()
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, pkgerrors.NewStorageError("event store circuit "+s.cb.Name(), err)
	}
	if err != nil {
		return nil, err
	}
	envelopes, _ := result.([]events.Envelope)
	return envelopes, nil
}

var (
	_ ports.EventStore   = (*EventStore)(nil)
	_ ports.StreamReader = (*EventStore)(nil)
)
