package resilience

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/luisriego/MatisseAPI-sub001/application/ports"
	"github.com/luisriego/MatisseAPI-sub001/domain/events"
	pkgerrors "github.com/luisriego/MatisseAPI-sub001/pkg/errors"
)

type stubStore struct {
	err   error
	calls int
}

func (s *stubStore) Append(context.Context, ports.ExpectedVersions, ...events.DomainEvent) ([]events.Envelope, error) {
	s.calls++
	return nil, s.err
}

func (s *stubStore) GetEvents(context.Context, string) ([]events.Envelope, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return []events.Envelope{{Version: 1}}, nil
}

func testConfig() BreakerConfig {
	cfg := DefaultBreakerConfig("events")
	cfg.MinRequests = 2
	cfg.FailureThreshold = 0.5
	cfg.Timeout = time.Hour
	return cfg
}

func TestEventStoreTripsOnStorageFailures(t *testing.T) {
	stub := &stubStore{err: pkgerrors.NewStorageError("append", errors.New("timeout"))}
	store := NewEventStore(stub, testConfig(), zap.NewNop())

	for i := 0; i < 2; i++ {
		_, err := store.Append(context.Background(), ports.ExpectedVersions{})
		require.True(t, pkgerrors.IsStorage(err))
	}
	assert.Equal(t, gobreaker.StateOpen, store.State())

	_, err := store.GetEvents(context.Background(), "a1")
	assert.True(t, pkgerrors.IsStorage(err))
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Equal(t, 2, stub.calls)
}

func TestEventStoreIgnoresDomainAnswers(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{name: "conflict", err: pkgerrors.NewConcurrencyConflictError("a1", 1, 2)},
		{name: "invalid argument", err: pkgerrors.NewInvalidArgumentError("bad")},
		{name: "unknown event type", err: pkgerrors.NewUnknownEventTypeError("ghost")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stub := &stubStore{err: tt.err}
			store := NewEventStore(stub, testConfig(), zap.NewNop())

			for i := 0; i < 5; i++ {
				_, err := store.Append(context.Background(), ports.ExpectedVersions{})
				assert.ErrorIs(t, err, tt.err)
			}
			assert.Equal(t, gobreaker.StateClosed, store.State())
			assert.Equal(t, 5, stub.calls)
		})
	}
}

func TestEventStorePassesResults(t *testing.T) {
	store := NewEventStore(&stubStore{}, testConfig(), zap.NewNop())

	envelopes, err := store.GetEvents(context.Background(), "a1")
	require.NoError(t, err)
	assert.Len(t, envelopes, 1)

	_, err = store.ReadAll(context.Background(), 0, 10)
	assert.Error(t, err)
}
