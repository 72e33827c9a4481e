package bus

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/luisriego/MatisseAPI-sub001/infrastructure/cache"
	pkgerrors "github.com/luisriego/MatisseAPI-sub001/pkg/errors"
)

type echoQuery struct {
	Value string
}

func (q echoQuery) Validate() error {
	if q.Value == "" {
		return pkgerrors.NewValidationError("value is required")
	}
	return nil
}

type queryObservation struct {
	name   string
	cached bool
	err    error
}

type queryRecorder struct {
	observations []queryObservation
}

func (r *queryRecorder) RecordQueryExecution(_ context.Context, name string, _ time.Duration, cached bool, err error) {
	r.observations = append(r.observations, queryObservation{name: name, cached: cached, err: err})
}

func TestAskTyped(t *testing.T) {
	ctx := context.Background()
	b := NewQueryBus()
	require.NoError(t, b.Register(echoQuery{}, HandlerFor(func(_ context.Context, q echoQuery) (string, error) {
		return "echo:" + q.Value, nil
	})))

	got, err := Ask[string](ctx, b, echoQuery{Value: "a"})
	require.NoError(t, err)
	assert.Equal(t, "echo:a", got)

	_, err = Ask[int](ctx, b, echoQuery{Value: "a"})
	assert.Error(t, err)

	_, err = Ask[string](ctx, b, echoQuery{})
	assert.True(t, pkgerrors.IsValidation(err))

	assert.Error(t, b.Register(echoQuery{}, HandlerFor(func(context.Context, echoQuery) (string, error) { return "", nil })))
}

func TestAskUnregistered(t *testing.T) {
	_, err := NewQueryBus().Ask(context.Background(), echoQuery{Value: "a"})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.ErrorTypeInternal, pkgerrors.GetAppError(err).Type)
}

func TestCachingAndMetrics(t *testing.T) {
	ctx := context.Background()
	store := cache.NewInMemoryCache(0)
	defer store.Close()
	rec := &queryRecorder{}

	calls := 0
	b := NewQueryBus(
		LoggingMiddleware(zap.NewNop()),
		MetricsMiddleware(rec),
		CachingMiddleware(store, time.Minute, zap.NewNop()),
	)
	require.NoError(t, b.Register(echoQuery{}, HandlerFor(func(_ context.Context, q echoQuery) (string, error) {
		calls++
		if q.Value == "fail" {
			return "", errors.New("boom")
		}
		return q.Value, nil
	})))

	for i := 0; i < 3; i++ {
		got, err := Ask[string](ctx, b, echoQuery{Value: "a"})
		require.NoError(t, err)
		assert.Equal(t, "a", got)
	}
	_, err := Ask[string](ctx, b, echoQuery{Value: "b"})
	require.NoError(t, err)
	assert.Equal(t, 2, calls)

	_, err = Ask[string](ctx, b, echoQuery{Value: "fail"})
	require.Error(t, err)
	_, err = Ask[string](ctx, b, echoQuery{Value: "fail"})
	require.Error(t, err)
	assert.Equal(t, 4, calls)

	require.Len(t, rec.observations, 6)
	assert.False(t, rec.observations[0].cached)
	assert.True(t, rec.observations[1].cached)
	assert.True(t, rec.observations[2].cached)
	assert.False(t, rec.observations[3].cached)
	assert.Error(t, rec.observations[5].err)
	assert.Equal(t, "echoQuery", rec.observations[0].name)
}

func TestCachingDisabledWithZeroTTL(t *testing.T) {
	ctx := context.Background()
	store := cache.NewInMemoryCache(0)
	calls := 0
	b := NewQueryBus(CachingMiddleware(store, 0, zap.NewNop()))
	require.NoError(t, b.Register(echoQuery{}, HandlerFor(func(_ context.Context, q echoQuery) (string, error) {
		calls++
		return q.Value, nil
	})))

	for i := 0; i < 2; i++ {
		_, err := b.Ask(ctx, echoQuery{Value: "a"})
		require.NoError(t, err)
	}
	assert.Equal(t, 2, calls)
	assert.Equal(t, 0, store.Len())
}

func TestCacheKeyDependsOnFields(t *testing.T) {
	assert.NotEqual(t, CacheKey(echoQuery{Value: "a"}), CacheKey(echoQuery{Value: "b"}))
	assert.Equal(t, "echoQuery:{Value:a}", CacheKey(echoQuery{Value: "a"}))
}
