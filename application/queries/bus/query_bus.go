package bus

import (
	"context"
	"fmt"
	"reflect"
	"sync"
	"time"

	"go.uber.org/zap"

	pkgerrors "github.com/luisriego/MatisseAPI-sub001/pkg/errors"
	"github.com/luisriego/MatisseAPI-sub001/pkg/observability"
)

// Query represents a read-only query
type Query interface {
	Validate() error
}

// QueryHandler handles a specific query type
type QueryHandler interface {
	Handle(ctx context.Context, query Query) (interface{}, error)
}

// QueryHandlerFunc is an adapter to allow functions to be used as handlers
type QueryHandlerFunc func(ctx context.Context, query Query) (interface{}, error)

// Handle implements QueryHandler
func (f QueryHandlerFunc) Handle(ctx context.Context, query Query) (interface{}, error) {
	return f(ctx, query)
}

// HandlerFor adapts a typed query function to QueryHandler
func HandlerFor[Q Query, R any](fn func(ctx context.Context, query Q) (R, error)) QueryHandler {
	return QueryHandlerFunc(func(ctx context.Context, query Query) (interface{}, error) {
		typed, ok := query.(Q)
		if !ok {
			return nil, pkgerrors.NewInternalError(fmt.Sprintf("handler received unexpected query %T", query))
		}
		return fn(ctx, typed)
	})
}

// Middleware defines query middleware
type Middleware func(next QueryHandler) QueryHandler

// QueryBus dispatches queries to their handlers
type QueryBus struct {
	handlers    map[reflect.Type]QueryHandler
	middlewares []Middleware
	mu          sync.RWMutex
}

// NewQueryBus creates a new query bus; middlewares run in the given order
func NewQueryBus(middlewares ...Middleware) *QueryBus {
	return &QueryBus{
		handlers:    make(map[reflect.Type]QueryHandler),
		middlewares: middlewares,
	}
}

// Register registers a handler for a query type
func (b *QueryBus) Register(queryType Query, handler QueryHandler) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	t := reflect.TypeOf(queryType)
	if _, exists := b.handlers[t]; exists {
		return fmt.Errorf("handler already registered for query type %s", t.Name())
	}

	for i := len(b.middlewares) - 1; i >= 0; i-- {
		handler = b.middlewares[i](handler)
	}
	b.handlers[t] = handler
	return nil
}

// Ask validates a query and dispatches it to its handler
func (b *QueryBus) Ask(ctx context.Context, query Query) (interface{}, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	b.mu.RLock()
	handler, exists := b.handlers[reflect.TypeOf(query)]
	b.mu.RUnlock()

	if !exists {
		return nil, pkgerrors.NewInternalError(fmt.Sprintf("no handler registered for query type %T", query))
	}

	return handler.Handle(ctx, query)
}

// Ask runs query on b and asserts the result type
func Ask[R any](ctx context.Context, b *QueryBus, query Query) (R, error) {
	var zero R
	result, err := b.Ask(ctx, query)
	if err != nil {
		return zero, err
	}
	typed, ok := result.(R)
	if !ok {
		return zero, pkgerrors.NewInternalError(fmt.Sprintf("query %T returned %T", query, result))
	}
	return typed, nil
}

// QueryName returns the type name used in logs, metrics and cache keys
func QueryName(query Query) string {
	t := reflect.TypeOf(query)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

// Cache stores query results
type Cache interface {
	Get(ctx context.Context, key string) (interface{}, bool)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

type cacheHitKey struct{}

// cacheHit is set by CachingMiddleware so MetricsMiddleware can label hits
type cacheHit struct {
	hit bool
}

// CachingMiddleware serves repeated queries from cache for ttl
func CachingMiddleware(cache Cache, ttl time.Duration, logger *zap.Logger) Middleware {
	return func(next QueryHandler) QueryHandler {
		return QueryHandlerFunc(func(ctx context.Context, query Query) (interface{}, error) {
			if ttl <= 0 {
				return next.Handle(ctx, query)
			}

			key := CacheKey(query)
			if cached, found := cache.Get(ctx, key); found {
				if marker, ok := ctx.Value(cacheHitKey{}).(*cacheHit); ok {
					marker.hit = true
				}
				return cached, nil
			}

			result, err := next.Handle(ctx, query)
			if err != nil {
				return nil, err
			}

			if err := cache.Set(ctx, key, result, ttl); err != nil {
				logger.Warn("Failed to cache query result", zap.String("key", key), zap.Error(err))
			}
			return result, nil
		})
	}
}

// CacheKey derives the cache key of a query from its type and fields
func CacheKey(query Query) string {
	return fmt.Sprintf("%s:%+v", QueryName(query), query)
}

// LoggingMiddleware logs failed queries
func LoggingMiddleware(logger *zap.Logger) Middleware {
	return func(next QueryHandler) QueryHandler {
		return QueryHandlerFunc(func(ctx context.Context, query Query) (interface{}, error) {
			result, err := next.Handle(ctx, query)
			switch {
			case err == nil:
				logger.Debug("Query succeeded", zap.String("type", QueryName(query)))
			case pkgerrors.IsNotFound(err):
				logger.Debug("Query found nothing", zap.String("type", QueryName(query)))
			default:
				logger.Error("Query failed", zap.String("type", QueryName(query)), zap.Error(err))
			}
			return result, err
		})
	}
}

// MetricsMiddleware records duration, outcome and cache status of every query.
// It must run outside CachingMiddleware to see cache hits.
func MetricsMiddleware(recorder observability.QueryRecorder) Middleware {
	return func(next QueryHandler) QueryHandler {
		return QueryHandlerFunc(func(ctx context.Context, query Query) (interface{}, error) {
			marker := &cacheHit{}
			ctx = context.WithValue(ctx, cacheHitKey{}, marker)

			start := time.Now()
			result, err := next.Handle(ctx, query)
			recorder.RecordQueryExecution(ctx, QueryName(query), time.Since(start), marker.hit, err)
			return result, err
		})
	}
}
