package bus

import (
	"context"
	"fmt"
	"reflect"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/luisriego/MatisseAPI-sub001/application/ports"
	pkgerrors "github.com/luisriego/MatisseAPI-sub001/pkg/errors"
	"github.com/luisriego/MatisseAPI-sub001/pkg/observability"
)

// Command represents a command that changes state
type Command interface {
	Validate() error
}

// Targeted is implemented by commands that act on one existing aggregate
type Targeted interface {
	TargetID() string
}

// CommandHandler handles a specific command type
type CommandHandler interface {
	Handle(ctx context.Context, cmd Command) error
}

// CommandHandlerFunc is an adapter to allow functions to be used as handlers
type CommandHandlerFunc func(ctx context.Context, cmd Command) error

// Handle implements CommandHandler
func (f CommandHandlerFunc) Handle(ctx context.Context, cmd Command) error {
	return f(ctx, cmd)
}

// HandlerFor adapts a typed handler function to CommandHandler
func HandlerFor[C Command](fn func(ctx context.Context, cmd C) error) CommandHandler {
	return CommandHandlerFunc(func(ctx context.Context, cmd Command) error {
		typed, ok := cmd.(C)
		if !ok {
			return pkgerrors.NewInternalError(fmt.Sprintf("handler received unexpected command %T", cmd))
		}
		return fn(ctx, typed)
	})
}

// Middleware defines command middleware
type Middleware func(next CommandHandler) CommandHandler

// CommandBus dispatches commands to their handlers
type CommandBus struct {
	handlers map[reflect.Type]CommandHandler
	pipeline *Pipeline
	mu       sync.RWMutex
}

// NewCommandBus creates a new command bus; middlewares run in the given order
func NewCommandBus(middlewares ...Middleware) *CommandBus {
	return &CommandBus{
		handlers: make(map[reflect.Type]CommandHandler),
		pipeline: NewPipeline(middlewares...),
	}
}

// Register registers a handler for a command type
func (b *CommandBus) Register(cmdType Command, handler CommandHandler) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	t := reflect.TypeOf(cmdType)
	if _, exists := b.handlers[t]; exists {
		return fmt.Errorf("handler already registered for command type %s", t.Name())
	}

	b.handlers[t] = b.pipeline.Execute(handler)
	return nil
}

// Send dispatches a command to its handler
func (b *CommandBus) Send(ctx context.Context, cmd Command) error {
	b.mu.RLock()
	handler, exists := b.handlers[reflect.TypeOf(cmd)]
	b.mu.RUnlock()

	if !exists {
		return pkgerrors.NewInternalError(fmt.Sprintf("no handler registered for command type %T", cmd))
	}

	return handler.Handle(ctx, cmd)
}

// CommandName returns the type name used in logs and metrics
func CommandName(cmd Command) string {
	t := reflect.TypeOf(cmd)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

// LoggingMiddleware logs command execution
func LoggingMiddleware(logger *zap.Logger) Middleware {
	return func(next CommandHandler) CommandHandler {
		return CommandHandlerFunc(func(ctx context.Context, cmd Command) error {
			cmdType := CommandName(cmd)
			logger.Debug("Executing command", zap.String("type", cmdType))

			err := next.Handle(ctx, cmd)
			switch {
			case err == nil:
				logger.Info("Command succeeded", zap.String("type", cmdType))
			case pkgerrors.IsDomainRuleViolation(err), pkgerrors.IsValidation(err),
				pkgerrors.IsInvalidArgument(err), pkgerrors.IsNotFound(err):
				logger.Info("Command rejected", zap.String("type", cmdType), zap.Error(err))
			default:
				logger.Error("Command failed", zap.String("type", cmdType), zap.Error(err))
			}

			return err
		})
	}
}

// ValidationMiddleware ensures commands are valid
func ValidationMiddleware() Middleware {
	return func(next CommandHandler) CommandHandler {
		return CommandHandlerFunc(func(ctx context.Context, cmd Command) error {
			if err := cmd.Validate(); err != nil {
				return err
			}
			return next.Handle(ctx, cmd)
		})
	}
}

// TracingMiddleware runs every command in an X-Ray subsegment
func TracingMiddleware(tracer *observability.Tracer) Middleware {
	return func(next CommandHandler) CommandHandler {
		return CommandHandlerFunc(func(ctx context.Context, cmd Command) error {
			return tracer.TraceFunction(ctx, "command."+CommandName(cmd), func(ctx context.Context) error {
				if t, ok := cmd.(Targeted); ok {
					tracer.AddAnnotation(ctx, "aggregateID", t.TargetID())
				}
				return next.Handle(ctx, cmd)
			})
		})
	}
}

// MetricsMiddleware records duration and outcome of every command
func MetricsMiddleware(recorder observability.CommandRecorder) Middleware {
	return func(next CommandHandler) CommandHandler {
		return CommandHandlerFunc(func(ctx context.Context, cmd Command) error {
			start := time.Now()
			err := next.Handle(ctx, cmd)
			recorder.RecordCommandExecution(ctx, CommandName(cmd), time.Since(start), err)
			return err
		})
	}
}

// LockingMiddleware serialises commands that target the same aggregate
func LockingMiddleware(locker ports.AggregateLocker) Middleware {
	return func(next CommandHandler) CommandHandler {
		return CommandHandlerFunc(func(ctx context.Context, cmd Command) error {
			t, ok := cmd.(Targeted)
			if !ok {
				return next.Handle(ctx, cmd)
			}
			return locker.WithLock(ctx, t.TargetID(), func(ctx context.Context) error {
				return next.Handle(ctx, cmd)
			})
		})
	}
}

// RetryOnConflictMiddleware re-runs the whole load, mutate and save cycle
// when the save hits a concurrency conflict, at most maxRetries more times.
// onConflict may be nil.
func RetryOnConflictMiddleware(maxRetries int, delay time.Duration, onConflict func(commandName string)) Middleware {
	return func(next CommandHandler) CommandHandler {
		return CommandHandlerFunc(func(ctx context.Context, cmd Command) error {
			var err error
			for attempt := 0; ; attempt++ {
				err = next.Handle(ctx, cmd)
				if err == nil || !pkgerrors.IsConcurrencyConflict(err) {
					return err
				}
				if onConflict != nil {
					onConflict(CommandName(cmd))
				}
				if attempt >= maxRetries {
					return err
				}

				select {
				case <-ctx.Done():
					return ctx.Err()
				case <-time.After(delay * time.Duration(attempt+1)):
				}
			}
		})
	}
}

// Pipeline chains multiple middleware together
type Pipeline struct {
	middlewares []Middleware
}

// NewPipeline creates a new middleware pipeline
func NewPipeline(middlewares ...Middleware) *Pipeline {
	return &Pipeline{
		middlewares: middlewares,
	}
}

// Execute wraps handler so the first middleware runs first
func (p *Pipeline) Execute(handler CommandHandler) CommandHandler {
	for i := len(p.middlewares) - 1; i >= 0; i-- {
		handler = p.middlewares[i](handler)
	}
	return handler
}
