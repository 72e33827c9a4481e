package sagas

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Step is a single step of a saga working on the shared state S
type Step[S any] struct {
	Name       string
	Execute    func(ctx context.Context, state *S) error
	Compensate func(ctx context.Context, state *S) error
	MaxRetries int
	RetryDelay time.Duration
}

// State represents the current state of a saga execution
type State string

const (
	StatePending      State = "PENDING"
	StateRunning      State = "RUNNING"
	StateCompleted    State = "COMPLETED"
	StateFailed       State = "FAILED"
	StateCompensating State = "COMPENSATING"
	StateCompensated  State = "COMPENSATED"
)

// Saga runs steps in order and compensates completed steps in reverse
// order when one fails
type Saga[S any] struct {
	id          string
	name        string
	steps       []Step[S]
	state       State
	currentStep int
	logger      *zap.Logger
}

// New creates a new saga instance
func New[S any](name string, logger *zap.Logger) *Saga[S] {
	return &Saga[S]{
		id:     uuid.NewString(),
		name:   name,
		state:  StatePending,
		logger: logger,
	}
}

// AddStep adds a step to the saga
func (s *Saga[S]) AddStep(step Step[S]) *Saga[S] {
	s.steps = append(s.steps, step)
	return s
}

// Execute runs the saga against state
func (s *Saga[S]) Execute(ctx context.Context, state *S) error {
	s.state = StateRunning
	s.logger.Info("Starting saga execution",
		zap.String("saga_id", s.id),
		zap.String("saga_name", s.name),
		zap.Int("total_steps", len(s.steps)),
	)

	for i, step := range s.steps {
		s.currentStep = i
		s.logger.Debug("Executing saga step",
			zap.String("saga_id", s.id),
			zap.String("step_name", step.Name),
			zap.Int("step_number", i+1),
		)

		if err := s.executeStepWithRetry(ctx, step, state); err != nil {
			s.state = StateFailed
			s.logger.Error("Saga step failed",
				zap.String("saga_id", s.id),
				zap.String("step_name", step.Name),
				zap.Error(err),
			)

			if failed := s.compensate(ctx, i, state); failed > 0 {
				s.state = StateFailed
				return fmt.Errorf("saga %s failed at step %s and %d compensations failed: %w", s.name, step.Name, failed, err)
			}
			s.state = StateCompensated
			return fmt.Errorf("saga %s failed at step %s: %w", s.name, step.Name, err)
		}
	}

	s.state = StateCompleted
	s.logger.Info("Saga completed successfully",
		zap.String("saga_id", s.id),
		zap.String("saga_name", s.name),
		zap.Int("completed_steps", len(s.steps)),
	)
	return nil
}

func (s *Saga[S]) executeStepWithRetry(ctx context.Context, step Step[S], state *S) error {
	attempts := step.MaxRetries
	if attempts <= 0 {
		attempts = 1
	}

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			s.logger.Debug("Retrying saga step",
				zap.String("saga_id", s.id),
				zap.String("step_name", step.Name),
				zap.Int("attempt", attempt+1),
				zap.Int("max_retries", attempts),
			)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(step.RetryDelay):
			}
		}

		err := step.Execute(ctx, state)
		if err == nil {
			return nil
		}
		lastErr = err
		s.logger.Warn("Saga step execution failed",
			zap.String("saga_id", s.id),
			zap.String("step_name", step.Name),
			zap.Int("attempt", attempt+1),
			zap.Error(err),
		)
	}

	if attempts == 1 {
		return lastErr
	}
	return fmt.Errorf("step %s failed after %d attempts: %w", step.Name, attempts, lastErr)
}

// compensate undoes the first completed steps in reverse order and returns
// the number of compensations that failed
func (s *Saga[S]) compensate(ctx context.Context, completed int, state *S) int {
	s.state = StateCompensating
	s.logger.Info("Starting saga compensation",
		zap.String("saga_id", s.id),
		zap.String("saga_name", s.name),
		zap.Int("steps_to_compensate", completed),
	)

	failed := 0
	for i := completed - 1; i >= 0; i-- {
		step := s.steps[i]
		if step.Compensate == nil {
			continue
		}
		if err := step.Compensate(ctx, state); err != nil {
			failed++
			s.logger.Error("Compensation failed",
				zap.String("saga_id", s.id),
				zap.String("step_name", step.Name),
				zap.Error(err),
			)
		}
	}
	return failed
}

// GetState returns the current state of the saga
func (s *Saga[S]) GetState() State {
	return s.state
}

// GetID returns the saga ID
func (s *Saga[S]) GetID() string {
	return s.id
}

// GetCurrentStep returns the current step index
func (s *Saga[S]) GetCurrentStep() int {
	return s.currentStep
}
