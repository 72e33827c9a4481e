package dynamodb

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/luisriego/MatisseAPI-sub001/domain/events"
)

// unprojectedStore is the part of EventStore the recovery processor needs
type unprojectedStore interface {
	Unprojected(ctx context.Context, filter UnprojectedFilter) ([]UnprojectedEvent, error)
	MarkProjected(ctx context.Context, envelopes []events.Envelope) error
	MarkProjectionFailed(ctx context.Context, envelopes []events.Envelope, cause error) error
}

// Projections applies envelopes to the read models
type Projections interface {
	Project(ctx context.Context, envelopes []events.Envelope) error
}

// RecoveryRecorder counts events handled by the recovery processor
type RecoveryRecorder interface {
	RecordRecovery(err error)
}

// RecoveryOptions configures a RecoveryProcessor
type RecoveryOptions struct {
	BatchSize   int
	Interval    time.Duration
	MaxAttempts int
	// Grace is how old a pending event must be before recovery touches it
	Grace time.Duration
}

// RecoveryStats is a snapshot of the processor counters
type RecoveryStats struct {
	Batches     int64
	Recovered   int64
	Failed      int64
	BatchSize   int
	Interval    time.Duration
	MaxAttempts int
}

// RecoveryProcessor re-projects events whose projection failed or never
// completed after they were appended
type RecoveryProcessor struct {
	store       unprojectedStore
	projections Projections
	recorder    RecoveryRecorder
	logger      *zap.Logger
	opts        RecoveryOptions
	now         func() time.Time

	batches   atomic.Int64
	recovered atomic.Int64
	failed    atomic.Int64

	startOnce   sync.Once
	stopOnce    sync.Once
	stopChan    chan struct{}
	stoppedChan chan struct{}
}

// NewRecoveryProcessor creates a new recovery processor. recorder may be nil.
func NewRecoveryProcessor(store unprojectedStore, projections Projections, recorder RecoveryRecorder, logger *zap.Logger, opts RecoveryOptions) *RecoveryProcessor {
	if opts.BatchSize <= 0 {
		opts.BatchSize = 50
	}
	if opts.Interval <= 0 {
		opts.Interval = 5 * time.Second
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 3
	}
	if opts.Grace <= 0 {
		opts.Grace = 30 * time.Second
	}
	return &RecoveryProcessor{
		store:       store,
		projections: projections,
		recorder:    recorder,
		logger:      logger,
		opts:        opts,
		now:         time.Now,
		stopChan:    make(chan struct{}),
		stoppedChan: make(chan struct{}),
	}
}

// Start begins processing in the background
func (rp *RecoveryProcessor) Start(ctx context.Context) {
	rp.startOnce.Do(func() {
		rp.logger.Info("Starting projection recovery processor",
			zap.Int("batchSize", rp.opts.BatchSize),
			zap.Duration("interval", rp.opts.Interval),
			zap.Int("maxAttempts", rp.opts.MaxAttempts),
		)
		go rp.processLoop(ctx)
	})
}

// Stop stops the loop and waits for the current batch to finish. It must
// only be called after Start.
func (rp *RecoveryProcessor) Stop() {
	rp.stopOnce.Do(func() {
		rp.logger.Info("Stopping projection recovery processor")
		close(rp.stopChan)
	})
	<-rp.stoppedChan
}

func (rp *RecoveryProcessor) processLoop(ctx context.Context) {
	defer close(rp.stoppedChan)

	ticker := time.NewTicker(rp.opts.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			rp.logger.Info("Context cancelled, stopping projection recovery processor")
			return
		case <-rp.stopChan:
			return
		case <-ticker.C:
			if _, err := rp.ProcessBatch(ctx); err != nil {
				rp.logger.Error("Error processing recovery batch", zap.Error(err))
			}
		}
	}
}

// ProcessBatch projects one batch of unprojected events and returns how
// many were recovered. Events of one aggregate are applied in version
// order and the rest of an aggregate is skipped after a failure.
func (rp *RecoveryProcessor) ProcessBatch(ctx context.Context) (int, error) {
	pending, err := rp.store.Unprojected(ctx, UnprojectedFilter{
		RecordedBefore: rp.now().Add(-rp.opts.Grace),
		MaxAttempts:    rp.opts.MaxAttempts,
		Limit:          rp.opts.BatchSize,
	})
	if err != nil {
		return 0, fmt.Errorf("failed to get unprojected events: %w", err)
	}
	if len(pending) == 0 {
		return 0, nil
	}
	rp.batches.Add(1)

	recovered := 0
	blocked := make(map[string]bool)
	for _, event := range pending {
		if blocked[event.Envelope.AggregateID()] {
			continue
		}
		if err := rp.recover(ctx, event); err != nil {
			blocked[event.Envelope.AggregateID()] = true
			continue
		}
		recovered++
	}

	rp.logger.Debug("Completed recovery batch",
		zap.Int("events", len(pending)),
		zap.Int("recovered", recovered),
	)
	return recovered, nil
}

func (rp *RecoveryProcessor) recover(ctx context.Context, event UnprojectedEvent) error {
	envelopes := []events.Envelope{event.Envelope}
	err := rp.projections.Project(ctx, envelopes)
	if rp.recorder != nil {
		rp.recorder.RecordRecovery(err)
	}

	if err != nil {
		rp.failed.Add(1)
		attempts := event.Attempts + 1
		fields := []zap.Field{
			zap.String("eventID", event.Envelope.Event.EventID()),
			zap.String("eventType", event.Envelope.EventName()),
			zap.String("aggregateID", event.Envelope.AggregateID()),
			zap.Int("attempts", attempts),
			zap.Error(err),
		}
		if attempts >= rp.opts.MaxAttempts {
			rp.logger.Warn("Event projection permanently failed after max attempts", fields...)
		} else {
			rp.logger.Debug("Event projection failed, will retry", fields...)
		}
		if markErr := rp.store.MarkProjectionFailed(ctx, envelopes, err); markErr != nil {
			rp.logger.Error("Failed to record projection failure", zap.Error(markErr))
		}
		return err
	}

	rp.recovered.Add(1)
	if err := rp.store.MarkProjected(ctx, envelopes); err != nil {
		rp.logger.Error("Failed to mark event as projected",
			zap.String("eventID", event.Envelope.Event.EventID()),
			zap.Error(err),
		)
	}
	return nil
}

// GetStats returns processing statistics
func (rp *RecoveryProcessor) GetStats() RecoveryStats {
	return RecoveryStats{
		Batches:     rp.batches.Load(),
		Recovered:   rp.recovered.Load(),
		Failed:      rp.failed.Load(),
		BatchSize:   rp.opts.BatchSize,
		Interval:    rp.opts.Interval,
		MaxAttempts: rp.opts.MaxAttempts,
	}
}
