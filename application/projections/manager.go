package projections

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/luisriego/MatisseAPI-sub001/application/ports"
	"github.com/luisriego/MatisseAPI-sub001/domain/events"
	pkgerrors "github.com/luisriego/MatisseAPI-sub001/pkg/errors"
)

// DefaultReplayBatchSize is used when ManagerOptions.BatchSize is not set
const DefaultReplayBatchSize = 500

// Metrics receives one observation per projector run
type Metrics interface {
	RecordProjection(projector string, duration time.Duration, err error)
}

// ProjectionError reports which projector failed on which event
type ProjectionError struct {
	Projector   string
	EventID     string
	EventType   string
	AggregateID string
	Position    int64
	Err         error
}

func (e *ProjectionError) Error() string {
	return fmt.Sprintf("projector '%s' failed to handle event %s (type: %s, aggregate: %s, position: %d): %v",
		e.Projector, e.EventID, e.EventType, e.AggregateID, e.Position, e.Err)
}

func (e *ProjectionError) Unwrap() error {
	return e.Err
}

// ProjectorStats holds runtime statistics of one projector
type ProjectorStats struct {
	Projector        string
	EventsProcessed  int64
	ErrorCount       int64
	LastEventTime    time.Time
	AverageLatencyMs float64
}

// ManagerOptions configures a Manager. Reader and Store are only needed for
// replays; Tx wraps every replay batch when set.
type ManagerOptions struct {
	Reader    ports.StreamReader
	Store     ports.EventStore
	Tx        ports.TxRunner
	Metrics   Metrics
	BatchSize int
	Logger    *zap.Logger
}

// Manager routes stored events to every projector that handles them
type Manager struct {
	projectors []ports.Projector
	byName     map[string]ports.Projector
	opts       ManagerOptions
	logger     *zap.Logger

	mu    sync.Mutex
	stats map[string]*ProjectorStats
}

var _ ports.ProjectionManager = (*Manager)(nil)

// NewManager creates a manager; projector names must be unique
func NewManager(opts ManagerOptions, projectors ...ports.Projector) (*Manager, error) {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = DefaultReplayBatchSize
	}

	m := &Manager{
		byName: make(map[string]ports.Projector, len(projectors)),
		opts:   opts,
		logger: opts.Logger,
		stats:  make(map[string]*ProjectorStats, len(projectors)),
	}
	for _, p := range projectors {
		name := p.Name()
		if _, exists := m.byName[name]; exists {
			return nil, fmt.Errorf("projector '%s' already registered", name)
		}
		m.projectors = append(m.projectors, p)
		m.byName[name] = p
		m.stats[name] = &ProjectorStats{Projector: name}
	}

	m.logger.Info("Registered projectors", zap.Strings("projectors", m.Names()))
	return m, nil
}

// Names returns the registered projector names in registration order
func (m *Manager) Names() []string {
	names := make([]string, len(m.projectors))
	for i, p := range m.projectors {
		names[i] = p.Name()
	}
	return names
}

// Project applies envelopes in order. The first failure stops the run and is
// returned as a *ProjectionError so the enclosing transaction can roll back.
func (m *Manager) Project(ctx context.Context, envelopes []events.Envelope) error {
	_, err := m.projectAll(ctx, m.projectors, envelopes)
	return err
}

func (m *Manager) projectAll(ctx context.Context, projectors []ports.Projector, envelopes []events.Envelope) (int, error) {
	applied := 0
	for _, env := range envelopes {
		for _, p := range projectors {
			if !p.Handles(env.EventName()) {
				continue
			}
			if err := m.projectOne(ctx, p, env); err != nil {
				return applied, err
			}
			applied++
		}
	}
	return applied, nil
}

func (m *Manager) projectOne(ctx context.Context, p ports.Projector, env events.Envelope) error {
	name := p.Name()
	start := time.Now()

	err := p.Project(ctx, env)
	latency := time.Since(start)

	m.recordStats(name, latency, err)
	if m.opts.Metrics != nil {
		m.opts.Metrics.RecordProjection(name, latency, err)
	}

	if err != nil {
		m.logger.Error("Projection failed",
			zap.String("projector", name),
			zap.String("eventID", env.Event.EventID()),
			zap.String("eventType", env.EventName()),
			zap.String("aggregateID", env.AggregateID()),
			zap.Int64("position", env.Position),
			zap.Error(err))

		return &ProjectionError{
			Projector:   name,
			EventID:     env.Event.EventID(),
			EventType:   env.EventName(),
			AggregateID: env.AggregateID(),
			Position:    env.Position,
			Err:         pkgerrors.NewProjectionFailedError(fmt.Sprintf("projector %s failed", name), err),
		}
	}

	m.logger.Debug("Projector processed event",
		zap.String("projector", name),
		zap.String("eventType", env.EventName()),
		zap.String("aggregateID", env.AggregateID()))
	return nil
}

func (m *Manager) recordStats(name string, latency time.Duration, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	stats := m.stats[name]
	stats.EventsProcessed++
	stats.LastEventTime = time.Now().UTC()
	ms := float64(latency.Microseconds()) / 1000
	stats.AverageLatencyMs = (stats.AverageLatencyMs*float64(stats.EventsProcessed-1) + ms) / float64(stats.EventsProcessed)
	if err != nil {
		stats.ErrorCount++
	}
}

// Stats returns a copy of the statistics of every projector
func (m *Manager) Stats() map[string]ProjectorStats {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make(map[string]ProjectorStats, len(m.stats))
	for name, s := range m.stats {
		out[name] = *s
	}
	return out
}

// selectProjectors resolves names; no names means every projector
func (m *Manager) selectProjectors(names []string) ([]ports.Projector, error) {
	if len(names) == 0 {
		return m.projectors, nil
	}
	selected := make([]ports.Projector, 0, len(names))
	for _, name := range names {
		p, ok := m.byName[name]
		if !ok {
			return nil, pkgerrors.NewInvalidArgumentError(fmt.Sprintf("unknown projector '%s'", name))
		}
		selected = append(selected, p)
	}
	return selected, nil
}
