package observability

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// CommandRecorder receives one observation per executed command
type CommandRecorder interface {
	RecordCommandExecution(ctx context.Context, commandName string, duration time.Duration, err error)
}

// QueryRecorder receives one observation per executed query
type QueryRecorder interface {
	RecordQueryExecution(ctx context.Context, queryName string, duration time.Duration, cached bool, err error)
}

// Collector holds the Prometheus metrics of the ledger
type Collector struct {
	registry *prometheus.Registry

	// Command metrics
	CommandsTotal        *prometheus.CounterVec
	CommandDuration      *prometheus.HistogramVec
	ConcurrencyConflicts *prometheus.CounterVec

	// Query metrics
	QueriesTotal  *prometheus.CounterVec
	QueryDuration *prometheus.HistogramVec

	// Projection metrics
	ProjectedEvents    *prometheus.CounterVec
	ProjectionDuration *prometheus.HistogramVec

	// Recovery metrics
	RecoveredEvents *prometheus.CounterVec
}

// NewCollector creates a collector with its own registry
func NewCollector(namespace string) *Collector {
	registry := prometheus.NewRegistry()

	commandsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "commands_total",
			Help:      "Total number of executed commands",
		},
		[]string{"command", "status"},
	)

	commandDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "command_duration_seconds",
			Help:      "Command execution latency",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"command"},
	)

	conflicts := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "concurrency_conflicts_total",
			Help:      "Appends rejected by the expected-version check",
		},
		[]string{"command"},
	)

	queriesTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "queries_total",
			Help:      "Total number of executed queries",
		},
		[]string{"query", "status", "cache"},
	)

	queryDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "query_duration_seconds",
			Help:      "Query execution latency",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"query"},
	)

	projectedEvents := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "projected_events_total",
			Help:      "Events handled by projectors",
		},
		[]string{"projector", "status"},
	)

	projectionDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "projection_duration_seconds",
			Help:      "Time spent by a projector on one event",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"projector"},
	)

	recoveredEvents := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "projection_recovery_events_total",
			Help:      "Events re-driven by the projection recovery processor",
		},
		[]string{"status"},
	)

	registry.MustRegister(
		commandsTotal,
		commandDuration,
		conflicts,
		queriesTotal,
		queryDuration,
		projectedEvents,
		projectionDuration,
		recoveredEvents,
	)

	return &Collector{
		registry:             registry,
		CommandsTotal:        commandsTotal,
		CommandDuration:      commandDuration,
		ConcurrencyConflicts: conflicts,
		QueriesTotal:         queriesTotal,
		QueryDuration:        queryDuration,
		ProjectedEvents:      projectedEvents,
		ProjectionDuration:   projectionDuration,
		RecoveredEvents:      recoveredEvents,
	}
}

// Registry returns the Prometheus registry for this collector
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// RecordCommandExecution implements CommandRecorder
func (c *Collector) RecordCommandExecution(ctx context.Context, commandName string, duration time.Duration, err error) {
	c.CommandsTotal.WithLabelValues(commandName, statusOf(err)).Inc()
	c.CommandDuration.WithLabelValues(commandName).Observe(duration.Seconds())
}

// RecordConflict counts a concurrency conflict hit while running a command
func (c *Collector) RecordConflict(commandName string) {
	c.ConcurrencyConflicts.WithLabelValues(commandName).Inc()
}

// RecordQueryExecution implements QueryRecorder
func (c *Collector) RecordQueryExecution(ctx context.Context, queryName string, duration time.Duration, cached bool, err error) {
	cache := "miss"
	if cached {
		cache = "hit"
	}
	c.QueriesTotal.WithLabelValues(queryName, statusOf(err), cache).Inc()
	c.QueryDuration.WithLabelValues(queryName).Observe(duration.Seconds())
}

// RecordProjection records one projector run
func (c *Collector) RecordProjection(projector string, duration time.Duration, err error) {
	c.ProjectedEvents.WithLabelValues(projector, statusOf(err)).Inc()
	c.ProjectionDuration.WithLabelValues(projector).Observe(duration.Seconds())
}

// RecordRecovery counts one event handled by the recovery processor
func (c *Collector) RecordRecovery(err error) {
	c.RecoveredEvents.WithLabelValues(statusOf(err)).Inc()
}

func statusOf(err error) string {
	if err != nil {
		return "failure"
	}
	return "success"
}
