package ports

import (
	"context"

	"github.com/luisriego/MatisseAPI-sub001/domain/events"
)

// ExpectedVersions maps an aggregate ID to the stream version the caller last
// saw. A stream missing from the map is expected not to exist yet.
type ExpectedVersions map[string]int

// EventStore defines the interface for event persistence
type EventStore interface {
	// Append stores events, grouped by aggregate ID in submission order. It
	// fails with a ConcurrencyConflict error when a stream has moved past its
	// expected version and never applies a partial batch.
	Append(ctx context.Context, expected ExpectedVersions, evts ...events.DomainEvent) ([]events.Envelope, error)

	// GetEvents returns the stream of an aggregate in append order; an
	// unknown aggregate yields an empty slice, not an error
	GetEvents(ctx context.Context, aggregateID string) ([]events.Envelope, error)
}

// StreamReader is implemented by stores that keep a global order of events
type StreamReader interface {
	// ReadAll returns up to limit events with a position greater than afterPosition
	ReadAll(ctx context.Context, afterPosition int64, limit int) ([]events.Envelope, error)
}

// TxRunner defines a transaction boundary shared by the event store and the read models
type TxRunner interface {
	// RunInTx runs fn in a transaction carried by the context passed to fn
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// ProjectionTracker is implemented by stores that cannot project in the same
// transaction as the append and must track projection progress per event
type ProjectionTracker interface {
	MarkProjected(ctx context.Context, envelopes []events.Envelope) error
	MarkProjectionFailed(ctx context.Context, envelopes []events.Envelope, cause error) error
}

// EventPublisher defines the interface for publishing stored events
type EventPublisher interface {
	// Publish sends a single event
	Publish(ctx context.Context, envelope events.Envelope) error

	// PublishBatch sends multiple events
	PublishBatch(ctx context.Context, envelopes []events.Envelope) error
}
