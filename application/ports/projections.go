package ports

import (
	"context"

	"github.com/luisriego/MatisseAPI-sub001/domain/events"
)

// Projector keeps one read table up to date. Project must be idempotent:
// replays resubmit events that were already applied.
type Projector interface {
	Name() string
	Handles(eventName string) bool
	Project(ctx context.Context, envelope events.Envelope) error
	// Reset empties the table before a full rebuild
	Reset(ctx context.Context) error
}

// ProjectionManager fans stored events out to the projectors
type ProjectionManager interface {
	Project(ctx context.Context, envelopes []events.Envelope) error
}
