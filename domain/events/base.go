package events

import (
	"time"

	"github.com/google/uuid"
)

// Aggregate types as persisted next to every stored event
const (
	AggregateTypeAccount           = "account"
	AggregateTypeUnitLedgerAccount = "unit_ledger_account"
	AggregateTypeCondominium       = "condominium"
	AggregateTypeUnit              = "unit"
	AggregateTypeOwner             = "owner"
	AggregateTypeExpense           = "expense"
)

// DomainEvent is the base interface for all domain events
// Events represent something that has happened in the past
type DomainEvent interface {
	AggregateID() string
	EventID() string
	OccurredOn() time.Time
	EventName() string
	ToPrimitives() Primitives
}

// BaseEvent provides the envelope fields shared by every event
type BaseEvent struct {
	aggregateID string
	eventID     string
	occurredOn  time.Time
}

// NewBaseEvent stamps a fresh event id and the current UTC time
func NewBaseEvent(aggregateID string) BaseEvent {
	return BaseEvent{
		aggregateID: aggregateID,
		eventID:     uuid.New().String(),
		occurredOn:  time.Now().UTC(),
	}
}

// RestoreBaseEvent rebuilds the envelope of a stored event
func RestoreBaseEvent(aggregateID, eventID string, occurredOn time.Time) BaseEvent {
	return BaseEvent{
		aggregateID: aggregateID,
		eventID:     eventID,
		occurredOn:  occurredOn.UTC(),
	}
}

func (e BaseEvent) AggregateID() string   { return e.aggregateID }
func (e BaseEvent) EventID() string       { return e.eventID }
func (e BaseEvent) OccurredOn() time.Time { return e.occurredOn }

// Envelope is an event as returned by an event store
type Envelope struct {
	Event         DomainEvent
	AggregateType string
	// Version is the 1-based position of the event in its aggregate stream
	Version int
	// Position is the store-wide order, 0 when the store has none
	Position      int64
	SchemaVersion int
}

// EventName is a shortcut for Event.EventName()
func (e Envelope) EventName() string {
	return e.Event.EventName()
}

// AggregateID is a shortcut for Event.AggregateID()
func (e Envelope) AggregateID() string {
	return e.Event.AggregateID()
}
