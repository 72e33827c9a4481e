package serialization

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/luisriego/MatisseAPI-sub001/domain/events"
	"github.com/luisriego/MatisseAPI-sub001/infrastructure/persistence/schema"
	pkgerrors "github.com/luisriego/MatisseAPI-sub001/pkg/errors"
)

// Record is the persisted form of an event without its envelope fields
type Record struct {
	EventType     string
	AggregateType string
	SchemaVersion int
	Payload       events.Primitives
}

// PayloadJSON encodes the payload for JSON columns
func (r Record) PayloadJSON() ([]byte, error) {
	data, err := json.Marshal(r.Payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s payload: %w", r.EventType, err)
	}
	return data, nil
}

// Serializer turns domain events into records using the injected registry
type Serializer struct {
	registry  *events.Registry
	upcasters *schema.Upcasters
}

// NewSerializer creates a serializer
func NewSerializer(registry *events.Registry, upcasters *schema.Upcasters) *Serializer {
	return &Serializer{registry: registry, upcasters: upcasters}
}

// Serialize converts an event; unregistered types are refused because they
// could never be read back
func (s *Serializer) Serialize(event events.DomainEvent) (Record, error) {
	if event == nil {
		return Record{}, pkgerrors.NewInvalidArgumentError("cannot serialize a nil event")
	}
	entry, ok := s.registry.Lookup(event.EventName())
	if !ok {
		return Record{}, pkgerrors.NewUnknownEventTypeError(event.EventName())
	}
	return Record{
		EventType:     event.EventName(),
		AggregateType: entry.AggregateType,
		SchemaVersion: s.upcasters.CurrentVersion(event.EventName()),
		Payload:       event.ToPrimitives(),
	}, nil
}

// Deserializer rebuilds domain events from stored records
type Deserializer struct {
	registry  *events.Registry
	upcasters *schema.Upcasters
}

// NewDeserializer creates a deserializer
func NewDeserializer(registry *events.Registry, upcasters *schema.Upcasters) *Deserializer {
	return &Deserializer{registry: registry, upcasters: upcasters}
}

// Deserialize looks eventType up in the registry, upcasts the payload to the
// current schema and calls the event factory
func (d *Deserializer) Deserialize(
	eventType, aggregateType string,
	payload events.Primitives,
	eventID, aggregateID string,
	occurredOn time.Time,
	schemaVersion int,
) (events.DomainEvent, error) {
	entry, ok := d.registry.Lookup(eventType)
	if !ok {
		return nil, pkgerrors.NewUnknownEventTypeError(eventType)
	}
	if aggregateType != "" && aggregateType != entry.AggregateType {
		return nil, pkgerrors.NewDeserializationError(fmt.Sprintf(
			"event %s of type %s is stored as %s but belongs to %s",
			eventID, eventType, aggregateType, entry.AggregateType))
	}

	upgraded, err := d.upcasters.Upcast(eventType, schemaVersion, payload)
	if err != nil {
		return nil, pkgerrors.NewDeserializationError(
			fmt.Sprintf("event %s could not be upcast", eventID)).WithCause(err)
	}

	event, err := entry.Factory(aggregateID, upgraded, eventID, occurredOn)
	if err != nil {
		if pkgerrors.IsDeserialization(err) {
			return nil, err
		}
		return nil, pkgerrors.NewDeserializationError(
			fmt.Sprintf("event %s payload does not match %s", eventID, eventType)).WithCause(err)
	}
	return event, nil
}

// DeserializeJSON is Deserialize for payloads kept as JSON text
func (d *Deserializer) DeserializeJSON(
	eventType, aggregateType string,
	payload []byte,
	eventID, aggregateID string,
	occurredOn time.Time,
	schemaVersion int,
) (events.DomainEvent, error) {
	primitives, err := DecodePayload(payload)
	if err != nil {
		return nil, err
	}
	return d.Deserialize(eventType, aggregateType, primitives, eventID, aggregateID, occurredOn, schemaVersion)
}

// DecodePayload parses a JSON object keeping numbers exact
func DecodePayload(data []byte) (events.Primitives, error) {
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()

	var payload events.Primitives
	if err := decoder.Decode(&payload); err != nil {
		return nil, pkgerrors.NewDeserializationError("payload is not a JSON object").WithCause(err)
	}
	if payload == nil {
		payload = events.Primitives{}
	}
	return payload, nil
}
