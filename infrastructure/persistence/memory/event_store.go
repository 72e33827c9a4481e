package memory

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/luisriego/MatisseAPI-sub001/application/ports"
	"github.com/luisriego/MatisseAPI-sub001/domain/events"
	"github.com/luisriego/MatisseAPI-sub001/infrastructure/persistence/serialization"
	pkgerrors "github.com/luisriego/MatisseAPI-sub001/pkg/errors"
)

// storedEvent is the serialised form kept by the store, so reads go through
// the same deserialisation path as the durable stores
type storedEvent struct {
	EventID       string
	AggregateID   string
	AggregateType string
	EventType     string
	SchemaVersion int
	Payload       []byte
	Version       int
	Position      int64
	OccurredOn    time.Time
}

// pendingWrites are the events a transaction appended but has not committed
type pendingWrites struct {
	base    map[string]int
	streams map[string][]storedEvent
	log     []storedEvent
}

func (p *pendingWrites) version(id string, committed int) int {
	if base, ok := p.base[id]; ok {
		return base + len(p.streams[id])
	}
	return committed
}

// EventStore is an in-memory implementation of ports.EventStore and
// ports.StreamReader. Appends made inside a Tx stay private to that Tx
// until it commits.
type EventStore struct {
	mu           sync.RWMutex
	streams      map[string][]storedEvent
	log          []storedEvent
	lastPosition int64
	pending      map[*Tx]*pendingWrites

	serializer   *serialization.Serializer
	deserializer *serialization.Deserializer
}

// NewEventStore creates a new in-memory event store
func NewEventStore(serializer *serialization.Serializer, deserializer *serialization.Deserializer) *EventStore {
	return &EventStore{
		streams:      make(map[string][]storedEvent),
		pending:      make(map[*Tx]*pendingWrites),
		serializer:   serializer,
		deserializer: deserializer,
	}
}

// Append stores events after checking the expected version of every stream
// they belong to. Nothing is written when a check or a serialisation fails.
// Inside a Tx the events are staged and published when the Tx commits.
func (s *EventStore) Append(ctx context.Context, expected ports.ExpectedVersions, evts ...events.DomainEvent) ([]events.Envelope, error) {
	if len(evts) == 0 {
		return nil, nil
	}

	records := make([]serialization.Record, len(evts))
	for i, event := range evts {
		if event == nil || event.AggregateID() == "" {
			return nil, pkgerrors.NewInvalidArgumentError("cannot append an event without aggregate id")
		}
		record, err := s.serializer.Serialize(event)
		if err != nil {
			return nil, err
		}
		records[i] = record
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, inTx := txFromCtx(ctx)
	pending := s.pending[tx]
	current := func(id string) int {
		if pending != nil {
			return pending.version(id, len(s.streams[id]))
		}
		return len(s.streams[id])
	}

	// check every stream before writing anything
	next := make(map[string]int)
	for _, event := range evts {
		id := event.AggregateID()
		if _, ok := next[id]; ok {
			continue
		}
		actual := current(id)
		if actual != expected[id] {
			return nil, pkgerrors.NewConcurrencyConflictError(id, expected[id], actual)
		}
		next[id] = actual
	}

	stored := make([]storedEvent, 0, len(evts))
	for i, event := range evts {
		payload, err := records[i].PayloadJSON()
		if err != nil {
			return nil, pkgerrors.NewStorageError("append", err)
		}
		id := event.AggregateID()
		next[id]++
		stored = append(stored, storedEvent{
			EventID:       event.EventID(),
			AggregateID:   id,
			AggregateType: records[i].AggregateType,
			EventType:     records[i].EventType,
			SchemaVersion: records[i].SchemaVersion,
			Payload:       payload,
			Version:       next[id],
			OccurredOn:    event.OccurredOn(),
		})
	}

	if inTx && pending == nil {
		pending = s.stage(tx)
	}

	envelopes := make([]events.Envelope, len(stored))
	for i := range stored {
		s.lastPosition++
		stored[i].Position = s.lastPosition
		id := stored[i].AggregateID

		if pending != nil {
			if _, ok := pending.base[id]; !ok {
				pending.base[id] = len(s.streams[id])
			}
			pending.streams[id] = append(pending.streams[id], stored[i])
			pending.log = append(pending.log, stored[i])
		} else {
			s.streams[id] = append(s.streams[id], stored[i])
			s.log = append(s.log, stored[i])
		}

		envelopes[i] = events.Envelope{
			Event:         evts[i],
			AggregateType: stored[i].AggregateType,
			Version:       stored[i].Version,
			Position:      stored[i].Position,
			SchemaVersion: stored[i].SchemaVersion,
		}
	}

	return envelopes, nil
}

// stage opens the pending writes of tx. Callers hold s.mu.
func (s *EventStore) stage(tx *Tx) *pendingWrites {
	pending := &pendingWrites{
		base:    make(map[string]int),
		streams: make(map[string][]storedEvent),
	}
	s.pending[tx] = pending
	tx.onCommit(func() error { return s.publish(tx) })
	tx.onRollback(func() { s.discard(tx) })
	return pending
}

// publish moves the pending writes of tx into the streams and the global log
func (s *EventStore) publish(tx *Tx) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	pending, ok := s.pending[tx]
	if !ok {
		return nil
	}
	delete(s.pending, tx)

	// a write outside any Tx may have taken the slot in the meantime
	for id, base := range pending.base {
		if actual := len(s.streams[id]); actual != base {
			return pkgerrors.NewConcurrencyConflictError(id, base, actual)
		}
	}

	for id, stream := range pending.streams {
		s.streams[id] = append(s.streams[id], stream...)
	}
	s.log = mergeByPosition(s.log, pending.log)
	return nil
}

func (s *EventStore) discard(tx *Tx) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.pending, tx)
}

// mergeByPosition appends added to log keeping the log in position order
func mergeByPosition(log, added []storedEvent) []storedEvent {
	if len(added) == 0 {
		return log
	}
	inOrder := len(log) == 0 || log[len(log)-1].Position < added[0].Position
	log = append(log, added...)
	if !inOrder {
		slices.SortStableFunc(log, func(a, b storedEvent) int {
			return cmp.Compare(a.Position, b.Position)
		})
	}
	return log
}

// GetEvents returns the stream of an aggregate in version order. Events
// staged by the Tx in ctx are included.
func (s *EventStore) GetEvents(ctx context.Context, aggregateID string) ([]events.Envelope, error) {
	s.mu.RLock()
	stream := append([]storedEvent(nil), s.streams[aggregateID]...)
	if pending := s.pendingFor(ctx); pending != nil {
		stream = append(stream, pending.streams[aggregateID]...)
	}
	s.mu.RUnlock()

	return s.toEnvelopes(stream)
}

// ReadAll returns up to limit events with a position greater than afterPosition.
// Events staged by the Tx in ctx are included. Positions are reserved at
// append, so a Tx that commits late publishes below positions already read.
func (s *EventStore) ReadAll(ctx context.Context, afterPosition int64, limit int) ([]events.Envelope, error) {
	if limit <= 0 {
		return nil, pkgerrors.NewInvalidArgumentError("limit must be positive")
	}

	s.mu.RLock()
	log := s.log
	if pending := s.pendingFor(ctx); pending != nil {
		log = mergeByPosition(append([]storedEvent(nil), s.log...), pending.log)
	}
	var batch []storedEvent
	for _, e := range log {
		if e.Position <= afterPosition {
			continue
		}
		batch = append(batch, e)
		if len(batch) == limit {
			break
		}
	}
	s.mu.RUnlock()

	return s.toEnvelopes(batch)
}

// pendingFor returns the writes staged by the Tx in ctx. Callers hold s.mu.
func (s *EventStore) pendingFor(ctx context.Context) *pendingWrites {
	tx, ok := txFromCtx(ctx)
	if !ok {
		return nil
	}
	return s.pending[tx]
}

func (s *EventStore) toEnvelopes(stored []storedEvent) ([]events.Envelope, error) {
	envelopes := make([]events.Envelope, 0, len(stored))
	for _, e := range stored {
		event, err := s.deserializer.DeserializeJSON(
			e.EventType, e.AggregateType, e.Payload,
			e.EventID, e.AggregateID, e.OccurredOn, e.SchemaVersion,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to read event %d of %s: %w", e.Version, e.AggregateID, err)
		}
		envelopes = append(envelopes, events.Envelope{
			Event:         event,
			AggregateType: e.AggregateType,
			Version:       e.Version,
			Position:      e.Position,
			SchemaVersion: e.SchemaVersion,
		})
	}
	return envelopes, nil
}
