package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/luisriego/MatisseAPI-sub001/application/ports"
	"github.com/luisriego/MatisseAPI-sub001/domain/events"
	"github.com/luisriego/MatisseAPI-sub001/infrastructure/persistence/serialization"
	pkgerrors "github.com/luisriego/MatisseAPI-sub001/pkg/errors"
)

const (
	eventsTable             = "ledger_events"
	streamVersionConstraint = "ledger_events_stream_version"
)

var eventColumns = []string{
	"event_id", "aggregate_id", "aggregate_type", "event_type",
	"schema_version", "payload", "version", "position", "occurred_on",
}

// EventStore is a PostgreSQL implementation of ports.EventStore and
// ports.StreamReader. Streams are guarded by the unique
// (aggregate_id, version) constraint.
type EventStore struct {
	db           DB
	tx           *TxManager
	serializer   *serialization.Serializer
	deserializer *serialization.Deserializer
}

// NewEventStore creates a new PostgreSQL event store
func NewEventStore(db DB, tx *TxManager, serializer *serialization.Serializer, deserializer *serialization.Deserializer) *EventStore {
	return &EventStore{
		db:           db,
		tx:           tx,
		serializer:   serializer,
		deserializer: deserializer,
	}
}

type pendingRow struct {
	event   events.DomainEvent
	record  serialization.Record
	payload []byte
	version int
}

// Append stores events in one transaction, joining the transaction in ctx
// when there is one.
func (s *EventStore) Append(ctx context.Context, expected ports.ExpectedVersions, evts ...events.DomainEvent) ([]events.Envelope, error) {
	if len(evts) == 0 {
		return nil, nil
	}

	rows := make([]pendingRow, len(evts))
	var order []string
	next := make(map[string]int)
	for i, event := range evts {
		if event == nil || event.AggregateID() == "" {
			return nil, pkgerrors.NewInvalidArgumentError("cannot append an event without aggregate id")
		}
		record, err := s.serializer.Serialize(event)
		if err != nil {
			return nil, err
		}
		payload, err := record.PayloadJSON()
		if err != nil {
			return nil, pkgerrors.NewStorageError("append", err)
		}

		id := event.AggregateID()
		if _, seen := next[id]; !seen {
			next[id] = expected[id]
			order = append(order, id)
		}
		next[id]++
		rows[i] = pendingRow{event: event, record: record, payload: payload, version: next[id]}
	}

	var envelopes []events.Envelope
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		q := QuerierFromCtx(ctx, s.db)

		for _, id := range order {
			actual, err := s.currentVersion(ctx, q, id)
			if err != nil {
				return err
			}
			if actual != expected[id] {
				return pkgerrors.NewConcurrencyConflictError(id, expected[id], actual)
			}
		}

		insert := psql.Insert(eventsTable).Columns(
			"event_id", "aggregate_id", "aggregate_type", "event_type",
			"schema_version", "payload", "version", "occurred_on",
		)
		for _, row := range rows {
			insert = insert.Values(
				row.event.EventID(), row.event.AggregateID(), row.record.AggregateType, row.record.EventType,
				row.record.SchemaVersion, row.payload, row.version, row.event.OccurredOn().UTC(),
			)
		}
		sql, args, err := insert.Suffix("RETURNING event_id, position").ToSql()
		if err != nil {
			return fmt.Errorf("build append statement: %w", err)
		}

		result, err := q.Query(ctx, sql, args...)
		if err != nil {
			return s.appendError(err, rows, expected)
		}
		defer result.Close()

		positions := make(map[string]int64, len(rows))
		for result.Next() {
			var eventID string
			var position int64
			if err := result.Scan(&eventID, &position); err != nil {
				return mapError(err, "append")
			}
			positions[eventID] = position
		}
		if err := result.Err(); err != nil {
			return s.appendError(err, rows, expected)
		}

		envelopes = make([]events.Envelope, len(rows))
		for i, row := range rows {
			envelopes[i] = events.Envelope{
				Event:         row.event,
				AggregateType: row.record.AggregateType,
				Version:       row.version,
				Position:      positions[row.event.EventID()],
				SchemaVersion: row.record.SchemaVersion,
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return envelopes, nil
}

func (s *EventStore) currentVersion(ctx context.Context, q Querier, aggregateID string) (int, error) {
	sql, args, err := psql.Select("COALESCE(MAX(version), 0)").
		From(eventsTable).
		Where(squirrel.Eq{"aggregate_id": aggregateID}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build version query: %w", err)
	}

	var version int
	if err := q.QueryRow(ctx, sql, args...).Scan(&version); err != nil {
		return 0, mapError(err, "read stream version")
	}
	return version, nil
}

// appendError turns a lost race on the stream constraint into a conflict;
// the winner wrote at least one version past the expected one
func (s *EventStore) appendError(err error, rows []pendingRow, expected ports.ExpectedVersions) error {
	if isUniqueViolation(err, streamVersionConstraint) || isSerializationFailure(err) {
		id := rows[0].event.AggregateID()
		return pkgerrors.NewConcurrencyConflictError(id, expected[id], expected[id]+1).WithCause(err)
	}
	return mapError(err, "append")
}

// GetEvents returns the stream of an aggregate in version order
func (s *EventStore) GetEvents(ctx context.Context, aggregateID string) ([]events.Envelope, error) {
	query := psql.Select(eventColumns...).
		From(eventsTable).
		Where(squirrel.Eq{"aggregate_id": aggregateID}).
		OrderBy("version ASC")
	return s.query(ctx, query, "get events")
}

// ReadAll returns up to limit events with a position greater than afterPosition.
// Positions come from a sequence taken at insert time, so under Read Committed
// a lower position can commit after a higher one was already returned. Callers
// paging past the tail of a live log can miss such events; Replay reports the
// gaps it crossed.
func (s *EventStore) ReadAll(ctx context.Context, afterPosition int64, limit int) ([]events.Envelope, error) {
	if limit <= 0 {
		return nil, pkgerrors.NewInvalidArgumentError("limit must be positive")
	}
	query := psql.Select(eventColumns...).
		From(eventsTable).
		Where(squirrel.Gt{"position": afterPosition}).
		OrderBy("position ASC").
		Limit(uint64(limit))
	return s.query(ctx, query, "read all events")
}

func (s *EventStore) query(ctx context.Context, query squirrel.SelectBuilder, operation string) ([]events.Envelope, error) {
	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build %s query: %w", operation, err)
	}

	rows, err := QuerierFromCtx(ctx, s.db).Query(ctx, sql, args...)
	if err != nil {
		return nil, mapError(err, operation)
	}
	defer rows.Close()

	envelopes := []events.Envelope{}
	for rows.Next() {
		var (
			eventID, aggregateID, aggregateType, eventType string
			schemaVersion, version                         int
			payload                                        []byte
			position                                       int64
			occurredOn                                     time.Time
		)
		if err := rows.Scan(&eventID, &aggregateID, &aggregateType, &eventType,
			&schemaVersion, &payload, &version, &position, &occurredOn); err != nil {
			return nil, mapError(err, operation)
		}

		event, err := s.deserializer.DeserializeJSON(eventType, aggregateType, payload,
			eventID, aggregateID, occurredOn, schemaVersion)
		if err != nil {
			return nil, fmt.Errorf("failed to read event %d of %s: %w", version, aggregateID, err)
		}
		envelopes = append(envelopes, events.Envelope{
			Event:         event,
			AggregateType: aggregateType,
			Version:       version,
			Position:      position,
			SchemaVersion: schemaVersion,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err, operation)
	}
	return envelopes, nil
}
