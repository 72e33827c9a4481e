package dynamodb

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/luisriego/MatisseAPI-sub001/application/ports"
	"github.com/luisriego/MatisseAPI-sub001/domain/events"
	"github.com/luisriego/MatisseAPI-sub001/infrastructure/persistence/serialization"
	pkgerrors "github.com/luisriego/MatisseAPI-sub001/pkg/errors"
)

// maxTransactItems is the DynamoDB limit of items in one TransactWriteItems call
const maxTransactItems = 100

// ProjectionStatus tracks whether the read models have seen an event
type ProjectionStatus string

const (
	ProjectionStatusPending   ProjectionStatus = "pending"   // Event is stored but not yet projected
	ProjectionStatusProjected ProjectionStatus = "projected" // Every projector applied the event
	ProjectionStatusFailed    ProjectionStatus = "failed"    // Last projection attempt failed
)

// EventItem is how an event is stored in DynamoDB
type EventItem struct {
	PK            string `dynamodbav:"PK"` // STREAM#<aggregate_id>
	SK            string `dynamodbav:"SK"` // V#<zero padded version>
	EventID       string `dynamodbav:"EventID"`
	AggregateID   string `dynamodbav:"AggregateID"`
	AggregateType string `dynamodbav:"AggregateType"`
	EventType     string `dynamodbav:"EventType"`
	SchemaVersion int    `dynamodbav:"SchemaVersion"`
	Payload       string `dynamodbav:"Payload"` // JSON
	Version       int    `dynamodbav:"Version"`
	OccurredOn    string `dynamodbav:"OccurredOn"` // RFC3339Nano
	RecordedAt    int64  `dynamodbav:"RecordedAt"` // unix millis

	ProjectionStatus   string `dynamodbav:"ProjectionStatus"`
	ProjectionAttempts int    `dynamodbav:"ProjectionAttempts"`
	ProjectedAt        string `dynamodbav:"ProjectedAt,omitempty"`
	LastError          string `dynamodbav:"LastError,omitempty"`
}

func streamKey(aggregateID string) string { return "STREAM#" + aggregateID }

func versionKey(version int) string { return fmt.Sprintf("V#%010d", version) }

func itemKey(aggregateID string, version int) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"PK": &types.AttributeValueMemberS{Value: streamKey(aggregateID)},
		"SK": &types.AttributeValueMemberS{Value: versionKey(version)},
	}
}

// EventStore implements ports.EventStore and ports.ProjectionTracker on a
// single DynamoDB table. Each Append is one TransactWriteItems call.
type EventStore struct {
	client       Client
	tableName    string
	serializer   *serialization.Serializer
	deserializer *serialization.Deserializer
	now          func() time.Time
}

// NewEventStore creates a new DynamoDB event store
func NewEventStore(client Client, tableName string, serializer *serialization.Serializer, deserializer *serialization.Deserializer) *EventStore {
	return &EventStore{
		client:       client,
		tableName:    tableName,
		serializer:   serializer,
		deserializer: deserializer,
		now:          time.Now,
	}
}

// Append writes every event with attribute_not_exists(PK) so a version can
// only be taken once. A stream expected at version N > 0 also gets a
// condition check on the item of version N.
func (es *EventStore) Append(ctx context.Context, expected ports.ExpectedVersions, evts ...events.DomainEvent) ([]events.Envelope, error) {
	if len(evts) == 0 {
		return nil, nil
	}

	notExists, err := expression.NewBuilder().
		WithCondition(expression.AttributeNotExists(expression.Name("PK"))).
		Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build append condition: %w", err)
	}
	exists, err := expression.NewBuilder().
		WithCondition(expression.AttributeExists(expression.Name("PK"))).
		Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build stream condition: %w", err)
	}

	recordedAt := es.now().UTC()
	next := make(map[string]int)
	var (
		transactItems []types.TransactWriteItem
		owners        []string
		envelopes     = make([]events.Envelope, 0, len(evts))
	)

	for _, event := range evts {
		if event == nil || event.AggregateID() == "" {
			return nil, pkgerrors.NewInvalidArgumentError("cannot append an event without aggregate id")
		}
		id := event.AggregateID()
		if _, seen := next[id]; !seen {
			next[id] = expected[id]
			if expected[id] > 0 {
				transactItems = append(transactItems, types.TransactWriteItem{
					ConditionCheck: &types.ConditionCheck{
						TableName:                aws.String(es.tableName),
						Key:                      itemKey(id, expected[id]),
						ConditionExpression:      exists.Condition(),
						ExpressionAttributeNames: exists.Names(),
					},
				})
				owners = append(owners, id)
			}
		}
		next[id]++

		record, err := es.serializer.Serialize(event)
		if err != nil {
			return nil, err
		}
		payload, err := record.PayloadJSON()
		if err != nil {
			return nil, pkgerrors.NewStorageError("append", err)
		}

		item, err := attributevalue.MarshalMap(EventItem{
			PK:               streamKey(id),
			SK:               versionKey(next[id]),
			EventID:          event.EventID(),
			AggregateID:      id,
			AggregateType:    record.AggregateType,
			EventType:        record.EventType,
			SchemaVersion:    record.SchemaVersion,
			Payload:          string(payload),
			Version:          next[id],
			OccurredOn:       event.OccurredOn().UTC().Format(time.RFC3339Nano),
			RecordedAt:       recordedAt.UnixMilli(),
			ProjectionStatus: string(ProjectionStatusPending),
		})
		if err != nil {
			return nil, fmt.Errorf("failed to marshal event item: %w", err)
		}

		transactItems = append(transactItems, types.TransactWriteItem{
			Put: &types.Put{
				TableName:                aws.String(es.tableName),
				Item:                     item,
				ConditionExpression:      notExists.Condition(),
				ExpressionAttributeNames: notExists.Names(),
			},
		})
		owners = append(owners, id)

		envelopes = append(envelopes, events.Envelope{
			Event:         event,
			AggregateType: record.AggregateType,
			Version:       next[id],
			SchemaVersion: record.SchemaVersion,
		})
	}

	if len(transactItems) > maxTransactItems {
		return nil, pkgerrors.NewInvalidArgumentError(
			fmt.Sprintf("cannot append more than %d items in one call, got %d", maxTransactItems, len(transactItems)))
	}

	_, err = es.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{TransactItems: transactItems})
	if err != nil {
		if failed := cancelledItems(err); len(failed) > 0 {
			id := owners[failed[0]]
			return nil, pkgerrors.NewConcurrencyConflictError(id, expected[id], es.currentVersion(ctx, id, expected[id])).WithCause(err)
		}
		return nil, pkgerrors.NewStorageError("append", err)
	}
	return envelopes, nil
}

// currentVersion reads the latest version of a stream for conflict reports;
// fallback is returned when the read fails
func (es *EventStore) currentVersion(ctx context.Context, aggregateID string, fallback int) int {
	keyCond := expression.Key("PK").Equal(expression.Value(streamKey(aggregateID)))
	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).Build()
	if err != nil {
		return fallback
	}
	result, err := es.client.Query(ctx, &dynamodb.QueryInput{
		TableName:                 aws.String(es.tableName),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		ScanIndexForward:          aws.Bool(false),
		Limit:                     aws.Int32(1),
	})
	if err != nil || len(result.Items) == 0 {
		return fallback
	}
	var item EventItem
	if err := attributevalue.UnmarshalMap(result.Items[0], &item); err != nil {
		return fallback
	}
	return item.Version
}

// GetEvents retrieves all events for an aggregate in version order
func (es *EventStore) GetEvents(ctx context.Context, aggregateID string) ([]events.Envelope, error) {
	keyCond := expression.Key("PK").Equal(expression.Value(streamKey(aggregateID))).
		And(expression.KeyBeginsWith(expression.Key("SK"), "V#"))
	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build stream query: %w", err)
	}

	input := &dynamodb.QueryInput{
		TableName:                 aws.String(es.tableName),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		ScanIndexForward:          aws.Bool(true),
		ConsistentRead:            aws.Bool(true),
	}

	envelopes := []events.Envelope{}
	for {
		result, err := es.client.Query(ctx, input)
		if err != nil {
			return nil, pkgerrors.NewStorageError("get events", err)
		}

		for _, raw := range result.Items {
			envelope, _, err := es.decode(raw)
			if err != nil {
				return nil, err
			}
			envelopes = append(envelopes, envelope)
		}

		if result.LastEvaluatedKey == nil {
			break
		}
		input.ExclusiveStartKey = result.LastEvaluatedKey
	}
	return envelopes, nil
}

func (es *EventStore) decode(raw map[string]types.AttributeValue) (events.Envelope, EventItem, error) {
	var item EventItem
	if err := attributevalue.UnmarshalMap(raw, &item); err != nil {
		return events.Envelope{}, item, pkgerrors.NewDeserializationError("failed to unmarshal event item").WithCause(err)
	}

	occurredOn, err := time.Parse(time.RFC3339Nano, item.OccurredOn)
	if err != nil {
		return events.Envelope{}, item, pkgerrors.NewDeserializationError(
			fmt.Sprintf("event %s has an invalid timestamp", item.EventID)).WithCause(err)
	}

	event, err := es.deserializer.DeserializeJSON(item.EventType, item.AggregateType, []byte(item.Payload),
		item.EventID, item.AggregateID, occurredOn, item.SchemaVersion)
	if err != nil {
		return events.Envelope{}, item, fmt.Errorf("failed to read event %d of %s: %w", item.Version, item.AggregateID, err)
	}

	return events.Envelope{
		Event:         event,
		AggregateType: item.AggregateType,
		Version:       item.Version,
		SchemaVersion: item.SchemaVersion,
	}, item, nil
}

var (
	_ ports.EventStore        = (*EventStore)(nil)
	_ ports.ProjectionTracker = (*EventStore)(nil)
)
