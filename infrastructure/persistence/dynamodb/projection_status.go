package dynamodb

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"

	"github.com/luisriego/MatisseAPI-sub001/domain/events"
	pkgerrors "github.com/luisriego/MatisseAPI-sub001/pkg/errors"
)

// maxErrorLength bounds the LastError attribute
const maxErrorLength = 1024

// UnprojectedEvent is a stored event the read models have not applied yet
type UnprojectedEvent struct {
	Envelope events.Envelope
	Status   ProjectionStatus
	Attempts int
}

// UnprojectedFilter selects events for the recovery processor
type UnprojectedFilter struct {
	// RecordedBefore skips pending events newer than this, since their
	// Save may still be projecting them
	RecordedBefore time.Time
	// MaxAttempts skips failed events that already used their attempts
	MaxAttempts int
	// Limit caps the number of returned events
	Limit int
}

// MarkProjected records that every projector applied the events
func (es *EventStore) MarkProjected(ctx context.Context, envelopes []events.Envelope) error {
	update := expression.
		Set(expression.Name("ProjectionStatus"), expression.Value(string(ProjectionStatusProjected))).
		Set(expression.Name("ProjectedAt"), expression.Value(es.now().UTC().Format(time.RFC3339))).
		Remove(expression.Name("LastError"))
	return es.updateStatus(ctx, envelopes, update, "mark projected")
}

// MarkProjectionFailed records a failed projection attempt on the events
func (es *EventStore) MarkProjectionFailed(ctx context.Context, envelopes []events.Envelope, cause error) error {
	message := "unknown error"
	if cause != nil {
		message = cause.Error()
	}
	if len(message) > maxErrorLength {
		message = message[:maxErrorLength]
	}

	update := expression.
		Set(expression.Name("ProjectionStatus"), expression.Value(string(ProjectionStatusFailed))).
		Set(expression.Name("LastError"), expression.Value(message)).
		Add(expression.Name("ProjectionAttempts"), expression.Value(1))
	return es.updateStatus(ctx, envelopes, update, "mark projection failed")
}

func (es *EventStore) updateStatus(ctx context.Context, envelopes []events.Envelope, update expression.UpdateBuilder, operation string) error {
	expr, err := expression.NewBuilder().
		WithUpdate(update).
		WithCondition(expression.AttributeExists(expression.Name("PK"))).
		Build()
	if err != nil {
		return fmt.Errorf("failed to build %s update: %w", operation, err)
	}

	var errs []error
	for _, env := range envelopes {
		_, err := es.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
			TableName:                 aws.String(es.tableName),
			Key:                       itemKey(env.AggregateID(), env.Version),
			UpdateExpression:          expr.Update(),
			ConditionExpression:       expr.Condition(),
			ExpressionAttributeNames:  expr.Names(),
			ExpressionAttributeValues: expr.Values(),
		})
		if err != nil {
			errs = append(errs, fmt.Errorf("event %s: %w", env.Event.EventID(), err))
		}
	}
	if len(errs) > 0 {
		return pkgerrors.NewStorageError(operation, errors.Join(errs...))
	}
	return nil
}

// Unprojected scans for pending events older than RecordedBefore and failed
// events with attempts left. Results are ordered by aggregate then version.
func (es *EventStore) Unprojected(ctx context.Context, filter UnprojectedFilter) ([]UnprojectedEvent, error) {
	if filter.Limit <= 0 {
		return nil, pkgerrors.NewInvalidArgumentError("limit must be positive")
	}

	pending := expression.Name("ProjectionStatus").Equal(expression.Value(string(ProjectionStatusPending))).
		And(expression.Name("RecordedAt").LessThan(expression.Value(filter.RecordedBefore.UnixMilli())))
	failed := expression.Name("ProjectionStatus").Equal(expression.Value(string(ProjectionStatusFailed))).
		And(expression.Name("ProjectionAttempts").LessThan(expression.Value(filter.MaxAttempts)))
	cond := expression.BeginsWith(expression.Name("PK"), "STREAM#").And(pending.Or(failed))

	expr, err := expression.NewBuilder().WithFilter(cond).Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build unprojected filter: %w", err)
	}

	input := &dynamodb.ScanInput{
		TableName:                 aws.String(es.tableName),
		FilterExpression:          expr.Filter(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	}

	var found []UnprojectedEvent
	for len(found) < filter.Limit {
		result, err := es.client.Scan(ctx, input)
		if err != nil {
			return nil, pkgerrors.NewStorageError("scan unprojected events", err)
		}

		for _, raw := range result.Items {
			envelope, item, err := es.decode(raw)
			if err != nil {
				return nil, err
			}
			found = append(found, UnprojectedEvent{
				Envelope: envelope,
				Status:   ProjectionStatus(item.ProjectionStatus),
				Attempts: item.ProjectionAttempts,
			})
		}

		if result.LastEvaluatedKey == nil {
			break
		}
		input.ExclusiveStartKey = result.LastEvaluatedKey
	}

	sort.SliceStable(found, func(i, j int) bool {
		a, b := found[i].Envelope, found[j].Envelope
		if a.AggregateID() != b.AggregateID() {
			return a.AggregateID() < b.AggregateID()
		}
		return a.Version < b.Version
	})
	if len(found) > filter.Limit {
		found = found[:filter.Limit]
	}
	return found, nil
}
