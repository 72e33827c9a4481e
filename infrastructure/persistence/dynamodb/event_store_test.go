package dynamodb

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luisriego/MatisseAPI-sub001/application/ports"
	"github.com/luisriego/MatisseAPI-sub001/domain/core/valueobjects"
	"github.com/luisriego/MatisseAPI-sub001/domain/events"
	"github.com/luisriego/MatisseAPI-sub001/infrastructure/persistence/schema"
	"github.com/luisriego/MatisseAPI-sub001/infrastructure/persistence/serialization"
	pkgerrors "github.com/luisriego/MatisseAPI-sub001/pkg/errors"
)

func usd(amount int64) valueobjects.Money {
	return valueobjects.NewMoney(amount, valueobjects.USD)
}

func newTestStore(client Client) *EventStore {
	registry := events.DefaultRegistry()
	upcasters := schema.DefaultUpcasters()
	return NewEventStore(client, "ledger-events",
		serialization.NewSerializer(registry, upcasters),
		serialization.NewDeserializer(registry, upcasters))
}

func ledgerEvents(unitID valueobjects.UnitID) []events.DomainEvent {
	return []events.DomainEvent{
		events.NewUnitLedgerAccountCreated(unitID, usd(1000)),
		events.NewFeeAppliedToUnitLedger(unitID, valueobjects.NewFeeItemID(), usd(500), time.Now(), "March fee"),
	}
}

func putItems(t *testing.T, in *dynamodb.TransactWriteItemsInput) []EventItem {
	t.Helper()
	var items []EventItem
	for _, ti := range in.TransactItems {
		if ti.Put == nil {
			continue
		}
		var item EventItem
		require.NoError(t, attributevalue.UnmarshalMap(ti.Put.Item, &item))
		items = append(items, item)
	}
	return items
}

func TestEventStoreAppendNewStream(t *testing.T) {
	client := &fakeClient{}
	store := newTestStore(client)
	unitID := valueobjects.NewUnitID()

	envelopes, err := store.Append(context.Background(), ports.ExpectedVersions{}, ledgerEvents(unitID)...)
	require.NoError(t, err)
	require.Len(t, envelopes, 2)
	assert.Equal(t, 1, envelopes[0].Version)
	assert.Equal(t, 2, envelopes[1].Version)

	require.Len(t, client.transacts, 1)
	in := client.transacts[0]
	require.Len(t, in.TransactItems, 2)
	for _, ti := range in.TransactItems {
		require.NotNil(t, ti.Put)
		assert.Contains(t, aws.ToString(ti.Put.ConditionExpression), "attribute_not_exists")
	}

	items := putItems(t, in)
	assert.Equal(t, "STREAM#"+unitID.String(), items[0].PK)
	assert.Equal(t, "V#0000000001", items[0].SK)
	assert.Equal(t, "V#0000000002", items[1].SK)
	assert.Equal(t, string(ProjectionStatusPending), items[1].ProjectionStatus)
	assert.Equal(t, events.EventUnitLedgerFeeApplied, items[1].EventType)
}

func TestEventStoreAppendChecksExpectedVersion(t *testing.T) {
	client := &fakeClient{}
	store := newTestStore(client)
	unitID := valueobjects.NewUnitID()
	fee := events.NewFeeAppliedToUnitLedger(unitID, valueobjects.NewFeeItemID(), usd(100), time.Now(), "fee")

	envelopes, err := store.Append(context.Background(), ports.ExpectedVersions{unitID.String(): 4}, fee)
	require.NoError(t, err)
	assert.Equal(t, 5, envelopes[0].Version)

	in := client.transacts[0]
	require.Len(t, in.TransactItems, 2)
	check := in.TransactItems[0].ConditionCheck
	require.NotNil(t, check)
	assert.Equal(t, &types.AttributeValueMemberS{Value: "V#0000000004"}, check.Key["SK"])
	assert.Equal(t, "V#0000000005", putItems(t, in)[0].SK)
}

func TestEventStoreAppendFailures(t *testing.T) {
	unitID := valueobjects.NewUnitID()
	latest, err := attributevalue.MarshalMap(EventItem{PK: "STREAM#" + unitID.String(), SK: "V#0000000003", Version: 3})
	require.NoError(t, err)

	tests := []struct {
		name  string
		err   error
		check func(t *testing.T, err error)
	}{
		{
			name: "condition failure is a conflict",
			err: &types.TransactionCanceledException{
				Message: aws.String("cancelled"),
				CancellationReasons: []types.CancellationReason{
					{Code: aws.String("ConditionalCheckFailed")},
					{Code: aws.String("None")},
				},
			},
			check: func(t *testing.T, err error) {
				require.True(t, pkgerrors.IsConcurrencyConflict(err))
				appErr := pkgerrors.GetAppError(err)
				assert.Equal(t, 3, appErr.Details["actualVersion"])
				assert.Equal(t, 0, appErr.Details["expectedVersion"])
			},
		},
		{
			name: "other cancellation is a storage error",
			err: &types.TransactionCanceledException{
				CancellationReasons: []types.CancellationReason{{Code: aws.String("ThrottlingError")}},
			},
			check: func(t *testing.T, err error) {
				assert.True(t, pkgerrors.IsStorage(err))
			},
		},
		{
			name: "client failure is a storage error",
			err:  errors.New("connection reset"),
			check: func(t *testing.T, err error) {
				assert.True(t, pkgerrors.IsStorage(err))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &fakeClient{
				transactFn: func(*dynamodb.TransactWriteItemsInput) (*dynamodb.TransactWriteItemsOutput, error) {
					return nil, tt.err
				},
				queryFn: func(*dynamodb.QueryInput) (*dynamodb.QueryOutput, error) {
					return &dynamodb.QueryOutput{Items: []map[string]types.AttributeValue{latest}}, nil
				},
			}
			envelopes, err := newTestStore(client).Append(context.Background(), ports.ExpectedVersions{}, ledgerEvents(unitID)...)
			assert.Nil(t, envelopes)
			tt.check(t, err)
		})
	}
}

func TestEventStoreAppendRejectsOversizedBatch(t *testing.T) {
	client := &fakeClient{}
	unitID := valueobjects.NewUnitID()
	batch := []events.DomainEvent{events.NewUnitLedgerAccountCreated(unitID, usd(0))}
	for i := 0; i < maxTransactItems; i++ {
		batch = append(batch, events.NewFeeAppliedToUnitLedger(unitID, valueobjects.NewFeeItemID(), usd(1), time.Now(), "fee"))
	}

	_, err := newTestStore(client).Append(context.Background(), ports.ExpectedVersions{}, batch...)
	assert.True(t, pkgerrors.IsInvalidArgument(err))
	assert.Empty(t, client.transacts)
}

func TestEventStoreGetEventsPaginates(t *testing.T) {
	writer := &fakeClient{}
	unitID := valueobjects.NewUnitID()
	_, err := newTestStore(writer).Append(context.Background(), ports.ExpectedVersions{}, ledgerEvents(unitID)...)
	require.NoError(t, err)

	var items []map[string]types.AttributeValue
	for _, ti := range writer.transacts[0].TransactItems {
		items = append(items, ti.Put.Item)
	}

	reader := &fakeClient{}
	reader.queryFn = func(in *dynamodb.QueryInput) (*dynamodb.QueryOutput, error) {
		if in.ExclusiveStartKey == nil {
			return &dynamodb.QueryOutput{Items: items[:1], LastEvaluatedKey: itemKey(unitID.String(), 1)}, nil
		}
		return &dynamodb.QueryOutput{Items: items[1:]}, nil
	}

	envelopes, err := newTestStore(reader).GetEvents(context.Background(), unitID.String())
	require.NoError(t, err)
	require.Len(t, envelopes, 2)
	assert.Len(t, reader.queries, 2)
	assert.True(t, aws.ToBool(reader.queries[0].ConsistentRead))

	created, ok := envelopes[0].Event.(events.UnitLedgerAccountCreated)
	require.True(t, ok)
	assert.True(t, created.InitialBalance.Equals(usd(1000)))
	assert.Equal(t, 2, envelopes[1].Version)
}

func TestEventStoreGetEventsUnknownStream(t *testing.T) {
	envelopes, err := newTestStore(&fakeClient{}).GetEvents(context.Background(), "missing")
	require.NoError(t, err)
	assert.NotNil(t, envelopes)
	assert.Empty(t, envelopes)
}
