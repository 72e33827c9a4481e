package eventbridge

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/luisriego/MatisseAPI-sub001/domain/core/valueobjects"
	"github.com/luisriego/MatisseAPI-sub001/domain/events"
	"github.com/luisriego/MatisseAPI-sub001/infrastructure/persistence/schema"
	"github.com/luisriego/MatisseAPI-sub001/infrastructure/persistence/serialization"
)

type fakeClient struct {
	calls   []*eventbridge.PutEventsInput
	results []func(in *eventbridge.PutEventsInput) (*eventbridge.PutEventsOutput, error)
}

func (f *fakeClient) PutEvents(_ context.Context, in *eventbridge.PutEventsInput, _ ...func(*eventbridge.Options)) (*eventbridge.PutEventsOutput, error) {
	f.calls = append(f.calls, in)
	if i := len(f.calls) - 1; i < len(f.results) {
		return f.results[i](in)
	}
	return &eventbridge.PutEventsOutput{Entries: make([]types.PutEventsResultEntry, len(in.Entries))}, nil
}

func newTestPublisher(client Client) *Publisher {
	serializer := serialization.NewSerializer(events.DefaultRegistry(), schema.DefaultUpcasters())
	return NewPublisher(client, serializer, Options{EventBusName: "ledger-bus", Backoff: time.Millisecond}, zap.NewNop())
}

func feeEnvelopes(n int) []events.Envelope {
	unitID := valueobjects.NewUnitID()
	out := make([]events.Envelope, n)
	for i := range out {
		fee := events.NewFeeAppliedToUnitLedger(unitID, valueobjects.NewFeeItemID(),
			valueobjects.NewMoney(int64(100*(i+1)), valueobjects.USD), time.Now(), "fee")
		out[i] = events.Envelope{Event: fee, AggregateType: "UnitLedgerAccount", Version: i + 2, SchemaVersion: 1}
	}
	return out
}

func TestPublisherChunksByTen(t *testing.T) {
	client := &fakeClient{}
	require.NoError(t, newTestPublisher(client).PublishBatch(context.Background(), feeEnvelopes(23)))

	require.Len(t, client.calls, 3)
	assert.Len(t, client.calls[0].Entries, 10)
	assert.Len(t, client.calls[1].Entries, 10)
	assert.Len(t, client.calls[2].Entries, 3)
}

func TestPublisherEntryShape(t *testing.T) {
	client := &fakeClient{}
	envelopes := feeEnvelopes(1)
	require.NoError(t, newTestPublisher(client).Publish(context.Background(), envelopes[0]))

	entry := client.calls[0].Entries[0]
	assert.Equal(t, "ledger-bus", aws.ToString(entry.EventBusName))
	assert.Equal(t, "condominium.ledger", aws.ToString(entry.Source))
	assert.Equal(t, events.EventUnitLedgerFeeApplied, aws.ToString(entry.DetailType))

	var detail Detail
	require.NoError(t, json.Unmarshal([]byte(aws.ToString(entry.Detail)), &detail))
	assert.Equal(t, envelopes[0].Event.EventID(), detail.EventID)
	assert.Equal(t, envelopes[0].AggregateID(), detail.AggregateID)
	assert.Equal(t, 2, detail.Version)
	assert.NotEmpty(t, detail.Payload)
}

func TestPublisherRetriesRejectedEntries(t *testing.T) {
	rejectSecond := func(in *eventbridge.PutEventsInput) (*eventbridge.PutEventsOutput, error) {
		entries := make([]types.PutEventsResultEntry, len(in.Entries))
		entries[1] = types.PutEventsResultEntry{ErrorCode: aws.String("ThrottlingException"), ErrorMessage: aws.String("slow down")}
		return &eventbridge.PutEventsOutput{FailedEntryCount: 1, Entries: entries}, nil
	}

	tests := []struct {
		name      string
		results   []func(*eventbridge.PutEventsInput) (*eventbridge.PutEventsOutput, error)
		wantErr   bool
		wantCalls int
	}{
		{
			name:      "rejected entry resent alone",
			results:   []func(*eventbridge.PutEventsInput) (*eventbridge.PutEventsOutput, error){rejectSecond},
			wantCalls: 2,
		},
		{
			name: "gives up after max attempts",
			results: []func(*eventbridge.PutEventsInput) (*eventbridge.PutEventsOutput, error){
				rejectSecond,
				func(in *eventbridge.PutEventsInput) (*eventbridge.PutEventsOutput, error) {
					return &eventbridge.PutEventsOutput{FailedEntryCount: 1, Entries: []types.PutEventsResultEntry{{ErrorCode: aws.String("InternalFailure")}}}, nil
				},
				func(in *eventbridge.PutEventsInput) (*eventbridge.PutEventsOutput, error) {
					return &eventbridge.PutEventsOutput{FailedEntryCount: 1, Entries: []types.PutEventsResultEntry{{ErrorCode: aws.String("InternalFailure")}}}, nil
				},
			},
			wantErr:   true,
			wantCalls: 3,
		},
		{
			name: "client error is returned",
			results: []func(*eventbridge.PutEventsInput) (*eventbridge.PutEventsOutput, error){
				func(*eventbridge.PutEventsInput) (*eventbridge.PutEventsOutput, error) {
					return nil, errors.New("network down")
				},
			},
			wantErr:   true,
			wantCalls: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &fakeClient{results: tt.results}
			err := newTestPublisher(client).PublishBatch(context.Background(), feeEnvelopes(3))
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			require.Len(t, client.calls, tt.wantCalls)
			if tt.wantCalls > 1 {
				assert.Len(t, client.calls[1].Entries, 1)
			}
		})
	}
}

func TestPublisherEmptyBatch(t *testing.T) {
	client := &fakeClient{}
	require.NoError(t, newTestPublisher(client).PublishBatch(context.Background(), nil))
	assert.Empty(t, client.calls)
}
