package dynamodb

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	pkgerrors "github.com/luisriego/MatisseAPI-sub001/pkg/errors"
)

var errLockHeld = &types.ConditionalCheckFailedException{Message: aws.String("lock held")}

func TestAggregateLockWaitsForHolder(t *testing.T) {
	attempts := 0
	client := &fakeClient{
		putFn: func(*dynamodb.PutItemInput) (*dynamodb.PutItemOutput, error) {
			attempts++
			if attempts < 3 {
				return nil, errLockHeld
			}
			return &dynamodb.PutItemOutput{}, nil
		},
	}
	lock := NewAggregateLock(client, "ledger-events", "worker-1", LockOptions{RetryInterval: time.Millisecond}, zap.NewNop())

	ran := false
	err := lock.WithLock(context.Background(), "unit-1", func(ctx context.Context) error {
		ran = true
		return nil
	})
	require.NoError(t, err)
	assert.True(t, ran)
	assert.Equal(t, 3, attempts)

	require.Len(t, client.deletes, 1)
	assert.Equal(t, &types.AttributeValueMemberS{Value: "LOCK#unit-1"}, client.deletes[0].Key["PK"])
	assert.Contains(t, aws.ToString(client.puts[0].ConditionExpression), "attribute_not_exists")
}

func TestAggregateLockReleasesAfterFailure(t *testing.T) {
	client := &fakeClient{}
	lock := NewAggregateLock(client, "ledger-events", "worker-1", LockOptions{}, zap.NewNop())
	boom := errors.New("handler failed")

	err := lock.WithLock(context.Background(), "unit-1", func(ctx context.Context) error { return boom })
	assert.ErrorIs(t, err, boom)
	assert.Len(t, client.deletes, 1)
}

func TestAggregateLockAcquireFailures(t *testing.T) {
	tests := []struct {
		name  string
		putFn func(*dynamodb.PutItemInput) (*dynamodb.PutItemOutput, error)
		ctx   func() (context.Context, context.CancelFunc)
		check func(t *testing.T, err error)
	}{
		{
			name: "context done while waiting",
			putFn: func(*dynamodb.PutItemInput) (*dynamodb.PutItemOutput, error) {
				return nil, errLockHeld
			},
			ctx: func() (context.Context, context.CancelFunc) {
				return context.WithTimeout(context.Background(), 20*time.Millisecond)
			},
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, context.DeadlineExceeded)
			},
		},
		{
			name: "client failure",
			putFn: func(*dynamodb.PutItemInput) (*dynamodb.PutItemOutput, error) {
				return nil, errors.New("no route to host")
			},
			ctx: func() (context.Context, context.CancelFunc) {
				return context.WithCancel(context.Background())
			},
			check: func(t *testing.T, err error) {
				assert.True(t, pkgerrors.IsStorage(err))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &fakeClient{putFn: tt.putFn}
			lock := NewAggregateLock(client, "ledger-events", "worker-1", LockOptions{RetryInterval: time.Millisecond}, zap.NewNop())
			ctx, cancel := tt.ctx()
			defer cancel()

			called := false
			err := lock.WithLock(ctx, "unit-1", func(context.Context) error {
				called = true
				return nil
			})
			tt.check(t, err)
			assert.False(t, called)
			assert.Empty(t, client.deletes)
		})
	}
}

func TestAggregateLockExpiredLeaseIsNotAnError(t *testing.T) {
	client := &fakeClient{
		deleteFn: func(*dynamodb.DeleteItemInput) (*dynamodb.DeleteItemOutput, error) {
			return nil, errLockHeld
		},
	}
	lock := NewAggregateLock(client, "ledger-events", "worker-1", LockOptions{}, zap.NewNop())
	assert.NoError(t, lock.WithLock(context.Background(), "unit-1", func(context.Context) error { return nil }))
}
