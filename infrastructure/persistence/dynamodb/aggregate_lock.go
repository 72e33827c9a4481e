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
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/luisriego/MatisseAPI-sub001/application/ports"
	pkgerrors "github.com/luisriego/MatisseAPI-sub001/pkg/errors"
)

// LockRecord represents a lock record in DynamoDB
type LockRecord struct {
	PK        string `dynamodbav:"PK"`        // LOCK#<aggregate_id>
	SK        string `dynamodbav:"SK"`        // LOCK
	LockID    string `dynamodbav:"LockID"`    // Unique lock identifier
	Owner     string `dynamodbav:"Owner"`     // Process holding the lock
	ExpiresAt int64  `dynamodbav:"ExpiresAt"` // unix millis
	TTL       int64  `dynamodbav:"TTL"`       // unix seconds, for DynamoDB TTL
}

// LockOptions configures an AggregateLock
type LockOptions struct {
	// Lease is how long a lock is held before others may take it over
	Lease time.Duration
	// RetryInterval is the first wait between acquire attempts
	RetryInterval time.Duration
	// MaxRetryInterval caps the growing wait between attempts
	MaxRetryInterval time.Duration
}

// AggregateLock implements ports.AggregateLocker across processes with
// conditional writes on lock items in the events table
type AggregateLock struct {
	client    Client
	tableName string
	owner     string
	opts      LockOptions
	logger    *zap.Logger
	now       func() time.Time
}

// NewAggregateLock creates a new lock. owner identifies this process.
func NewAggregateLock(client Client, tableName, owner string, opts LockOptions, logger *zap.Logger) *AggregateLock {
	if opts.Lease <= 0 {
		opts.Lease = 10 * time.Second
	}
	if opts.RetryInterval <= 0 {
		opts.RetryInterval = 50 * time.Millisecond
	}
	if opts.MaxRetryInterval < opts.RetryInterval {
		opts.MaxRetryInterval = time.Second
	}
	return &AggregateLock{
		client:    client,
		tableName: tableName,
		owner:     owner,
		opts:      opts,
		logger:    logger,
		now:       time.Now,
	}
}

// WithLock runs fn while holding the lock for aggregateID. Acquiring waits
// until the lock is free or ctx is done.
func (l *AggregateLock) WithLock(ctx context.Context, aggregateID string, fn func(ctx context.Context) error) error {
	lockID, err := l.acquire(ctx, aggregateID)
	if err != nil {
		return err
	}
	defer func() {
		releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if err := l.release(releaseCtx, aggregateID, lockID); err != nil {
			l.logger.Warn("Failed to release aggregate lock",
				zap.String("aggregateID", aggregateID),
				zap.Error(err))
		}
	}()
	return fn(ctx)
}

func (l *AggregateLock) acquire(ctx context.Context, aggregateID string) (string, error) {
	wait := l.opts.RetryInterval
	for {
		lockID, err := l.tryAcquire(ctx, aggregateID)
		if err == nil {
			return lockID, nil
		}
		if !isConditionFailed(err) {
			return "", pkgerrors.NewStorageError("acquire lock", err)
		}

		l.logger.Debug("Aggregate lock held, waiting",
			zap.String("aggregateID", aggregateID),
			zap.Duration("wait", wait))

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(wait):
		}
		wait = min(wait*3/2, l.opts.MaxRetryInterval)
	}
}

func (l *AggregateLock) tryAcquire(ctx context.Context, aggregateID string) (string, error) {
	now := l.now()
	expiresAt := now.Add(l.opts.Lease)
	record := LockRecord{
		PK:        "LOCK#" + aggregateID,
		SK:        "LOCK",
		LockID:    uuid.New().String(),
		Owner:     l.owner,
		ExpiresAt: expiresAt.UnixMilli(),
		TTL:       expiresAt.Unix(),
	}
	item, err := attributevalue.MarshalMap(record)
	if err != nil {
		return "", fmt.Errorf("failed to marshal lock record: %w", err)
	}

	cond := expression.AttributeNotExists(expression.Name("PK")).
		Or(expression.Name("ExpiresAt").LessThan(expression.Value(now.UnixMilli())))
	expr, err := expression.NewBuilder().WithCondition(cond).Build()
	if err != nil {
		return "", fmt.Errorf("failed to build lock condition: %w", err)
	}

	_, err = l.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:                 aws.String(l.tableName),
		Item:                      item,
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	if err != nil {
		return "", err
	}
	return record.LockID, nil
}

func (l *AggregateLock) release(ctx context.Context, aggregateID, lockID string) error {
	cond := expression.Name("LockID").Equal(expression.Value(lockID))
	expr, err := expression.NewBuilder().WithCondition(cond).Build()
	if err != nil {
		return fmt.Errorf("failed to build release condition: %w", err)
	}

	_, err = l.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(l.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: "LOCK#" + aggregateID},
			"SK": &types.AttributeValueMemberS{Value: "LOCK"},
		},
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	if err != nil && isConditionFailed(err) {
		l.logger.Warn("Aggregate lock expired before release",
			zap.String("aggregateID", aggregateID),
			zap.String("lockID", lockID))
		return nil
	}
	return err
}

var _ ports.AggregateLocker = (*AggregateLock)(nil)
