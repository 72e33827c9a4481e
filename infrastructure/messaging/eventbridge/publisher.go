package eventbridge

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge/types"
	"go.uber.org/zap"

	"github.com/luisriego/MatisseAPI-sub001/application/ports"
	"github.com/luisriego/MatisseAPI-sub001/domain/events"
	"github.com/luisriego/MatisseAPI-sub001/infrastructure/persistence/serialization"
)

// maxEntries is the EventBridge limit of entries per PutEvents call
const maxEntries = 10

// Client is the subset of *eventbridge.Client used by the publisher
type Client interface {
	PutEvents(ctx context.Context, params *eventbridge.PutEventsInput, optFns ...func(*eventbridge.Options)) (*eventbridge.PutEventsOutput, error)
}

// Detail is the JSON body of a published event
type Detail struct {
	EventID       string            `json:"eventId"`
	EventType     string            `json:"eventType"`
	AggregateID   string            `json:"aggregateId"`
	AggregateType string            `json:"aggregateType"`
	Version       int               `json:"version"`
	SchemaVersion int               `json:"schemaVersion"`
	OccurredOn    time.Time         `json:"occurredOn"`
	Payload       events.Primitives `json:"payload"`
}

// Options configures a Publisher
type Options struct {
	EventBusName string
	Source       string
	MaxAttempts  int
	Backoff      time.Duration
}

// Publisher implements ports.EventPublisher on AWS EventBridge. Entries
// rejected by PutEvents are resent with exponential backoff.
type Publisher struct {
	client     Client
	serializer *serialization.Serializer
	opts       Options
	logger     *zap.Logger
}

// NewPublisher creates a new EventBridge publisher
func NewPublisher(client Client, serializer *serialization.Serializer, opts Options, logger *zap.Logger) *Publisher {
	if opts.Source == "" {
		opts.Source = "condominium.ledger"
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 3
	}
	if opts.Backoff <= 0 {
		opts.Backoff = 100 * time.Millisecond
	}
	return &Publisher{client: client, serializer: serializer, opts: opts, logger: logger}
}

// Publish sends a single event to EventBridge
func (p *Publisher) Publish(ctx context.Context, envelope events.Envelope) error {
	return p.PublishBatch(ctx, []events.Envelope{envelope})
}

// PublishBatch sends events in chunks of ten
func (p *Publisher) PublishBatch(ctx context.Context, envelopes []events.Envelope) error {
	for start := 0; start < len(envelopes); start += maxEntries {
		end := min(start+maxEntries, len(envelopes))
		if err := p.publishChunk(ctx, envelopes[start:end]); err != nil {
			return err
		}
	}
	return nil
}

func (p *Publisher) publishChunk(ctx context.Context, envelopes []events.Envelope) error {
	entries := make([]types.PutEventsRequestEntry, 0, len(envelopes))
	for _, env := range envelopes {
		entry, err := p.entry(env)
		if err != nil {
			return err
		}
		entries = append(entries, entry)
	}

	backoff := p.opts.Backoff
	for attempt := 1; ; attempt++ {
		failed, err := p.put(ctx, entries)
		if err != nil {
			return fmt.Errorf("failed to publish events to EventBridge: %w", err)
		}
		if len(failed) == 0 {
			p.logger.Debug("Events published to EventBridge",
				zap.Int("count", len(envelopes)),
				zap.String("eventBus", p.opts.EventBusName))
			return nil
		}
		if attempt >= p.opts.MaxAttempts {
			return fmt.Errorf("%d events failed to publish after %d attempts", len(failed), attempt)
		}

		p.logger.Warn("Retrying rejected EventBridge entries",
			zap.Int("attempt", attempt),
			zap.Int("failed", len(failed)),
			zap.Duration("backoff", backoff))

		select {
		case <-time.After(backoff):
			backoff *= 2
		case <-ctx.Done():
			return ctx.Err()
		}
		entries = failed
	}
}

// put sends entries and returns the ones EventBridge rejected
func (p *Publisher) put(ctx context.Context, entries []types.PutEventsRequestEntry) ([]types.PutEventsRequestEntry, error) {
	result, err := p.client.PutEvents(ctx, &eventbridge.PutEventsInput{Entries: entries})
	if err != nil {
		return nil, err
	}
	if result.FailedEntryCount == 0 {
		return nil, nil
	}

	var failed []types.PutEventsRequestEntry
	for i, entry := range result.Entries {
		if entry.ErrorCode == nil || i >= len(entries) {
			continue
		}
		p.logger.Error("Failed to publish event",
			zap.String("eventType", aws.ToString(entries[i].DetailType)),
			zap.String("errorCode", aws.ToString(entry.ErrorCode)),
			zap.String("errorMessage", aws.ToString(entry.ErrorMessage)))
		failed = append(failed, entries[i])
	}
	return failed, nil
}

func (p *Publisher) entry(env events.Envelope) (types.PutEventsRequestEntry, error) {
	record, err := p.serializer.Serialize(env.Event)
	if err != nil {
		return types.PutEventsRequestEntry{}, err
	}

	detail, err := json.Marshal(Detail{
		EventID:       env.Event.EventID(),
		EventType:     record.EventType,
		AggregateID:   env.AggregateID(),
		AggregateType: record.AggregateType,
		Version:       env.Version,
		SchemaVersion: record.SchemaVersion,
		OccurredOn:    env.Event.OccurredOn().UTC(),
		Payload:       record.Payload,
	})
	if err != nil {
		return types.PutEventsRequestEntry{}, fmt.Errorf("failed to marshal %s detail: %w", record.EventType, err)
	}

	return types.PutEventsRequestEntry{
		EventBusName: aws.String(p.opts.EventBusName),
		Source:       aws.String(p.opts.Source),
		DetailType:   aws.String(record.EventType),
		Detail:       aws.String(string(detail)),
		Time:         aws.Time(env.Event.OccurredOn()),
		Resources:    []string{fmt.Sprintf("ledger:%s:%s", record.AggregateType, env.AggregateID())},
	}, nil
}

var _ ports.EventPublisher = (*Publisher)(nil)
