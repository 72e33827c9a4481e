package observability

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestCollectorRecordsCommands(t *testing.T) {
	c := NewCollector("ledger_test")
	ctx := context.Background()

	c.RecordCommandExecution(ctx, "ApplyFee", 5*time.Millisecond, nil)
	c.RecordCommandExecution(ctx, "ApplyFee", 5*time.Millisecond, errors.New("boom"))
	c.RecordCommandExecution(ctx, "ApplyFee", 5*time.Millisecond, nil)

	assert.Equal(t, float64(2), testutil.ToFloat64(c.CommandsTotal.WithLabelValues("ApplyFee", "success")))
	assert.Equal(t, float64(1), testutil.ToFloat64(c.CommandsTotal.WithLabelValues("ApplyFee", "failure")))
}

func TestCollectorRecordsQueries(t *testing.T) {
	c := NewCollector("ledger_test")
	ctx := context.Background()

	c.RecordQueryExecution(ctx, "GetUnitBalance", time.Millisecond, false, nil)
	c.RecordQueryExecution(ctx, "GetUnitBalance", time.Microsecond, true, nil)

	assert.Equal(t, float64(1), testutil.ToFloat64(c.QueriesTotal.WithLabelValues("GetUnitBalance", "success", "hit")))
	assert.Equal(t, float64(1), testutil.ToFloat64(c.QueriesTotal.WithLabelValues("GetUnitBalance", "success", "miss")))
}

func TestCollectorRecordsProjections(t *testing.T) {
	c := NewCollector("ledger_test")

	c.RecordProjection("units", time.Millisecond, nil)
	c.RecordProjection("units", time.Millisecond, errors.New("boom"))
	c.RecordRecovery(nil)

	assert.Equal(t, float64(1), testutil.ToFloat64(c.ProjectedEvents.WithLabelValues("units", "success")))
	assert.Equal(t, float64(1), testutil.ToFloat64(c.ProjectedEvents.WithLabelValues("units", "failure")))
	assert.Equal(t, float64(1), testutil.ToFloat64(c.RecoveredEvents.WithLabelValues("success")))

	families, err := c.Registry().Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)
}

type fakeCloudWatch struct {
	inputs []*cloudwatch.PutMetricDataInput
	err    error
}

func (f *fakeCloudWatch) PutMetricData(ctx context.Context, params *cloudwatch.PutMetricDataInput, optFns ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error) {
	f.inputs = append(f.inputs, params)
	return &cloudwatch.PutMetricDataOutput{}, f.err
}

func TestCloudWatchMetrics(t *testing.T) {
	client := &fakeCloudWatch{err: errors.New("throttled")}
	metrics := NewCloudWatchMetrics("Ledger", client, zap.NewNop())

	// a failing sink must not panic or surface the error
	metrics.RecordCommandExecution(context.Background(), "Deposit", 12*time.Millisecond, nil)

	require.Len(t, client.inputs, 1)
	assert.Equal(t, "Ledger", *client.inputs[0].Namespace)
	assert.Len(t, client.inputs[0].MetricData, 2)
}

func TestMultiRecorder(t *testing.T) {
	first := NewCollector("first")
	second := NewCollector("second")

	MultiRecorder{first, second}.RecordCommandExecution(context.Background(), "Withdraw", time.Millisecond, nil)

	assert.Equal(t, float64(1), testutil.ToFloat64(first.CommandsTotal.WithLabelValues("Withdraw", "success")))
	assert.Equal(t, float64(1), testutil.ToFloat64(second.CommandsTotal.WithLabelValues("Withdraw", "success")))
}

func TestNewLogger(t *testing.T) {
	logger, err := NewLogger("development", "debug")
	require.NoError(t, err)
	assert.NotNil(t, logger)

	_, err = NewLogger("production", "loud")
	assert.Error(t, err)
}

func TestDisabledTracerRunsFunction(t *testing.T) {
	tracer := NewTracer("ledger", false)

	called := false
	err := tracer.TraceFunction(context.Background(), "noop", func(ctx context.Context) error {
		called = true
		return nil
	})
	require.NoError(t, err)
	assert.True(t, called)
}
