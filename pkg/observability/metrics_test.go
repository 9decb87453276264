package observability_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/Sumatoshi-tech/sampledmh/pkg/observability"
)

func newTestReader() (*sdkmetric.ManualReader, *sdkmetric.MeterProvider) {
	reader := sdkmetric.NewManualReader()

	return reader, sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
}

func collectMetrics(t *testing.T, reader *sdkmetric.ManualReader) metricdata.ResourceMetrics {
	t.Helper()

	var rm metricdata.ResourceMetrics

	require.NoError(t, reader.Collect(context.Background(), &rm))

	return rm
}

func findMetric(rm metricdata.ResourceMetrics, name string) *metricdata.Metrics {
	for idx := range rm.ScopeMetrics {
		for midx := range rm.ScopeMetrics[idx].Metrics {
			if rm.ScopeMetrics[idx].Metrics[midx].Name == name {
				return &rm.ScopeMetrics[idx].Metrics[midx]
			}
		}
	}

	return nil
}

func sumOf(t *testing.T, m *metricdata.Metrics) int64 {
	t.Helper()

	require.NotNil(t, m)

	sum, ok := m.Data.(metricdata.Sum[int64])
	require.True(t, ok)

	var total int64
	for _, dp := range sum.DataPoints {
		total += dp.Value
	}

	return total
}

// --- RED Metrics Tests ---.

func TestREDMetrics_RecordRequest(t *testing.T) {
	t.Parallel()

	reader, mp := newTestReader()

	red, err := observability.NewREDMetrics(mp.Meter("test"))
	require.NoError(t, err)

	red.RecordRequest(context.Background(), "mine", observability.StatusOK, 100*time.Millisecond)
	red.RecordRequest(context.Background(), "mine", observability.StatusError, time.Second)

	rm := collectMetrics(t, reader)

	assert.Equal(t, int64(2), sumOf(t, findMetric(rm, "smh.requests.total")))
	assert.Equal(t, int64(1), sumOf(t, findMetric(rm, "smh.errors.total")))
	assert.NotNil(t, findMetric(rm, "smh.request.duration.seconds"))
}

func TestREDMetrics_TrackInflight(t *testing.T) {
	t.Parallel()

	reader, mp := newTestReader()

	red, err := observability.NewREDMetrics(mp.Meter("test"))
	require.NoError(t, err)

	done := red.TrackInflight(context.Background(), "cluster")
	done()

	assert.Equal(t, int64(0), sumOf(t, findMetric(collectMetrics(t, reader), "smh.inflight.requests")))
}

func TestREDMetrics_NilReceiver(t *testing.T) {
	t.Parallel()

	var red *observability.REDMetrics

	red.RecordRequest(context.Background(), "mine", observability.StatusOK, time.Second)
	red.TrackInflight(context.Background(), "mine")()
}

// --- Engine Metrics Tests ---.

func TestEngineMetrics_RecordRound(t *testing.T) {
	t.Parallel()

	reader, mp := newTestReader()

	em, err := observability.NewEngineMetrics(mp.Meter("test"))
	require.NoError(t, err)

	ctx := context.Background()
	em.RecordRound(ctx, observability.RoundStats{Op: "cluster", Stored: 10, UsedBuckets: 4, Probes: 12, Merges: 2})
	em.RecordRound(ctx, observability.RoundStats{Op: "cluster", Stored: 10, UsedBuckets: 3, Probes: 11})
	em.RecordOutput(ctx, "cluster", 5)

	rm := collectMetrics(t, reader)

	assert.Equal(t, int64(2), sumOf(t, findMetric(rm, "smh.rounds.total")))
	assert.Equal(t, int64(20), sumOf(t, findMetric(rm, "smh.stored.sets.total")))
	assert.Equal(t, int64(23), sumOf(t, findMetric(rm, "smh.probes.total")))
	assert.Equal(t, int64(2), sumOf(t, findMetric(rm, "smh.cluster.merges.total")))
	assert.Equal(t, int64(5), sumOf(t, findMetric(rm, "smh.output.sets.total")))
}

func TestEngineMetrics_NilReceiver(t *testing.T) {
	t.Parallel()

	var em *observability.EngineMetrics

	em.RecordRound(context.Background(), observability.RoundStats{})
	em.RecordOutput(context.Background(), "mine", 1)
}
