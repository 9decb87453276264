package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	metricRequestsTotal    = "smh.requests.total"
	metricRequestDuration  = "smh.request.duration.seconds"
	metricErrorsTotal      = "smh.errors.total"
	metricInflightRequests = "smh.inflight.requests"

	metricRoundsTotal     = "smh.rounds.total"
	metricRoundDuration   = "smh.round.duration.seconds"
	metricStoredTotal     = "smh.stored.sets.total"
	metricBucketsUsed     = "smh.buckets.used"
	metricProbesTotal     = "smh.probes.total"
	metricMergesTotal     = "smh.cluster.merges.total"
	metricOutputSetsTotal = "smh.output.sets.total"

	attrOp     = "op"
	attrStatus = "status"

	// StatusOK marks a successful request.
	StatusOK = "ok"
	// StatusError marks a failed request.
	StatusError = "error"
)

// durationBucketBoundaries covers 10ms to 600s: a command ranges from a
// quick search to a multi-minute mining run.
var durationBucketBoundaries = []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 300, 600}

// roundBucketBoundaries covers sub-millisecond to multi-second rounds.
var roundBucketBoundaries = []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5}

// bucketCountBoundaries spans used-bucket counts per round.
var bucketCountBoundaries = []float64{10, 100, 1e3, 1e4, 1e5, 1e6}

// metricBuilder accumulates OTel instrument creation errors,
// enabling batch construction with a single error check.
type metricBuilder struct {
	meter metric.Meter
	err   error
}

func (b *metricBuilder) counter(name, desc, unit string) metric.Int64Counter {
	c, err := b.meter.Int64Counter(name, metric.WithDescription(desc), metric.WithUnit(unit))
	b.setErr(name, err)

	return c
}

func (b *metricBuilder) histogram(name, desc, unit string, bounds ...float64) metric.Float64Histogram {
	h, err := b.meter.Float64Histogram(name,
		metric.WithDescription(desc),
		metric.WithUnit(unit),
		metric.WithExplicitBucketBoundaries(bounds...),
	)
	b.setErr(name, err)

	return h
}

func (b *metricBuilder) upDownCounter(name, desc, unit string) metric.Int64UpDownCounter {
	c, err := b.meter.Int64UpDownCounter(name, metric.WithDescription(desc), metric.WithUnit(unit))
	b.setErr(name, err)

	return c
}

func (b *metricBuilder) setErr(name string, err error) {
	if err != nil && b.err == nil {
		b.err = fmt.Errorf("create %s: %w", name, err)
	}
}

// REDMetrics holds the OTel instruments for Rate, Error, Duration metrics of
// commands and MCP tool calls.
type REDMetrics struct {
	requestsTotal    metric.Int64Counter
	requestDuration  metric.Float64Histogram
	errorsTotal      metric.Int64Counter
	inflightRequests metric.Int64UpDownCounter
}

// NewREDMetrics creates RED metric instruments from the given meter.
func NewREDMetrics(mt metric.Meter) (*REDMetrics, error) {
	b := &metricBuilder{meter: mt}

	rm := &REDMetrics{
		requestsTotal:    b.counter(metricRequestsTotal, "Total number of requests", "{request}"),
		requestDuration:  b.histogram(metricRequestDuration, "Request duration in seconds", "s", durationBucketBoundaries...),
		errorsTotal:      b.counter(metricErrorsTotal, "Total number of errors", "{error}"),
		inflightRequests: b.upDownCounter(metricInflightRequests, "Number of in-flight requests", "{request}"),
	}

	if b.err != nil {
		return nil, b.err
	}

	return rm, nil
}

// RecordRequest records a completed request with its operation, status, and duration.
func (rm *REDMetrics) RecordRequest(ctx context.Context, op, status string, duration time.Duration) {
	if rm == nil {
		return
	}

	attrs := metric.WithAttributes(
		attribute.String(attrOp, op),
		attribute.String(attrStatus, status),
	)

	rm.requestsTotal.Add(ctx, 1, attrs)
	rm.requestDuration.Record(ctx, duration.Seconds(), attrs)

	if status == StatusError {
		rm.errorsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String(attrOp, op)))
	}
}

// TrackInflight increments the in-flight gauge and returns a function to decrement it.
func (rm *REDMetrics) TrackInflight(ctx context.Context, op string) func() {
	if rm == nil {
		return func() {}
	}

	attrs := metric.WithAttributes(attribute.String(attrOp, op))
	rm.inflightRequests.Add(ctx, 1, attrs)

	return func() {
		rm.inflightRequests.Add(ctx, -1, attrs)
	}
}

// EngineMetrics holds instruments for mining and clustering rounds.
type EngineMetrics struct {
	rounds        metric.Int64Counter
	roundDuration metric.Float64Histogram
	stored        metric.Int64Counter
	bucketsUsed   metric.Float64Histogram
	probes        metric.Int64Counter
	merges        metric.Int64Counter
	outputSets    metric.Int64Counter
}

// RoundStats describes one completed round of a miner or clusterer.
type RoundStats struct {
	Op          string
	Duration    time.Duration
	Stored      int64
	UsedBuckets int
	Probes      int64
	Merges      int64
}

// NewEngineMetrics creates engine metric instruments from the given meter.
func NewEngineMetrics(mt metric.Meter) (*EngineMetrics, error) {
	b := &metricBuilder{meter: mt}

	em := &EngineMetrics{
		rounds:        b.counter(metricRoundsTotal, "Completed hashing rounds", "{round}"),
		roundDuration: b.histogram(metricRoundDuration, "Per-round duration in seconds", "s", roundBucketBoundaries...),
		stored:        b.counter(metricStoredTotal, "Sets stored into Min-Hash tables", "{set}"),
		bucketsUsed:   b.histogram(metricBucketsUsed, "Buckets used per round", "{bucket}", bucketCountBoundaries...),
		probes:        b.counter(metricProbesTotal, "Buckets visited while resolving keys", "{probe}"),
		merges:        b.counter(metricMergesTotal, "Cluster merges", "{merge}"),
		outputSets:    b.counter(metricOutputSetsTotal, "Sets emitted by a run", "{set}"),
	}

	if b.err != nil {
		return nil, b.err
	}

	return em, nil
}

// RecordRound records one round. Safe to call on a nil receiver (no-op).
func (em *EngineMetrics) RecordRound(ctx context.Context, stats RoundStats) {
	if em == nil {
		return
	}

	attrs := metric.WithAttributes(attribute.String(attrOp, stats.Op))

	em.rounds.Add(ctx, 1, attrs)
	em.roundDuration.Record(ctx, stats.Duration.Seconds(), attrs)
	em.stored.Add(ctx, stats.Stored, attrs)
	em.bucketsUsed.Record(ctx, float64(stats.UsedBuckets), attrs)
	em.probes.Add(ctx, stats.Probes, attrs)

	if stats.Merges > 0 {
		em.merges.Add(ctx, stats.Merges, attrs)
	}
}

// RecordOutput records the number of sets a run produced. Safe on a nil receiver.
func (em *EngineMetrics) RecordOutput(ctx context.Context, op string, sets int) {
	if em == nil {
		return
	}

	em.outputSets.Add(ctx, int64(sets), metric.WithAttributes(attribute.String(attrOp, op)))
}
