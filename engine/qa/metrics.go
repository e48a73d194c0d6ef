package qa

import (
	"context"
	"sync"
	"time"

	"github.com/compozy/hybridqa/engine/infra/monitoring/metrics"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	statusSuccess = "success"
	statusError   = "error"
)

var (
	metricsOnce      sync.Once
	metricsMu        sync.Mutex
	metricsInitErr   error
	questionCounter  metric.Int64Counter
	questionDuration metric.Float64Histogram
	stageDuration    metric.Float64Histogram
	repairCounter    metric.Int64Counter
	absorbedFailures metric.Int64Counter
)

// recordQuestion counts a finished question by route and status.
func recordQuestion(ctx context.Context, route Route, status string, d time.Duration) {
	if err := ensureMetrics(); err != nil || questionCounter == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("route", string(route)),
		attribute.String("status", status),
	)
	questionCounter.Add(ctx, 1, attrs)
	if questionDuration != nil {
		questionDuration.Record(ctx, d.Seconds(), attrs)
	}
}

func recordStage(ctx context.Context, stage string, d time.Duration) {
	if err := ensureMetrics(); err != nil || stageDuration == nil {
		return
	}
	stageDuration.Record(ctx, d.Seconds(), metric.WithAttributes(attribute.String("stage", stage)))
}

func recordRepair(ctx context.Context) {
	if err := ensureMetrics(); err != nil || repairCounter == nil {
		return
	}
	repairCounter.Add(ctx, 1)
}

// recordAbsorbed counts a stage failure replaced by its fallback.
func recordAbsorbed(ctx context.Context, stage string) {
	if err := ensureMetrics(); err != nil || absorbedFailures == nil {
		return
	}
	absorbedFailures.Add(ctx, 1, metric.WithAttributes(attribute.String("stage", stage)))
}

func ResetMetricsForTesting() {
	metricsMu.Lock()
	metricsOnce = sync.Once{}
	metricsInitErr = nil
	questionCounter = nil
	questionDuration = nil
	stageDuration = nil
	repairCounter = nil
	absorbedFailures = nil
	metricsMu.Unlock()
}

func ensureMetrics() error {
	metricsOnce.Do(func() {
		meter := otel.GetMeterProvider().Meter("hybridqa.qa")
		metricsInitErr = initMetrics(meter)
	})
	return metricsInitErr
}

func initMetrics(meter metric.Meter) error {
	var err error
	questionCounter, err = meter.Int64Counter(
		metrics.MetricNameWithSubsystem("qa", "questions_total"),
		metric.WithDescription("Questions answered, by route and status"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return err
	}
	questionDuration, err = meter.Float64Histogram(
		metrics.MetricNameWithSubsystem("qa", "question_duration_seconds"),
		metric.WithDescription("End-to-end time to answer one question"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(metrics.QuestionDurationBuckets...),
	)
	if err != nil {
		return err
	}
	stageDuration, err = meter.Float64Histogram(
		metrics.MetricNameWithSubsystem("qa", "stage_duration_seconds"),
		metric.WithDescription("Time spent in each pipeline stage"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(metrics.StageDurationBuckets...),
	)
	if err != nil {
		return err
	}
	repairCounter, err = meter.Int64Counter(
		metrics.MetricNameWithSubsystem("qa", "repairs_total"),
		metric.WithDescription("Query regenerations after a failed execution"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return err
	}
	absorbedFailures, err = meter.Int64Counter(
		metrics.MetricNameWithSubsystem("qa", "absorbed_failures_total"),
		metric.WithDescription("Stage failures replaced by a fallback value"),
		metric.WithUnit("1"),
	)
	return err
}
