package knowledge

import (
	"context"
	"sync"
	"time"

	"github.com/compozy/hybridqa/engine/infra/monitoring/metrics"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

var (
	metricsOnce           sync.Once
	metricsMu             sync.Mutex
	metricsInitErr        error
	chunkCounter          metric.Int64Counter
	queryLatencyHist      metric.Float64Histogram
	retrievalCounter      metric.Int64Counter
	retrievalEmptyCounter metric.Int64Counter
	retrievalCacheHits    metric.Int64Counter
)

// RecordIndexedChunks counts chunks added to the lexical index.
func RecordIndexedChunks(ctx context.Context, chunks int) {
	if chunks <= 0 {
		return
	}
	if err := ensureMetrics(); err != nil || chunkCounter == nil {
		return
	}
	chunkCounter.Add(ctx, int64(chunks))
}

func RecordQueryLatency(ctx context.Context, d time.Duration) {
	if err := ensureMetrics(); err != nil || queryLatencyHist == nil {
		return
	}
	queryLatencyHist.Record(ctx, d.Seconds())
}

// RecordRetrieval counts one search and whether it came back empty.
func RecordRetrieval(ctx context.Context, results int, cached bool) {
	if err := ensureMetrics(); err != nil || retrievalCounter == nil {
		return
	}
	retrievalCounter.Add(ctx, 1)
	if results == 0 && retrievalEmptyCounter != nil {
		retrievalEmptyCounter.Add(ctx, 1)
	}
	if cached && retrievalCacheHits != nil {
		retrievalCacheHits.Add(ctx, 1)
	}
}

func ResetMetricsForTesting() {
	metricsMu.Lock()
	metricsOnce = sync.Once{}
	metricsInitErr = nil
	chunkCounter = nil
	queryLatencyHist = nil
	retrievalCounter = nil
	retrievalEmptyCounter = nil
	retrievalCacheHits = nil
	metricsMu.Unlock()
}

func ensureMetrics() error {
	metricsOnce.Do(func() {
		meter := otel.GetMeterProvider().Meter("hybridqa.knowledge")
		if err := initIndexMetrics(meter); err != nil {
			metricsInitErr = err
			return
		}
		if err := initRetrievalMetrics(meter); err != nil {
			metricsInitErr = err
		}
	})
	return metricsInitErr
}

func initIndexMetrics(meter metric.Meter) error {
	var err error
	chunkCounter, err = meter.Int64Counter(
		metrics.MetricNameWithSubsystem("knowledge", "chunks_total"),
		metric.WithDescription("Number of chunks indexed from the corpus"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return err
	}
	queryLatencyHist, err = meter.Float64Histogram(
		metrics.MetricNameWithSubsystem("knowledge", "query_latency_seconds"),
		metric.WithDescription("Latency of lexical retrieval queries"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(metrics.RetrievalDurationBuckets...),
	)
	return err
}

func initRetrievalMetrics(meter metric.Meter) error {
	var err error
	retrievalCounter, err = meter.Int64Counter(
		metrics.MetricNameWithSubsystem("knowledge", "retrieval_total"),
		metric.WithDescription("Number of retrieval queries served"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return err
	}
	retrievalEmptyCounter, err = meter.Int64Counter(
		metrics.MetricNameWithSubsystem("knowledge", "retrieval_empty_total"),
		metric.WithDescription("Number of retrieval queries that returned no chunks"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return err
	}
	retrievalCacheHits, err = meter.Int64Counter(
		metrics.MetricNameWithSubsystem("knowledge", "retrieval_cache_hits_total"),
		metric.WithDescription("Number of retrieval queries answered from cache"),
		metric.WithUnit("1"),
	)
	return err
}
