package ratelimit

import (
	"context"
	"sync"

	"github.com/compozy/hybridqa/engine/infra/monitoring/metrics"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

var (
	blocksTotal metric.Int64Counter
	metricsOnce sync.Once
	metricsMu   sync.Mutex
)

func ensureMetrics() {
	metricsOnce.Do(func() {
		counter, err := otel.Meter("hybridqa.ratelimit").Int64Counter(
			metrics.MetricNameWithSubsystem("rate_limit", "blocks_total"),
			metric.WithDescription("Requests rejected by the rate limiter"),
		)
		if err == nil {
			blocksTotal = counter
		}
	})
}

func recordBlocked(ctx context.Context, route string) {
	metricsMu.Lock()
	ensureMetrics()
	counter := blocksTotal
	metricsMu.Unlock()
	if counter == nil {
		return
	}
	counter.Add(ctx, 1, metric.WithAttributes(attribute.String("route", route)))
}

// ResetMetricsForTesting drops the counter so the next block binds to the
// current global meter provider.
func ResetMetricsForTesting() {
	metricsMu.Lock()
	defer metricsMu.Unlock()
	blocksTotal = nil
	metricsOnce = sync.Once{}
}
