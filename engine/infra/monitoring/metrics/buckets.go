package metrics

// QuestionDurationBuckets covers end-to-end answering, dominated by model latency.
var QuestionDurationBuckets = []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 300}

// StageDurationBuckets covers a single pipeline stage.
var StageDurationBuckets = []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30, 60}

// RetrievalDurationBuckets covers in-memory lexical search.
var RetrievalDurationBuckets = []float64{.0001, .0005, .001, .005, .01, .025, .05, .1, .25, .5}

// HTTPDurationBuckets defines latency buckets for HTTP request duration metrics.
var HTTPDurationBuckets = []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 120}
