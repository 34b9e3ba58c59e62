package observability

import (
	"context"
	"log/slog"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// MetricsRecorder records engine metrics.
// Use NewMetricsRecorder() for OTel metrics or NoopMetrics{} when disabled.
type MetricsRecorder interface {
	// RecordSession records a recording session being opened with the given dimension.
	RecordSession(ctx context.Context, dim int)

	// RecordEvaluation records one evaluator call and how many nodes it computed.
	RecordEvaluation(ctx context.Context, nodesComputed int)

	// RecordDerivative records a derivative lookup and whether the memo already held it.
	RecordDerivative(ctx context.Context, memoHit bool)

	// RecordBatch records a batch evaluation over points.
	RecordBatch(ctx context.Context, points int, success bool)
}

// otelMetrics implements MetricsRecorder using OpenTelemetry.
type otelMetrics struct {
	sessions      metric.Int64Counter
	evaluations   metric.Int64Counter
	nodesComputed metric.Int64Histogram
	derivatives   metric.Int64Counter
	batches       metric.Int64Counter
	batchPoints   metric.Int64Histogram
}

var (
	defaultMetrics     *otelMetrics
	defaultMetricsOnce sync.Once
	defaultMetricsErr  error
)

func getDefaultMetrics() (*otelMetrics, error) {
	defaultMetricsOnce.Do(func() {
		defaultMetrics, defaultMetricsErr = newOtelMetrics()
	})
	return defaultMetrics, defaultMetricsErr
}

func newOtelMetrics() (*otelMetrics, error) {
	meter := otel.Meter("fncas")

	sessions, err := meter.Int64Counter("fncas.sessions",
		metric.WithDescription("Number of recording sessions opened"),
	)
	if err != nil {
		return nil, err
	}

	evaluations, err := meter.Int64Counter("fncas.evaluations",
		metric.WithDescription("Number of evaluator calls"),
	)
	if err != nil {
		return nil, err
	}

	nodesComputed, err := meter.Int64Histogram("fncas.evaluation.nodes_computed",
		metric.WithDescription("Nodes computed per evaluator call"),
	)
	if err != nil {
		return nil, err
	}

	derivatives, err := meter.Int64Counter("fncas.derivatives",
		metric.WithDescription("Derivative lookups, split by memo hit"),
	)
	if err != nil {
		return nil, err
	}

	batches, err := meter.Int64Counter("fncas.batches",
		metric.WithDescription("Number of batch evaluations"),
	)
	if err != nil {
		return nil, err
	}

	batchPoints, err := meter.Int64Histogram("fncas.batch.points",
		metric.WithDescription("Points per batch evaluation"),
	)
	if err != nil {
		return nil, err
	}

	return &otelMetrics{
		sessions:      sessions,
		evaluations:   evaluations,
		nodesComputed: nodesComputed,
		derivatives:   derivatives,
		batches:       batches,
		batchPoints:   batchPoints,
	}, nil
}

// NewMetricsRecorder returns a MetricsRecorder that uses OpenTelemetry.
// If metrics initialization fails, returns a no-op recorder.
//
// The recorder uses the global OTel meter provider. Configure the provider
// before calling this function:
//
//	otel.SetMeterProvider(yourProvider)
func NewMetricsRecorder() MetricsRecorder {
	m, err := getDefaultMetrics()
	if err != nil {
		slog.Warn("metrics initialization failed, using no-op recorder",
			slog.String("error", err.Error()))
		return NoopMetrics{}
	}
	return m
}

func (m *otelMetrics) RecordSession(ctx context.Context, dim int) {
	m.sessions.Add(ctx, 1, metric.WithAttributes(attribute.Int("dimension", dim)))
}

func (m *otelMetrics) RecordEvaluation(ctx context.Context, nodesComputed int) {
	m.evaluations.Add(ctx, 1)
	m.nodesComputed.Record(ctx, int64(nodesComputed))
}

func (m *otelMetrics) RecordDerivative(ctx context.Context, memoHit bool) {
	m.derivatives.Add(ctx, 1, metric.WithAttributes(attribute.Bool("memo_hit", memoHit)))
}

func (m *otelMetrics) RecordBatch(ctx context.Context, points int, success bool) {
	attrs := metric.WithAttributes(attribute.Bool("success", success))
	m.batches.Add(ctx, 1, attrs)
	m.batchPoints.Record(ctx, int64(points), attrs)
}
