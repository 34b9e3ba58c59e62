package observability

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

// setupMetricsTest installs a meter provider backed by a manual reader.
func setupMetricsTest(t *testing.T) *sdkmetric.ManualReader {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	original := otel.GetMeterProvider()
	otel.SetMeterProvider(provider)
	t.Cleanup(func() {
		otel.SetMeterProvider(original)
		if err := provider.Shutdown(context.Background()); err != nil {
			t.Logf("shutting down meter provider: %v", err)
		}
	})
	return reader
}

func collectMetrics(t *testing.T, reader *sdkmetric.ManualReader) *metricdata.ResourceMetrics {
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	return &rm
}

func findMetric(rm *metricdata.ResourceMetrics, name string) *metricdata.Metrics {
	for _, sm := range rm.ScopeMetrics {
		for i := range sm.Metrics {
			if sm.Metrics[i].Name == name {
				return &sm.Metrics[i]
			}
		}
	}
	return nil
}

// sumByBool returns the counter values keyed by a boolean attribute.
func sumByBool(t *testing.T, m *metricdata.Metrics, key attribute.Key) map[bool]int64 {
	t.Helper()
	require.NotNil(t, m)
	sum, ok := m.Data.(metricdata.Sum[int64])
	require.True(t, ok, "expected Sum[int64], got %T", m.Data)

	out := make(map[bool]int64)
	for _, dp := range sum.DataPoints {
		v, ok := dp.Attributes.Value(key)
		require.True(t, ok, "missing attribute %s", key)
		out[v.AsBool()] += dp.Value
	}
	return out
}

func TestNewMetricsRecorder(t *testing.T) {
	setupMetricsTest(t)

	recorder := NewMetricsRecorder()
	require.NotNil(t, recorder)
	_, isNoop := recorder.(NoopMetrics)
	assert.False(t, isNoop)
}

func TestOtelMetrics_Sessions(t *testing.T) {
	reader := setupMetricsTest(t)
	m, err := newOtelMetrics()
	require.NoError(t, err)

	ctx := context.Background()
	m.RecordSession(ctx, 2)
	m.RecordSession(ctx, 2)
	m.RecordSession(ctx, 5)

	metric := findMetric(collectMetrics(t, reader), "fncas.sessions")
	require.NotNil(t, metric)
	sum, ok := metric.Data.(metricdata.Sum[int64])
	require.True(t, ok)

	byDim := make(map[int64]int64)
	for _, dp := range sum.DataPoints {
		v, ok := dp.Attributes.Value("dimension")
		require.True(t, ok)
		byDim[v.AsInt64()] += dp.Value
	}
	assert.Equal(t, map[int64]int64{2: 2, 5: 1}, byDim)
}

func TestOtelMetrics_Evaluations(t *testing.T) {
	reader := setupMetricsTest(t)
	m, err := newOtelMetrics()
	require.NoError(t, err)

	ctx := context.Background()
	m.RecordEvaluation(ctx, 10)
	m.RecordEvaluation(ctx, 0)

	rm := collectMetrics(t, reader)

	count := findMetric(rm, "fncas.evaluations")
	require.NotNil(t, count)
	sum, ok := count.Data.(metricdata.Sum[int64])
	require.True(t, ok)
	require.Len(t, sum.DataPoints, 1)
	assert.Equal(t, int64(2), sum.DataPoints[0].Value)

	nodes := findMetric(rm, "fncas.evaluation.nodes_computed")
	require.NotNil(t, nodes)
	hist, ok := nodes.Data.(metricdata.Histogram[int64])
	require.True(t, ok)
	require.Len(t, hist.DataPoints, 1)
	assert.Equal(t, uint64(2), hist.DataPoints[0].Count)
	assert.Equal(t, int64(10), hist.DataPoints[0].Sum)
}

func TestOtelMetrics_Derivatives(t *testing.T) {
	reader := setupMetricsTest(t)
	m, err := newOtelMetrics()
	require.NoError(t, err)

	ctx := context.Background()
	m.RecordDerivative(ctx, false)
	m.RecordDerivative(ctx, true)
	m.RecordDerivative(ctx, true)

	got := sumByBool(t, findMetric(collectMetrics(t, reader), "fncas.derivatives"), "memo_hit")
	assert.Equal(t, map[bool]int64{true: 2, false: 1}, got)
}

func TestOtelMetrics_Batches(t *testing.T) {
	reader := setupMetricsTest(t)
	m, err := newOtelMetrics()
	require.NoError(t, err)

	ctx := context.Background()
	m.RecordBatch(ctx, 100, true)
	m.RecordBatch(ctx, 7, false)

	rm := collectMetrics(t, reader)
	got := sumByBool(t, findMetric(rm, "fncas.batches"), "success")
	assert.Equal(t, map[bool]int64{true: 1, false: 1}, got)

	points := findMetric(rm, "fncas.batch.points")
	require.NotNil(t, points)
	hist, ok := points.Data.(metricdata.Histogram[int64])
	require.True(t, ok)

	var total int64
	for _, dp := range hist.DataPoints {
		total += dp.Sum
	}
	assert.Equal(t, int64(107), total)
}

func TestNoopMetrics(t *testing.T) {
	var m MetricsRecorder = NoopMetrics{}
	ctx := context.Background()
	assert.NotPanics(t, func() {
		m.RecordSession(ctx, 1)
		m.RecordEvaluation(ctx, 1)
		m.RecordDerivative(ctx, true)
		m.RecordBatch(ctx, 1, false)
	})
}
