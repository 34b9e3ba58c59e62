package observability

import "context"

// NoopMetrics is a MetricsRecorder that does nothing.
type NoopMetrics struct{}

// Compile-time interface check.
var _ MetricsRecorder = NoopMetrics{}

// RecordSession does nothing.
func (NoopMetrics) RecordSession(_ context.Context, _ int) {}

// RecordEvaluation does nothing.
func (NoopMetrics) RecordEvaluation(_ context.Context, _ int) {}

// RecordDerivative does nothing.
func (NoopMetrics) RecordDerivative(_ context.Context, _ bool) {}

// RecordBatch does nothing.
func (NoopMetrics) RecordBatch(_ context.Context, _ int, _ bool) {}
