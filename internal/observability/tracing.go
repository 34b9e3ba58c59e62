package observability

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// tracer uses the global OTel tracer provider.
var tracer = otel.Tracer("fncas")

// StartBatchSpan starts a span covering a whole batch evaluation.
func StartBatchSpan(ctx context.Context, points, chunks int) (context.Context, trace.Span) {
	return tracer.Start(ctx, "fncas.batch",
		trace.WithAttributes(
			attribute.Int("batch.points", points),
			attribute.Int("batch.chunks", chunks),
		),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
}

// StartChunkSpan starts a span for one worker's share of a batch.
func StartChunkSpan(ctx context.Context, start, end int) (context.Context, trace.Span) {
	return tracer.Start(ctx, "fncas.batch.chunk",
		trace.WithAttributes(
			attribute.Int("chunk.start", start),
			attribute.Int("chunk.end", end),
		),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
}

// EndSpanWithError completes a span, recording err if non-nil.
func EndSpanWithError(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}
