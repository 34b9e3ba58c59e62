package parallel

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/born-ml/fncas/internal/autodiff"
	"github.com/born-ml/fncas/internal/function"
	"github.com/born-ml/fncas/internal/observability"
)

// RecordFunc records a function into a fresh store.
// It is called once per chunk, concurrently, each time with a different store.
type RecordFunc func(store *autodiff.Store) (*function.Recorded, error)

// Result is the outcome for one point.
type Result struct {
	Value    float64   `json:"value" yaml:"value"`
	Gradient []float64 `json:"gradient,omitempty" yaml:"gradient,omitempty"`
}

// Batch evaluates one function at many points.
type Batch struct {
	Config   Config
	Record   RecordFunc
	Gradient bool // Also compute ∇f at every point
	Logger   *slog.Logger
	Metrics  observability.MetricsRecorder
}

// Run evaluates every point. Results are in input order.
//
// Returns the first error encountered; a wrong-length point fails with
// autodiff.DimensionMismatchError. Cancelling ctx stops all chunks between points.
func (b *Batch) Run(ctx context.Context, points [][]float64) ([]Result, error) {
	metrics := b.Metrics
	if metrics == nil {
		metrics = observability.NoopMetrics{}
	}
	chunks := Chunks(len(points), b.Config)
	observability.LogBatchStart(b.Logger, len(points), len(chunks))
	done := observability.TimedOperation()

	ctx, span := observability.StartBatchSpan(ctx, len(points), len(chunks))
	results := make([]Result, len(points))

	g, gctx := errgroup.WithContext(ctx)
	if b.Config.NumWorkers > 0 {
		g.SetLimit(b.Config.NumWorkers)
	}
	for _, c := range chunks {
		start, end := c[0], c[1]
		g.Go(func() error {
			return b.runChunk(gctx, points, results, start, end, metrics)
		})
	}
	err := g.Wait()

	observability.EndSpanWithError(span, err)
	metrics.RecordBatch(ctx, len(points), err == nil)
	if err != nil {
		observability.LogBatchError(b.Logger, err, done())
		return nil, err
	}
	observability.LogBatchComplete(b.Logger, len(points), done())
	return results, nil
}

func (b *Batch) runChunk(ctx context.Context, points [][]float64, results []Result, start, end int, metrics observability.MetricsRecorder) (err error) {
	ctx, span := observability.StartChunkSpan(ctx, start, end)
	defer func() { observability.EndSpanWithError(span, err) }()

	store := autodiff.NewStore(autodiff.WithLogger(b.Logger), autodiff.WithMetrics(metrics))
	f, err := b.Record(store)
	if err != nil {
		return fmt.Errorf("chunk [%d, %d): %w", start, end, err)
	}

	var grad *function.Gradient
	if b.Gradient {
		if grad, err = function.NewGradient(f); err != nil {
			return fmt.Errorf("chunk [%d, %d): %w", start, end, err)
		}
	}

	for i := start; i < end; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		var r Result
		if grad != nil {
			r.Value, r.Gradient, err = grad.Evaluate(points[i])
		} else {
			r.Value, err = f.Evaluate(points[i])
		}
		if err != nil {
			return fmt.Errorf("point %d: %w", i, err)
		}
		results[i] = r
	}
	return nil
}
