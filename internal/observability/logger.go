// Package observability provides structured logging, metrics and tracing
// for recording sessions, evaluations and batch runs.
//
// Features:
//   - Structured logging via slog
//   - Metrics via OpenTelemetry
//   - Tracing via OpenTelemetry
//
// All features are opt-in and have no-op implementations when disabled.
package observability

import (
	"log/slog"
	"time"
)

// LogSessionOpen logs the start of a recording session.
func LogSessionOpen(logger *slog.Logger, storeID string, generation uint64, dim int) {
	if logger == nil {
		return
	}
	logger.Debug("recording session opened",
		slog.String("store_id", storeID),
		slog.Uint64("generation", generation),
		slog.Int("dimension", dim),
	)
}

// LogSessionClose logs the end of a recording session.
func LogSessionClose(logger *slog.Logger, storeID string, generation uint64, nodes int) {
	if logger == nil {
		return
	}
	logger.Debug("recording session closed",
		slog.String("store_id", storeID),
		slog.Uint64("generation", generation),
		slog.Int("nodes", nodes),
	)
}

// LogSessionRejected logs an attempt to open a second session on a busy store.
func LogSessionRejected(logger *slog.Logger, storeID string) {
	if logger == nil {
		return
	}
	logger.Warn("recording session rejected: store busy",
		slog.String("store_id", storeID),
	)
}

// LogBatchStart logs the start of a batch evaluation.
func LogBatchStart(logger *slog.Logger, points, workers int) {
	if logger == nil {
		return
	}
	logger.Info("batch evaluation starting",
		slog.Int("points", points),
		slog.Int("workers", workers),
	)
}

// LogBatchComplete logs successful batch completion.
func LogBatchComplete(logger *slog.Logger, points int, durationMs float64) {
	if logger == nil {
		return
	}
	logger.Info("batch evaluation completed",
		slog.Int("points", points),
		slog.Float64("duration_ms", durationMs),
	)
}

// LogBatchError logs batch failure.
func LogBatchError(logger *slog.Logger, err error, durationMs float64) {
	if logger == nil {
		return
	}
	logger.Error("batch evaluation failed",
		slog.String("error", err.Error()),
		slog.Float64("duration_ms", durationMs),
	)
}

// TimedOperation measures the duration of an operation.
// Returns a function that, when called, returns the elapsed time in milliseconds.
func TimedOperation() func() float64 {
	start := time.Now()
	return func() float64 {
		return float64(time.Since(start).Microseconds()) / 1000
	}
}
