package pipeline

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency is used when no limit is configured.
const DefaultConcurrency = 5

// Task is one unit of work in a batch.
type Task func(ctx context.Context) error

// BatchProcessor runs independent tasks with bounded parallelism.
// At most concurrency tasks are in flight; as one finishes the next
// queued task starts.
type BatchProcessor struct {
	concurrency int
	logger      *slog.Logger
}

// BatchOption configures a BatchProcessor.
type BatchOption func(*BatchProcessor)

// WithBatchLogger sets a custom logger for batch processing.
func WithBatchLogger(logger *slog.Logger) BatchOption {
	return func(b *BatchProcessor) {
		b.logger = logger
	}
}

// WithConcurrency sets the maximum number of tasks in flight.
// Non-positive values keep the default.
func WithConcurrency(n int) BatchOption {
	return func(b *BatchProcessor) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// NewBatchProcessor creates a BatchProcessor.
func NewBatchProcessor(opts ...BatchOption) *BatchProcessor {
	bp := &BatchProcessor{
		concurrency: DefaultConcurrency,
	}
	for _, opt := range opts {
		opt(bp)
	}
	if bp.logger == nil {
		bp.logger = slog.Default()
	}
	return bp
}

// Concurrency returns the configured limit.
func (bp *BatchProcessor) Concurrency() int {
	return bp.concurrency
}

// Run executes every task and returns their errors by index.
//
// The group has no shared context, so a failing task never cancels its
// siblings. A task that has not started
// when ctx is cancelled records ctx.Err() instead of running.
func (bp *BatchProcessor) Run(ctx context.Context, tasks []Task) []error {
	errs := make([]error, len(tasks))
	if len(tasks) == 0 {
		return errs
	}

	start := time.Now()
	var g errgroup.Group
	g.SetLimit(bp.concurrency)

	for i, task := range tasks {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				errs[i] = err
				return nil
			}
			errs[i] = task(ctx)
			return nil
		})
	}
	_ = g.Wait() //nolint:errcheck // task errors are collected in errs

	failed := 0
	for _, err := range errs {
		if err != nil {
			failed++
		}
	}
	bp.logger.Debug("batch complete",
		"tasks", len(tasks),
		"failed", failed,
		"concurrency", bp.concurrency,
		"elapsed", time.Since(start),
	)
	return errs
}

// Map applies fn to every item with bp's concurrency limit and returns
// results and errors in input order.
func Map[In, Out any](ctx context.Context, bp *BatchProcessor, items []In, fn func(context.Context, In) (Out, error)) ([]Out, []error) {
	results := make([]Out, len(items))
	tasks := make([]Task, len(items))
	for i, item := range items {
		tasks[i] = func(ctx context.Context) error {
			out, err := fn(ctx, item)
			results[i] = out
			return err
		}
	}
	return results, bp.Run(ctx, tasks)
}
