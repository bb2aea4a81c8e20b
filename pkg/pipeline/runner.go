// pkg/pipeline/runner.go
package pipeline

import (
	"context"
	"fmt"
	"math"
	"runtime"

	"go.uber.org/zap"

	"github.com/David-Botos/movie-cleaning/pkg/cleaner"
	"github.com/David-Botos/movie-cleaning/pkg/model"
	"github.com/David-Botos/movie-cleaning/pkg/tableio"
)

// Runner orchestrates one cleaning run: load, transform, write, then record
// the cleaning operations
type Runner struct {
	loader   tableio.Loader
	writer   tableio.Writer
	recorder cleaner.OperationRecorder
	logger   *zap.Logger
	metrics  *RunMetrics

	source      string
	destination string
	minYear     int
	maxYear     int
	workers     int
}

// RunnerOption configures a Runner
type RunnerOption func(*Runner)

// WithRecorder persists cleaning operations after the table is written
func WithRecorder(recorder cleaner.OperationRecorder) RunnerOption {
	return func(r *Runner) {
		r.recorder = recorder
	}
}

// WithYearRange sets the inclusive release year range
func WithYearRange(minYear, maxYear int) RunnerOption {
	return func(r *Runner) {
		r.minYear = minYear
		r.maxYear = maxYear
	}
}

// WithWorkerCount sets the transform parallelism, 0 picks from the CPU count
func WithWorkerCount(n int) RunnerOption {
	return func(r *Runner) {
		r.workers = n
	}
}

// WithDescription names the source and destination in logs and results
func WithDescription(source, destination string) RunnerOption {
	return func(r *Runner) {
		r.source = source
		r.destination = destination
	}
}

// NewRunner creates a runner reading from loader and writing to writer
func NewRunner(loader tableio.Loader, writer tableio.Writer, logger *zap.Logger, opts ...RunnerOption) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}

	r := &Runner{
		loader:  loader,
		writer:  writer,
		logger:  logger,
		minYear: cleaner.DefaultMinYear,
		maxYear: cleaner.DefaultMaxYear,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.workers <= 0 {
		r.workers = calculateOptimalWorkerCount()
	}
	r.metrics = NewRunMetrics(logger)
	return r
}

// Metrics returns the metrics of the last run
func (r *Runner) Metrics() *RunMetrics {
	return r.metrics
}

// Run performs a full cleaning run. A structural problem with the input
// stops the run before anything is written.
func (r *Runner) Run(ctx context.Context) (*RunResult, error) {
	result := NewRunResult(r.source, r.destination)
	r.metrics = NewRunMetrics(r.logger)
	logger := r.logger.With(zap.String("runId", result.RunID))

	logger.Info("Starting cleaning run",
		zap.String("source", r.source),
		zap.String("destination", r.destination),
		zap.Int("minYear", r.minYear),
		zap.Int("maxYear", r.maxYear),
		zap.Int("workers", r.workers))

	r.metrics.StartStage(StageLoad)
	raw, err := r.loader.Load(ctx)
	r.metrics.EndStage(StageLoad)
	if err != nil {
		return r.fail(result, StageLoad, err)
	}
	logger.Debug("Loaded source table",
		zap.String("table", raw.Name),
		zap.Int("columns", len(raw.Columns)),
		zap.Int("rows", raw.Len()))

	r.metrics.StartStage(StageTransform)
	transformer := cleaner.NewDatasetTransformer(logger.Named("cleaner"),
		cleaner.WithYearRange(r.minYear, r.maxYear),
		cleaner.WithWorkers(r.workers),
		cleaner.WithRunID(result.RunID))
	cleaned, err := transformer.Transform(raw)
	r.metrics.EndStage(StageTransform)
	if err != nil {
		return r.fail(result, StageTransform, err)
	}

	result.RowsIn = cleaned.Stats.RowsIn
	result.RowsOut = cleaned.Stats.RowsOut
	result.RowsDroppedByDate = cleaned.Stats.RowsDroppedByDate
	result.Operations = len(cleaned.Operations)
	result.MissingByColumn = cleaned.Stats.MissingByColumn

	if err := ctx.Err(); err != nil {
		return r.fail(result, StageWrite, err)
	}

	r.metrics.StartStage(StageWrite)
	err = r.writer.Write(ctx, cleaned.Table)
	r.metrics.EndStage(StageWrite)
	if err != nil {
		return r.fail(result, StageWrite, err)
	}

	r.record(ctx, logger, result, cleaned.Operations)

	result.Complete(true)
	r.metrics.RecordResult(result)
	r.metrics.Complete()

	logger.Info("Cleaning run completed",
		zap.Int("rowsIn", result.RowsIn),
		zap.Int("rowsOut", result.RowsOut),
		zap.Int("rowsDroppedByDate", result.RowsDroppedByDate),
		zap.Int("cleaningOperations", result.Operations),
		zap.Int("operationsSaved", result.OperationsSaved),
		zap.Int("warnings", len(result.Warnings)),
		zap.Duration("duration", result.Duration()))

	return result, nil
}

// record persists cleaning operations. The cleaned table is already written,
// so a failure here is kept on the result as a warning.
func (r *Runner) record(ctx context.Context, logger *zap.Logger, result *RunResult, operations []model.CleaningOperation) {
	if r.recorder == nil || len(operations) == 0 {
		return
	}

	r.metrics.StartStage(StageRecord)
	err := r.recorder.RecordCleaningOperations(ctx, operations)
	r.metrics.EndStage(StageRecord)

	if err != nil {
		record := NewErrorRecord(err, ErrorCategoryAudit, StageRecord)
		result.AddError(record)
		result.AddWarning(fmt.Sprintf("cleaning operations not recorded: %v", err))
		r.metrics.RecordError(record.Category)
		logger.Warn("Failed to record cleaning operations",
			zap.Int("operations", len(operations)),
			zap.Error(err))
		return
	}
	result.OperationsSaved = len(operations)
}

func (r *Runner) fail(result *RunResult, stage string, err error) (*RunResult, error) {
	category := CategorizeError(err, stage, r.logger)
	result.AddError(NewErrorRecord(err, category, stage))
	result.Complete(false)
	r.metrics.RecordError(category)
	r.metrics.RecordResult(result)
	r.metrics.Complete()

	r.logger.Error("Cleaning run failed",
		zap.String("runId", result.RunID),
		zap.String("stage", stage),
		zap.String("category", category.String()),
		zap.Error(err))

	return result, &RunError{Category: category, Stage: stage, Err: err}
}

// calculateOptimalWorkerCount uses three quarters of the logical CPUs
func calculateOptimalWorkerCount() int {
	workers := int(math.Ceil(float64(runtime.NumCPU()) * 0.75))
	return max(workers, 1)
}
