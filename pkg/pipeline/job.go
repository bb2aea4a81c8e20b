// pkg/pipeline/job.go
package pipeline

import (
	"time"

	"github.com/google/uuid"
)

// Stage names used in logs, error records and metrics
const (
	StageLoad      = "load"
	StageTransform = "transform"
	StageWrite     = "write"
	StageRecord    = "record"
)

// RunResult represents the outcome of one cleaning run
type RunResult struct {
	RunID             string // Unique run identifier, stamped on cleaning operations
	Source            string
	Destination       string
	StartTime         time.Time
	EndTime           time.Time
	Success           bool
	RowsIn            int
	RowsOut           int
	RowsDroppedByDate int
	Operations        int
	OperationsSaved   int
	MissingByColumn   map[string]int
	Errors            []ErrorRecord
	Warnings          []string
}

// NewRunResult creates a result with a fresh run ID
func NewRunResult(source, destination string) *RunResult {
	return &RunResult{
		RunID:           uuid.New().String(),
		Source:          source,
		Destination:     destination,
		StartTime:       time.Now(),
		MissingByColumn: make(map[string]int),
		Errors:          make([]ErrorRecord, 0),
		Warnings:        make([]string, 0),
	}
}

// Complete marks the run as complete
func (r *RunResult) Complete(success bool) {
	r.EndTime = time.Now()
	r.Success = success
}

// Duration returns how long the run took
func (r *RunResult) Duration() time.Duration {
	if r.EndTime.IsZero() {
		return time.Since(r.StartTime)
	}
	return r.EndTime.Sub(r.StartTime)
}

// AddError adds an error record to the result
func (r *RunResult) AddError(err ErrorRecord) {
	r.Errors = append(r.Errors, err)
}

// AddWarning adds a warning message to the result
func (r *RunResult) AddWarning(warning string) {
	r.Warnings = append(r.Warnings, warning)
}

// HasErrors returns true if there were any errors
func (r *RunResult) HasErrors() bool {
	return len(r.Errors) > 0
}
