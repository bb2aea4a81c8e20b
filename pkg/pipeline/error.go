// pkg/pipeline/error.go
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/David-Botos/movie-cleaning/pkg/cleaner"
	"github.com/David-Botos/movie-cleaning/pkg/tableio"
)

// ErrorCategory classifies what went wrong during a run
type ErrorCategory int

const (
	ErrorCategoryNone ErrorCategory = iota
	// ErrorCategoryAudit covers failures persisting cleaning operations. The
	// cleaned table is already written when these happen.
	ErrorCategoryAudit
	// ErrorCategorySource covers failures reading the raw table
	ErrorCategorySource
	// ErrorCategoryStructural covers input tables the transformer rejects
	ErrorCategoryStructural
	// ErrorCategorySink covers failures writing the cleaned table
	ErrorCategorySink
	// ErrorCategoryCanceled covers runs stopped by their context
	ErrorCategoryCanceled
)

// String returns a string representation of the error category
func (ec ErrorCategory) String() string {
	switch ec {
	case ErrorCategoryNone:
		return "None"
	case ErrorCategoryAudit:
		return "Audit"
	case ErrorCategorySource:
		return "Source"
	case ErrorCategoryStructural:
		return "Structural"
	case ErrorCategorySink:
		return "Sink"
	case ErrorCategoryCanceled:
		return "Canceled"
	default:
		return fmt.Sprintf("Unknown(%d)", ec)
	}
}

// ErrorRecord represents a single error during a run
type ErrorRecord struct {
	Category    ErrorCategory
	Stage       string
	Error       error
	Message     string // Derived from Error but stored for serialization
	Timestamp   time.Time
	Recoverable bool
}

// NewErrorRecord creates a new error record with current timestamp
func NewErrorRecord(err error, category ErrorCategory, stage string) ErrorRecord {
	record := ErrorRecord{
		Category:    category,
		Stage:       stage,
		Error:       err,
		Timestamp:   time.Now(),
		Recoverable: category == ErrorCategoryAudit,
	}

	if err != nil {
		record.Message = err.Error()
	}

	return record
}

// String returns a formatted error message
func (r ErrorRecord) String() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("[%s] ", r.Category))
	if r.Stage != "" {
		sb.WriteString(fmt.Sprintf("Stage: %s ", r.Stage))
	}
	sb.WriteString(r.Message)
	return sb.String()
}

// RunError is returned by Run when a stage fails
type RunError struct {
	Category ErrorCategory
	Stage    string
	Err      error
}

func (e *RunError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Stage, e.Err)
}

func (e *RunError) Unwrap() error {
	return e.Err
}

// CategorizeError determines the category of an error raised in the given stage
func CategorizeError(err error, stage string, logger *zap.Logger) ErrorCategory {
	if err == nil {
		return ErrorCategoryNone
	}

	var category ErrorCategory
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		category = ErrorCategoryCanceled
	case errors.Is(err, cleaner.ErrNilTable), errors.Is(err, cleaner.ErrMissingColumn),
		errors.Is(err, tableio.ErrEmptyTable):
		category = ErrorCategoryStructural
	case errors.Is(err, os.ErrNotExist), errors.Is(err, tableio.ErrUnsupportedFormat):
		category = ErrorCategorySource
	case stage == StageWrite:
		category = ErrorCategorySink
	case stage == StageRecord:
		category = ErrorCategoryAudit
	default:
		category = ErrorCategorySource
	}

	if logger != nil {
		logger.Debug("Categorized error",
			zap.String("error", err.Error()),
			zap.String("stage", stage),
			zap.String("category", category.String()))
	}

	return category
}

// CategoryOf returns the category carried by a run error, or None
func CategoryOf(err error) ErrorCategory {
	var runErr *RunError
	if errors.As(err, &runErr) {
		return runErr.Category
	}
	return ErrorCategoryNone
}
