// pkg/cleaner/cleaner.go
package cleaner

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/David-Botos/movie-cleaning/pkg/model"
)

// Default inclusive release year range
const (
	DefaultMinYear = 1990
	DefaultMaxYear = 2025
)

// rowsPerChunk is the unit of work handed to each worker
const rowsPerChunk = 2048

var (
	// ErrNilTable is returned when no table is supplied
	ErrNilTable = errors.New("input table cannot be nil")
	// ErrMissingColumn is returned when a required column is absent
	ErrMissingColumn = errors.New("required column missing")
)

// MissingColumnError lists the required columns an input table lacks
type MissingColumnError struct {
	Table   string
	Columns []string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("table %q: %s: %s", e.Table, ErrMissingColumn, strings.Join(e.Columns, ", "))
}

func (e *MissingColumnError) Unwrap() error {
	return ErrMissingColumn
}

// DatasetTransformer normalizes raw movie rows into an analysis-ready table
type DatasetTransformer struct {
	logger  *zap.Logger
	minYear int
	maxYear int
	workers int
	runID   string
	now     func() time.Time
}

// Option configures a DatasetTransformer
type Option func(*DatasetTransformer)

// WithYearRange sets the inclusive release year range rows must fall in
func WithYearRange(minYear, maxYear int) Option {
	return func(t *DatasetTransformer) {
		t.minYear = minYear
		t.maxYear = maxYear
	}
}

// WithWorkers processes rows in parallel chunks. Output order is unchanged.
func WithWorkers(n int) Option {
	return func(t *DatasetTransformer) {
		if n > 0 {
			t.workers = n
		}
	}
}

// WithRunID stamps cleaning operations with the given run identifier
func WithRunID(id string) Option {
	return func(t *DatasetTransformer) {
		t.runID = id
	}
}

// NewDatasetTransformer creates a transformer with the default year range
func NewDatasetTransformer(logger *zap.Logger, opts ...Option) *DatasetTransformer {
	if logger == nil {
		logger = zap.NewNop()
	}

	t := &DatasetTransformer{
		logger:  logger,
		minYear: DefaultMinYear,
		maxYear: DefaultMaxYear,
		workers: 1,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Stats summarizes a transform
type Stats struct {
	RowsIn            int
	RowsOut           int
	RowsDroppedByDate int
	MissingByColumn   map[string]int
}

// Result is the cleaned table plus what happened while producing it
type Result struct {
	Table      *model.Table
	Operations []model.CleaningOperation
	Stats      Stats
}

// rowOutcome is the cleaned form of a single source row
type rowOutcome struct {
	row        model.CleanedRow
	keep       bool
	operations []model.CleaningOperation
}

// Transform cleans every row of the table, drops rows released outside the
// year range, and replaces the duration, genres and votes columns with
// their derived counterparts.
func (t *DatasetTransformer) Transform(table *model.Table) (*Result, error) {
	if table == nil {
		return nil, ErrNilTable
	}
	if err := validateColumns(table); err != nil {
		return nil, err
	}

	outcomes := t.cleanAll(table)

	result := &Result{
		Table: &model.Table{
			Name:    table.Name,
			Columns: OutputColumns(table.Columns),
			Rows:    make([]map[string]interface{}, 0, len(table.Rows)),
		},
		Stats: Stats{
			RowsIn:          len(table.Rows),
			MissingByColumn: make(map[string]int),
		},
	}

	for _, outcome := range outcomes {
		result.Operations = append(result.Operations, outcome.operations...)
		if !outcome.keep {
			result.Stats.RowsDroppedByDate++
			continue
		}
		for col, v := range outcome.row {
			if v == nil {
				result.Stats.MissingByColumn[col]++
			}
		}
		result.Table.Rows = append(result.Table.Rows, outcome.row)
	}
	result.Stats.RowsOut = len(result.Table.Rows)

	t.logger.Info("Cleaned table",
		zap.String("table", table.Name),
		zap.Int("rowsIn", result.Stats.RowsIn),
		zap.Int("rowsOut", result.Stats.RowsOut),
		zap.Int("rowsDroppedByDate", result.Stats.RowsDroppedByDate),
		zap.Int("cleaningOperations", len(result.Operations)))

	return result, nil
}

// CleanRows cleans a batch of rows that carry no header. The column set is
// taken from the first row.
func (t *DatasetTransformer) CleanRows(rows []map[string]interface{}) ([]map[string]interface{}, []model.CleaningOperation, error) {
	table := &model.Table{Name: "rows", Rows: rows}
	if len(rows) > 0 {
		for col := range rows[0] {
			table.Columns = append(table.Columns, col)
		}
		sort.Strings(table.Columns)
	}

	result, err := t.Transform(table)
	if err != nil {
		return nil, nil, err
	}
	return result.Table.Rows, result.Operations, nil
}

// OutputColumns returns the cleaned column order for the given input columns
func OutputColumns(input []string) []string {
	superseded := make(map[string]bool, len(model.SupersededColumns))
	for _, col := range model.SupersededColumns {
		superseded[col] = true
	}

	out := make([]string, 0, len(input)+len(model.DerivedColumns))
	for _, col := range input {
		if !superseded[col] {
			out = append(out, col)
		}
	}
	return append(out, model.DerivedColumns...)
}

// validateColumns reports every required column the table lacks
func validateColumns(table *model.Table) error {
	var missing []string
	for _, col := range model.RequiredColumns {
		if !table.HasColumn(col) {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return &MissingColumnError{Table: table.Name, Columns: missing}
	}
	return nil
}

// cleanAll cleans every row, in chunks across workers when configured
func (t *DatasetTransformer) cleanAll(table *model.Table) []rowOutcome {
	outcomes := make([]rowOutcome, len(table.Rows))

	if t.workers <= 1 || len(table.Rows) <= rowsPerChunk {
		for i, row := range table.Rows {
			outcomes[i] = t.cleanSingleRow(row, table, i)
		}
		return outcomes
	}

	var g errgroup.Group
	g.SetLimit(t.workers)
	for start := 0; start < len(table.Rows); start += rowsPerChunk {
		start := start
		end := min(start+rowsPerChunk, len(table.Rows))
		g.Go(func() error {
			for i := start; i < end; i++ {
				outcomes[i] = t.cleanSingleRow(table.Rows[i], table, i)
			}
			return nil
		})
	}
	// Row cleaning never fails, only the wait matters
	_ = g.Wait()

	t.logger.Debug("Cleaned rows in parallel",
		zap.Int("workers", t.workers),
		zap.Int("rows", len(table.Rows)))

	return outcomes
}

// cleanSingleRow normalizes one row. It never fails: unparseable fields
// degrade to nil.
func (t *DatasetTransformer) cleanSingleRow(raw map[string]interface{}, table *model.Table, index int) rowOutcome {
	cctx := model.CleaningContext{RunID: t.runID, TableName: table.Name, RowIndex: index}
	cleaned := make(model.CleanedRow, len(table.Columns)+len(model.DerivedColumns))
	var ops []model.CleaningOperation

	// Passthrough first, superseded columns are not copied
	for _, col := range table.Columns {
		cleaned[col] = raw[col]
	}
	for _, col := range model.SupersededColumns {
		delete(cleaned, col)
	}

	duration := raw[model.ColumnDuration]
	minutes := ParseDuration(duration)
	cleaned[model.ColumnDurationMinutes] = minutes.Value()
	// No hour or minute component still yields 0; audit it
	if !isMissing(duration) && !hasDurationComponent(toString(duration)) {
		ops = append(ops, t.operation(cctx, model.ColumnDuration, duration, formatFloat(minutes), "duration_parse", model.ReasonUnparseableDuration))
	}

	for _, col := range model.CurrencyColumns {
		original := raw[col]
		amount := ParseCurrency(original)
		cleaned[col] = amount.Value()
		if !isMissing(original) && toString(original) != "" && !amount.Valid {
			ops = append(ops, t.operation(cctx, col, original, "", "currency_parse", model.ReasonUnparseableCurrency))
		}
	}

	genres := raw[model.ColumnGenres]
	genre := ExtractPrimaryGenre(genres)
	cleaned[model.ColumnPrimaryGenre] = genre.Value()
	if !isMissing(genres) && toString(genres) != "" && !genre.Valid {
		ops = append(ops, t.operation(cctx, model.ColumnGenres, genres, "", "genre_extract", model.ReasonNoPrimaryGenre))
	}

	originalDate := raw[model.ColumnReleaseDate]
	released := ParseReleaseDate(originalDate)
	cleaned[model.ColumnReleaseDate] = released.Value()

	votes := raw[model.ColumnVotes]
	count := ParseVotes(votes)
	cleaned[model.ColumnVotesNumeric] = count.Value()
	if !isMissing(votes) && !count.Valid {
		ops = append(ops, t.operation(cctx, model.ColumnVotes, votes, "", "votes_parse", model.ReasonUnparseableVotes))
	}

	if released.YearBetween(t.minYear, t.maxYear) {
		return rowOutcome{row: cleaned, keep: true, operations: ops}
	}

	// Dropped rows only report why they were dropped
	reason := model.ReasonOutsideYearRange
	newValue := ""
	if !released.Valid {
		reason = model.ReasonUnparseableDate
	} else {
		newValue = released.Time.Format("2006-01-02")
	}
	t.logger.Debug("Dropping row by release date",
		zap.String("table", table.Name),
		zap.Int("row", index),
		zap.String("reason", reason))

	return rowOutcome{
		keep: false,
		operations: []model.CleaningOperation{
			t.operation(cctx, model.ColumnReleaseDate, originalDate, newValue, "release_date_filter", reason),
		},
	}
}

func (t *DatasetTransformer) operation(
	cctx model.CleaningContext,
	column string,
	original interface{},
	newValue string,
	operation, reason string,
) model.CleaningOperation {
	return model.CleaningOperation{
		RunID:             cctx.RunID,
		TableName:         cctx.TableName,
		ColumnName:        column,
		RowIndex:          cctx.RowIndex,
		OriginalValue:     original,
		NewValue:          newValue,
		CleaningOperation: operation,
		CleaningReason:    reason,
		CleanedAt:         t.now(),
	}
}
