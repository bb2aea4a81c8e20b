package cleaner

import (
	"fmt"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/David-Botos/movie-cleaning/pkg/model"
)

var testColumns = []string{
	"title",
	"rating",
	model.ColumnDuration,
	model.ColumnBudget,
	model.ColumnOpeningWeekendGross,
	model.ColumnGrossWorldwide,
	model.ColumnGrossUSCanada,
	model.ColumnGenres,
	model.ColumnReleaseDate,
	model.ColumnVotes,
}

func movieRow(title, releaseDate string) map[string]interface{} {
	return map[string]interface{}{
		"title":                         title,
		"rating":                        7.4,
		model.ColumnDuration:            "2h 15m",
		model.ColumnBudget:              "$1,234,567",
		model.ColumnOpeningWeekendGross: "$500,000 (estimated)",
		model.ColumnGrossWorldwide:      "$9,000,000",
		model.ColumnGrossUSCanada:       nil,
		model.ColumnGenres:              "['Action', 'Comedy']",
		model.ColumnReleaseDate:         releaseDate,
		model.ColumnVotes:               "12K",
	}
}

func movieTable(rows ...map[string]interface{}) *model.Table {
	return &model.Table{Name: "movies", Columns: testColumns, Rows: rows}
}

func newTestTransformer(opts ...Option) *DatasetTransformer {
	return NewDatasetTransformer(zap.NewNop(), opts...)
}

func TestTransform_CleansRow(t *testing.T) {
	result, err := newTestTransformer().Transform(movieTable(movieRow("Heat", "2010-06-15")))
	require.NoError(t, err)
	require.Len(t, result.Table.Rows, 1)

	row := result.Table.Rows[0]
	assert.Equal(t, "Heat", row["title"])
	assert.Equal(t, 7.4, row["rating"])
	assert.Equal(t, 135.0, row[model.ColumnDurationMinutes])
	assert.Equal(t, 1234567.0, row[model.ColumnBudget])
	assert.Equal(t, 500000.0, row[model.ColumnOpeningWeekendGross])
	assert.Equal(t, 9000000.0, row[model.ColumnGrossWorldwide])
	assert.Nil(t, row[model.ColumnGrossUSCanada])
	assert.Equal(t, "Action", row[model.ColumnPrimaryGenre])
	assert.Equal(t, 12000.0, row[model.ColumnVotesNumeric])
	assert.Equal(t, time.Date(2010, 6, 15, 0, 0, 0, 0, time.UTC), row[model.ColumnReleaseDate])

	for _, col := range model.SupersededColumns {
		assert.NotContains(t, row, col)
	}
}

func TestTransform_FiltersByReleaseYear(t *testing.T) {
	table := movieTable(
		movieRow("Old", "1985-01-01"),
		movieRow("New", "2010-06-15"),
	)

	result, err := newTestTransformer().Transform(table)
	require.NoError(t, err)
	require.Len(t, result.Table.Rows, 1)
	assert.Equal(t, "New", result.Table.Rows[0]["title"])
	assert.Equal(t, 1, result.Stats.RowsDroppedByDate)
}

func TestTransform_DropsUnparseableDate(t *testing.T) {
	table := movieTable(
		movieRow("Unknown", "someday soon"),
		movieRow("Missing", ""),
	)
	table.Rows[1][model.ColumnReleaseDate] = nil

	result, err := newTestTransformer().Transform(table)
	require.NoError(t, err)
	assert.Empty(t, result.Table.Rows)
	assert.Equal(t, 2, result.Stats.RowsDroppedByDate)

	require.Len(t, result.Operations, 2)
	for _, op := range result.Operations {
		assert.Equal(t, model.ColumnReleaseDate, op.ColumnName)
		assert.Equal(t, model.ReasonUnparseableDate, op.CleaningReason)
	}
}

func TestTransform_YearRangeIsInclusive(t *testing.T) {
	table := movieTable(
		movieRow("Lower", "1990-01-01"),
		movieRow("Upper", "2025-12-31"),
		movieRow("Before", "1989-12-31"),
		movieRow("After", "2026-01-01"),
	)

	result, err := newTestTransformer().Transform(table)
	require.NoError(t, err)
	require.Len(t, result.Table.Rows, 2)
	assert.Equal(t, "Lower", result.Table.Rows[0]["title"])
	assert.Equal(t, "Upper", result.Table.Rows[1]["title"])
}

func TestTransform_CustomYearRange(t *testing.T) {
	table := movieTable(movieRow("Old", "1985-01-01"))

	result, err := newTestTransformer(WithYearRange(1980, 1989)).Transform(table)
	require.NoError(t, err)
	assert.Len(t, result.Table.Rows, 1)
}

func TestTransform_MalformedFieldsDegradeToMissing(t *testing.T) {
	row := movieRow("Broken", "2000-01-01")
	row[model.ColumnDuration] = nil
	row[model.ColumnBudget] = "N/A"
	row[model.ColumnGenres] = "[]"
	row[model.ColumnVotes] = "lots"

	result, err := newTestTransformer(WithRunID("run-1")).Transform(movieTable(row))
	require.NoError(t, err)
	require.Len(t, result.Table.Rows, 1)

	cleaned := result.Table.Rows[0]
	assert.Nil(t, cleaned[model.ColumnDurationMinutes])
	assert.Nil(t, cleaned[model.ColumnBudget])
	assert.Nil(t, cleaned[model.ColumnPrimaryGenre])
	assert.Nil(t, cleaned[model.ColumnVotesNumeric])

	reasons := make([]string, 0, len(result.Operations))
	for _, op := range result.Operations {
		assert.Equal(t, "run-1", op.RunID)
		assert.Equal(t, "movies", op.TableName)
		assert.Equal(t, 0, op.RowIndex)
		reasons = append(reasons, op.CleaningReason)
	}
	assert.ElementsMatch(t, []string{
		model.ReasonUnparseableCurrency,
		model.ReasonNoPrimaryGenre,
		model.ReasonUnparseableVotes,
	}, reasons)

	assert.Equal(t, 1, result.Stats.MissingByColumn[model.ColumnBudget])
	assert.Equal(t, 1, result.Stats.MissingByColumn[model.ColumnGrossUSCanada])
}

func TestTransform_AuditsDurationWithoutComponents(t *testing.T) {
	row := movieRow("Short", "2000-01-01")
	row[model.ColumnDuration] = "unknown"

	result, err := newTestTransformer().Transform(movieTable(row))
	require.NoError(t, err)
	assert.Equal(t, 0.0, result.Table.Rows[0][model.ColumnDurationMinutes])
	require.Len(t, result.Operations, 1)
	assert.Equal(t, model.ReasonUnparseableDuration, result.Operations[0].CleaningReason)
	assert.Equal(t, "0", result.Operations[0].NewValue)
}

func TestTransform_OutputColumns(t *testing.T) {
	result, err := newTestTransformer().Transform(movieTable(movieRow("Heat", "2010-06-15")))
	require.NoError(t, err)

	assert.Equal(t, []string{
		"title",
		"rating",
		model.ColumnBudget,
		model.ColumnOpeningWeekendGross,
		model.ColumnGrossWorldwide,
		model.ColumnGrossUSCanada,
		model.ColumnReleaseDate,
		model.ColumnDurationMinutes,
		model.ColumnPrimaryGenre,
		model.ColumnVotesNumeric,
	}, result.Table.Columns)

	for _, row := range result.Table.Rows {
		keys := make([]string, 0, len(row))
		for k := range row {
			keys = append(keys, k)
		}
		want := append([]string(nil), result.Table.Columns...)
		sort.Strings(keys)
		sort.Strings(want)
		assert.Equal(t, want, keys)
	}
}

func TestTransform_AbsentCellIsMissing(t *testing.T) {
	row := movieRow("Sparse", "2010-06-15")
	delete(row, model.ColumnVotes)
	delete(row, "rating")

	result, err := newTestTransformer().Transform(movieTable(row))
	require.NoError(t, err)
	require.Len(t, result.Table.Rows, 1)
	assert.Contains(t, result.Table.Rows[0], "rating")
	assert.Nil(t, result.Table.Rows[0]["rating"])
	assert.Nil(t, result.Table.Rows[0][model.ColumnVotesNumeric])
}

func TestTransform_StructuralFailures(t *testing.T) {
	_, err := newTestTransformer().Transform(nil)
	assert.ErrorIs(t, err, ErrNilTable)

	table := &model.Table{
		Name:    "movies",
		Columns: []string{"title", model.ColumnDuration, model.ColumnBudget},
		Rows:    []map[string]interface{}{{"title": "x"}},
	}
	_, err = newTestTransformer().Transform(table)
	require.ErrorIs(t, err, ErrMissingColumn)

	var mce *MissingColumnError
	require.ErrorAs(t, err, &mce)
	assert.Contains(t, mce.Columns, model.ColumnVotes)
	assert.Contains(t, mce.Columns, model.ColumnReleaseDate)
	assert.NotContains(t, mce.Columns, model.ColumnBudget)
}

func TestTransform_ParallelPreservesOrder(t *testing.T) {
	rows := make([]map[string]interface{}, 0, 3*rowsPerChunk)
	for i := 0; i < 3*rowsPerChunk; i++ {
		date := "2010-06-15"
		if i%3 == 0 {
			date = "1950-01-01"
		}
		rows = append(rows, movieRow(fmt.Sprintf("movie-%05d", i), date))
	}

	serial, err := newTestTransformer().Transform(movieTable(rows...))
	require.NoError(t, err)
	parallel, err := newTestTransformer(WithWorkers(4)).Transform(movieTable(rows...))
	require.NoError(t, err)

	require.Equal(t, serial.Stats.RowsOut, parallel.Stats.RowsOut)
	assert.Equal(t, 2*rowsPerChunk, parallel.Stats.RowsOut)
	for i := range serial.Table.Rows {
		assert.Equal(t, serial.Table.Rows[i]["title"], parallel.Table.Rows[i]["title"])
	}
}

// Feeding a cleaned row back in raw shape yields the same numbers
func TestTransform_Idempotent(t *testing.T) {
	first, err := newTestTransformer().Transform(movieTable(movieRow("Heat", "2010-06-15")))
	require.NoError(t, err)
	cleaned := first.Table.Rows[0]

	raw := map[string]interface{}{
		"title":                         cleaned["title"],
		"rating":                        cleaned["rating"],
		model.ColumnDuration:            fmt.Sprintf("%vm", cleaned[model.ColumnDurationMinutes]),
		model.ColumnBudget:              cleaned[model.ColumnBudget],
		model.ColumnOpeningWeekendGross: cleaned[model.ColumnOpeningWeekendGross],
		model.ColumnGrossWorldwide:      cleaned[model.ColumnGrossWorldwide],
		model.ColumnGrossUSCanada:       cleaned[model.ColumnGrossUSCanada],
		model.ColumnGenres:              cleaned[model.ColumnPrimaryGenre],
		model.ColumnReleaseDate:         cleaned[model.ColumnReleaseDate],
		model.ColumnVotes:               cleaned[model.ColumnVotesNumeric],
	}

	second, err := newTestTransformer().Transform(movieTable(raw))
	require.NoError(t, err)
	assert.Equal(t, first.Table.Rows, second.Table.Rows)
}

func TestCleanRows(t *testing.T) {
	rows := []map[string]interface{}{movieRow("Heat", "2010-06-15")}

	cleaned, ops, err := newTestTransformer().CleanRows(rows)
	require.NoError(t, err)
	assert.Empty(t, ops)
	require.Len(t, cleaned, 1)
	assert.Equal(t, 135.0, cleaned[0][model.ColumnDurationMinutes])

	_, _, err = newTestTransformer().CleanRows([]map[string]interface{}{{"title": "x"}})
	assert.ErrorIs(t, err, ErrMissingColumn)
}
