// pkg/model/table.go
package model

// Source columns the cleaner reads
const (
	ColumnDuration            = "duration"
	ColumnBudget              = "budget"
	ColumnOpeningWeekendGross = "opening_weekend_gross"
	ColumnGrossWorldwide      = "gross_worldwide"
	ColumnGrossUSCanada       = "gross_us_canada"
	ColumnGenres              = "genres"
	ColumnReleaseDate         = "release_date"
	ColumnVotes               = "votes"
)

// Derived columns the cleaner adds
const (
	ColumnDurationMinutes = "duration_minutes"
	ColumnPrimaryGenre    = "primary_genre"
	ColumnVotesNumeric    = "votes_numeric"
)

// CurrencyColumns are cleaned in place
var CurrencyColumns = []string{
	ColumnBudget,
	ColumnOpeningWeekendGross,
	ColumnGrossWorldwide,
	ColumnGrossUSCanada,
}

// RequiredColumns must all be present in an input table
var RequiredColumns = []string{
	ColumnDuration,
	ColumnBudget,
	ColumnOpeningWeekendGross,
	ColumnGrossWorldwide,
	ColumnGrossUSCanada,
	ColumnGenres,
	ColumnReleaseDate,
	ColumnVotes,
}

// SupersededColumns are dropped once their derived counterparts exist
var SupersededColumns = []string{
	ColumnDuration,
	ColumnGenres,
	ColumnVotes,
}

// DerivedColumns are appended to every cleaned table, in this order
var DerivedColumns = []string{
	ColumnDurationMinutes,
	ColumnPrimaryGenre,
	ColumnVotesNumeric,
}

// RawRow is one source record. An absent key or a nil value is missing.
type RawRow map[string]interface{}

// CleanedRow is one normalized record. Values are float64, string,
// time.Time, passthrough values, or nil for missing.
type CleanedRow map[string]interface{}

// Table is an in-memory, column-named, row-oriented dataset
type Table struct {
	Name    string
	Columns []string
	Rows    []map[string]interface{}
}

// HasColumn reports whether the table declares the named column
func (t *Table) HasColumn(name string) bool {
	for _, c := range t.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// Len returns the number of rows
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}
