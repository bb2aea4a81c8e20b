// pkg/model/cleaning.go
package model

import (
	"time"
)

// Reasons recorded when a field degrades to missing
const (
	ReasonUnparseableDuration = "unparseable_duration"
	ReasonUnparseableCurrency = "unparseable_currency"
	ReasonUnparseableVotes    = "unparseable_votes"
	ReasonUnparseableDate     = "unparseable_date"
	ReasonNoPrimaryGenre      = "no_primary_genre"
	ReasonOutsideYearRange    = "outside_year_range"
)

// CleaningOperation represents a single field-level cleaning outcome
// worth auditing: a present source value that degraded to missing, or a
// row dropped by the release date filter.
type CleaningOperation struct {
	RunID             string      // Run that produced the operation
	TableName         string      // Source table name
	ColumnName        string      // Column that was cleaned
	RowIndex          int         // Zero-based index of the row in the source table
	OriginalValue     interface{} // Original value (may be nil)
	NewValue          string      // New value after cleaning, empty when missing
	CleaningOperation string      // Type of cleaning performed (e.g., "currency_parse")
	CleaningReason    string      // Reason for cleaning (e.g., "unparseable_currency")
	CleanedAt         time.Time   // When the cleaning occurred
}

// CleaningContext contains information needed for cleaning a value
type CleaningContext struct {
	RunID     string
	TableName string
	RowIndex  int
}
