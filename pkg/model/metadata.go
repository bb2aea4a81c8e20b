// pkg/model/metadata.go
package model

import "strings"

// ColumnKind classifies the values a cleaned column holds
type ColumnKind int

const (
	// KindPassthrough columns are copied from the source untouched
	KindPassthrough ColumnKind = iota
	// KindNumeric columns hold float64 or nil
	KindNumeric
	// KindCategorical columns hold string or nil
	KindCategorical
	// KindDate columns hold time.Time or nil
	KindDate
)

// String returns the kind name used in logs
func (k ColumnKind) String() string {
	switch k {
	case KindNumeric:
		return "numeric"
	case KindCategorical:
		return "categorical"
	case KindDate:
		return "date"
	default:
		return "passthrough"
	}
}

// TableMetadata contains the structure information for a table
type TableMetadata struct {
	Schema  string   // Schema name
	Table   string   // Table name
	Columns []Column // Column definitions in output order
}

// Column represents metadata about a table column
type Column struct {
	Name     string     // Column name
	Kind     ColumnKind // What the cleaner stores in this column
	PgType   string     // Mapped PostgreSQL type
	Nullable bool       // Whether column allows NULL values
}

// GetColumnByName returns a column by name (case-insensitive)
// Returns nil if column not found
func (tm *TableMetadata) GetColumnByName(name string) *Column {
	normalizedName := normalizeColumnName(name)
	for i, col := range tm.Columns {
		if normalizeColumnName(col.Name) == normalizedName {
			return &tm.Columns[i]
		}
	}
	return nil
}

// ColumnNames returns the column names in order
func (tm *TableMetadata) ColumnNames() []string {
	names := make([]string, len(tm.Columns))
	for i, col := range tm.Columns {
		names[i] = col.Name
	}
	return names
}

func normalizeColumnName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
