// pkg/converter/mapping.go
package converter

import (
	"time"

	"go.uber.org/zap"

	"github.com/David-Botos/movie-cleaning/pkg/model"
)

// PostgreSQL types for each column kind
const (
	pgNumeric = "DOUBLE PRECISION"
	pgText    = "TEXT"
	pgDate    = "DATE"
)

// MapKindToPostgres returns the default PostgreSQL type for a column kind
func MapKindToPostgres(kind model.ColumnKind) string {
	switch kind {
	case model.KindNumeric:
		return pgNumeric
	case model.KindDate:
		return pgDate
	default:
		return pgText
	}
}

// knownKind returns the kind of the columns the cleaner produces
func knownKind(column string) model.ColumnKind {
	switch column {
	case model.ColumnDurationMinutes, model.ColumnVotesNumeric:
		return model.KindNumeric
	case model.ColumnPrimaryGenre:
		return model.KindCategorical
	case model.ColumnReleaseDate:
		return model.KindDate
	}
	for _, col := range model.CurrencyColumns {
		if column == col {
			return model.KindNumeric
		}
	}
	return model.KindPassthrough
}

// inferKind looks at a sample of a passthrough column. A column whose
// present values all share one Go type takes the matching kind.
func (c *TypeConverter) inferKind(table *model.Table, column string) model.ColumnKind {
	limit := len(table.Rows)
	if c.config.SampleSize > 0 && c.config.SampleSize < limit {
		limit = c.config.SampleSize
	}

	kind := model.KindPassthrough
	seen := false
	for _, row := range table.Rows[:limit] {
		v := row[column]
		if isNull(v) {
			continue
		}

		var k model.ColumnKind
		switch v.(type) {
		case float64, float32, int, int32, int64:
			k = model.KindNumeric
		case time.Time:
			k = model.KindDate
		default:
			return model.KindPassthrough
		}

		if seen && k != kind {
			return model.KindPassthrough
		}
		kind, seen = k, true
	}

	if kind != model.KindPassthrough {
		c.logger.Debug("Inferred column kind",
			zap.String("column", column),
			zap.String("kind", kind.String()))
	}
	return kind
}
