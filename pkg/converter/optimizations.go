// pkg/converter/optimizations.go
package converter

import (
	"fmt"
	"math"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/David-Botos/movie-cleaning/pkg/model"
)

// OptimizeTableMetadata narrows column types to what the table's values need.
// Whole number columns become integers and short text becomes VARCHAR.
func (c *TypeConverter) OptimizeTableMetadata(metadata *model.TableMetadata, table *model.Table) *model.TableMetadata {
	optimized := &model.TableMetadata{
		Schema:  metadata.Schema,
		Table:   metadata.Table,
		Columns: make([]model.Column, len(metadata.Columns)),
	}

	for i, col := range metadata.Columns {
		optimized.Columns[i] = c.optimizeColumn(col, table)
	}

	return optimized
}

// optimizeColumn applies storage optimizations to a column
func (c *TypeConverter) optimizeColumn(col model.Column, table *model.Table) model.Column {
	optimized := col

	switch col.Kind {
	case model.KindNumeric:
		if pgType, ok := integerType(table, col.Name); ok {
			optimized.PgType = pgType
		}
	case model.KindCategorical, model.KindPassthrough:
		optimized.PgType = varcharType(maxTextLength(table, col.Name))
	}

	if optimized.PgType != col.PgType {
		c.logger.Debug("Optimized column type",
			zap.String("column", col.Name),
			zap.String("from", col.PgType),
			zap.String("to", optimized.PgType))
	}

	return optimized
}

// integerType reports the smallest integer type holding every present value
func integerType(table *model.Table, column string) (string, bool) {
	seen := false
	largest := 0.0
	for _, row := range table.Rows {
		v := row[column]
		if isNull(v) {
			continue
		}
		f, ok := v.(float64)
		if !ok || f != math.Trunc(f) || math.IsInf(f, 0) {
			return "", false
		}
		seen = true
		largest = math.Max(largest, math.Abs(f))
	}

	switch {
	case !seen:
		return "", false
	case largest <= math.MaxInt32:
		return "INTEGER", true
	case largest < math.MaxInt64:
		return "BIGINT", true
	default:
		return "", false
	}
}

// maxTextLength returns the longest rendered value in runes, or -1 when a
// value is not text
func maxTextLength(table *model.Table, column string) int {
	longest := 0
	for _, row := range table.Rows {
		switch v := row[column].(type) {
		case nil:
		case string:
			longest = max(longest, utf8.RuneCountInString(v))
		default:
			return -1
		}
	}
	return longest
}

// varcharType buckets a text length into a column type
func varcharType(length int) string {
	switch {
	case length < 0, length > 1000:
		return pgText
	case length > 255:
		return "VARCHAR(1000)"
	case length > 100:
		return "VARCHAR(255)"
	case length > 50:
		return "VARCHAR(100)"
	default:
		return "VARCHAR(50)"
	}
}

// AnalyzeTableForOptimization lists notes about a cleaned table worth logging
// before it is loaded
func (c *TypeConverter) AnalyzeTableForOptimization(metadata *model.TableMetadata, table *model.Table) []string {
	var suggestions []string

	for _, col := range metadata.Columns {
		missing := 0
		for _, row := range table.Rows {
			if isNull(row[col.Name]) {
				missing++
			}
		}
		if len(table.Rows) > 0 && missing == len(table.Rows) {
			suggestions = append(suggestions,
				fmt.Sprintf("Column %s has no values and will load as all NULL", col.Name))
		}
	}

	return suggestions
}
