// pkg/converter/values.go
package converter

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/David-Botos/movie-cleaning/pkg/model"
)

// ConvertValueForPostgres converts a cleaned value to a type the driver
// accepts for the column. Missing values become NULL.
func (c *TypeConverter) ConvertValueForPostgres(value interface{}, column model.Column) (interface{}, error) {
	if isNull(value) {
		return nil, nil
	}

	pgType := strings.ToUpper(column.PgType)
	switch {
	case pgType == "INTEGER", pgType == "BIGINT", pgType == "SMALLINT":
		return c.convertToInteger(value, column.Name)
	case pgType == pgNumeric, strings.HasPrefix(pgType, "NUMERIC"):
		return c.convertToNumeric(value, column.Name)
	case pgType == pgDate, strings.Contains(pgType, "TIMESTAMP"):
		return c.convertToDate(value, column.Name)
	default:
		return c.convertToText(value), nil
	}
}

// RowValues converts every row of a table into positional insert arguments
// following the metadata column order
func (c *TypeConverter) RowValues(table *model.Table, metadata *model.TableMetadata) ([][]interface{}, error) {
	values := make([][]interface{}, len(table.Rows))
	for i, row := range table.Rows {
		converted := make([]interface{}, len(metadata.Columns))
		for j, col := range metadata.Columns {
			v, err := c.ConvertValueForPostgres(row[col.Name], col)
			if err != nil {
				return nil, fmt.Errorf("row %d: %w", i, err)
			}
			converted[j] = v
		}
		values[i] = converted
	}
	return values, nil
}

// isNull determines if a value should be treated as NULL
func isNull(value interface{}) bool {
	switch v := value.(type) {
	case nil:
		return true
	case float64:
		return math.IsNaN(v)
	case float32:
		return math.IsNaN(float64(v))
	default:
		return false
	}
}

// convertToText converts a value to text. Dates use the cleaned output form.
func (c *TypeConverter) convertToText(value interface{}) interface{} {
	switch v := value.(type) {
	case string:
		if v == "" && c.config.EmptyStringAsNull {
			return nil
		}
		return v
	case []byte:
		return string(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case time.Time:
		return v.Format("2006-01-02")
	default:
		return fmt.Sprintf("%v", v)
	}
}

// convertToNumeric converts a value to float64
func (c *TypeConverter) convertToNumeric(value interface{}, colName string) (interface{}, error) {
	switch v := value.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return nil, nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, fmt.Errorf("cannot convert %q to numeric for %s", v, colName)
		}
		return f, nil
	default:
		return nil, fmt.Errorf("cannot convert %T to numeric for %s", value, colName)
	}
}

// convertToInteger converts a whole number to int64
func (c *TypeConverter) convertToInteger(value interface{}, colName string) (interface{}, error) {
	f, err := c.convertToNumeric(value, colName)
	if err != nil || f == nil {
		return f, err
	}

	n := f.(float64)
	if n != math.Trunc(n) || math.Abs(n) > math.MaxInt64 {
		return nil, fmt.Errorf("cannot store %v as integer for %s", n, colName)
	}
	return int64(n), nil
}

// convertToDate converts a value to time.Time
func (c *TypeConverter) convertToDate(value interface{}, colName string) (interface{}, error) {
	switch v := value.(type) {
	case time.Time:
		return v, nil
	case string:
		if strings.TrimSpace(v) == "" {
			return nil, nil
		}
		for _, layout := range []string{"2006-01-02", "2006-01-02 15:04:05", time.RFC3339} {
			if t, err := time.Parse(layout, v); err == nil {
				return t, nil
			}
		}
		return nil, fmt.Errorf("cannot parse %q as date for %s", v, colName)
	default:
		return nil, fmt.Errorf("cannot convert %T to date for %s", value, colName)
	}
}
