// pkg/tableio/tableio.go

// Package tableio loads source tables from, and writes cleaned tables to,
// delimited and spreadsheet files.
package tableio

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/David-Botos/movie-cleaning/pkg/model"
)

// Supported file kinds
const (
	KindCSV  = "csv"
	KindXLSX = "xlsx"
)

var (
	// ErrUnsupportedFormat is returned for an unknown file kind
	ErrUnsupportedFormat = errors.New("unsupported table format")
	// ErrEmptyTable is returned when a source has no header row
	ErrEmptyTable = errors.New("table has no header row")
)

// Loader reads a whole table into memory
type Loader interface {
	Load(ctx context.Context) (*model.Table, error)
}

// Writer persists a whole table
type Writer interface {
	Write(ctx context.Context, table *model.Table) error
}

// DefaultNullValues are the cell values read as missing
var DefaultNullValues = []string{
	"", "#N/A", "#N/A N/A", "#NA", "-1.#IND", "-1.#QNAN", "-NaN", "-nan",
	"1.#IND", "1.#QNAN", "<NA>", "N/A", "NA", "NULL", "NaN", "None",
	"n/a", "nan", "null",
}

// KindFromPath infers the file kind from an extension
func KindFromPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return KindCSV
	case ".xlsx", ".xlsm":
		return KindXLSX
	default:
		return ""
	}
}

// NewLoader returns a loader for the given kind, or for the path's extension when kind is empty
func NewLoader(kind, path string) (Loader, error) {
	if kind == "" {
		kind = KindFromPath(path)
	}

	switch kind {
	case KindCSV:
		return NewCSVLoader(path), nil
	case KindXLSX:
		return NewExcelLoader(path, ""), nil
	default:
		return nil, fmt.Errorf("%w: %q for %s", ErrUnsupportedFormat, kind, path)
	}
}

// NewWriter returns a writer for the given kind, or for the path's extension when kind is empty
func NewWriter(kind, path string) (Writer, error) {
	if kind == "" {
		kind = KindFromPath(path)
	}

	switch kind {
	case KindCSV:
		return NewCSVWriter(path), nil
	case KindXLSX:
		return NewExcelWriter(path, ""), nil
	default:
		return nil, fmt.Errorf("%w: %q for %s", ErrUnsupportedFormat, kind, path)
	}
}

// buildTable turns a header plus string records into a table. Short records
// are padded with missing values.
func buildTable(name string, header []string, records [][]string, nullValues map[string]bool) (*model.Table, error) {
	if len(header) == 0 {
		return nil, ErrEmptyTable
	}

	columns := make([]string, len(header))
	for i, h := range header {
		columns[i] = strings.TrimSpace(h)
	}

	rows := make([]map[string]interface{}, 0, len(records))
	for _, record := range records {
		row := make(map[string]interface{}, len(columns))
		for i, col := range columns {
			if i >= len(record) || nullValues[record[i]] {
				row[col] = nil
				continue
			}
			row[col] = record[i]
		}
		rows = append(rows, row)
	}

	return &model.Table{Name: name, Columns: columns, Rows: rows}, nil
}

func nullSet(values []string) map[string]bool {
	set := make(map[string]bool, len(values))
	for _, v := range values {
		set[v] = true
	}
	return set
}

// tableName derives a table name from a file path
func tableName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// FormatCell renders a cleaned value for text output. Missing is empty.
func FormatCell(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32)
	case time.Time:
		return FormatDate(val)
	case []byte:
		return string(val)
	default:
		return fmt.Sprintf("%v", val)
	}
}

// FormatDate writes midnight timestamps as plain dates
func FormatDate(t time.Time) string {
	if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 && t.Nanosecond() == 0 {
		return t.Format("2006-01-02")
	}
	return t.Format("2006-01-02 15:04:05")
}

// ensureDir creates the parent directory of path
func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory %q: %w", dir, err)
	}
	return nil
}
