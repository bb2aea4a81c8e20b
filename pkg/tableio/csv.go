// pkg/tableio/csv.go
package tableio

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/David-Botos/movie-cleaning/pkg/model"
)

// CSVLoader reads a comma separated file with a header row
type CSVLoader struct {
	path       string
	delimiter  rune
	nullValues map[string]bool
}

// NewCSVLoader creates a loader using the default null values
func NewCSVLoader(path string) *CSVLoader {
	return &CSVLoader{
		path:       path,
		delimiter:  ',',
		nullValues: nullSet(DefaultNullValues),
	}
}

// WithDelimiter changes the field delimiter
func (l *CSVLoader) WithDelimiter(d rune) *CSVLoader {
	l.delimiter = d
	return l
}

// WithNullValues replaces the set of cell values read as missing
func (l *CSVLoader) WithNullValues(values []string) *CSVLoader {
	l.nullValues = nullSet(values)
	return l
}

// Load reads the whole file. A leading byte order mark is dropped.
func (l *CSVLoader) Load(ctx context.Context) (*model.Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	file, err := os.Open(l.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file %q: %w", l.path, err)
	}
	defer file.Close()

	return l.read(file)
}

func (l *CSVLoader) read(r io.Reader) (*model.Table, error) {
	reader := csv.NewReader(transform.NewReader(r, unicode.BOMOverride(transform.Nop)))
	reader.Comma = l.delimiter
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("CSV file %q: %w", l.path, ErrEmptyTable)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV file: %w", err)
	}

	return buildTable(tableName(l.path), header, records, l.nullValues)
}

// CSVWriter writes a table as a comma separated file with a header row
type CSVWriter struct {
	path string
}

// NewCSVWriter creates a writer for path, creating parent directories on write
func NewCSVWriter(path string) *CSVWriter {
	return &CSVWriter{path: path}
}

// Write replaces the destination file with the table
func (w *CSVWriter) Write(ctx context.Context, table *model.Table) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := ensureDir(w.path); err != nil {
		return err
	}

	file, err := os.Create(w.path)
	if err != nil {
		return fmt.Errorf("failed to create CSV file %q: %w", w.path, err)
	}

	if err := writeCSV(file, table); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

func writeCSV(out io.Writer, table *model.Table) error {
	writer := csv.NewWriter(out)

	if err := writer.Write(table.Columns); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	record := make([]string, len(table.Columns))
	for i, row := range table.Rows {
		for j, col := range table.Columns {
			record[j] = FormatCell(row[col])
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write CSV row %d: %w", i, err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("failed to flush CSV: %w", err)
	}
	return nil
}
