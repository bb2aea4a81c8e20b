// pkg/tableio/excel.go
package tableio

import (
	"context"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/David-Botos/movie-cleaning/pkg/model"
)

const defaultSheet = "Sheet1"

// ExcelLoader reads one worksheet whose first row is the header
type ExcelLoader struct {
	path       string
	sheetName  string
	nullValues map[string]bool
}

// NewExcelLoader creates a loader for the named sheet, or the first sheet when empty
func NewExcelLoader(path, sheetName string) *ExcelLoader {
	return &ExcelLoader{
		path:       path,
		sheetName:  sheetName,
		nullValues: nullSet(DefaultNullValues),
	}
}

// Load reads the worksheet into memory
func (l *ExcelLoader) Load(ctx context.Context) (*model.Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	file, err := excelize.OpenFile(l.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file %q: %w", l.path, err)
	}
	defer file.Close()

	sheets := file.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("excel file %q: %w", l.path, ErrEmptyTable)
	}

	sheet := sheets[0]
	if l.sheetName != "" {
		found := false
		for _, s := range sheets {
			if s == l.sheetName {
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("sheet %q not found in %q", l.sheetName, l.path)
		}
		sheet = l.sheetName
	}

	records, err := file.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("sheet %q: %w", sheet, ErrEmptyTable)
	}

	return buildTable(tableName(l.path), records[0], records[1:], l.nullValues)
}

// ExcelWriter writes a table to a new workbook with a single sheet
type ExcelWriter struct {
	path      string
	sheetName string
}

// NewExcelWriter creates a writer; an empty sheet name keeps the default
func NewExcelWriter(path, sheetName string) *ExcelWriter {
	return &ExcelWriter{path: path, sheetName: sheetName}
}

// Write replaces the destination workbook with the table
func (w *ExcelWriter) Write(ctx context.Context, table *model.Table) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := ensureDir(w.path); err != nil {
		return err
	}

	file := excelize.NewFile()
	defer file.Close()

	sheet := defaultSheet
	if w.sheetName != "" && w.sheetName != defaultSheet {
		if err := file.SetSheetName(defaultSheet, w.sheetName); err != nil {
			return fmt.Errorf("failed to name sheet %q: %w", w.sheetName, err)
		}
		sheet = w.sheetName
	}

	header := make([]interface{}, len(table.Columns))
	for i, col := range table.Columns {
		header[i] = col
	}
	if err := file.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for i, row := range table.Rows {
		cells := make([]interface{}, len(table.Columns))
		for j, col := range table.Columns {
			cells[j] = excelCell(row[col])
		}

		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("failed to address row %d: %w", i, err)
		}
		if err := file.SetSheetRow(sheet, cell, &cells); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i, err)
		}
	}

	if err := file.SaveAs(w.path); err != nil {
		return fmt.Errorf("failed to save Excel file %q: %w", w.path, err)
	}
	return nil
}

// excelCell keeps numbers numeric and renders everything else as text
func excelCell(v interface{}) interface{} {
	switch val := v.(type) {
	case nil:
		return ""
	case float64, float32, int, int64:
		return val
	case time.Time:
		return FormatDate(val)
	default:
		return FormatCell(val)
	}
}
