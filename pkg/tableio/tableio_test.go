package tableio

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/David-Botos/movie-cleaning/pkg/model"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestCSVLoader_Load(t *testing.T) {
	path := writeFile(t, "Movie_Data.csv",
		"\uFEFFtitle,duration,budget,votes\n"+
			"Heat,2h 50m,\"$60,000,000\",12K\n"+
			"Blank,,N/A,\n"+
			"Short,1h\n")

	table, err := NewCSVLoader(path).Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "Movie_Data", table.Name)
	assert.Equal(t, []string{"title", "duration", "budget", "votes"}, table.Columns)
	require.Len(t, table.Rows, 3)

	assert.Equal(t, "$60,000,000", table.Rows[0]["budget"])
	assert.Nil(t, table.Rows[1]["duration"])
	assert.Nil(t, table.Rows[1]["budget"])
	assert.Nil(t, table.Rows[1]["votes"])
	assert.Equal(t, "1h", table.Rows[2]["duration"])
	assert.Nil(t, table.Rows[2]["budget"])
}

func TestCSVLoader_Options(t *testing.T) {
	path := writeFile(t, "movies.csv", "title,genres\nX,N/A\n")

	table, err := NewCSVLoader(path).WithNullValues([]string{""}).Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "N/A", table.Rows[0]["genres"])

	path = writeFile(t, "movies_semicolon.csv", "title;budget\nHeat;$60,000,000\n")
	table, err = NewCSVLoader(path).WithDelimiter(';').Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"title", "budget"}, table.Columns)
	assert.Equal(t, "$60,000,000", table.Rows[0]["budget"])
}

func TestCSVLoader_Errors(t *testing.T) {
	_, err := NewCSVLoader(filepath.Join(t.TempDir(), "absent.csv")).Load(context.Background())
	assert.Error(t, err)

	empty := writeFile(t, "empty.csv", "")
	_, err = NewCSVLoader(empty).Load(context.Background())
	assert.ErrorIs(t, err, ErrEmptyTable)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = NewCSVLoader(empty).Load(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func cleanedTable() *model.Table {
	return &model.Table{
		Name:    "movies",
		Columns: []string{"title", "release_date", "duration_minutes", "primary_genre"},
		Rows: []map[string]interface{}{
			{
				"title":            "Heat",
				"release_date":     time.Date(1995, 12, 15, 0, 0, 0, 0, time.UTC),
				"duration_minutes": 170.0,
				"primary_genre":    "Crime",
			},
			{
				"title":            "Unknown",
				"release_date":     time.Date(2001, 1, 1, 10, 30, 0, 0, time.UTC),
				"duration_minutes": nil,
				"primary_genre":    nil,
			},
		},
	}
}

func TestCSVWriter_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "processed", "movies_cleaned.csv")

	require.NoError(t, NewCSVWriter(path).Write(context.Background(), cleanedTable()))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t,
		"title,release_date,duration_minutes,primary_genre\n"+
			"Heat,1995-12-15,170,Crime\n"+
			"Unknown,2001-01-01 10:30:00,,\n",
		string(content))

	table, err := NewCSVLoader(path).Load(context.Background())
	require.NoError(t, err)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, "170", table.Rows[0]["duration_minutes"])
	assert.Nil(t, table.Rows[1]["primary_genre"])
}

func TestExcel_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "movies.xlsx")

	require.NoError(t, NewExcelWriter(path, "Cleaned").Write(context.Background(), cleanedTable()))

	table, err := NewExcelLoader(path, "Cleaned").Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"title", "release_date", "duration_minutes", "primary_genre"}, table.Columns)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, "Heat", table.Rows[0]["title"])
	assert.Equal(t, "1995-12-15", table.Rows[0]["release_date"])
	assert.Equal(t, "170", table.Rows[0]["duration_minutes"])
	assert.Nil(t, table.Rows[1]["primary_genre"])

	_, err = NewExcelLoader(path, "Missing").Load(context.Background())
	assert.Error(t, err)
}

func TestNewLoaderAndWriter(t *testing.T) {
	l, err := NewLoader("", "data/raw/movies.csv")
	require.NoError(t, err)
	assert.IsType(t, &CSVLoader{}, l)

	l, err = NewLoader("", "movies.XLSX")
	require.NoError(t, err)
	assert.IsType(t, &ExcelLoader{}, l)

	w, err := NewWriter(KindCSV, "out.dat")
	require.NoError(t, err)
	assert.IsType(t, &CSVWriter{}, w)

	_, err = NewLoader("", "movies.parquet")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = NewWriter("json", "movies.json")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestFormatCell(t *testing.T) {
	assert.Equal(t, "", FormatCell(nil))
	assert.Equal(t, "1234567", FormatCell(1234567.0))
	assert.Equal(t, "1.5", FormatCell(1.5))
	assert.Equal(t, "7", FormatCell(7))
	assert.Equal(t, "2010-06-15", FormatCell(time.Date(2010, 6, 15, 0, 0, 0, 0, time.UTC)))
}
